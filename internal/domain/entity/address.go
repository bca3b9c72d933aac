package entity

// Address belongs to exactly one User.
type Address struct {
	ID         int64
	UserID     int64
	Street     string
	Number     int64
	Complement string
	City       string
	State      string
	PostalCode string
}
