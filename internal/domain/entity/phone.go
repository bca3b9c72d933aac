package entity

// Phone belongs to exactly one User.
type Phone struct {
	ID       int64
	UserID   int64
	AreaCode string
	Number   string
}
