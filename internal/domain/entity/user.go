package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Password always holds a bcrypt hash once the account has passed through
// the service layer; plaintext never reaches the repository.
type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	Addresses []Address
	Phones    []Phone
	CreatedAt time.Time
	UpdatedAt time.Time
}
