package internal

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// User is the tenancy boundary: tasks and categories are exclusively owned by one user.
// The email address is the sole login identifier.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	IsStaff      bool      `json:"is_staff"`
	DateJoined   time.Time `json:"date_joined"`
}

// Validate ...
func (u User) Validate() error {
	err := validation.ValidateStruct(&u,
		validation.Field(&u.Email, validation.Required, is.Email),
		validation.Field(&u.FirstName, validation.Length(0, 100)),
		validation.Field(&u.LastName, validation.Length(0, 100)),
	)
	if err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation")
	}

	return nil
}
