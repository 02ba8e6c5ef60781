package internal

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Category groups tasks belonging to a single user. Deleting a category never deletes
// its tasks, their category reference is cleared instead.
type Category struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	UserID string `json:"user_id"`
}

// Normalize trims surrounding whitespace from the name, which is what uniqueness and
// length rules are evaluated against.
func (c Category) Normalize() Category {
	c.Name = strings.TrimSpace(c.Name)

	return c
}

// Validate ...
func (c Category) Validate() error {
	c = c.Normalize()

	err := validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required.Error("category name cannot be empty"), validation.Length(1, 100)),
		validation.Field(&c.Color, validation.Length(0, 20)),
	)
	if err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation")
	}

	return nil
}

// EqualFold reports whether two category names collide under case folding.
func EqualFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
