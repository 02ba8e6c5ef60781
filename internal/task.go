package internal

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Status indicates how far along a Task is.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Validate ...
func (s Status) Validate() error {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return nil
	}

	return NewInvalidFieldError("status", "unknown status value")
}

// Priority indicates how important a Task is.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// Validate ...
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	}

	return NewInvalidFieldError("priority", "unknown priority value")
}

// Rank returns the ordinal used for sorting. Priorities do not sort lexically: HIGH
// ranks above MEDIUM, which ranks above LOW, unrecognized values sink to the bottom.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}

	return 0
}

// Task is an activity owned by exactly one user for its entire lifetime. The json tags
// double as the wire field names validation failures are keyed by.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	DueDate     time.Time `json:"due_date"`    // zero value means no due date
	CategoryID  string    `json:"category_id"` // empty means uncategorized
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOverdue indicates whether the task should have been completed before "today".
// Done tasks are never overdue.
func (t Task) IsOverdue(today time.Time) bool {
	if t.Status != StatusTodo && t.Status != StatusInProgress {
		return false
	}

	if t.DueDate.IsZero() {
		return false
	}

	return t.DueDate.Before(DateOnly(today))
}

// Validate checks the field-level rules plus the one cross-field rule: a high priority
// task can't be marked done while its due date is still in the future. A stored due
// date in the past is legal here, that is exactly what an overdue task is; rejecting
// past dates on input is the caller's concern.
func (t Task) Validate(now time.Time) error {
	today := DateOnly(now)

	err := validation.ValidateStruct(&t,
		validation.Field(&t.Title, validation.Required, validation.Length(3, 200)),
		validation.Field(&t.Status, validation.Required, validation.In(StatusTodo, StatusInProgress, StatusDone)),
		validation.Field(&t.Priority, validation.Required, validation.In(PriorityLow, PriorityMedium, PriorityHigh)),
	)
	if err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation")
	}

	if t.Status == StatusDone && t.Priority == PriorityHigh && !t.DueDate.IsZero() && t.DueDate.After(today) {
		return NewInvalidFieldError("due_date",
			"cannot mark high priority task as done if due date is in the future")
	}

	return nil
}

// DateOnly truncates t to its calendar date in UTC. Due dates are dates, not instants.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
