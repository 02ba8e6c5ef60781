package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

type Tasks struct {
	ID          uuid.UUID
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     sql.NullTime
	CategoryID  uuid.NullUUID
	UserID      uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Categories struct {
	ID     uuid.UUID
	Name   string
	Color  string
	UserID uuid.UUID
}

type Users struct {
	ID           uuid.UUID
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsActive     bool
	IsStaff      bool
	DateJoined   time.Time
}
