package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanLimbu/tasks-api/internal"
	"github.com/sanLimbu/tasks-api/internal/postgresql/db"
)

//go:generate tern migrate --migrations migrations

const otelName = "github.com/sanLimbu/tasks-api/internal/postgresql"

func convertStatus(s db.Status) (internal.Status, error) {
	switch s {
	case db.StatusTodo:
		return internal.StatusTodo, nil
	case db.StatusInProgress:
		return internal.StatusInProgress, nil
	case db.StatusDone:
		return internal.StatusDone, nil
	}

	return "", fmt.Errorf("unknown status value: %s", s)
}

func convertPriority(p db.Priority) (internal.Priority, error) {
	switch p {
	case db.PriorityLow:
		return internal.PriorityLow, nil
	case db.PriorityMedium:
		return internal.PriorityMedium, nil
	case db.PriorityHigh:
		return internal.PriorityHigh, nil
	}

	return "", fmt.Errorf("unknown priority value: %s", p)
}

// newNullTime creates a sql.NullTime from a time.Time, zero values persist as NULL.
func newNullTime(t time.Time) sql.NullTime {
	return sql.NullTime{
		Time:  t,
		Valid: !t.IsZero(),
	}
}

func newNullUUID(id string) (uuid.NullUUID, error) {
	if id == "" {
		return uuid.NullUUID{}, nil
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.NullUUID{}, internal.WrapErrorf(err, internal.ErrorCodeNotFound, "uuid.Parse")
	}

	return uuid.NullUUID{UUID: parsed, Valid: true}, nil
}

// parseID parses a record identifier. A malformed identifier is indistinguishable from
// a missing record.
func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.UUID{}, internal.WrapErrorf(err, internal.ErrorCodeNotFound, "uuid.Parse")
	}

	return parsed, nil
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemPostgreSQL)

	return span
}

func convertTask(t db.Tasks) (internal.Task, error) {
	status, err := convertStatus(t.Status)
	if err != nil {
		return internal.Task{}, err
	}

	priority, err := convertPriority(t.Priority)
	if err != nil {
		return internal.Task{}, err
	}

	task := internal.Task{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      status,
		Priority:    priority,
		UserID:      t.UserID.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}

	if t.DueDate.Valid {
		task.DueDate = t.DueDate.Time.UTC()
	}

	if t.CategoryID.Valid {
		task.CategoryID = t.CategoryID.UUID.String()
	}

	return task, nil
}
