package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanLimbu/tasks-api/internal"
	"github.com/sanLimbu/tasks-api/internal/postgresql/db"
)

// Task represents the repository used for interacting with Task records. Every method
// takes the owner explicitly, records belonging to other users behave as nonexistent.
type Task struct {
	pool *pgxpool.Pool
}

// NewTask instantiates the Task repository.
func NewTask(pool *pgxpool.Pool) *Task {
	return &Task{
		pool: pool,
	}
}

// Create inserts a new task record owned by task.UserID.
func (t *Task) Create(ctx context.Context, task internal.Task) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	userID, err := parseID(task.UserID)
	if err != nil {
		return internal.Task{}, err
	}

	categoryID, err := newNullUUID(task.CategoryID)
	if err != nil {
		return internal.Task{}, err
	}

	query := `INSERT INTO tasks (title, description, status, priority, due_date, category_id, user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at`

	var id uuid.UUID

	row := t.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		newNullTime(task.DueDate),
		categoryID,
		userID)

	if err := row.Scan(&id, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "row.Scan")
	}

	task.ID = id.String()

	return task, nil
}

// Find returns the task with the given id when it belongs to userID.
func (t *Task) Find(ctx context.Context, userID, id string) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	ownerID, err := parseID(userID)
	if err != nil {
		return internal.Task{}, err
	}

	taskID, err := parseID(id)
	if err != nil {
		return internal.Task{}, err
	}

	query := fmt.Sprintf("SELECT %s FROM tasks WHERE id = $1 AND user_id = $2", taskColumns)

	rec, err := scanTask(t.pool.QueryRow(ctx, query, taskID, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeNotFound, "task not found")
		}

		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "row.Scan")
	}

	return convertTask(rec)
}

// Update overwrites the stored record and returns it carrying the refreshed update
// timestamp. Last write wins, there is no version column.
func (t *Task) Update(ctx context.Context, task internal.Task) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	ownerID, err := parseID(task.UserID)
	if err != nil {
		return internal.Task{}, err
	}

	taskID, err := parseID(task.ID)
	if err != nil {
		return internal.Task{}, err
	}

	categoryID, err := newNullUUID(task.CategoryID)
	if err != nil {
		return internal.Task{}, err
	}

	query := `UPDATE tasks
SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, category_id = $6, updated_at = now()
WHERE id = $7 AND user_id = $8
RETURNING updated_at`

	row := t.pool.QueryRow(ctx, query,
		task.Title,
		task.Description,
		string(task.Status),
		string(task.Priority),
		newNullTime(task.DueDate),
		categoryID,
		taskID,
		ownerID)

	if err := row.Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeNotFound, "task not found")
		}

		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "row.Scan")
	}

	return task, nil
}

// Delete removes the task when it belongs to userID.
func (t *Task) Delete(ctx context.Context, userID, id string) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	ownerID, err := parseID(userID)
	if err != nil {
		return err
	}

	taskID, err := parseID(id)
	if err != nil {
		return err
	}

	tag, err := t.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND user_id = $2", taskID, ownerID)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Exec")
	}

	if tag.RowsAffected() == 0 {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "task not found")
	}

	return nil
}

// List returns one page of userID's tasks matching params, plus the total match count.
func (t *Task) List(ctx context.Context, userID string, params internal.ListParams) (internal.TaskPage, error) {
	defer newOTELSpan(ctx, "Task.List").End()

	return t.list(ctx, userID, params, time.Time{})
}

// ListOverdue behaves like List restricted to open tasks due strictly before asOf.
func (t *Task) ListOverdue(ctx context.Context, userID string, asOf time.Time, params internal.ListParams) (internal.TaskPage, error) {
	defer newOTELSpan(ctx, "Task.ListOverdue").End()

	return t.list(ctx, userID, params, internal.DateOnly(asOf))
}

func (t *Task) list(ctx context.Context, userID string, params internal.ListParams, overdueAsOf time.Time) (internal.TaskPage, error) {
	ownerID, err := parseID(userID)
	if err != nil {
		return internal.TaskPage{}, err
	}

	where, args := buildTaskPredicates(ownerID, params.Filters, overdueAsOf)

	var total int64

	countQuery := "SELECT COUNT(*) FROM tasks WHERE " + where
	if err := t.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return internal.TaskPage{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "count row.Scan")
	}

	query := fmt.Sprintf("SELECT %s FROM tasks WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d",
		taskColumns, where, buildTaskOrderBy(params.Sort), len(args)+1, len(args)+2)

	args = append(args, internal.PageSize, params.Offset())

	rows, err := t.pool.Query(ctx, query, args...)
	if err != nil {
		return internal.TaskPage{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Query")
	}
	defer rows.Close()

	var tasks []internal.Task

	for rows.Next() {
		rec, err := scanTask(rows)
		if err != nil {
			return internal.TaskPage{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "rows.Scan")
		}

		task, err := convertTask(rec)
		if err != nil {
			return internal.TaskPage{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "convertTask")
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return internal.TaskPage{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "rows.Err")
	}

	return internal.TaskPage{
		Tasks: tasks,
		Total: total,
		Page:  params.Page,
	}, nil
}

// Statistics aggregates userID's tasks in a single pass: total, one bucket per status,
// high priority count and overdue count as of asOf.
func (t *Task) Statistics(ctx context.Context, userID string, asOf time.Time) (internal.TaskStatistics, error) {
	defer newOTELSpan(ctx, "Task.Statistics").End()

	ownerID, err := parseID(userID)
	if err != nil {
		return internal.TaskStatistics{}, err
	}

	query := `SELECT
COUNT(*),
COUNT(*) FILTER (WHERE status = 'TODO'),
COUNT(*) FILTER (WHERE status = 'IN_PROGRESS'),
COUNT(*) FILTER (WHERE status = 'DONE'),
COUNT(*) FILTER (WHERE priority = 'HIGH'),
COUNT(*) FILTER (WHERE status IN ('TODO', 'IN_PROGRESS') AND due_date IS NOT NULL AND due_date < $2)
FROM tasks
WHERE user_id = $1`

	var stats internal.TaskStatistics

	row := t.pool.QueryRow(ctx, query, ownerID, internal.DateOnly(asOf))
	if err := row.Scan(
		&stats.Total,
		&stats.TodoCount,
		&stats.InProgressCount,
		&stats.DoneCount,
		&stats.HighPriorityCount,
		&stats.OverdueCount); err != nil {
		return internal.TaskStatistics{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "row.Scan")
	}

	return stats, nil
}

// BulkUpdateStatus sets the status on every listed task owned by userID in one atomic
// statement and returns the number of records actually changed. Ids belonging to other
// users, unknown ids and malformed ids are skipped, never reported as errors.
func (t *Task) BulkUpdateStatus(ctx context.Context, userID string, ids []string, status internal.Status) (int64, error) {
	defer newOTELSpan(ctx, "Task.BulkUpdateStatus").End()

	ownerID, err := parseID(userID)
	if err != nil {
		return 0, err
	}

	taskIDs := make([]uuid.UUID, 0, len(ids))

	for _, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			continue
		}

		taskIDs = append(taskIDs, parsed)
	}

	if len(taskIDs) == 0 {
		return 0, nil
	}

	query := "UPDATE tasks SET status = $1, updated_at = now() WHERE user_id = $2 AND id = ANY($3)"

	tag, err := t.pool.Exec(ctx, query, string(status), ownerID, taskIDs)
	if err != nil {
		return 0, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Exec")
	}

	return tag.RowsAffected(), nil
}

func scanTask(row pgx.Row) (db.Tasks, error) {
	var rec db.Tasks

	err := row.Scan(
		&rec.ID,
		&rec.Title,
		&rec.Description,
		&rec.Status,
		&rec.Priority,
		&rec.DueDate,
		&rec.CategoryID,
		&rec.UserID,
		&rec.CreatedAt,
		&rec.UpdatedAt)

	return rec, err
}
