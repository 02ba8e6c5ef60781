package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sanLimbu/tasks-api/internal"
)

const otelName = "github.com/sanLimbu/tasks-api/internal/service"

// TaskRepository defines the datastore handling persisting Task records. Every method
// is scoped to an owner, records belonging to anyone else behave as nonexistent.
type TaskRepository interface {
	Create(ctx context.Context, task internal.Task) (internal.Task, error)
	Find(ctx context.Context, userID, id string) (internal.Task, error)
	Update(ctx context.Context, task internal.Task) (internal.Task, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, params internal.ListParams) (internal.TaskPage, error)
	ListOverdue(ctx context.Context, userID string, asOf time.Time, params internal.ListParams) (internal.TaskPage, error)
	Statistics(ctx context.Context, userID string, asOf time.Time) (internal.TaskStatistics, error)
	BulkUpdateStatus(ctx context.Context, userID string, ids []string, status internal.Status) (int64, error)
}

// CategoryFinder resolves a category reference within one user's scope.
type CategoryFinder interface {
	Find(ctx context.Context, userID, id string) (internal.Category, error)
}

// TaskMessageBrokerRepository defines the datastore handling publishing Task events.
type TaskMessageBrokerRepository interface {
	Created(ctx context.Context, task internal.Task) error
	Deleted(ctx context.Context, id string) error
	Updated(ctx context.Context, task internal.Task) error
}

// Task defines the application service in charge of interacting with Tasks.
type Task struct {
	logger     *zap.Logger
	repo       TaskRepository
	categories CategoryFinder
	msgBroker  TaskMessageBrokerRepository
	now        func() time.Time
}

// NewTask ...
func NewTask(logger *zap.Logger, repo TaskRepository, categories CategoryFinder, msgBroker TaskMessageBrokerRepository) *Task {
	return &Task{
		logger:     logger,
		repo:       repo,
		categories: categories,
		msgBroker:  msgBroker,
		now:        time.Now,
	}
}

// CreateTaskParams defines the fields accepted when creating a task. The owner always
// comes from the authenticated principal, never from here.
type CreateTaskParams struct {
	Title       string
	Description string
	Status      internal.Status
	Priority    internal.Priority
	DueDate     time.Time
	CategoryID  string
}

// Create stores a new record owned by userID.
func (t *Task) Create(ctx context.Context, userID string, params CreateTaskParams) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Create")
	defer span.End()

	task := internal.Task{
		Title:       params.Title,
		Description: params.Description,
		Status:      params.Status,
		Priority:    params.Priority,
		DueDate:     params.DueDate,
		CategoryID:  params.CategoryID,
		UserID:      userID,
	}

	if task.Status == "" {
		task.Status = internal.StatusTodo
	}

	if task.Priority == "" {
		task.Priority = internal.PriorityMedium
	}

	if err := t.checkDueDate(params.DueDate); err != nil {
		return internal.Task{}, err
	}

	if err := task.Validate(t.now()); err != nil {
		return internal.Task{}, err
	}

	if err := t.checkCategory(ctx, userID, task.CategoryID); err != nil {
		return internal.Task{}, err
	}

	task, err := t.repo.Create(ctx, task)
	if err != nil {
		return internal.Task{}, err
	}

	_ = t.msgBroker.Created(ctx, task)

	return task, nil
}

// Task gets an existing Task from the datastore.
func (t *Task) Task(ctx context.Context, userID, id string) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Task")
	defer span.End()

	return t.repo.Find(ctx, userID, id)
}

// Update replaces an existing Task. Absent optional fields clear their stored values,
// partial updates go through Patch instead.
func (t *Task) Update(ctx context.Context, userID, id string, params CreateTaskParams) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Update")
	defer span.End()

	task, err := t.repo.Find(ctx, userID, id)
	if err != nil {
		return internal.Task{}, err
	}

	if err := t.checkDueDate(params.DueDate); err != nil {
		return internal.Task{}, err
	}

	task.Title = params.Title
	task.Description = params.Description
	task.Status = params.Status
	task.Priority = params.Priority
	task.DueDate = params.DueDate
	task.CategoryID = params.CategoryID

	return t.save(ctx, userID, task)
}

// UpdateTaskParams defines the fields accepted when partially updating a task, nil
// fields keep their stored values.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *internal.Status
	Priority    *internal.Priority
	DueDate     *time.Time
	CategoryID  *string
}

// Patch applies a partial update to an existing Task.
func (t *Task) Patch(ctx context.Context, userID, id string, params UpdateTaskParams) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Patch")
	defer span.End()

	task, err := t.repo.Find(ctx, userID, id)
	if err != nil {
		return internal.Task{}, err
	}

	if params.Title != nil {
		task.Title = *params.Title
	}

	if params.Description != nil {
		task.Description = *params.Description
	}

	if params.Status != nil {
		task.Status = *params.Status
	}

	if params.Priority != nil {
		task.Priority = *params.Priority
	}

	if params.DueDate != nil {
		if err := t.checkDueDate(*params.DueDate); err != nil {
			return internal.Task{}, err
		}

		task.DueDate = *params.DueDate
	}

	if params.CategoryID != nil {
		task.CategoryID = *params.CategoryID
	}

	return t.save(ctx, userID, task)
}

func (t *Task) save(ctx context.Context, userID string, task internal.Task) (internal.Task, error) {
	if err := task.Validate(t.now()); err != nil {
		return internal.Task{}, err
	}

	if err := t.checkCategory(ctx, userID, task.CategoryID); err != nil {
		return internal.Task{}, err
	}

	task, err := t.repo.Update(ctx, task)
	if err != nil {
		return internal.Task{}, err
	}

	_ = t.msgBroker.Updated(ctx, task)

	return task, nil
}

// Delete removes an existing Task from the datastore.
func (t *Task) Delete(ctx context.Context, userID, id string) error {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Delete")
	defer span.End()

	if err := t.repo.Delete(ctx, userID, id); err != nil {
		return err
	}

	_ = t.msgBroker.Deleted(ctx, id)

	return nil
}

// List returns one page of userID's tasks. Pages past the end of the result set behave
// like missing resources.
func (t *Task) List(ctx context.Context, userID string, params internal.ListParams) (internal.TaskPage, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.List")
	defer span.End()

	if err := internal.CheckPage(params.Page); err != nil {
		return internal.TaskPage{}, err
	}

	page, err := t.repo.List(ctx, userID, params)
	if err != nil {
		return internal.TaskPage{}, err
	}

	if err := internal.ValidatePage(params.Page, page.Total); err != nil {
		return internal.TaskPage{}, err
	}

	return page, nil
}

// ListOverdue returns one page of userID's open tasks whose due date has passed,
// under the same ordering and pagination rules as List.
func (t *Task) ListOverdue(ctx context.Context, userID string, params internal.ListParams) (internal.TaskPage, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.ListOverdue")
	defer span.End()

	if err := internal.CheckPage(params.Page); err != nil {
		return internal.TaskPage{}, err
	}

	page, err := t.repo.ListOverdue(ctx, userID, t.now(), params)
	if err != nil {
		return internal.TaskPage{}, err
	}

	if err := internal.ValidatePage(params.Page, page.Total); err != nil {
		return internal.TaskPage{}, err
	}

	return page, nil
}

// Statistics aggregates userID's tasks at request time, the result is never cached.
func (t *Task) Statistics(ctx context.Context, userID string) (internal.TaskStatistics, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Statistics")
	defer span.End()

	return t.repo.Statistics(ctx, userID, t.now())
}

// BulkUpdateStatus sets the status on the listed tasks in one atomic operation, only
// tasks owned by userID change. It returns the number of records actually updated.
func (t *Task) BulkUpdateStatus(ctx context.Context, userID string, ids []string, status internal.Status) (int64, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.BulkUpdateStatus")
	defer span.End()

	if err := status.Validate(); err != nil {
		return 0, err
	}

	if len(ids) == 0 {
		return 0, internal.NewInvalidFieldError("ids", "at least one task id is required")
	}

	count, err := t.repo.BulkUpdateStatus(ctx, userID, ids, status)
	if err != nil {
		return 0, err
	}

	t.logger.Info("bulk status update", zap.Int64("updated", count), zap.String("status", string(status)))

	return count, nil
}

// checkDueDate rejects past dates on input. Stored due dates in the past are fine,
// that is what an overdue task is; the rule only guards values a request provides.
func (t *Task) checkDueDate(due time.Time) error {
	if due.IsZero() {
		return nil
	}

	if internal.DateOnly(due).Before(internal.DateOnly(t.now())) {
		return internal.NewInvalidFieldError("due_date", "due date cannot be in the past")
	}

	return nil
}

func (t *Task) checkCategory(ctx context.Context, userID, categoryID string) error {
	if categoryID == "" {
		return nil
	}

	if _, err := t.categories.Find(ctx, userID, categoryID); err != nil {
		var ierr *internal.Error
		if errors.As(err, &ierr) && ierr.Code() == internal.ErrorCodeNotFound {
			return internal.NewInvalidFieldError("category", "invalid category for this user")
		}

		return err
	}

	return nil
}
