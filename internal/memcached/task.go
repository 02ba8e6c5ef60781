package memcached

import (
	"context"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"go.uber.org/zap"

	"github.com/sanLimbu/tasks-api/internal"
	"github.com/sanLimbu/tasks-api/internal/service"
)

// Task is a cache-aside decorator over the persistent task store. Only single-record
// reads are cached; lists and statistics always hit the datastore, statistics by
// contract must reflect request time.
type Task struct {
	client     *memcache.Client
	orig       service.TaskRepository
	expiration time.Duration
	logger     *zap.Logger
}

// NewTask instantiates the Task cache decorator.
func NewTask(client *memcache.Client, orig service.TaskRepository, logger *zap.Logger) *Task {
	return &Task{
		client:     client,
		orig:       orig,
		expiration: 15 * time.Minute,
		logger:     logger,
	}
}

// The key embeds the owner: a cached record can never leak across tenants, another
// user's lookup of the same id misses and falls through to the owner-scoped store.
func taskKey(userID, id string) string {
	return "task:" + userID + ":" + id
}

// Create ...
func (t *Task) Create(ctx context.Context, task internal.Task) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	task, err := t.orig.Create(ctx, task)
	if err != nil {
		return internal.Task{}, err
	}

	setTask(ctx, t.client, taskKey(task.UserID, task.ID), &task, t.expiration)

	return task, nil
}

// Find ...
func (t *Task) Find(ctx context.Context, userID, id string) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	var res internal.Task

	if err := getTask(ctx, t.client, taskKey(userID, id), &res); err == nil {
		return res, nil
	}

	res, err := t.orig.Find(ctx, userID, id)
	if err != nil {
		return internal.Task{}, err
	}

	setTask(ctx, t.client, taskKey(userID, id), &res, t.expiration)

	return res, nil
}

// Update refreshes the cache entry from the record the datastore returns, so the
// cached timestamps match what was actually stored.
func (t *Task) Update(ctx context.Context, task internal.Task) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	task, err := t.orig.Update(ctx, task)
	if err != nil {
		return internal.Task{}, err
	}

	setTask(ctx, t.client, taskKey(task.UserID, task.ID), &task, t.expiration)

	return task, nil
}

// Delete ...
func (t *Task) Delete(ctx context.Context, userID, id string) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	if err := t.orig.Delete(ctx, userID, id); err != nil {
		return err
	}

	deleteTask(ctx, t.client, taskKey(userID, id))

	return nil
}

// List passes through, page slices are not cached.
func (t *Task) List(ctx context.Context, userID string, params internal.ListParams) (internal.TaskPage, error) {
	return t.orig.List(ctx, userID, params)
}

// ListOverdue passes through.
func (t *Task) ListOverdue(ctx context.Context, userID string, asOf time.Time, params internal.ListParams) (internal.TaskPage, error) {
	return t.orig.ListOverdue(ctx, userID, asOf, params)
}

// Statistics passes through, aggregates are evaluated at request time by contract.
func (t *Task) Statistics(ctx context.Context, userID string, asOf time.Time) (internal.TaskStatistics, error) {
	return t.orig.Statistics(ctx, userID, asOf)
}

// BulkUpdateStatus flushes nothing it can enumerate cheaply, so it drops the affected
// keys one by one. Records that didn't change simply expire early.
func (t *Task) BulkUpdateStatus(ctx context.Context, userID string, ids []string, status internal.Status) (int64, error) {
	defer newOTELSpan(ctx, "Task.BulkUpdateStatus").End()

	count, err := t.orig.BulkUpdateStatus(ctx, userID, ids, status)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		deleteTask(ctx, t.client, taskKey(userID, id))
	}

	return count, nil
}
