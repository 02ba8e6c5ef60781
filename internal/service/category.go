package service

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sanLimbu/tasks-api/internal"
)

// CategoryRepository defines the datastore handling persisting Category records.
type CategoryRepository interface {
	Create(ctx context.Context, category internal.Category) (internal.Category, error)
	Find(ctx context.Context, userID, id string) (internal.Category, error)
	List(ctx context.Context, userID string) ([]internal.Category, error)
	Update(ctx context.Context, category internal.Category) error
	Delete(ctx context.Context, userID, id string) error
	ExistsWithName(ctx context.Context, userID, name, excludeID string) (bool, error)
}

// Category defines the application service in charge of interacting with Categories.
type Category struct {
	logger *zap.Logger
	repo   CategoryRepository
}

// NewCategory ...
func NewCategory(logger *zap.Logger, repo CategoryRepository) *Category {
	return &Category{
		logger: logger,
		repo:   repo,
	}
}

// Create stores a new category owned by userID. Names are unique per owner ignoring
// case; different owners may freely share a name.
func (c *Category) Create(ctx context.Context, userID, name, color string) (internal.Category, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Category.Create")
	defer span.End()

	category := internal.Category{
		Name:   name,
		Color:  color,
		UserID: userID,
	}.Normalize()

	if err := category.Validate(); err != nil {
		return internal.Category{}, err
	}

	if err := c.checkDuplicateName(ctx, userID, category.Name, ""); err != nil {
		return internal.Category{}, err
	}

	return c.repo.Create(ctx, category)
}

// Category gets an existing Category from the datastore.
func (c *Category) Category(ctx context.Context, userID, id string) (internal.Category, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Category.Category")
	defer span.End()

	return c.repo.Find(ctx, userID, id)
}

// List returns all of userID's categories ordered by name.
func (c *Category) List(ctx context.Context, userID string) ([]internal.Category, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Category.List")
	defer span.End()

	return c.repo.List(ctx, userID)
}

// Update renames or recolors an existing category. Nil fields keep their stored values.
func (c *Category) Update(ctx context.Context, userID, id string, name, color *string) (internal.Category, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Category.Update")
	defer span.End()

	category, err := c.repo.Find(ctx, userID, id)
	if err != nil {
		return internal.Category{}, err
	}

	if name != nil {
		category.Name = *name
	}

	if color != nil {
		category.Color = *color
	}

	category = category.Normalize()

	if err := category.Validate(); err != nil {
		return internal.Category{}, err
	}

	if err := c.checkDuplicateName(ctx, userID, category.Name, id); err != nil {
		return internal.Category{}, err
	}

	if err := c.repo.Update(ctx, category); err != nil {
		return internal.Category{}, err
	}

	return category, nil
}

// Delete removes an existing category. Its tasks survive with the reference cleared.
func (c *Category) Delete(ctx context.Context, userID, id string) error {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Category.Delete")
	defer span.End()

	return c.repo.Delete(ctx, userID, id)
}

func (c *Category) checkDuplicateName(ctx context.Context, userID, name, excludeID string) error {
	exists, err := c.repo.ExistsWithName(ctx, userID, name, excludeID)
	if err != nil {
		return err
	}

	if exists {
		return internal.NewInvalidFieldError("name", "you already have a category with this name")
	}

	return nil
}
