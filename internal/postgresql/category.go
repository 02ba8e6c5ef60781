package postgresql

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sanLimbu/tasks-api/internal"
	"github.com/sanLimbu/tasks-api/internal/postgresql/db"
)

const pgUniqueViolation = "23505"

// Category represents the repository used for interacting with Category records.
type Category struct {
	pool *pgxpool.Pool
}

// NewCategory instantiates the Category repository.
func NewCategory(pool *pgxpool.Pool) *Category {
	return &Category{
		pool: pool,
	}
}

// Create inserts a new category. A concurrent duplicate name slips past the service
// pre-check and surfaces here as a unique violation, reported the same way.
func (c *Category) Create(ctx context.Context, category internal.Category) (internal.Category, error) {
	defer newOTELSpan(ctx, "Category.Create").End()

	userID, err := parseID(category.UserID)
	if err != nil {
		return internal.Category{}, err
	}

	query := "INSERT INTO categories (name, color, user_id) VALUES ($1, $2, $3) RETURNING id"

	var id uuid.UUID

	if err := c.pool.QueryRow(ctx, query, category.Name, category.Color, userID).Scan(&id); err != nil {
		return internal.Category{}, convertCategoryError(err)
	}

	category.ID = id.String()

	return category, nil
}

// Find returns the category with the given id when it belongs to userID.
func (c *Category) Find(ctx context.Context, userID, id string) (internal.Category, error) {
	defer newOTELSpan(ctx, "Category.Find").End()

	ownerID, err := parseID(userID)
	if err != nil {
		return internal.Category{}, err
	}

	categoryID, err := parseID(id)
	if err != nil {
		return internal.Category{}, err
	}

	query := "SELECT id, name, color, user_id FROM categories WHERE id = $1 AND user_id = $2"

	var rec db.Categories

	err = c.pool.QueryRow(ctx, query, categoryID, ownerID).Scan(&rec.ID, &rec.Name, &rec.Color, &rec.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.Category{}, internal.WrapErrorf(err, internal.ErrorCodeNotFound, "category not found")
		}

		return internal.Category{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "row.Scan")
	}

	return convertCategory(rec), nil
}

// List returns all of userID's categories ordered by name.
func (c *Category) List(ctx context.Context, userID string) ([]internal.Category, error) {
	defer newOTELSpan(ctx, "Category.List").End()

	ownerID, err := parseID(userID)
	if err != nil {
		return nil, err
	}

	query := "SELECT id, name, color, user_id FROM categories WHERE user_id = $1 ORDER BY name, id"

	rows, err := c.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Query")
	}
	defer rows.Close()

	var categories []internal.Category

	for rows.Next() {
		var rec db.Categories

		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Color, &rec.UserID); err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "rows.Scan")
		}

		categories = append(categories, convertCategory(rec))
	}

	if err := rows.Err(); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "rows.Err")
	}

	return categories, nil
}

// Update renames or recolors the category when it belongs to category.UserID.
func (c *Category) Update(ctx context.Context, category internal.Category) error {
	defer newOTELSpan(ctx, "Category.Update").End()

	ownerID, err := parseID(category.UserID)
	if err != nil {
		return err
	}

	categoryID, err := parseID(category.ID)
	if err != nil {
		return err
	}

	query := "UPDATE categories SET name = $1, color = $2 WHERE id = $3 AND user_id = $4"

	tag, err := c.pool.Exec(ctx, query, category.Name, category.Color, categoryID, ownerID)
	if err != nil {
		return convertCategoryError(err)
	}

	if tag.RowsAffected() == 0 {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "category not found")
	}

	return nil
}

// Delete removes the category. Tasks referencing it keep existing, the schema clears
// their reference (ON DELETE SET NULL).
func (c *Category) Delete(ctx context.Context, userID, id string) error {
	defer newOTELSpan(ctx, "Category.Delete").End()

	ownerID, err := parseID(userID)
	if err != nil {
		return err
	}

	categoryID, err := parseID(id)
	if err != nil {
		return err
	}

	tag, err := c.pool.Exec(ctx, "DELETE FROM categories WHERE id = $1 AND user_id = $2", categoryID, ownerID)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Exec")
	}

	if tag.RowsAffected() == 0 {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "category not found")
	}

	return nil
}

// ExistsWithName reports whether userID already has a category with this name, compared
// case-insensitively. excludeID skips the record being updated.
func (c *Category) ExistsWithName(ctx context.Context, userID, name, excludeID string) (bool, error) {
	defer newOTELSpan(ctx, "Category.ExistsWithName").End()

	ownerID, err := parseID(userID)
	if err != nil {
		return false, err
	}

	query := "SELECT EXISTS (SELECT 1 FROM categories WHERE user_id = $1 AND lower(name) = lower($2)"
	args := []interface{}{ownerID, name}

	if excludeID != "" {
		categoryID, err := parseID(excludeID)
		if err != nil {
			return false, err
		}

		query += " AND id <> $3"
		args = append(args, categoryID)
	}

	query += ")"

	var exists bool

	if err := c.pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "row.Scan")
	}

	return exists, nil
}

func convertCategory(rec db.Categories) internal.Category {
	return internal.Category{
		ID:     rec.ID.String(),
		Name:   rec.Name,
		Color:  rec.Color,
		UserID: rec.UserID.String(),
	}
}

func convertCategoryError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return internal.NewInvalidFieldError("name", "you already have a category with this name")
	}

	return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Exec")
}
