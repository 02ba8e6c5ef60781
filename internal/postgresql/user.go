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

const userColumns = "id, email, first_name, last_name, password_hash, is_active, is_staff, date_joined"

// User represents the repository used for interacting with User records.
type User struct {
	pool *pgxpool.Pool
}

// NewUser instantiates the User repository.
func NewUser(pool *pgxpool.Pool) *User {
	return &User{
		pool: pool,
	}
}

// Create inserts a new user. Emails are unique, a duplicate is reported as a field
// validation error rather than a storage error.
func (u *User) Create(ctx context.Context, user internal.User) (internal.User, error) {
	defer newOTELSpan(ctx, "User.Create").End()

	query := `INSERT INTO users (email, first_name, last_name, password_hash, is_active, is_staff)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, date_joined`

	var id uuid.UUID

	row := u.pool.QueryRow(ctx, query,
		user.Email,
		user.FirstName,
		user.LastName,
		user.PasswordHash,
		user.IsActive,
		user.IsStaff)

	if err := row.Scan(&id, &user.DateJoined); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return internal.User{}, internal.NewInvalidFieldError("email", "a user with this email already exists")
		}

		return internal.User{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "row.Scan")
	}

	user.ID = id.String()

	return user, nil
}

// Find returns the user with the given id.
func (u *User) Find(ctx context.Context, id string) (internal.User, error) {
	defer newOTELSpan(ctx, "User.Find").End()

	userID, err := parseID(id)
	if err != nil {
		return internal.User{}, err
	}

	return u.find(ctx, "id = $1", userID)
}

// FindByEmail returns the user registered with the given email.
func (u *User) FindByEmail(ctx context.Context, email string) (internal.User, error) {
	defer newOTELSpan(ctx, "User.FindByEmail").End()

	return u.find(ctx, "lower(email) = lower($1)", email)
}

func (u *User) find(ctx context.Context, cond string, arg interface{}) (internal.User, error) {
	var rec db.Users

	query := "SELECT " + userColumns + " FROM users WHERE " + cond

	err := u.pool.QueryRow(ctx, query, arg).Scan(
		&rec.ID,
		&rec.Email,
		&rec.FirstName,
		&rec.LastName,
		&rec.PasswordHash,
		&rec.IsActive,
		&rec.IsStaff,
		&rec.DateJoined)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.User{}, internal.WrapErrorf(err, internal.ErrorCodeNotFound, "user not found")
		}

		return internal.User{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "row.Scan")
	}

	return internal.User{
		ID:           rec.ID.String(),
		Email:        rec.Email,
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		PasswordHash: rec.PasswordHash,
		IsActive:     rec.IsActive,
		IsStaff:      rec.IsStaff,
		DateJoined:   rec.DateJoined,
	}, nil
}
