package service

import (
	"context"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanLimbu/tasks-api/internal"
)

const minPasswordLength = 8

// UserRepository defines the datastore handling persisting User records.
type UserRepository interface {
	Create(ctx context.Context, user internal.User) (internal.User, error)
	Find(ctx context.Context, id string) (internal.User, error)
	FindByEmail(ctx context.Context, email string) (internal.User, error)
}

// User defines the application service in charge of registering users.
type User struct {
	logger *zap.Logger
	repo   UserRepository
}

// NewUser ...
func NewUser(logger *zap.Logger, repo UserRepository) *User {
	return &User{
		logger: logger,
		repo:   repo,
	}
}

// RegisterParams defines the fields accepted when registering a user.
type RegisterParams struct {
	Email           string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
}

// Register creates a new active user. The password is stored only as a bcrypt hash.
func (u *User) Register(ctx context.Context, params RegisterParams) (internal.User, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "User.Register")
	defer span.End()

	if len(params.Password) < minPasswordLength {
		return internal.User{}, internal.NewInvalidFieldError("password", "password must be at least 8 characters long")
	}

	if params.Password != params.PasswordConfirm {
		return internal.User{}, internal.WrapErrorf(
			validation.Errors{"password": errors.New("password fields did not match")},
			internal.ErrorCodeInvalidArgument, "password mismatch")
	}

	user := internal.User{
		Email:     params.Email,
		FirstName: params.FirstName,
		LastName:  params.LastName,
		IsActive:  true,
	}

	if err := user.Validate(); err != nil {
		return internal.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return internal.User{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "bcrypt.GenerateFromPassword")
	}

	user.PasswordHash = string(hash)

	user, err = u.repo.Create(ctx, user)
	if err != nil {
		return internal.User{}, err
	}

	u.logger.Info("user registered", zap.String("email", user.Email))

	return user, nil
}
