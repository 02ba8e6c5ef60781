package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanLimbu/tasks-api/internal"
)

// SessionRepository defines the datastore handling opaque session tokens.
type SessionRepository interface {
	Create(ctx context.Context, userID string) (string, error)
	Find(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// Auth defines the application service yielding the authenticated principal for a
// request, or signaling "unauthenticated".
type Auth struct {
	logger   *zap.Logger
	users    UserRepository
	sessions SessionRepository
}

// NewAuth ...
func NewAuth(logger *zap.Logger, users UserRepository, sessions SessionRepository) *Auth {
	return &Auth{
		logger:   logger,
		users:    users,
		sessions: sessions,
	}
}

// Login verifies the credentials and issues an opaque session token. Unknown emails
// and wrong passwords are indistinguishable to the caller.
func (a *Auth) Login(ctx context.Context, email, password string) (string, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Auth.Login")
	defer span.End()

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		var ierr *internal.Error
		if errors.As(err, &ierr) && ierr.Code() == internal.ErrorCodeNotFound {
			return "", internal.NewErrorf(internal.ErrorCodeUnauthorized, "invalid credentials")
		}

		return "", err
	}

	if !user.IsActive {
		return "", internal.NewErrorf(internal.ErrorCodeUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", internal.NewErrorf(internal.ErrorCodeUnauthorized, "invalid credentials")
	}

	token, err := a.sessions.Create(ctx, user.ID)
	if err != nil {
		return "", err
	}

	a.logger.Info("login", zap.String("user_id", user.ID))

	return token, nil
}

// Logout invalidates a session token. Unknown tokens are not an error.
func (a *Auth) Logout(ctx context.Context, token string) error {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Auth.Logout")
	defer span.End()

	return a.sessions.Delete(ctx, token)
}

// Principal resolves a session token to the authenticated user.
func (a *Auth) Principal(ctx context.Context, token string) (internal.User, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Auth.Principal")
	defer span.End()

	userID, err := a.sessions.Find(ctx, token)
	if err != nil {
		return internal.User{}, internal.WrapErrorf(err, internal.ErrorCodeUnauthorized, "sessions.Find")
	}

	user, err := a.users.Find(ctx, userID)
	if err != nil {
		return internal.User{}, internal.WrapErrorf(err, internal.ErrorCodeUnauthorized, "users.Find")
	}

	if !user.IsActive {
		return internal.User{}, internal.NewErrorf(internal.ErrorCodeUnauthorized, "inactive user")
	}

	return user, nil
}
