package redis

import (
	"context"
	"errors"
	"time"

	rv8 "github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanLimbu/tasks-api/internal"
)

const otelName = "github.com/sanLimbu/tasks-api/internal/redis"

const sessionTTL = 24 * time.Hour

// Session stores opaque login tokens. Tokens are random, carry no claims, and expire
// server-side; the mapping token -> user id is the whole session.
type Session struct {
	client *rv8.Client
}

// NewSession instantiates the Session repository.
func NewSession(client *rv8.Client) *Session {
	return &Session{
		client: client,
	}
}

// Create issues a fresh token for userID.
func (s *Session) Create(ctx context.Context, userID string) (string, error) {
	defer newOTELSpan(ctx, "Session.Create").End()

	token := uuid.NewString()

	if err := s.client.Set(ctx, key(token), userID, sessionTTL).Err(); err != nil {
		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Set")
	}

	return token, nil
}

// Find resolves a token to its user id.
func (s *Session) Find(ctx context.Context, token string) (string, error) {
	defer newOTELSpan(ctx, "Session.Find").End()

	userID, err := s.client.Get(ctx, key(token)).Result()
	if err != nil {
		if errors.Is(err, rv8.Nil) {
			return "", internal.WrapErrorf(err, internal.ErrorCodeNotFound, "session not found")
		}

		return "", internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Get")
	}

	return userID, nil
}

// Delete invalidates a token.
func (s *Session) Delete(ctx context.Context, token string) error {
	defer newOTELSpan(ctx, "Session.Delete").End()

	if err := s.client.Del(ctx, key(token)).Err(); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "client.Del")
	}

	return nil
}

func key(token string) string {
	return "session:" + token
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemRedis)

	return span
}
