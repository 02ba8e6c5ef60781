package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sanLimbu/tasks-api/internal"
)

type fakeUserRepo struct {
	createFn      func(ctx context.Context, user internal.User) (internal.User, error)
	findFn        func(ctx context.Context, id string) (internal.User, error)
	findByEmailFn func(ctx context.Context, email string) (internal.User, error)
}

func (f *fakeUserRepo) Create(ctx context.Context, user internal.User) (internal.User, error) {
	return f.createFn(ctx, user)
}

func (f *fakeUserRepo) Find(ctx context.Context, id string) (internal.User, error) {
	return f.findFn(ctx, id)
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (internal.User, error) {
	return f.findByEmailFn(ctx, email)
}

type fakeSessionRepo struct {
	sessions map[string]string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[string]string{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, userID string) (string, error) {
	token := "token-" + userID
	f.sessions[token] = userID

	return token, nil
}

func (f *fakeSessionRepo) Find(_ context.Context, token string) (string, error) {
	userID, ok := f.sessions[token]
	if !ok {
		return "", internal.NewErrorf(internal.ErrorCodeNotFound, "unknown token")
	}

	return userID, nil
}

func (f *fakeSessionRepo) Delete(_ context.Context, token string) error {
	delete(f.sessions, token)

	return nil
}

func activeUser(t *testing.T, password string) internal.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %s", err)
	}

	return internal.User{
		ID:           "user-1",
		Email:        "jamie@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}
}

func TestAuth_Login(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials yield a usable token", func(t *testing.T) {
		t.Parallel()

		user := activeUser(t, "hunter2hunter2")

		users := &fakeUserRepo{
			findByEmailFn: func(context.Context, string) (internal.User, error) {
				return user, nil
			},
			findFn: func(context.Context, string) (internal.User, error) {
				return user, nil
			},
		}

		sessions := newFakeSessionRepo()
		auth := NewAuth(zap.NewNop(), users, sessions)

		token, err := auth.Login(context.Background(), "jamie@example.com", "hunter2hunter2")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		principal, err := auth.Principal(context.Background(), token)
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		if principal.ID != "user-1" {
			t.Fatalf("unexpected principal: %+v", principal)
		}
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		t.Parallel()

		user := activeUser(t, "hunter2hunter2")

		users := &fakeUserRepo{
			findByEmailFn: func(_ context.Context, email string) (internal.User, error) {
				if email == user.Email {
					return user, nil
				}

				return internal.User{}, internal.NewErrorf(internal.ErrorCodeNotFound, "not found")
			},
		}

		auth := NewAuth(zap.NewNop(), users, newFakeSessionRepo())

		_, errWrongPassword := auth.Login(context.Background(), user.Email, "wrong")
		_, errUnknownEmail := auth.Login(context.Background(), "nobody@example.com", "hunter2hunter2")

		if errorCode(errWrongPassword) != internal.ErrorCodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", errWrongPassword)
		}

		if errWrongPassword.Error() != errUnknownEmail.Error() {
			t.Fatalf("errors should not reveal which part failed: %q vs %q",
				errWrongPassword, errUnknownEmail)
		}
	})

	t.Run("inactive users cannot log in", func(t *testing.T) {
		t.Parallel()

		user := activeUser(t, "hunter2hunter2")
		user.IsActive = false

		users := &fakeUserRepo{
			findByEmailFn: func(context.Context, string) (internal.User, error) {
				return user, nil
			},
		}

		auth := NewAuth(zap.NewNop(), users, newFakeSessionRepo())

		_, err := auth.Login(context.Background(), user.Email, "hunter2hunter2")
		if errorCode(err) != internal.ErrorCodeUnauthorized {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})
}

func TestAuth_Logout(t *testing.T) {
	t.Parallel()

	user := activeUser(t, "hunter2hunter2")

	users := &fakeUserRepo{
		findByEmailFn: func(context.Context, string) (internal.User, error) {
			return user, nil
		},
		findFn: func(context.Context, string) (internal.User, error) {
			return user, nil
		},
	}

	sessions := newFakeSessionRepo()
	auth := NewAuth(zap.NewNop(), users, sessions)

	token, err := auth.Login(context.Background(), user.Email, "hunter2hunter2")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if err := auth.Logout(context.Background(), token); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if _, err := auth.Principal(context.Background(), token); errorCode(err) != internal.ErrorCodeUnauthorized {
		t.Fatalf("expected unauthorized after logout, got %v", err)
	}
}

func TestUser_Register(t *testing.T) {
	t.Parallel()

	t.Run("stores a hash, never the password", func(t *testing.T) {
		t.Parallel()

		var stored internal.User

		users := &fakeUserRepo{
			createFn: func(_ context.Context, user internal.User) (internal.User, error) {
				stored = user
				user.ID = "user-1"

				return user, nil
			},
		}

		svc := NewUser(zap.NewNop(), users)

		user, err := svc.Register(context.Background(), RegisterParams{
			Email:           "jamie@example.com",
			Password:        "hunter2hunter2",
			PasswordConfirm: "hunter2hunter2",
		})
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}

		if stored.PasswordHash == "hunter2hunter2" || stored.PasswordHash == "" {
			t.Fatal("expected a bcrypt hash")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2hunter2")); err != nil {
			t.Fatalf("hash does not verify: %s", err)
		}

		if !stored.IsActive {
			t.Fatal("new users should be active")
		}

		if user.ID != "user-1" {
			t.Fatalf("unexpected user: %+v", user)
		}
	})

	tests := []struct {
		name   string
		params RegisterParams
	}{
		{
			"short password",
			RegisterParams{Email: "jamie@example.com", Password: "short", PasswordConfirm: "short"},
		},
		{
			"password mismatch",
			RegisterParams{Email: "jamie@example.com", Password: "hunter2hunter2", PasswordConfirm: "hunter2hunter3"},
		},
		{
			"invalid email",
			RegisterParams{Email: "not-an-email", Password: "hunter2hunter2", PasswordConfirm: "hunter2hunter2"},
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run("rejects "+tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewUser(zap.NewNop(), &fakeUserRepo{})

			_, err := svc.Register(context.Background(), tt.params)
			if errorCode(err) != internal.ErrorCodeInvalidArgument {
				t.Fatalf("expected invalid argument, got %v", err)
			}
		})
	}
}
