package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/sanLimbu/tasks-api/internal"
)

// AuthService yields the authenticated principal for a token, or signals
// "unauthenticated".
type AuthService interface {
	Principal(ctx context.Context, token string) (internal.User, error)
}

type principalKey struct{}

// Authenticator resolves the bearer token on every request and stores the principal in
// the context. Requests without a valid token never reach the wrapped handler.
func Authenticator(auth AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				renderErrorResponse(r.Context(), w,
					internal.NewErrorf(internal.ErrorCodeUnauthorized, "authentication required"))

				return
			}

			user, err := auth.Principal(r.Context(), token)
			if err != nil {
				renderErrorResponse(r.Context(), w, err)

				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, user)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the authenticated user stored by Authenticator.
func PrincipalFromContext(ctx context.Context) (internal.User, bool) {
	user, ok := ctx.Value(principalKey{}).(internal.User)

	return user, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")

	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}

	return strings.TrimSpace(token)
}
