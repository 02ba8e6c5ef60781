package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sanLimbu/tasks-api/internal"
	"github.com/sanLimbu/tasks-api/internal/service"
)

// UserService ...
type UserService interface {
	Register(ctx context.Context, params service.RegisterParams) (internal.User, error)
}

// LoginService issues and invalidates session tokens.
type LoginService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
}

// UserHandler ...
type UserHandler struct {
	svc  UserService
	auth LoginService
}

// NewUserHandler ...
func NewUserHandler(svc UserService, auth LoginService) *UserHandler {
	return &UserHandler{
		svc:  svc,
		auth: auth,
	}
}

// Register connects the handlers to the router. Registration and login are the only
// endpoints reachable without a token.
func (u *UserHandler) Register(r chi.Router) {
	r.Post("/users", u.register)
	r.Post("/users/login", u.login)
	r.Post("/users/logout", u.logout)
}

// User is the wire representation of a user. The password hash never leaves the
// server.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NewUser ...
func NewUser(user internal.User) User {
	return User{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}
}

// RegisterUserRequest defines the request used for registering users.
type RegisterUserRequest struct {
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// LoginRequest defines the request used for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the opaque session token.
type LoginResponse struct {
	Token string `json:"token"`
}

func (u *UserHandler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w,
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))

		return
	}
	defer r.Body.Close()

	user, err := u.svc.Register(r.Context(), service.RegisterParams{
		Email:           req.Email,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Password:        req.Password,
		PasswordConfirm: req.PasswordConfirm,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	renderResponse(w, NewUser(user), http.StatusCreated)
}

func (u *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w,
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))

		return
	}
	defer r.Body.Close()

	token, err := u.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	renderResponse(w, LoginResponse{Token: token}, http.StatusOK)
}

func (u *UserHandler) logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		renderErrorResponse(r.Context(), w,
			internal.NewErrorf(internal.ErrorCodeUnauthorized, "authentication required"))

		return
	}

	if err := u.auth.Logout(r.Context(), token); err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
