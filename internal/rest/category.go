package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sanLimbu/tasks-api/internal"
)

// CategoryService ...
type CategoryService interface {
	Create(ctx context.Context, userID, name, color string) (internal.Category, error)
	Category(ctx context.Context, userID, id string) (internal.Category, error)
	List(ctx context.Context, userID string) ([]internal.Category, error)
	Update(ctx context.Context, userID, id string, name, color *string) (internal.Category, error)
	Delete(ctx context.Context, userID, id string) error
}

// CategoryHandler ...
type CategoryHandler struct {
	svc CategoryService
}

// NewCategoryHandler ...
func NewCategoryHandler(svc CategoryService) *CategoryHandler {
	return &CategoryHandler{
		svc: svc,
	}
}

// Register connects the handlers to the router.
func (c *CategoryHandler) Register(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", c.list)
		r.Post("/", c.create)
		r.Get("/{id}", c.category)
		r.Put("/{id}", c.update)
		r.Patch("/{id}", c.patch)
		r.Delete("/{id}", c.delete)
	})
}

// Category is the wire representation of a category.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// NewCategory ...
func NewCategory(category internal.Category) Category {
	return Category{
		ID:    category.ID,
		Name:  category.Name,
		Color: category.Color,
	}
}

// CreateCategoryRequest defines the request used for creating categories.
type CreateCategoryRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UpdateCategoryRequest defines the request used for updating categories, absent
// fields keep their stored values.
type UpdateCategoryRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (c *CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w,
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))

		return
	}
	defer r.Body.Close()

	category, err := c.svc.Create(r.Context(), user.ID, req.Name, req.Color)
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	renderResponse(w, NewCategory(category), http.StatusCreated)
}

func (c *CategoryHandler) category(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	category, err := c.svc.Category(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	renderResponse(w, NewCategory(category), http.StatusOK)
}

func (c *CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	categories, err := c.svc.List(r.Context(), user.ID)
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	res := make([]Category, 0, len(categories))
	for _, category := range categories {
		res = append(res, NewCategory(category))
	}

	renderResponse(w, res, http.StatusOK)
}

// update handles PUT, a full replacement of the mutable fields.
func (c *CategoryHandler) update(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w,
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))

		return
	}
	defer r.Body.Close()

	category, err := c.svc.Update(r.Context(), user.ID, chi.URLParam(r, "id"), &req.Name, &req.Color)
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	renderResponse(w, NewCategory(category), http.StatusOK)
}

func (c *CategoryHandler) patch(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w,
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))

		return
	}
	defer r.Body.Close()

	category, err := c.svc.Update(r.Context(), user.ID, chi.URLParam(r, "id"), req.Name, req.Color)
	if err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	renderResponse(w, NewCategory(category), http.StatusOK)
}

func (c *CategoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	user, _ := PrincipalFromContext(r.Context())

	if err := c.svc.Delete(r.Context(), user.ID, chi.URLParam(r, "id")); err != nil {
		renderErrorResponse(r.Context(), w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
