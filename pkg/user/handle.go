package user

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/tendant/simple-user-api/pkg/apierror"
)

// Handle handles HTTP requests for the user resource.
type Handle struct {
	userService *UserService
}

// NewHandle creates a new user handler.
func NewHandle(userService *UserService) *Handle {
	return &Handle{
		userService: userService,
	}
}

// UserRequest is the JSON body for create and update. Pointer fields
// distinguish absent keys from empty values, which is what gives the
// API its sparse-update semantics.
type UserRequest struct {
	ID          int64   `json:"id,omitempty"`
	Username    *string `json:"username,omitempty"`
	Password    *string `json:"password,omitempty"`
	Name        *string `json:"name,omitempty"`
	FirstName   *string `json:"first_name,omitempty"`
	LastName    *string `json:"last_name,omitempty"`
	Nickname    *string `json:"nickname,omitempty"`
	Slug        *string `json:"slug,omitempty"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
	Email       *string `json:"email,omitempty"`
	Role        *string `json:"role,omitempty"`
}

// RegisterRoutes registers the user resource routes.
func (h *Handle) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.UpdateUser)
		r.Delete("/{id}", h.DeleteUser)
	})
}

// ListUsers handles GET /users.
func (h *Handle) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := UserQuery{
		Search:  q.Get("search"),
		Role:    q.Get("role"),
		OrderBy: q.Get("orderby"),
		Order:   q.Get("order"),
	}
	if perPage := q.Get("per_page"); perPage != "" {
		if n, err := strconv.Atoi(perPage); err == nil {
			filter.Number = n
		}
	}

	page := 1
	if p := q.Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			page = n
		}
	}

	users, err := h.userService.List(r.Context(), CallerFromRequest(r),
		filter, requestContext(r, ContextView), page)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, users)
}

// GetUser handles GET /users/{id}.
func (h *Handle) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	shaped, err := h.userService.Get(r.Context(), CallerFromRequest(r),
		id, requestContext(r, ContextView))
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, shaped)
}

// CreateUser handles POST /users.
func (h *Handle) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, apierror.BadRequest(apierror.CodeMissingParam, "unable to parse body"))
		return
	}

	params := UserParams{}
	copier.Copy(&params, &req)

	shaped, err := h.userService.Create(r.Context(), CallerFromRequest(r),
		params, requestContext(r, ContextEdit))
	if err != nil {
		renderError(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/users/%v", shaped["id"]))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, shaped)
}

// UpdateUser handles PUT /users/{id}.
func (h *Handle) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	var req UserRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, apierror.BadRequest(apierror.CodeMissingParam, "unable to parse body"))
		return
	}

	params := UserParams{}
	copier.Copy(&params, &req)

	shaped, err := h.userService.Update(r.Context(), CallerFromRequest(r), id, params)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, shaped)
}

// DeleteUser handles DELETE /users/{id}.
func (h *Handle) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		renderError(w, r, err)
		return
	}

	q := r.URL.Query()
	force := q.Get("force") == "true" || q.Get("force") == "1"

	var reassign *int64
	if raw := q.Get("reassign"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			renderError(w, r, apierror.BadRequest(apierror.CodeInvalidReassign, "Invalid user ID."))
			return
		}
		reassign = &n
	}

	result, err := h.userService.Delete(r.Context(), CallerFromRequest(r), id, force, reassign)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}

// userID parses the {id} route parameter. A non-numeric id can never
// match a user, so it surfaces as json_invalid_user.
func userID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.NotFound(apierror.CodeInvalidUser, "Invalid user.")
	}
	return id, nil
}

// requestContext reads the context query parameter, falling back to the
// operation default. Unknown values pass through so the permission
// check can reject them with json_error_unknown_context.
func requestContext(r *http.Request, fallback Context) Context {
	if raw := r.URL.Query().Get("context"); raw != "" {
		return Context(raw)
	}
	return fallback
}

func renderError(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := apierror.FromError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", r.URL.Path, "err", err)
	}
	render.Status(r, apiErr.Status)
	render.JSON(w, r, apiErr)
}
