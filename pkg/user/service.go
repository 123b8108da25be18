package user

import (
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/tendant/simple-user-api/pkg/apierror"
	"github.com/tendant/simple-user-api/pkg/role"
)

const defaultPageSize = 10

// UserService translates user CRUD requests into calls against the
// identity store and shapes the results by context.
type UserService struct {
	repo  UserRepository
	roles *role.RoleService
	hooks *Hooks
}

// NewUserService creates a new user service.
func NewUserService(repo UserRepository, roles *role.RoleService) *UserService {
	return &UserService{
		repo:  repo,
		roles: roles,
		hooks: NewHooks(),
	}
}

// Hooks returns the callback registration point of this service.
func (s *UserService) Hooks() *Hooks {
	return s.hooks
}

// Lookup resolves a user by id. Returns a 404 json_invalid_user error
// if absent, regardless of caller identity.
func (s *UserService) Lookup(ctx context.Context, id int64) (User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, apierror.NotFound(apierror.CodeInvalidUser, "Invalid user.")
		}
		return User{}, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return u, nil
}

// Get returns a single user shaped for the requested context, after the
// context permission check.
func (s *UserService) Get(ctx context.Context, caller Caller, id int64, viewContext Context) (Shaped, error) {
	u, err := s.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkContextPermission(ctx, caller, u.ID, viewContext); err != nil {
		return nil, err
	}
	return s.shape(ctx, u, viewContext), nil
}

// List returns a page of users shaped for the requested context. Rows
// are individually re-fetched and run through the same permission and
// shaping logic as Get, so list and single views can never disagree on
// field visibility.
func (s *UserService) List(ctx context.Context, caller Caller, filter UserQuery, viewContext Context, page int) ([]Shaped, error) {
	if !s.callerCan(ctx, caller, "list_users") {
		return nil, apierror.Forbidden(apierror.CodeCannotList, "Sorry, you are not allowed to list users.")
	}

	query := filter
	if query.OrderBy == "" {
		query.OrderBy = "username"
	}
	if query.Order == "" {
		query.Order = "asc"
	}
	s.hooks.applyQuery(&query)

	if query.Number <= 0 {
		query.Number = defaultPageSize
	}
	if page < 1 {
		page = 1
	}
	query.Offset = (page - 1) * query.Number

	users, err := s.repo.FindUsers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}

	shaped := make([]Shaped, 0, len(users))
	for _, u := range users {
		one, err := s.Get(ctx, caller, u.ID, viewContext)
		if err != nil {
			return nil, err
		}
		shaped = append(shaped, one)
	}
	return shaped, nil
}

// Create inserts a new user and returns it shaped at the given context.
// The caller must hold create_users, and must not supply an id.
func (s *UserService) Create(ctx context.Context, caller Caller, params UserParams, viewContext Context) (Shaped, error) {
	if !s.callerCan(ctx, caller, "create_users") {
		return nil, apierror.Forbidden(apierror.CodeCannotCreate, "Sorry, you are not allowed to create users.")
	}
	if params.ID != 0 {
		return nil, apierror.BadRequest(apierror.CodeUserExists, "Cannot create existing user.")
	}

	u, err := s.insertUser(ctx, caller, params)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, caller, u.ID, viewContext)
}

// Update applies a sparse mutation to an existing user and returns it
// shaped at edit context. The target id wins over any id in the input.
func (s *UserService) Update(ctx context.Context, caller Caller, id int64, params UserParams) (Shaped, error) {
	if _, err := s.Lookup(ctx, id); err != nil {
		return nil, err
	}
	if !s.callerCanFor(ctx, caller, "edit_user", id) {
		return nil, apierror.Forbidden(apierror.CodeCannotEdit, "Sorry, you are not allowed to edit this user.")
	}

	params.ID = id
	if _, err := s.insertUser(ctx, caller, params); err != nil {
		return nil, err
	}
	return s.Get(ctx, caller, id, ContextEdit)
}

// Delete removes a user, optionally reassigning authored content to
// another existing user first. force is forwarded to the store as-is.
func (s *UserService) Delete(ctx context.Context, caller Caller, id int64, force bool, reassign *int64) (DeleteResult, error) {
	if _, err := s.Lookup(ctx, id); err != nil {
		return DeleteResult{}, err
	}
	if !s.callerCanFor(ctx, caller, "delete_user", id) {
		return DeleteResult{}, apierror.Forbidden(apierror.CodeCannotDeleteFor, "Sorry, you are not allowed to delete this user.")
	}

	if reassign != nil {
		if *reassign == 0 || *reassign == id {
			return DeleteResult{}, apierror.BadRequest(apierror.CodeInvalidReassign, "Invalid user ID.")
		}
		if _, err := s.repo.GetUser(ctx, *reassign); err != nil {
			return DeleteResult{}, apierror.BadRequest(apierror.CodeInvalidReassign, "Invalid user ID.")
		}
	}

	if err := s.repo.DeleteUser(ctx, id, reassign); err != nil {
		slog.Error("Failed deleting user", "userId", id, "err", err)
		return DeleteResult{}, apierror.Internal(apierror.CodeCannotDelete, "The user cannot be deleted.")
	}
	_ = force

	return DeleteResult{Message: "Deleted user"}, nil
}

// checkContextPermission is the context decision table, evaluated in
// order: self-access first, then per-context capability requirements.
func (s *UserService) checkContextPermission(ctx context.Context, caller Caller, targetID int64, viewContext Context) error {
	switch viewContext {
	case ContextView, ContextViewPrivate, ContextEdit:
		if caller.IsAuthenticated() && caller.ID == targetID {
			return nil
		}
	}

	switch viewContext {
	case ContextView:
		if s.callerCan(ctx, caller, "edit_posts") {
			return nil
		}
		return apierror.Forbidden(apierror.CodeCannotView, "Sorry, you cannot view this user.")
	case ContextViewPrivate:
		if s.callerCan(ctx, caller, "list_users") {
			return nil
		}
		return apierror.Forbidden(apierror.CodeCannotView, "Sorry, you cannot view this user.")
	case ContextEdit:
		if s.callerCanFor(ctx, caller, "edit_user", targetID) {
			return nil
		}
		return apierror.Forbidden(apierror.CodeCannotEdit, "Sorry, you are not allowed to edit this user.")
	}

	return apierror.BadRequest(apierror.CodeUnknownContext, "Unknown context specified.")
}

// callerCan reports whether the caller's effective capability set
// contains cap.
func (s *UserService) callerCan(ctx context.Context, caller Caller, capability string) bool {
	if !caller.IsAuthenticated() {
		return false
	}
	if caller.ExtraCaps[capability] {
		return true
	}
	return s.roles.Capabilities(ctx, caller.Roles)[capability]
}

// callerCanFor checks a target-scoped capability. edit_user holds for
// the plural grant or for the caller's own id; delete_user only for the
// plural grant.
func (s *UserService) callerCanFor(ctx context.Context, caller Caller, capability string, targetID int64) bool {
	switch capability {
	case "edit_user":
		if caller.IsAuthenticated() && caller.ID == targetID {
			return true
		}
		return s.callerCan(ctx, caller, "edit_users")
	case "delete_user":
		return s.callerCan(ctx, caller, "delete_users")
	}
	return s.callerCan(ctx, caller, capability)
}

// shape selects the response fields for a user by context. Fields
// visible at view are a subset of view-private, which is a subset of
// edit.
func (s *UserService) shape(ctx context.Context, u User, viewContext Context) Shaped {
	fields := Shaped{
		"id":          u.ID,
		"name":        u.DisplayName,
		"slug":        u.Slug,
		"url":         u.URL,
		"avatar":      avatarURL(u.Email),
		"description": u.Description,
	}

	if viewContext == ContextViewPrivate || viewContext == ContextEdit {
		fields["username"] = u.Username
		fields["first_name"] = u.FirstName
		fields["last_name"] = u.LastName
		fields["nickname"] = u.Nickname
		fields["roles"] = u.Roles
		fields["capabilities"] = s.allCaps(ctx, u)
		fields["email"] = u.Email
	}

	if viewContext == ContextEdit {
		fields["extra_capabilities"] = u.ExtraCaps
		fields["registered"] = u.Registered.UTC().Format(time.RFC3339)
	}

	return fields
}

// allCaps is the user's full effective capability set: role grants plus
// the raw per-user grants.
func (s *UserService) allCaps(ctx context.Context, u User) map[string]bool {
	caps := s.roles.Capabilities(ctx, u.Roles)
	for name, granted := range u.ExtraCaps {
		if granted {
			caps[name] = true
		}
	}
	return caps
}

// insertUser is the shared insert-or-update delegate. Update iff
// params.ID is set; otherwise username, password and email are required,
// checked in that order.
func (s *UserService) insertUser(ctx context.Context, caller Caller, params UserParams) (User, error) {
	isUpdate := params.ID != 0

	if !isUpdate {
		required := []struct {
			name  string
			value *string
		}{
			{"username", params.Username},
			{"password", params.Password},
			{"email", params.Email},
		}
		for _, arg := range required {
			if arg.value == nil || *arg.value == "" {
				return User{}, apierror.BadRequest(apierror.CodeMissingParam,
					fmt.Sprintf("Missing parameter %s", arg.name))
			}
		}
	}

	// Validate the submitted URL, not the stored one: it must survive
	// sanitization unchanged.
	if params.URL != nil && *params.URL != "" {
		if sanitizeURL(*params.URL) != *params.URL {
			return User{}, apierror.BadRequest(apierror.CodeInvalidURL, "Invalid user URL.")
		}
	}

	if params.Role != nil && *params.Role != "" {
		if _, err := s.roles.ResolveRole(ctx, *params.Role); err != nil {
			return User{}, apierror.BadRequest(apierror.CodeInvalidRole, "Invalid role.")
		}
	}

	if err := s.hooks.applyPreInsert(ctx, &params, isUpdate); err != nil {
		var apiErr *apierror.Error
		if errors.As(err, &apiErr) {
			return User{}, apiErr
		}
		return User{}, apierror.BadRequest(apierror.CodeMissingParam, err.Error())
	}

	var u User
	var err error
	if isUpdate {
		u, err = s.repo.UpdateUser(ctx, params)
	} else {
		u, err = s.repo.CreateUser(ctx, params)
	}
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			return User{}, apierror.NotFound(apierror.CodeInvalidUser, "Invalid user.")
		case errors.Is(err, ErrUsernameTaken):
			return User{}, apierror.BadRequest(apierror.CodeUserExists, "Username already exists.")
		}
		return User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	s.hooks.notifyPostInsert(ctx, u, params, isUpdate)

	return u, nil
}

// sanitizeURL normalizes a URL the way the API stores them: trimmed,
// http(s) only, with a parseable structure. Returns "" when the value
// cannot be a valid user URL.
func sanitizeURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return ""
	}
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

// avatarURL derives the avatar-resolving URL from the email without
// exposing the address itself.
func avatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=mm", hash)
}
