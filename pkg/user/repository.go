package user

import (
	"context"
	"errors"
)

// Common errors returned by UserRepository implementations.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// UserRepository is the injected identity store. It owns persistence,
// querying, password hashing and content reassignment; the service
// layer on top of it only validates, authorizes and shapes.
type UserRepository interface {
	// GetUser resolves a user by id. Returns ErrUserNotFound if absent.
	GetUser(ctx context.Context, id int64) (User, error)

	// FindUsers returns users matching the query, in query order, with
	// offset pagination applied. An empty result is not an error.
	FindUsers(ctx context.Context, query UserQuery) ([]User, error)

	// CreateUser inserts a new user from the given fields and returns
	// it with its assigned id. Absent fields stay unset.
	CreateUser(ctx context.Context, params UserParams) (User, error)

	// UpdateUser applies the present fields of params to the user
	// identified by params.ID. Absent fields are left untouched.
	UpdateUser(ctx context.Context, params UserParams) (User, error)

	// DeleteUser removes a user. When reassign is non-nil, content
	// authored by the user is re-pointed at that user id first.
	DeleteUser(ctx context.Context, id int64, reassign *int64) error
}
