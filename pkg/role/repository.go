package role

import "context"

// RoleRepository defines the storage operations for roles.
type RoleRepository interface {
	GetRole(ctx context.Context, name string) (Role, error)
	FindRoles(ctx context.Context) ([]Role, error)
	CreateRole(ctx context.Context, role Role) error
	DeleteRole(ctx context.Context, name string) error
}
