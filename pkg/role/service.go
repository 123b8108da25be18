package role

import (
	"context"
	"errors"
)

var ErrEmptyRoleName = errors.New("role name cannot be empty")

// RoleService provides methods for role management and resolution.
type RoleService struct {
	repo RoleRepository
}

func NewRoleService(repo RoleRepository) *RoleService {
	return &RoleService{
		repo: repo,
	}
}

// ResolveRole resolves a role name to its definition. Returns
// ErrRoleNotFound for unknown names.
func (s *RoleService) ResolveRole(ctx context.Context, name string) (Role, error) {
	if name == "" {
		return Role{}, ErrEmptyRoleName
	}
	return s.repo.GetRole(ctx, name)
}

// FindRoles returns all registered roles.
func (s *RoleService) FindRoles(ctx context.Context) ([]Role, error) {
	return s.repo.FindRoles(ctx)
}

// CreateRole adds a new role.
func (s *RoleService) CreateRole(ctx context.Context, role Role) error {
	if role.Name == "" {
		return ErrEmptyRoleName
	}
	return s.repo.CreateRole(ctx, role)
}

// DeleteRole removes a role.
func (s *RoleService) DeleteRole(ctx context.Context, name string) error {
	if name == "" {
		return ErrEmptyRoleName
	}
	return s.repo.DeleteRole(ctx, name)
}

// Capabilities returns the union of the capability grants of the given
// role names. Unknown roles contribute nothing.
func (s *RoleService) Capabilities(ctx context.Context, names []string) map[string]bool {
	caps := make(map[string]bool)
	for _, name := range names {
		role, err := s.repo.GetRole(ctx, name)
		if err != nil {
			continue
		}
		for grant, granted := range role.Capabilities {
			if granted {
				caps[grant] = true
			}
		}
	}
	return caps
}
