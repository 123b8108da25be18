package role

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var (
	ErrRoleNotFound      = errors.New("role not found")
	ErrRoleAlreadyExists = errors.New("role already exists")
)

// InMemoryRoleRepository implements RoleRepository using in-memory storage.
type InMemoryRoleRepository struct {
	mu    sync.RWMutex
	roles map[string]Role
}

// NewInMemoryRoleRepository creates an empty in-memory role repository.
func NewInMemoryRoleRepository() *InMemoryRoleRepository {
	return &InMemoryRoleRepository{
		roles: make(map[string]Role),
	}
}

// NewInMemoryRoleRepositoryWithDefaults creates an in-memory role
// repository pre-seeded with the standard role tiers.
func NewInMemoryRoleRepositoryWithDefaults() *InMemoryRoleRepository {
	repo := NewInMemoryRoleRepository()
	for _, r := range DefaultRoles() {
		repo.roles[r.Name] = r
	}
	return repo
}

// GetRole gets a role by name.
func (r *InMemoryRoleRepository) GetRole(ctx context.Context, name string) (Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	role, ok := r.roles[name]
	if !ok {
		return Role{}, ErrRoleNotFound
	}
	return role, nil
}

// FindRoles returns all roles ordered by name.
func (r *InMemoryRoleRepository) FindRoles(ctx context.Context) ([]Role, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roles := make([]Role, 0, len(r.roles))
	for _, role := range r.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool {
		return roles[i].Name < roles[j].Name
	})
	return roles, nil
}

// CreateRole adds a new role.
func (r *InMemoryRoleRepository) CreateRole(ctx context.Context, role Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roles[role.Name]; ok {
		return ErrRoleAlreadyExists
	}
	r.roles[role.Name] = role
	return nil
}

// DeleteRole removes a role.
func (r *InMemoryRoleRepository) DeleteRole(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.roles[name]; !ok {
		return ErrRoleNotFound
	}
	delete(r.roles, name)
	return nil
}
