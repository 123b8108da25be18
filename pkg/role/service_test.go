package role

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRole(t *testing.T) {
	ctx := context.Background()
	service := NewRoleService(NewInMemoryRoleRepositoryWithDefaults())

	tests := []struct {
		name     string
		roleName string
		wantErr  error
	}{
		{name: "known role", roleName: "author", wantErr: nil},
		{name: "administrator", roleName: "administrator", wantErr: nil},
		{name: "unknown role", roleName: "superhero", wantErr: ErrRoleNotFound},
		{name: "empty name", roleName: "", wantErr: ErrEmptyRoleName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			role, err := service.ResolveRole(ctx, tt.roleName)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.roleName, role.Name)
			assert.NotEmpty(t, role.Capabilities)
		})
	}
}

func TestCapabilitiesUnion(t *testing.T) {
	ctx := context.Background()
	service := NewRoleService(NewInMemoryRoleRepositoryWithDefaults())

	caps := service.Capabilities(ctx, []string{"subscriber", "author"})
	assert.True(t, caps["read"])
	assert.True(t, caps["edit_posts"])
	assert.True(t, caps["publish_posts"])
	assert.False(t, caps["list_users"])

	// Unknown roles contribute nothing.
	caps = service.Capabilities(ctx, []string{"nonexistent"})
	assert.Empty(t, caps)
}

func TestCreateAndDeleteRole(t *testing.T) {
	ctx := context.Background()
	service := NewRoleService(NewInMemoryRoleRepositoryWithDefaults())

	custom := Role{
		Name:         "moderator",
		Label:        "Moderator",
		Capabilities: map[string]bool{"edit_posts": true, "list_users": true},
	}
	require.NoError(t, service.CreateRole(ctx, custom))

	resolved, err := service.ResolveRole(ctx, "moderator")
	require.NoError(t, err)
	assert.True(t, resolved.Capabilities["list_users"])

	require.NoError(t, service.DeleteRole(ctx, "moderator"))
	_, err = service.ResolveRole(ctx, "moderator")
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestFindRolesOrdered(t *testing.T) {
	ctx := context.Background()
	service := NewRoleService(NewInMemoryRoleRepositoryWithDefaults())

	roles, err := service.FindRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 5)
	assert.Equal(t, "administrator", roles[0].Name)
	assert.Equal(t, "subscriber", roles[len(roles)-1].Name)
}
