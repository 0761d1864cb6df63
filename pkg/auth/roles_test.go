package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuperAdminHasEveryPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleSuperAdmin, "manage_users"))
	assert.True(t, HasPermission(RoleSuperAdmin, "anything_at_all"))
}

func TestAdminPermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, "manage_users"))
	assert.True(t, HasPermission(RoleAdmin, "manage_content"))
	assert.True(t, HasPermission(RoleAdmin, "view_analytics"))
	assert.False(t, HasPermission(RoleAdmin, "edit_profile"))
}

func TestUserPermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleUser, "view_content"))
	assert.True(t, HasPermission(RoleUser, "edit_profile"))
	assert.False(t, HasPermission(RoleUser, "manage_users"))
}

func TestUnknownRoleGrantsNothing(t *testing.T) {
	assert.False(t, HasPermission("moderator", "view_content"))
	assert.False(t, HasPermission("", "view_content"))
}

func TestRoleHierarchy(t *testing.T) {
	assert.True(t, HasHigherRole(RoleSuperAdmin, RoleAdmin))
	assert.True(t, HasHigherRole(RoleAdmin, RoleUser))
	assert.False(t, HasHigherRole(RoleUser, RoleAdmin))
	assert.False(t, HasHigherRole(RoleAdmin, RoleAdmin))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleUser))
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleSuperAdmin))
	assert.False(t, ValidRole("owner"))
}

func TestGetRole(t *testing.T) {
	info, ok := GetRole(RoleAdmin)
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, info.Name)
	assert.NotEmpty(t, info.Permissions)

	_, ok = GetRole("owner")
	assert.False(t, ok)
}
