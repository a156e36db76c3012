package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleUser, ParseRole(" User "))
	assert.Equal(t, RoleGuest, ParseRole("GUEST"))
	assert.Equal(t, RoleGuest, ParseRole("superuser"))
	assert.Equal(t, RoleGuest, ParseRole(""))
}

func TestGrantedAuthorities(t *testing.T) {
	t.Run("admin expands to all admin permissions plus role marker", func(t *testing.T) {
		authorities := GrantedAuthorities(RoleAdmin)
		require.ElementsMatch(t, []string{
			PermAdminCreate, PermAdminRead, PermAdminUpdate, PermAdminDelete, "ROLE_ADMIN",
		}, authorities)
	})

	t.Run("user expands to user permissions plus role marker", func(t *testing.T) {
		authorities := GrantedAuthorities(RoleUser)
		require.ElementsMatch(t, []string{PermUserCreate, PermUserRead, "ROLE_USER"}, authorities)
	})

	t.Run("guest expands to read plus role marker", func(t *testing.T) {
		authorities := GrantedAuthorities(RoleGuest)
		require.ElementsMatch(t, []string{PermGuestRead, "ROLE_GUEST"}, authorities)
	})

	t.Run("unknown role falls back to guest", func(t *testing.T) {
		authorities := GrantedAuthorities(Role("MYSTERY"))
		require.ElementsMatch(t, []string{PermGuestRead, "ROLE_GUEST"}, authorities)
	})
}

func TestHasAuthority(t *testing.T) {
	authorities := GrantedAuthorities(RoleUser)
	assert.True(t, HasAuthority(authorities, PermUserRead))
	assert.False(t, HasAuthority(authorities, PermAdminDelete))
	assert.False(t, HasAuthority(nil, PermGuestRead))
}
