package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want Role
	}{
		{"admin", RoleAdmin},
		{"ADMIN", RoleAdmin},
		{" admin ", RoleAdmin},
		{"authorized", RoleAuthorized},
		{"authorised", RoleAuthorized},
		{"user", RoleUser},
		{"", RoleUser},
		{"superuser", RoleUser},
		{"root", RoleUser},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseRole(tc.in), "input %q", tc.in)
	}
}

func TestRoleAtLeast(t *testing.T) {
	t.Parallel()

	assert.True(t, RoleAdmin.AtLeast(RoleAuthorized))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.True(t, RoleAuthorized.AtLeast(RoleUser))
	assert.False(t, RoleUser.AtLeast(RoleAuthorized))
	assert.False(t, RoleAuthorized.AtLeast(RoleAdmin))

	// An unknown role never outranks anything.
	assert.False(t, Role("mystery").AtLeast(RoleAuthorized))
}
