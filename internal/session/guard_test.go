package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
)

func TestGuard(t *testing.T) {
	member := &Identity{ID: 1, Email: "m@iiitd.ac.in", Role: domain.RoleAuthorized}
	admin := &Identity{ID: 2, Email: "a@iiitd.ac.in", Role: domain.RoleAdmin}

	cases := []struct {
		name     string
		session  Session
		required domain.Role
		want     Decision
	}{
		{"loading blocks everything", Session{Loading: true}, domain.RoleUser, DecisionLoading},
		{"loading blocks even admin routes", Session{Loading: true, User: admin}, domain.RoleAdmin, DecisionLoading},
		{"anonymous redirected", Session{}, domain.RoleUser, DecisionRedirectToLogin},
		{"member allowed at own level", Session{User: member}, domain.RoleAuthorized, DecisionAllow},
		{"member allowed below own level", Session{User: member}, domain.RoleUser, DecisionAllow},
		{"member denied admin route", Session{User: member}, domain.RoleAdmin, DecisionDeny},
		{"admin allowed everywhere", Session{User: admin}, domain.RoleAdmin, DecisionAllow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Guard(tc.session, "/admin/articles", tc.required)
			assert.Equal(t, tc.want, got.Decision)
		})
	}
}

// A signed-in user with too low a role must get a denial, not a login
// redirect; only an anonymous user is sent to login.
func TestGuardDenyIsNotRedirect(t *testing.T) {
	member := &Identity{ID: 1, Role: domain.RoleAuthorized}

	denied := Guard(Session{User: member}, "/admin/audit", domain.RoleAdmin)
	assert.Equal(t, DecisionDeny, denied.Decision)
	assert.Empty(t, denied.ReturnPath)

	redirected := Guard(Session{}, "/admin/audit", domain.RoleAdmin)
	assert.Equal(t, DecisionRedirectToLogin, redirected.Decision)
	assert.Equal(t, "/admin/audit", redirected.ReturnPath)
}
