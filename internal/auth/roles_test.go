package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
	apperrors "github.com/iiitdCrypto/crypto-resource-manager/pkg/util"
)

type fakeGrants struct {
	perms map[int64][]*domain.Permission
	calls int
}

func (f *fakeGrants) ListByUser(_ context.Context, userID int64) ([]*domain.Permission, error) {
	f.calls++
	return f.perms[userID], nil
}

func TestGrantAllows(t *testing.T) {
	perms := []*domain.Permission{
		{UserID: 1, Resource: "articles", CanWrite: true},
		{UserID: 1, Resource: "events", CanWrite: false},
	}
	assert.True(t, GrantAllows(perms, "articles"))
	assert.False(t, GrantAllows(perms, "events"), "revoked grant must not allow")
	assert.False(t, GrantAllows(perms, "projects"))
	assert.False(t, GrantAllows(nil, "articles"))
}

func newGateApp(user *domain.User, gate fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Post("/write", func(c *fiber.Ctx) error {
		if user != nil {
			c.Locals(principalKey, user)
		}
		return c.Next()
	}, gate, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func TestRequireWriteAccess(t *testing.T) {
	grants := &fakeGrants{perms: map[int64][]*domain.Permission{
		2: {{UserID: 2, Resource: "articles", CanWrite: true}},
	}}

	t.Run("role alone admits without grant lookup", func(t *testing.T) {
		grants.calls = 0
		admin := &domain.User{ID: 1, Role: domain.RoleAdmin}
		app := newGateApp(admin, RequireWriteAccess(domain.RoleAdmin, "articles", grants))

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/write", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Zero(t, grants.calls)
	})

	t.Run("grant admits a user below the role", func(t *testing.T) {
		member := &domain.User{ID: 2, Role: domain.RoleUser}
		app := newGateApp(member, RequireWriteAccess(domain.RoleAdmin, "articles", grants))

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/write", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("grant on another resource does not carry over", func(t *testing.T) {
		member := &domain.User{ID: 2, Role: domain.RoleUser}
		app := newGateApp(member, RequireWriteAccess(domain.RoleAdmin, "events", grants))

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/write", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("no grant no role is forbidden", func(t *testing.T) {
		member := &domain.User{ID: 3, Role: domain.RoleAuthorized}
		app := newGateApp(member, RequireWriteAccess(domain.RoleAdmin, "articles", grants))

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/write", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		app := newGateApp(nil, RequireWriteAccess(domain.RoleAdmin, "articles", grants))

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/write", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
