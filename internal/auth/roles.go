package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
	apperrors "github.com/iiitdCrypto/crypto-resource-manager/pkg/util"
)

// GrantSource lists per-resource write grants for a user.
type GrantSource interface {
	ListByUser(ctx context.Context, userID int64) ([]*domain.Permission, error)
}

// RequireRole ensures the authenticated user holds at least the given
// role. An authenticated caller lacking privilege gets 403, never a
// redirect; unauthenticated callers are rejected by AuthMiddleware first.
func RequireRole(minimum domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !user.Role.AtLeast(minimum) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin gates admin-only routes.
func RequireAdmin() fiber.Handler {
	return RequireRole(domain.RoleAdmin)
}

// RequireWriteAccess admits users holding at least the minimum role, or
// an explicit can_write grant on the named resource. Grants widen
// access; they never narrow what the role already allows.
func RequireWriteAccess(minimum domain.Role, resource string, grants GrantSource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if user.Role.AtLeast(minimum) {
			return c.Next()
		}
		perms, err := grants.ListByUser(c.UserContext(), user.ID)
		if err != nil {
			return apperrors.MapError(err)
		}
		if GrantAllows(perms, resource) {
			return c.Next()
		}
		return apperrors.NewForbidden("insufficient role")
	}
}

// GrantAllows reports whether perms carry a live write grant on resource.
func GrantAllows(perms []*domain.Permission, resource string) bool {
	for _, perm := range perms {
		if perm.Resource == resource && perm.CanWrite {
			return true
		}
	}
	return false
}
