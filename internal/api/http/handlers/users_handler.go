package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/api/dto"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/auth"
	apperrors "github.com/iiitdCrypto/crypto-resource-manager/pkg/util"
)

// UsersHandler exposes the authenticated profile endpoint.
type UsersHandler struct{}

// NewUsersHandler constructs handler.
func NewUsersHandler() *UsersHandler {
	return &UsersHandler{}
}

// Profile handles GET /api/users/profile. The middleware has already
// loaded the server's current view of the identity.
func (h *UsersHandler) Profile(c *fiber.Ctx) error {
	user, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(dto.NewIdentityResponse(user))
}
