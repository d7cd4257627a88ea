package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/api/dto"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/service"
)

// AuthHandler exposes registration, login and OTP endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" {
		return fiber.NewError(http.StatusBadRequest, "email, firstName, password required")
	}

	if err := h.auth.Register(c.UserContext(), req.Email, req.FirstName, req.LastName, req.Password); err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.MessageResponse{
		Message: "registered; check your email for a verification code",
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	result, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Token:            result.Token,
		IdentityResponse: dto.NewIdentityResponse(result.User),
	})
}

// VerifyEmail handles GET /api/auth/verify/:token.
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Params("token"))
	if token == "" {
		return fiber.NewError(http.StatusBadRequest, "token required")
	}

	if err := h.auth.VerifyEmailToken(c.UserContext(), token); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "email verified"})
}

// VerifyOTP handles POST /api/auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *fiber.Ctx) error {
	var req dto.VerifyOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.OTP == "" {
		return fiber.NewError(http.StatusBadRequest, "email and otp required")
	}

	result, err := h.auth.VerifyOTP(c.UserContext(), req.Email, req.OTP)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{
		Token:            result.Token,
		IdentityResponse: dto.NewIdentityResponse(result.User),
	})
}

// ResendOTP handles POST /api/auth/resend-otp.
func (h *AuthHandler) ResendOTP(c *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}

	if err := h.auth.ResendOTP(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "verification code sent"})
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.EmailRequest
	if err := c.BodyParser(&req); err != nil || req.Email == "" {
		return fiber.NewError(http.StatusBadRequest, "email required")
	}

	if err := h.auth.ForgotPassword(c.UserContext(), req.Email); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "reset code sent"})
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.OTP == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email, otp, password required")
	}

	if err := h.auth.ResetPassword(c.UserContext(), req.Email, req.OTP, req.Password); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: "password updated"})
}
