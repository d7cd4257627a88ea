package dto

import "github.com/iiitdCrypto/crypto-resource-manager/internal/domain"

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOTPRequest payload for OTP confirmation.
type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

// EmailRequest payload for resend-otp and forgot-password.
type EmailRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest payload for OTP-based password reset.
type ResetPasswordRequest struct {
	Email    string `json:"email"`
	OTP      string `json:"otp"`
	Password string `json:"password"`
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// IdentityResponse is the profile shape shared by login and profile
// endpoints; clients mirror it in their credential claims.
type IdentityResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// LoginResponse is the flat body returned on successful authentication.
type LoginResponse struct {
	Token string `json:"token"`
	IdentityResponse
}

// NewIdentityResponse maps a user to the wire shape.
func NewIdentityResponse(user *domain.User) IdentityResponse {
	return IdentityResponse{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      string(user.Role),
	}
}
