package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/auth"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/config"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/events"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/persistence"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/repository"
	apperrors "github.com/iiitdCrypto/crypto-resource-manager/pkg/util"
)

// OTPCodes abstracts the short-lived code store.
type OTPCodes interface {
	Put(ctx context.Context, kind persistence.OTPKind, email, code string) error
	Get(ctx context.Context, kind persistence.OTPKind, email string) (string, error)
	Delete(ctx context.Context, kind persistence.OTPKind, email string) error
}

// LoginResult is what a successful authentication yields.
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration, login, OTP and password flows.
type AuthService struct {
	users      repository.UserRepository
	otps       OTPCodes
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	OTPStore   OTPCodes
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		otps:       deps.OTPStore,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new unverified account and issues a verification OTP.
func (s *AuthService) Register(ctx context.Context, email, firstName, lastName, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}

	verifyToken := uuid.NewString()
	user := &domain.User{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Verified:     false,
		VerifyToken:  &verifyToken,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return apperrors.MapError(err)
	}

	if err := s.issueOTP(ctx, persistence.OTPKindVerify, email, events.EventUserRegistered); err != nil {
		return err
	}
	return nil
}

// Login authenticates a verified user and returns a signed credential.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if !user.Verified {
		return nil, apperrors.NewForbidden("email not verified")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := time.Now()
	if err := s.users.TouchLastLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("touch last login failed", zap.Int64("userId", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// VerifyEmailToken confirms an email-link verification token.
func (s *AuthService) VerifyEmailToken(ctx context.Context, token string) error {
	user, err := s.users.GetByVerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("invalid verification token", nil)
		}
		return apperrors.MapError(err)
	}
	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.EventUserVerified, user.Email, nil)
	return nil
}

// VerifyOTP confirms a registration OTP and grants a credential.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.consumeOTP(ctx, persistence.OTPKindVerify, email, otp); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.users.MarkVerified(ctx, user.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	user.Verified = true
	s.publish(ctx, events.EventUserVerified, email, nil)

	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// ResendOTP re-issues a verification code for an unverified account.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}
	if user.Verified {
		return apperrors.NewValidationError("account already verified", nil)
	}
	return s.issueOTP(ctx, persistence.OTPKindVerify, email, events.EventOTPRequested)
}

// ForgotPassword issues a reset OTP for an existing account.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", nil)
		}
		return apperrors.MapError(err)
	}
	return s.issueOTP(ctx, persistence.OTPKindReset, email, events.EventPasswordResetRequested)
}

// ResetPassword validates a reset OTP and replaces the password hash.
func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.consumeOTP(ctx, persistence.OTPKindReset, email, otp); err != nil {
		return err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.MapError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}

	s.publish(ctx, events.EventPasswordChanged, email, nil)
	return nil
}

// Profile returns the server's current view of an identity.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issueOTP(ctx context.Context, kind persistence.OTPKind, email string, eventType events.EventType) error {
	code, err := auth.GenerateOTP()
	if err != nil {
		return apperrors.MapError(err)
	}
	if err := s.otps.Put(ctx, kind, email, code); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, eventType, email, events.OTPPayload{Code: code, Purpose: string(kind)})
	return nil
}

func (s *AuthService) consumeOTP(ctx context.Context, kind persistence.OTPKind, email, otp string) error {
	stored, err := s.otps.Get(ctx, kind, email)
	if err != nil {
		if errors.Is(err, persistence.ErrOTPNotFound) {
			return apperrors.NewValidationError("otp expired or not requested", nil)
		}
		return apperrors.MapError(err)
	}
	if stored != strings.TrimSpace(otp) {
		return apperrors.NewValidationError("invalid otp", nil)
	}
	return s.otps.Delete(ctx, kind, email)
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, email string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Email:     email,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
