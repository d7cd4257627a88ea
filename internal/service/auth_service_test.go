package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/auth"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/config"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
	"github.com/iiitdCrypto/crypto-resource-manager/internal/persistence"
	apperrors "github.com/iiitdCrypto/crypto-resource-manager/pkg/util"
)

type fakeUserRepo struct {
	byEmail map[string]*domain.User
	nextID  int64

	touchErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*domain.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = f.nextID
	f.nextID++
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, user := range f.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if user, ok := f.byEmail[email]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetByVerifyToken(_ context.Context, token string) (*domain.User, error) {
	for _, user := range f.byEmail {
		if user.VerifyToken != nil && *user.VerifyToken == token {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) MarkVerified(ctx context.Context, id int64) error {
	user, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.Verified = true
	return nil
}

func (f *fakeUserRepo) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	user, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.LastLoginAt = &at
	return nil
}

type fakeOTPs struct {
	codes map[string]string
}

func newFakeOTPs() *fakeOTPs {
	return &fakeOTPs{codes: map[string]string{}}
}

func otpKey(kind persistence.OTPKind, email string) string {
	return string(kind) + ":" + email
}

func (f *fakeOTPs) Put(_ context.Context, kind persistence.OTPKind, email, code string) error {
	f.codes[otpKey(kind, email)] = code
	return nil
}

func (f *fakeOTPs) Get(_ context.Context, kind persistence.OTPKind, email string) (string, error) {
	code, ok := f.codes[otpKey(kind, email)]
	if !ok {
		return "", persistence.ErrOTPNotFound
	}
	return code, nil
}

func (f *fakeOTPs) Delete(_ context.Context, kind persistence.OTPKind, email string) error {
	delete(f.codes, otpKey(kind, email))
	return nil
}

func testConfig() config.Config {
	return config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 60,
		BcryptCost:            bcrypt.MinCost,
	}}
}

func newTestAuthService(users *fakeUserRepo, otps *fakeOTPs) *AuthService {
	return NewAuthService(testConfig(), AuthDependencies{UserRepo: users, OTPStore: otps})
}

func seedUser(t *testing.T, users *fakeUserRepo, email, password string, verified bool) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Verified:     verified,
	}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func domainCode(t *testing.T, err error) string {
	t.Helper()
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	return de.Code
}

func TestRegisterDuplicateEmail(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(t, users, "taken@iiitd.ac.in", "pw12345678", true)
	svc := newTestAuthService(users, newFakeOTPs())

	err := svc.Register(context.Background(), "Taken@iiitd.ac.in ", "Ada", "Lovelace", "pw12345678")
	require.Error(t, err)

	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "CONFLICT", de.Code)
	assert.Equal(t, "email already registered", de.Message)
}

func TestRegisterIssuesVerifyOTP(t *testing.T) {
	users := newFakeUserRepo()
	otps := newFakeOTPs()
	svc := newTestAuthService(users, otps)

	require.NoError(t, svc.Register(context.Background(), "ada@iiitd.ac.in", "Ada", "Lovelace", "pw12345678"))

	user, err := users.GetByEmail(context.Background(), "ada@iiitd.ac.in")
	require.NoError(t, err)
	assert.False(t, user.Verified)
	assert.Equal(t, domain.RoleUser, user.Role)

	code, err := otps.Get(context.Background(), persistence.OTPKindVerify, "ada@iiitd.ac.in")
	require.NoError(t, err)
	assert.Len(t, code, 6)
}

func TestLoginRejectsUnverified(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(t, users, "ada@iiitd.ac.in", "pw12345678", false)
	svc := newTestAuthService(users, newFakeOTPs())

	_, err := svc.Login(context.Background(), "ada@iiitd.ac.in", "pw12345678")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", domainCode(t, err))
}

func TestLoginWrongPassword(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(t, users, "ada@iiitd.ac.in", "pw12345678", true)
	svc := newTestAuthService(users, newFakeOTPs())

	_, err := svc.Login(context.Background(), "ada@iiitd.ac.in", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}

// Unknown emails get the same rejection as bad passwords; login must
// not reveal which accounts exist.
func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestAuthService(newFakeUserRepo(), newFakeOTPs())

	_, err := svc.Login(context.Background(), "nobody@iiitd.ac.in", "pw12345678")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", domainCode(t, err))
}

func TestLoginSuccess(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(t, users, "ada@iiitd.ac.in", "pw12345678", true)
	svc := newTestAuthService(users, newFakeOTPs())

	result, err := svc.Login(context.Background(), "ada@iiitd.ac.in", "pw12345678")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.After(time.Now()))
	require.NotNil(t, result.User.LastLoginAt)
}

// A broken last_login_at write must not fail the login, but it must
// leave a trace in the logs.
func TestLoginSurvivesTouchLastLoginFailure(t *testing.T) {
	users := newFakeUserRepo()
	seedUser(t, users, "ada@iiitd.ac.in", "pw12345678", true)
	users.touchErr = errors.New("column vanished")

	core, logs := observer.New(zap.WarnLevel)
	svc := NewAuthService(testConfig(), AuthDependencies{
		UserRepo: users,
		OTPStore: newFakeOTPs(),
		Logger:   zap.New(core),
	})

	result, err := svc.Login(context.Background(), "ada@iiitd.ac.in", "pw12345678")
	require.NoError(t, err)
	assert.Nil(t, result.User.LastLoginAt)

	entries := logs.FilterMessage("touch last login failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
}

func TestVerifyOTPConsumedExactlyOnce(t *testing.T) {
	users := newFakeUserRepo()
	otps := newFakeOTPs()
	svc := newTestAuthService(users, otps)

	require.NoError(t, svc.Register(context.Background(), "ada@iiitd.ac.in", "Ada", "Lovelace", "pw12345678"))
	code, err := otps.Get(context.Background(), persistence.OTPKindVerify, "ada@iiitd.ac.in")
	require.NoError(t, err)

	result, err := svc.VerifyOTP(context.Background(), "ada@iiitd.ac.in", code)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.User.Verified)

	// replaying the same code must fail; it was deleted on first use
	_, err = svc.VerifyOTP(context.Background(), "ada@iiitd.ac.in", code)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", domainCode(t, err))
}

func TestVerifyOTPWrongCodeDoesNotConsume(t *testing.T) {
	users := newFakeUserRepo()
	otps := newFakeOTPs()
	svc := newTestAuthService(users, otps)

	require.NoError(t, svc.Register(context.Background(), "ada@iiitd.ac.in", "Ada", "Lovelace", "pw12345678"))
	code, err := otps.Get(context.Background(), persistence.OTPKindVerify, "ada@iiitd.ac.in")
	require.NoError(t, err)

	_, err = svc.VerifyOTP(context.Background(), "ada@iiitd.ac.in", "000000")
	require.Error(t, err)

	// the real code still works after a bad attempt
	result, err := svc.VerifyOTP(context.Background(), "ada@iiitd.ac.in", code)
	require.NoError(t, err)
	assert.True(t, result.User.Verified)
}

func TestResetPasswordFlow(t *testing.T) {
	users := newFakeUserRepo()
	otps := newFakeOTPs()
	svc := newTestAuthService(users, otps)
	seedUser(t, users, "ada@iiitd.ac.in", "old-password", true)

	require.NoError(t, svc.ForgotPassword(context.Background(), "ada@iiitd.ac.in"))
	code, err := otps.Get(context.Background(), persistence.OTPKindReset, "ada@iiitd.ac.in")
	require.NoError(t, err)

	require.Error(t, svc.ResetPassword(context.Background(), "ada@iiitd.ac.in", "999999", "new-password"))

	require.NoError(t, svc.ResetPassword(context.Background(), "ada@iiitd.ac.in", code, "new-password"))

	_, err = svc.Login(context.Background(), "ada@iiitd.ac.in", "old-password")
	require.Error(t, err)
	_, err = svc.Login(context.Background(), "ada@iiitd.ac.in", "new-password")
	require.NoError(t, err)
}
