package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Session is a point-in-time snapshot of the auth state. Loading is
// true only between construction and the end of the first Initialize.
type Session struct {
	User    *Identity
	Loading bool
	Err     error
}

// SignedIn reports whether the snapshot carries an authenticated user.
func (s Session) SignedIn() bool {
	return s.User != nil
}

// Manager owns the client-side credential lifecycle: restoring a
// persisted token on startup, validating it, exchanging it for a
// profile, and keeping the snapshot consistent through login/logout.
type Manager struct {
	store  Store
	api    *Client
	logger *zap.Logger
	now    func() time.Time

	mu       sync.RWMutex
	user     *Identity
	loading  bool
	lastErr  error
	loadOnce sync.Once
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger attaches a logger; by default the manager is silent.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

func NewManager(store Store, api *Client, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		api:     api,
		logger:  zap.NewNop(),
		now:     time.Now,
		loading: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Session returns the current snapshot.
func (m *Manager) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Session{User: m.user, Loading: m.loading, Err: m.lastErr}
}

// Initialize restores the persisted credential, if any, and resolves it
// into a signed-in or signed-out state. It always ends the loading
// phase, exactly once, regardless of outcome. Safe to call again; later
// calls re-validate but cannot re-enter loading.
func (m *Manager) Initialize(ctx context.Context) {
	defer m.finishLoading()

	raw, err := m.store.Load()
	if err != nil {
		if !errors.Is(err, ErrNoCredential) {
			m.logger.Warn("credential store unreadable", zap.Error(err))
		}
		m.setState(nil, nil)
		return
	}

	if IsNoCredential(raw) {
		m.discard("stored credential is garbage")
		return
	}

	claims, err := decodeClaims(raw)
	if err != nil {
		m.discard("stored credential undecodable")
		return
	}

	if claims.expired(m.now()) {
		m.discard("stored credential expired")
		return
	}

	m.api.SetToken(raw)
	ident, err := m.api.Profile(ctx)
	if err != nil {
		// The token itself checked out, so a dead profile endpoint is
		// a backend problem, not a reason to sign the user out.
		m.logger.Warn("profile fetch failed, using token claims", zap.Error(err))
		m.setState(claims.identity(), nil)
		return
	}
	m.setState(ident, nil)
}

// Login authenticates and, only on success, replaces the persisted
// credential. A failed attempt leaves any existing session intact.
func (m *Manager) Login(ctx context.Context, email, password string) (*Identity, error) {
	res, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.setErr(err)
		return nil, err
	}
	if err := m.store.Save(res.Token); err != nil {
		m.logger.Warn("persisting credential failed", zap.Error(err))
	}
	m.api.SetToken(res.Token)
	ident := res.Identity
	m.setState(&ident, nil)
	return &ident, nil
}

// Logout clears the persisted credential and the in-memory session.
// Idempotent.
func (m *Manager) Logout() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("clearing credential failed", zap.Error(err))
	}
	m.api.ClearToken()
	m.setState(nil, nil)
}

// RefreshProfile re-fetches the profile for the current credential. On
// failure it falls back to the token's claims rather than signing out.
func (m *Manager) RefreshProfile(ctx context.Context) (*Identity, error) {
	raw, err := m.store.Load()
	if err != nil || IsNoCredential(raw) {
		m.setState(nil, nil)
		return nil, ErrNoCredential
	}

	ident, fetchErr := m.api.Profile(ctx)
	if fetchErr == nil {
		m.setState(ident, nil)
		return ident, nil
	}

	claims, err := decodeClaims(raw)
	if err != nil {
		m.discard("stored credential undecodable")
		return nil, err
	}
	m.logger.Warn("profile refresh failed, using token claims", zap.Error(fetchErr))
	fallback := claims.identity()
	m.setState(fallback, nil)
	return fallback, nil
}

// Register creates an account; the user stays signed out until OTP
// verification completes.
func (m *Manager) Register(ctx context.Context, email, firstName, lastName, password string) error {
	if err := m.api.Register(ctx, email, firstName, lastName, password); err != nil {
		m.setErr(err)
		return err
	}
	return nil
}

// VerifyOTP confirms the email code. The server answers with a token,
// which signs the user in.
func (m *Manager) VerifyOTP(ctx context.Context, email, code string) (*Identity, error) {
	res, err := m.api.VerifyOTP(ctx, email, code)
	if err != nil {
		m.setErr(err)
		return nil, err
	}
	if err := m.store.Save(res.Token); err != nil {
		m.logger.Warn("persisting credential failed", zap.Error(err))
	}
	m.api.SetToken(res.Token)
	ident := res.Identity
	m.setState(&ident, nil)
	return &ident, nil
}

func (m *Manager) ResendOTP(ctx context.Context, email string) error {
	return m.api.ResendOTP(ctx, email)
}

func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	return m.api.ForgotPassword(ctx, email)
}

func (m *Manager) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return m.api.ResetPassword(ctx, email, code, newPassword)
}

// discard clears an unusable stored credential and signs out.
func (m *Manager) discard(reason string) {
	m.logger.Info("discarding credential", zap.String("reason", reason))
	if err := m.store.Clear(); err != nil {
		m.logger.Warn("clearing credential failed", zap.Error(err))
	}
	m.api.ClearToken()
	m.setState(nil, nil)
}

func (m *Manager) setState(user *Identity, err error) {
	m.mu.Lock()
	m.user = user
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) setErr(err error) {
	m.mu.Lock()
	m.lastErr = err
	m.mu.Unlock()
}

func (m *Manager) finishLoading() {
	m.loadOnce.Do(func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
	})
}
