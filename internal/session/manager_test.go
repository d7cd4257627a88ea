package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
)

// Whole seconds only: JWT expiry timestamps carry second precision.
var testNow = time.Unix(1772000000, 0)

func fixedClock() time.Time { return testNow }

func mintToken(t *testing.T, id int64, email, role string, exp time.Time) string {
	t.Helper()
	claims := &wireClaims{
		Email:     email,
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id, 10),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorBody(code, message string) map[string]any {
	return map[string]any{"error": map[string]string{"code": code, "message": message}}
}

// deadServerURL returns a URL nothing listens on.
func deadServerURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestInitializeWithoutCredential(t *testing.T) {
	m := NewManager(NewMemStore(), NewClient(deadServerURL(t), time.Second), WithClock(fixedClock))

	assert.True(t, m.Session().Loading)
	m.Initialize(context.Background())

	s := m.Session()
	assert.False(t, s.Loading)
	assert.Nil(t, s.User)
}

func TestInitializeClearsGarbageCredentials(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		writeJSON(w, http.StatusOK, map[string]string{})
	}))
	defer srv.Close()

	garbage := []string{
		"",
		"null",
		"undefined",
		"justonestring",
		"only.onedot",
		"bad.!!!notbase64!!!.sig",
	}
	for _, raw := range garbage {
		t.Run(strconv.Quote(raw), func(t *testing.T) {
			store := NewMemStoreWith(raw)
			m := NewManager(store, NewClient(srv.URL, time.Second), WithClock(fixedClock))
			m.Initialize(context.Background())

			s := m.Session()
			assert.False(t, s.Loading)
			assert.Nil(t, s.User)
			_, err := store.Load()
			assert.ErrorIs(t, err, ErrNoCredential)
		})
	}
	// garbage never reaches the network
	assert.Zero(t, requests.Load())
}

func TestInitializeClearsExpiredCredential(t *testing.T) {
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer srv.Close()

	tok := mintToken(t, 7, "ada@iiitd.ac.in", "authorized", testNow.Add(-time.Second))
	store := NewMemStoreWith(tok)
	m := NewManager(store, NewClient(srv.URL, time.Second), WithClock(fixedClock))
	m.Initialize(context.Background())

	s := m.Session()
	assert.Nil(t, s.User)
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoCredential)
	assert.Zero(t, requests.Load())
}

// A token expiring exactly now is still live; only strictly-past expiry
// clears it.
func TestInitializeAcceptsCredentialAtExactExpiry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, Identity{ID: 7, Email: "ada@iiitd.ac.in", Role: domain.RoleAuthorized})
	}))
	defer srv.Close()

	tok := mintToken(t, 7, "ada@iiitd.ac.in", "authorized", testNow)
	store := NewMemStoreWith(tok)
	m := NewManager(store, NewClient(srv.URL, time.Second), WithClock(fixedClock))
	m.Initialize(context.Background())

	s := m.Session()
	require.NotNil(t, s.User)
	assert.Equal(t, int64(7), s.User.ID)
	raw, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, tok, raw)
}

func TestInitializeFetchesProfile(t *testing.T) {
	tok := mintToken(t, 7, "stale@iiitd.ac.in", "user", testNow.Add(time.Hour))

	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users/profile", r.URL.Path)
		gotHeader = r.Header.Get(TokenHeader)
		writeJSON(w, http.StatusOK, Identity{
			ID: 7, Email: "fresh@iiitd.ac.in", FirstName: "Ada", LastName: "Lovelace", Role: domain.RoleAdmin,
		})
	}))
	defer srv.Close()

	m := NewManager(NewMemStoreWith(tok), NewClient(srv.URL, time.Second), WithClock(fixedClock))
	m.Initialize(context.Background())

	s := m.Session()
	require.NotNil(t, s.User)
	// the server's view wins over the token's stale claims
	assert.Equal(t, "fresh@iiitd.ac.in", s.User.Email)
	assert.Equal(t, domain.RoleAdmin, s.User.Role)
	assert.Equal(t, tok, gotHeader)
}

// A valid token with an unreachable profile endpoint degrades to the
// token's own claims. It does not sign the user out.
func TestInitializeFallsBackToClaimsWhenProfileDown(t *testing.T) {
	tok := mintToken(t, 7, "ada@iiitd.ac.in", "authorized", testNow.Add(time.Hour))
	store := NewMemStoreWith(tok)
	m := NewManager(store, NewClient(deadServerURL(t), time.Second), WithClock(fixedClock))
	m.Initialize(context.Background())

	s := m.Session()
	require.NotNil(t, s.User)
	assert.Equal(t, int64(7), s.User.ID)
	assert.Equal(t, "ada@iiitd.ac.in", s.User.Email)
	assert.Equal(t, "Ada", s.User.FirstName)
	assert.Equal(t, domain.RoleAuthorized, s.User.Role)

	raw, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, tok, raw)
}

func TestLoadingEndsExactlyOnce(t *testing.T) {
	m := NewManager(NewMemStore(), NewClient(deadServerURL(t), time.Second), WithClock(fixedClock))

	assert.True(t, m.Session().Loading)
	m.Initialize(context.Background())
	assert.False(t, m.Session().Loading)

	// a second pass re-validates but never re-enters loading
	m.Initialize(context.Background())
	assert.False(t, m.Session().Loading)
}

func TestLoginPersistsCredential(t *testing.T) {
	tok := mintToken(t, 3, "ada@iiitd.ac.in", "user", testNow.Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"token": tok, "id": 3, "email": "ada@iiitd.ac.in",
			"firstName": "Ada", "lastName": "Lovelace", "role": "user",
		})
	}))
	defer srv.Close()

	store := NewMemStore()
	m := NewManager(store, NewClient(srv.URL, time.Second), WithClock(fixedClock))
	m.Initialize(context.Background())

	ident, err := m.Login(context.Background(), "ada@iiitd.ac.in", "pw")
	require.NoError(t, err)
	assert.Equal(t, int64(3), ident.ID)

	raw, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, tok, raw)
	assert.NotNil(t, m.Session().User)
}

// A rejected login attempt must not disturb the session that was
// already established.
func TestFailedLoginKeepsExistingSession(t *testing.T) {
	oldTok := mintToken(t, 7, "ada@iiitd.ac.in", "authorized", testNow.Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/profile":
			writeJSON(w, http.StatusOK, Identity{ID: 7, Email: "ada@iiitd.ac.in", Role: domain.RoleAuthorized})
		case "/api/auth/login":
			writeJSON(w, http.StatusUnauthorized, errorBody("UNAUTHORIZED", "invalid credentials"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	store := NewMemStoreWith(oldTok)
	m := NewManager(store, NewClient(srv.URL, time.Second), WithClock(fixedClock))
	m.Initialize(context.Background())
	require.NotNil(t, m.Session().User)

	_, err := m.Login(context.Background(), "ada@iiitd.ac.in", "wrong")
	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindInvalidCredentials, apiErr.Kind)
	assert.Equal(t, MsgInvalidCredentials, apiErr.Message)

	// old session and credential both intact
	assert.NotNil(t, m.Session().User)
	raw, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Equal(t, oldTok, raw)
}

func TestLogoutIsIdempotent(t *testing.T) {
	tok := mintToken(t, 7, "ada@iiitd.ac.in", "user", testNow.Add(time.Hour))
	store := NewMemStoreWith(tok)
	m := NewManager(store, NewClient(deadServerURL(t), time.Second), WithClock(fixedClock))
	m.Initialize(context.Background())
	require.NotNil(t, m.Session().User)

	m.Logout()
	assert.Nil(t, m.Session().User)
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoCredential)

	m.Logout()
	assert.Nil(t, m.Session().User)
}

func TestRegisterDuplicateEmailMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, errorBody("CONFLICT", "email already registered"))
	}))
	defer srv.Close()

	m := NewManager(NewMemStore(), NewClient(srv.URL, time.Second), WithClock(fixedClock))
	err := m.Register(context.Background(), "taken@iiitd.ac.in", "Ada", "Lovelace", "pw12345678")
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindEmailTaken, apiErr.Kind)
	assert.Equal(t, MsgDuplicateEmail, apiErr.Message)
}

func TestVerifyOTPSignsIn(t *testing.T) {
	tok := mintToken(t, 3, "ada@iiitd.ac.in", "user", testNow.Add(time.Hour))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/verify-otp", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"token": tok, "id": 3, "email": "ada@iiitd.ac.in",
			"firstName": "Ada", "lastName": "Lovelace", "role": "user",
		})
	}))
	defer srv.Close()

	store := NewMemStore()
	m := NewManager(store, NewClient(srv.URL, time.Second), WithClock(fixedClock))
	ident, err := m.VerifyOTP(context.Background(), "ada@iiitd.ac.in", "123456")
	require.NoError(t, err)
	assert.Equal(t, "ada@iiitd.ac.in", ident.Email)

	raw, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, tok, raw)
}

func TestRefreshProfileFallsBackOnFailure(t *testing.T) {
	tok := mintToken(t, 7, "ada@iiitd.ac.in", "authorized", testNow.Add(time.Hour))
	var failing atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			writeJSON(w, http.StatusInternalServerError, errorBody("INTERNAL", "database gone"))
			return
		}
		writeJSON(w, http.StatusOK, Identity{ID: 7, Email: "fresh@iiitd.ac.in", Role: domain.RoleAuthorized})
	}))
	defer srv.Close()

	store := NewMemStoreWith(tok)
	m := NewManager(store, NewClient(srv.URL, time.Second), WithClock(fixedClock))
	m.Initialize(context.Background())
	require.Equal(t, "fresh@iiitd.ac.in", m.Session().User.Email)

	failing.Store(true)
	ident, err := m.RefreshProfile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ada@iiitd.ac.in", ident.Email)
	assert.NotNil(t, m.Session().User)
}

func TestErrorClassification(t *testing.T) {
	t.Run("unreachable server", func(t *testing.T) {
		c := NewClient(deadServerURL(t), time.Second)
		_, err := c.Login(context.Background(), "a@b.c", "pw")
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, KindServerUnreachable, apiErr.Kind)
		assert.Equal(t, MsgServerNotResponding, apiErr.Message)
	})

	t.Run("origin alive but route missing", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		c := NewClient(srv.URL, time.Second)
		_, err := c.Login(context.Background(), "a@b.c", "pw")
		apiErr, ok := AsAPIError(err)
		require.True(t, ok)
		assert.Equal(t, KindEndpointNotFound, apiErr.Kind)
		assert.Equal(t, MsgEndpointNotFound, apiErr.Message)
	})
}
