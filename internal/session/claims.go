package session

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iiitdCrypto/crypto-resource-manager/internal/domain"
)

// Identity is the client-side view of the signed-in user.
type Identity struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Role      domain.Role `json:"role"`
}

// wireClaims mirrors the payload the server embeds in access tokens.
// The client decodes without verifying the signature; the server is the
// sole authority and re-checks on every request.
type wireClaims struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

var errBadClaims = errors.New("session: token claims unreadable")

// decodeClaims extracts the payload of raw without signature checks.
// Any structural problem is an error; callers treat it as garbage.
func decodeClaims(raw string) (*wireClaims, error) {
	parser := jwt.NewParser()
	claims := &wireClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, errBadClaims
	}
	return claims, nil
}

// expired reports whether the token's expiry is strictly in the past.
// A token expiring exactly at now is still accepted.
func (c *wireClaims) expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return c.ExpiresAt.Time.Before(now)
}

// identity builds a display identity from the claims alone. Used when
// the profile endpoint is unavailable.
func (c *wireClaims) identity() *Identity {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		id = 0
	}
	return &Identity{
		ID:        id,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Role:      domain.ParseRole(c.Role),
	}
}
