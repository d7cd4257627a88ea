package domain

import (
	"strings"
	"time"
)

// Role enumerates the access levels a user can hold. The set is closed:
// any role string outside it resolves to the least-privileged RoleUser.
type Role string

const (
	RoleUser       Role = "user"
	RoleAuthorized Role = "authorized"
	RoleAdmin      Role = "admin"
)

// ParseRole canonicalizes an incoming role string. The legacy spelling
// "authorised" is accepted and mapped to RoleAuthorized; anything
// unrecognized falls back to RoleUser.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "authorized", "authorised":
		return RoleAuthorized
	default:
		return RoleUser
	}
}

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleAuthorized:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether r grants at least the privilege of required.
func (r Role) AtLeast(required Role) bool {
	return r.rank() >= required.rank()
}

// User is the identity record behind every credential.
type User struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	Verified     bool
	VerifyToken  *string
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Permission records per-resource write grants beyond the base role.
type Permission struct {
	UserID    int64
	Resource  string
	CanWrite  bool
	UpdatedAt time.Time
}
