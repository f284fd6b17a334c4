package auth

import (
	"context"
	"time"
)

// Role is carried inside the session token. Admin-prefixed paths
// additionally require RoleAdmin.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Config drives the password gate.
type Config struct {
	Secret            string
	TokenTTL          time.Duration
	Password          string
	AdminPassword     string
	PasswordHash      string
	AdminPasswordHash string
	LoginWindow       time.Duration
	LoginMaxAttempts  int
}

// Claims are extracted from a verified session token.
type Claims struct {
	Authenticated bool
	Role          Role
	ExpiresAt     time.Time
}

// LoginResult returns the signed credential.
type LoginResult struct {
	Token     string `json:"-"`
	Role      Role   `json:"role"`
	ExpiresAt time.Time
}

// AttemptCounter is the fixed-window counter behind login rate
// limiting. Counter storage failures fail open in the service layer:
// rate limiting must never block the login feature itself.
type AttemptCounter interface {
	IncrementAttempt(ctx context.Context, key string, window time.Duration) (int64, error)
}
