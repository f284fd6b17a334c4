package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/dermalens/skin-advisor/pkg/errors"
)

const loginAttemptKeyPrefix = "ratelimit:login:"

// Service authenticates users with a shared password and issues
// HS256 session tokens.
type Service struct {
	cfg     Config
	counter AttemptCounter
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(cfg Config, counter AttemptCounter, logger *slog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		counter: counter,
		logger:  logger,
		now:     time.Now,
	}
}

// Login checks the per-IP attempt budget before comparing the
// password. Every login attempt counts toward the window, successful
// or not, so a caller cannot probe passwords faster by guessing right.
func (s *Service) Login(ctx context.Context, password, clientIP string) (LoginResult, error) {
	count, err := s.counter.IncrementAttempt(ctx, loginAttemptKeyPrefix+clientIP, s.cfg.LoginWindow)
	if err != nil {
		s.logger.Warn("login rate limit counter unavailable, failing open", "error", err)
	} else if count > int64(s.cfg.LoginMaxAttempts) {
		return LoginResult{}, &apperrors.AppError{Code: "rate_limited", Message: "too many login attempts, try again later"}
	}

	role, ok := s.matchPassword(password)
	if !ok {
		return LoginResult{}, &apperrors.AppError{Code: "unauthenticated", Message: "invalid password"}
	}

	expiresAt := s.now().Add(s.cfg.TokenTTL)
	token, err := s.signToken(role, expiresAt)
	if err != nil {
		return LoginResult{}, apperrors.Wrap("upstream_error", "failed to issue session token", err)
	}
	return LoginResult{Token: token, Role: role, ExpiresAt: expiresAt}, nil
}

// matchPassword tries the admin credential before the user one so a
// deployment sharing a single password still resolves to admin when
// both are configured identically on purpose.
func (s *Service) matchPassword(password string) (Role, bool) {
	if credentialMatches(password, s.cfg.AdminPassword, s.cfg.AdminPasswordHash) {
		return RoleAdmin, true
	}
	if credentialMatches(password, s.cfg.Password, s.cfg.PasswordHash) {
		return RoleUser, true
	}
	return "", false
}

func credentialMatches(candidate, plain, hash string) bool {
	if hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil
	}
	if plain == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(plain)) == 1
}

type sessionClaims struct {
	Authenticated bool   `json:"authenticated"`
	Role          string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Service) signToken(role Role, expiresAt time.Time) (string, error) {
	claims := sessionClaims{
		Authenticated: true,
		Role:          string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

// ValidateToken verifies signature, expiry and the authenticated flag.
// Any failure collapses into a single unauthenticated code so callers
// cannot distinguish a forged token from an expired one.
func (s *Service) ValidateToken(tokenString string) (Claims, error) {
	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return Claims{}, &apperrors.AppError{Code: "unauthenticated", Message: "invalid or expired session", Err: err}
	}
	if !claims.Authenticated {
		return Claims{}, &apperrors.AppError{Code: "unauthenticated", Message: "invalid or expired session"}
	}
	role := Role(claims.Role)
	if role != RoleAdmin {
		role = RoleUser
	}
	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}
	return Claims{Authenticated: true, Role: role, ExpiresAt: expiresAt}, nil
}
