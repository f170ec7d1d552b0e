package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brandt/screener/backend/pkg/config"
)

// Subject is the claims subject of the single app user.
const Subject = "user"

var (
	// ErrBadPassword is returned when the login password does not match.
	ErrBadPassword = errors.New("incorrect password")

	// ErrInvalidToken covers malformed, mis-signed and expired tokens.
	// Callers get no finer detail than this.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Service issues and verifies the app's bearer tokens. The tool is
// single-user: one configured password, one fixed subject.
type Service struct {
	password []byte
	secret   []byte
	tokenTTL time.Duration
}

// NewService creates an auth service from config.
func NewService(cfg config.AuthConfig) *Service {
	return &Service{
		password: []byte(cfg.AppPassword),
		secret:   []byte(cfg.SecretKey),
		tokenTTL: cfg.TokenTTL,
	}
}

// Login checks the password in constant time and mints a signed HS256
// token. Returns ErrBadPassword on mismatch.
func (s *Service) Login(password string) (string, error) {
	if subtle.ConstantTimeCompare([]byte(password), s.password) != 1 {
		return "", ErrBadPassword
	}

	claims := jwt.RegisteredClaims{
		Subject:   Subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token and returns its subject. Any parse,
// signature or expiry problem comes back as ErrInvalidToken.
func (s *Service) Verify(token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
