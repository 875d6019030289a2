package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultTTL    = 24 * time.Hour
	devSecret     = "dev-secret"
	signingMethod = "HS256"
)

// Claims represents the identity contained in a JWT.
type Claims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

var (
	errMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Secret resolves the signing secret for env. Production requires one.
func Secret(env, secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret != "" {
		return []byte(secret), nil
	}
	if env == "production" {
		return nil, fmt.Errorf("%w: JWT_SECRET required in production", errMissingSecret)
	}
	return []byte(devSecret), nil
}

// SignJWT signs the given claims with HS256.
func SignJWT(secret []byte, claims Claims) (string, error) {
	if len(secret) == 0 {
		return "", errMissingSecret
	}
	if claims.Subject == "" {
		return "", errors.New("sub is required")
	}
	now := time.Now().UTC()
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(defaultTTL))
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyJWT verifies a token and returns its claims.
func VerifyJWT(secret []byte, token string) (Claims, error) {
	if len(secret) == 0 {
		return Claims{}, errMissingSecret
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{signingMethod}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
