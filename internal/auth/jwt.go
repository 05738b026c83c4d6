package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNotJWT means the key is opaque (for example a publishable key)
	// and carries no claims to inspect.
	ErrNotJWT     = errors.New("access key is not a JWT")
	ErrKeyExpired = errors.New("access key has expired")
)

// Roles a Supabase key can carry.
const (
	RoleAnon        = "anon"
	RoleServiceRole = "service_role"
)

// KeyClaims are the claims of a Supabase project API key.
type KeyClaims struct {
	Role string `json:"role"`
	Ref  string `json:"ref"`
	jwt.RegisteredClaims
}

// InspectKey decodes the claims of a store access key without verifying its
// signature; the store verifies it on every request. now is used for the
// expiry check.
func InspectKey(key string, now time.Time) (*KeyClaims, error) {
	claims := &KeyClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJWT, err)
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(now) {
		return claims, fmt.Errorf("%w at %s", ErrKeyExpired, claims.ExpiresAt.UTC().Format(time.RFC3339))
	}
	return claims, nil
}

// Privileged reports whether the key bypasses row level security.
func (c *KeyClaims) Privileged() bool {
	return c.Role == RoleServiceRole
}
