package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the lifetime of access tokens when none is configured.
const DefaultAccessTokenTTL = time.Hour

// Claims are the access-token claims. Subject carries the user id the gate
// binds to the request.
type Claims struct {
	jwt.RegisteredClaims

	Username string `json:"preferred_username,omitempty"`
}

// NewAccessClaims stamps a token for userID valid from now until now+ttl.
func NewAccessClaims(userID, username, issuer string, ttl time.Duration, now time.Time) Claims {
	var jti [16]byte
	_, _ = rand.Read(jti[:])

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        base64.RawURLEncoding.EncodeToString(jti[:]),
		},
		Username: username,
	}
}

// Validate checks the issuer (skipped when issuer is empty) and the
// nbf/exp window against now.
func (c *Claims) Validate(issuer string, now time.Time) error {
	if issuer != "" && c.Issuer != issuer {
		return ErrIssuer
	}
	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
