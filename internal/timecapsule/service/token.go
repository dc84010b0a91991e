package service

import (
	"time"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/domain"
	"github.com/aussiebroadwan/timecapsule/pkg/jwtx"
)

// TokenService mints signed access tokens after a successful login.
type TokenService struct {
	Signer jwtx.Signer
	Issuer string
	TTL    time.Duration
}

// AccessToken is a freshly minted bearer token.
type AccessToken struct {
	Token     string
	ExpiresIn time.Duration
}

// Issue signs an access token whose subject is the user id.
func (s *TokenService) Issue(u domain.User) (AccessToken, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	token, err := s.Signer.Sign(jwtx.NewAccessClaims(u.ID, u.Username, s.Issuer, ttl, time.Now().UTC()))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: token, ExpiresIn: ttl}, nil
}
