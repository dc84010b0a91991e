package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/timecapsule/pkg/jwtx"
	"github.com/aussiebroadwan/timecapsule/pkg/slogx"
)

// ErrUnauthorized is returned when a request carries no usable credential.
var ErrUnauthorized = errors.New("httpx: unauthorized")

// Authenticator resolves the acting identity for a request.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
type AuthenticatorFunc func(r *http.Request) (string, error)

func (f AuthenticatorFunc) Authenticate(r *http.Request) (string, error) { return f(r) }

// CredentialFromHeader returns the token following the first space of an
// Authorization value shaped "<scheme> <token>". Anything after a further
// space is ignored.
func CredentialFromHeader(h string) (string, error) {
	_, rest, ok := strings.Cut(h, " ")
	if !ok {
		return "", ErrUnauthorized
	}
	token, _, _ := strings.Cut(rest, " ")
	if token == "" {
		return "", ErrUnauthorized
	}
	return token, nil
}

// IdentifierAuthenticator trusts the presented token as the acting user id.
// It performs no signature or store lookup: any syntactically present token
// is accepted.
func IdentifierAuthenticator() Authenticator {
	return AuthenticatorFunc(func(r *http.Request) (string, error) {
		return CredentialFromHeader(r.Header.Get("Authorization"))
	})
}

// JWTAuthenticator verifies the presented token as a signed access token and
// uses its subject as the acting user id.
func JWTAuthenticator(v jwtx.Verifier) Authenticator {
	return AuthenticatorFunc(func(r *http.Request) (string, error) {
		raw, err := CredentialFromHeader(r.Header.Get("Authorization"))
		if err != nil {
			return "", err
		}

		claims, err := v.Verify(raw)
		if err != nil {
			return "", errors.Join(ErrUnauthorized, err)
		}
		if claims.Subject == "" {
			return "", ErrUnauthorized
		}
		return claims.Subject, nil
	})
}

// AuthnMiddleware rejects requests the Authenticator cannot resolve with
// 401 {"message":"Unauthorized"} and binds the acting identity otherwise.
func AuthnMiddleware(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			userID, err := a.Authenticate(r)
			if err != nil {
				log.Warn("authentication failed", "err", err)
				WriteMessage(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx = slogx.With(WithUserID(ctx, userID), "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
