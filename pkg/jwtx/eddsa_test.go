package jwtx_test

import (
	"crypto/ed25519"
	"encoding/base64"
	"testing"
	"time"

	"github.com/aussiebroadwan/timecapsule/pkg/cryptox"
	"github.com/aussiebroadwan/timecapsule/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "timecapsule-test"

func newSigner(t *testing.T, kid string) *jwtx.EdDSASigner {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	require.NoError(t, err)
	return signer
}

func TestEdDSASignAndVerify(t *testing.T) {
	signer := newSigner(t, "test-key-eddsa")
	require.Equal(t, "EdDSA", signer.Alg())
	require.Equal(t, "test-key-eddsa", signer.KID())

	claims := jwtx.NewAccessClaims("user-456", "eddsauser", exampleIssuer, 5*time.Minute, time.Now().UTC())

	token, err := signer.Sign(claims)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	keyset := jwtx.NewKeySet()
	require.False(t, keyset.IsReady())
	require.NoError(t, keyset.AddSigner(signer))
	require.True(t, keyset.IsReady())

	jwks := keyset.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, "OKP", jwks.Keys[0].Kty)
	require.Equal(t, "Ed25519", jwks.Keys[0].Crv)
	require.NotEmpty(t, jwks.Keys[0].X)

	parsed, err := jwtx.NewVerifierEdDSA(keyset, exampleIssuer).Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.Equal(t, claims.Username, parsed.Username)
	require.Equal(t, claims.ID, parsed.ID)
}

func TestEdDSAVerifyFailsForWrongIssuer(t *testing.T) {
	signer := newSigner(t, "k1")
	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	token, err := signer.Sign(jwtx.NewAccessClaims("u", "n", "other-issuer", time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer).Verify(token)
	require.ErrorIs(t, err, jwtx.ErrIssuer)
}

func TestEdDSAVerifyFailsForUnknownKey(t *testing.T) {
	signer := newSigner(t, "k1")
	other := newSigner(t, "k2")

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(other))

	token, err := signer.Sign(jwtx.NewAccessClaims("u", "n", exampleIssuer, time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer).Verify(token)
	require.Error(t, err)
}

func TestEdDSAVerifyFailsForForgedKeyUnderKnownKid(t *testing.T) {
	trusted := newSigner(t, "shared-kid")
	forger := newSigner(t, "shared-kid")

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(trusted))

	token, err := forger.Sign(jwtx.NewAccessClaims("victim", "n", exampleIssuer, time.Minute, time.Now().UTC()))
	require.NoError(t, err)

	_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer).Verify(token)
	require.Error(t, err)
}

func TestEdDSAVerifyRejectsHS256(t *testing.T) {
	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(newSigner(t, "k1")))

	claims := jwtx.NewAccessClaims("u", "n", exampleIssuer, time.Minute, time.Now().UTC())
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tok.Header["kid"] = "k1"
	signed, err := tok.SignedString([]byte("symmetric"))
	require.NoError(t, err)

	_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer).Verify(signed)
	require.Error(t, err)
}

func TestEdDSAVerifyFailsForExpiredToken(t *testing.T) {
	signer := newSigner(t, "k1")
	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))

	token, err := signer.Sign(jwtx.NewAccessClaims("u", "n", exampleIssuer, time.Minute, time.Now().Add(-time.Hour)))
	require.NoError(t, err)

	_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer).Verify(token)
	require.Error(t, err)
}

func TestNewSignerEdDSARejectsBadPEM(t *testing.T) {
	_, err := jwtx.NewSignerEdDSA("k", []byte("not pem"))
	require.Error(t, err)

	_, err = jwtx.NewSignerEdDSA("k", []byte("-----BEGIN PUBLIC KEY-----\nAAAA\n-----END PUBLIC KEY-----\n"))
	require.Error(t, err)
}

func TestKeySetRejectsUnsupportedKeys(t *testing.T) {
	keyset := jwtx.NewKeySet()
	require.Error(t, keyset.AddJWK(jwtx.JWK{Kty: "RSA", Kid: "r"}))
	require.Error(t, keyset.AddJWK(jwtx.JWK{Kty: "OKP", Crv: "Ed25519", Kid: "short", X: "AAAA"}))
	require.False(t, keyset.IsReady())
}

func TestThumbprint(t *testing.T) {
	// RFC 8037 Appendix A.3
	pub, err := base64.RawURLEncoding.DecodeString("11qYAYKxCrfVS_7TyWQHOg7hcvPapiMlrwIaaPcHURo")
	require.NoError(t, err)
	require.Equal(t, "kPrK_qmxVWaYVA9wwBF6Iuo3vVzz7TxHCTwXBygrS4k", jwtx.Thumbprint(ed25519.PublicKey(pub)))
}

func TestNewSignerEdDSADefaultsKIDToThumbprint(t *testing.T) {
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	first, err := jwtx.NewSignerEdDSA("", pemKey)
	require.NoError(t, err)
	again, err := jwtx.NewSignerEdDSA("", pemKey)
	require.NoError(t, err)

	require.NotEmpty(t, first.KID())
	require.Equal(t, first.KID(), again.KID())
	require.Equal(t, first.KID(), first.PublicJWK().Kid)
}

func TestKeySetReplacesSameKID(t *testing.T) {
	keyset := jwtx.NewKeySet()
	first := newSigner(t, "k1")
	second := newSigner(t, "k1")

	require.NoError(t, keyset.AddSigner(first))
	require.NoError(t, keyset.AddSigner(second))

	jwks := keyset.PublicJWKS()
	require.Len(t, jwks.Keys, 1)
	require.Equal(t, second.PublicJWK().X, jwks.Keys[0].X)

	token, err := first.Sign(jwtx.NewAccessClaims("u", "alice", exampleIssuer, time.Minute, time.Now()))
	require.NoError(t, err)
	_, err = jwtx.NewVerifierEdDSA(keyset, exampleIssuer).Verify(token)
	require.Error(t, err)
}
