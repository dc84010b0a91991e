package timecapsule_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/timecapsule/pkg/capsulesdk"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	client := setupContainer(t, nil)

	session := registerAndLogin(t, client, "alice")
	require.Equal(t, session.UserID(), session.Credential(), "identifier mode uses the user id as credential")
}

func TestRegisterDuplicate(t *testing.T) {
	client := setupContainer(t, nil)
	ctx := t.Context()

	registerAndLogin(t, client, "alice")

	err := client.Register(ctx, capsulesdk.RegisterRequest{
		Username: "alice", Email: "someone-else@example.com", Password: testPassword,
	})
	assertAPIError(t, err, http.StatusBadRequest, "Username or email already exists")

	err = client.Register(ctx, capsulesdk.RegisterRequest{
		Username: "bob", Email: "alice@example.com", Password: testPassword,
	})
	assertAPIError(t, err, http.StatusBadRequest, "Username or email already exists")
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	client := setupContainer(t, nil)
	ctx := t.Context()

	registerAndLogin(t, client, "alice")

	_, err := client.Login(ctx, "alice", "wrong")
	assertAPIError(t, err, http.StatusBadRequest, "Invalid username or password")

	_, err = client.Login(ctx, "nobody", testPassword)
	assertAPIError(t, err, http.StatusBadRequest, "Invalid username or password")
}

func TestLoginIssuesAccessToken(t *testing.T) {
	client := setupContainer(t, map[string]string{"AUTH_MODE": "jwt", "AUTH_ISSUER": "timecapsule-e2e"})
	ctx := t.Context()

	session := registerAndLogin(t, client, "alice")
	require.NotEqual(t, session.UserID(), session.Credential())

	_, err := session.ListCapsules(ctx)
	require.NoError(t, err)

	// The bare id is rejected once tokens are issued.
	_, err = client.NewSession(session.UserID(), session.UserID()).ListCapsules(ctx)
	assertUnauthorized(t, err)
}
