package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/service"
	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/store"
	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/store/drivers/sqlite"
	"github.com/aussiebroadwan/timecapsule/pkg/capsulesdk"
	"github.com/aussiebroadwan/timecapsule/pkg/cryptox"
	"github.com/aussiebroadwan/timecapsule/pkg/httpx"
	"github.com/aussiebroadwan/timecapsule/pkg/jwtx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testIssuer = "https://capsules.example.com"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "timecapsule-http")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	// Every test request comes from the same httptest address.
	relaxed := httpx.RateLimitConfig{RequestsPerWindow: 10000, Window: time.Minute, Burst: 10000}
	httpx.StrictLimit = relaxed
	httpx.ModerateLimit = relaxed

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// spyStore records whether any repository or transaction was requested.
type spyStore struct {
	store.Store
	touched atomic.Bool
}

func (s *spyStore) Users() store.Users {
	s.touched.Store(true)
	return s.Store.Users()
}

func (s *spyStore) Capsules() store.Capsules {
	s.touched.Store(true)
	return s.Store.Capsules()
}

func (s *spyStore) Tx(ctx context.Context) (store.Tx, error) {
	s.touched.Store(true)
	return s.Store.Tx(ctx)
}

func (s *spyStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	s.touched.Store(true)
	return s.Store.WithTx(ctx, fn)
}

type testServer struct {
	router *Router
	store  *spyStore
	raw    *sqlite.Store
}

type serverOptions struct {
	cfg    RouterConfig
	tokens *service.TokenService
}

type serverOption func(*serverOptions)

func withJWT(t *testing.T) serverOption {
	t.Helper()
	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)
	keys := jwtx.NewKeySet()
	require.NoError(t, keys.AddSigner(signer))

	return func(o *serverOptions) {
		o.cfg.Keys = keys
		o.cfg.Authenticator = httpx.JWTAuthenticator(jwtx.NewVerifierEdDSA(keys, testIssuer))
		o.tokens = &service.TokenService{Signer: signer, Issuer: testIssuer, TTL: time.Hour}
	}
}

func withMetrics(m *httpx.Metrics) serverOption {
	return func(o *serverOptions) { o.cfg.Metrics = m }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	raw, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	require.NoError(t, raw.ApplyMigrations())

	o := serverOptions{cfg: RouterConfig{BuildVersion: "test"}}
	for _, opt := range opts {
		opt(&o)
	}

	ts := &testServer{store: &spyStore{Store: raw}, raw: raw}
	ts.router = NewRouter(o.cfg, ts.store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ts.router.IdentityService = &service.IdentityService{
		Store:  ts.store,
		Hasher: cryptox.PasswordHasher{Scheme: cryptox.SchemeBcrypt, BcryptCost: bcrypt.MinCost},
	}
	ts.router.CapsuleService = &service.CapsuleService{Store: ts.store}
	ts.router.TokenService = o.tokens
	ts.router.ApplyRoutes()

	return ts
}

// clock returns a Now func that advances one second per call.
func clock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		t := current
		current = current.Add(time.Second)
		return t
	}
}

func (ts *testServer) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) postJSON(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return ts.do(t, req)
}

func (ts *testServer) register(t *testing.T, username, email, password string) {
	t.Helper()
	rec := ts.postJSON(t, "/register", capsulesdk.RegisterRequest{
		Username: username, Email: email, Password: password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (ts *testServer) login(t *testing.T, username, password string) capsulesdk.LoginResponse {
	t.Helper()
	rec := ts.postJSON(t, "/login", capsulesdk.LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp capsulesdk.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var msg capsulesdk.MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg), rec.Body.String())
	return msg.Message
}

func TestLivez(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health capsulesdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)
}

func TestReadyz(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var health capsulesdk.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Empty(t, health.Checks.Signer)

	require.NoError(t, ts.raw.Close())
	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "degraded", health.Status)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/timecapsules", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := ts.do(t, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.False(t, ts.store.touched.Load())
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t, withMetrics(httpx.NewMetrics("timecapsule")))

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `timecapsule_http_requests_total{code="200",method="GET",route="GET /livez"} 1`)
}

func TestSwaggerServed(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/timecapsules")
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
