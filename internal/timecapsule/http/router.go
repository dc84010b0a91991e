package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/service"
	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/store"
	"github.com/aussiebroadwan/timecapsule/pkg/httpx"
	"github.com/aussiebroadwan/timecapsule/pkg/jwtx"
	"github.com/aussiebroadwan/timecapsule/pkg/slogx"

	_ "github.com/aussiebroadwan/timecapsule/api/timecapsule" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// RouterConfig selects how requests are authenticated and observed.
type RouterConfig struct {
	// Authenticator resolves the acting user id from a request.
	Authenticator httpx.Authenticator
	// Keys is the public key set served at /.well-known/jwks.json. Nil when
	// the service runs with bare identifier credentials.
	Keys *jwtx.KeySet
	// Metrics, when set, instruments every request and serves /metrics.
	Metrics *httpx.Metrics

	BuildVersion string
	CORSOrigin   string
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	authn        httpx.Authenticator
	keys         *jwtx.KeySet
	metrics      *httpx.Metrics
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store           store.Store
	IdentityService *service.IdentityService
	CapsuleService  *service.CapsuleService
	TokenService    *service.TokenService // Optional: only set when access tokens are issued
}

func NewRouter(cfg RouterConfig, st store.Store, logger *slog.Logger) *Router {
	authn := cfg.Authenticator
	if authn == nil {
		authn = httpx.IdentifierAuthenticator()
	}

	r := &Router{
		Mux:          http.NewServeMux(),
		authn:        authn,
		keys:         cfg.Keys,
		metrics:      cfg.Metrics,
		buildVersion: cfg.BuildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// The mux sets r.Pattern on the request it is handed, so metrics must
	// sit innermost to see the matched route.
	r.middlewares = []httpx.Middleware{
		httpx.CORSMiddleware(cfg.CORSOrigin),
		slogx.HTTPMiddleware(r.logger),
	}
	if r.metrics != nil {
		r.middlewares = append(r.middlewares, r.metrics.Middleware())
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerIdentity()
	r.registerCapsules()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Time Capsule Service API
//	@version		0.1.0
//	@description	Register, log in, and store time capsules: a title, free text, an optional image and a list of recipients.
//	@description
//	@description				Capsule endpoints require "Authorization: Bearer {credential}" where the credential is the
//	@description				userId returned by /login, or the accessToken when the service issues signed tokens.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/timecapsule
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:5000
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Format: "Bearer {credential}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerIdentity() {
	registerHandler := &RegisterHandler{IdentityService: r.IdentityService}
	loginHandler := &LoginHandler{
		IdentityService: r.IdentityService,
		TokenService:    r.TokenService,
	}

	// POST /register - strict rate limit by IP (public signup endpoint)
	r.Mux.Handle("POST /register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /login - strict rate limit by IP + username to slow brute force
	r.Mux.Handle("POST /login",
		httpx.Chain(loginHandler,
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "username"),
		),
	)

	if r.keys != nil {
		r.Mux.Handle("GET /.well-known/jwks.json",
			httpx.Chain(JWKSHandler(r.keys),
				httpx.RateLimitByIP(httpx.PublicLimit),
			),
		)
	}
}

func (r *Router) registerCapsules() {
	h := &CapsulesHandler{CapsuleService: r.CapsuleService}

	secured := func(next http.HandlerFunc) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.authn),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /timecapsules", secured(h.HandleList))
	r.Mux.Handle("POST /timecapsules", secured(h.HandleCreate))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if r.metrics != nil {
		r.Mux.Handle("GET /metrics", r.metrics.Handler())
	}
}
