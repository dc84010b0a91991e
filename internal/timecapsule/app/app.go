package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/timecapsule/internal/timecapsule/http"
	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/service"
	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/store"
	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/store/drivers/postgres"
	"github.com/aussiebroadwan/timecapsule/internal/timecapsule/store/drivers/sqlite"
	"github.com/aussiebroadwan/timecapsule/pkg/cryptox"
	"github.com/aussiebroadwan/timecapsule/pkg/httpx"
	"github.com/aussiebroadwan/timecapsule/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

// Application encapsulates the time capsule service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	keys    *AuthKeys // nil in identifier mode
	metrics *httpx.Metrics

	// Services
	identityService *service.IdentityService
	capsuleService  *service.CapsuleService
	tokenService    *service.TokenService // nil in identifier mode

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "timecapsule",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.Password.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load password pepper: %w", err)
	}

	if err := app.initDatabase(context.Background()); err != nil {
		return nil, err
	}

	keys, err := InitAuthKeys(app.cfg.Auth, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize signing keys: %w", err)
	}
	app.keys = keys

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler is the fully wired HTTP handler.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("time capsule service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"database", app.cfg.Database.Driver,
		"auth_mode", app.cfg.Auth.Mode,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down time capsule service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("time capsule service stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations
func (app *Application) initDatabase(ctx context.Context) error {
	var db store.Store

	switch app.cfg.Database.Driver {
	case DriverPostgres:
		pg, err := postgres.NewStore(ctx, app.cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		db = pg
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.Database.File)
		lite, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		db = lite
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.Database.Driver)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() error {
	hasher, err := app.cfg.Password.hasher()
	if err != nil {
		return err
	}

	app.identityService = &service.IdentityService{
		Store:  app.db,
		Hasher: hasher,
	}
	app.capsuleService = &service.CapsuleService{Store: app.db}

	if app.keys != nil {
		app.tokenService = &service.TokenService{
			Signer: app.keys.Signer,
			Issuer: app.cfg.Auth.Issuer,
			TTL:    app.cfg.Auth.TokenTTL,
		}
	}
	return nil
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	app.metrics = httpx.NewMetrics("timecapsule")

	cfg := httpapi.RouterConfig{
		Authenticator: httpx.IdentifierAuthenticator(),
		Metrics:       app.metrics,
		BuildVersion:  BuildVersion,
		CORSOrigin:    app.cfg.CORSAllowedOrigin,
	}
	if app.keys != nil {
		cfg.Authenticator = httpx.JWTAuthenticator(app.keys.Verifier)
		cfg.Keys = app.keys.KeySet
	}

	router := httpapi.NewRouter(cfg, app.db, app.logger)

	// Wire services to router
	router.IdentityService = app.identityService
	router.CapsuleService = app.capsuleService
	router.TokenService = app.tokenService // nil in identifier mode
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
