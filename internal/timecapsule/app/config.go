package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aussiebroadwan/timecapsule/pkg/cryptox"
	"github.com/aussiebroadwan/timecapsule/pkg/slogx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// AuthModeIdentifier accepts the user id returned by /login as the bearer credential.
	AuthModeIdentifier = "identifier"
	// AuthModeJWT issues EdDSA access tokens at /login and only accepts those.
	AuthModeJWT = "jwt"
)

type Config struct {
	Env                 string        `env:"ENV" envDefault:"dev"`
	LogLevel            string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat           string        `env:"LOG_FORMAT" envDefault:"json"`
	Port                int           `env:"PORT" envDefault:"5000"`
	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
	CORSAllowedOrigin   string        `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`

	Database Database `envPrefix:"DATABASE_"`
	Password Password `envPrefix:"PASSWORD_"`
	Auth     Auth     `envPrefix:"AUTH_"`
}

// Database selects the store driver.
type Database struct {
	Driver string `env:"DRIVER" envDefault:"sqlite"`
	File   string `env:"FILE" envDefault:"timecapsule.db"` // sqlite only
	DSN    string `env:"DSN"`                              // postgres only
}

// Password configures how new password hashes are produced.
type Password struct {
	PepperFile string `env:"PEPPER_FILE" envDefault:"pepper"`
	Hasher     string `env:"HASHER" envDefault:"argon2id"`
	BcryptCost int    `env:"BCRYPT_COST" envDefault:"10"`
}

// Auth configures the credential accepted on capsule endpoints.
type Auth struct {
	Mode     string        `env:"MODE" envDefault:"identifier"`
	Issuer   string        `env:"ISSUER" envDefault:"timecapsule"`
	KeyFile  string        `env:"KEY_FILE"`
	TokenTTL time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
}

// LoadConfig reads the configuration from the process environment.
func LoadConfig() (Config, error) {
	return parseConfig(env.Options{})
}

func parseConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	var errs []error

	if _, err := slogx.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if _, err := slogx.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("LOG_FORMAT: %w", err))
	}

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}

	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.File == "" {
			errs = append(errs, errors.New("DATABASE_FILE is required for sqlite"))
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("DATABASE_DSN is required for postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DATABASE_DRIVER %q", c.Database.Driver))
	}

	if _, err := c.Password.hasher(); err != nil {
		errs = append(errs, fmt.Errorf("PASSWORD_HASHER: %w", err))
	}

	switch c.Auth.Mode {
	case AuthModeIdentifier:
	case AuthModeJWT:
		if c.Auth.Issuer == "" {
			errs = append(errs, errors.New("AUTH_ISSUER is required for jwt mode"))
		}
		if c.Auth.TokenTTL <= 0 {
			errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUTH_MODE %q", c.Auth.Mode))
	}

	return errors.Join(errs...)
}

func (p Password) hasher() (cryptox.PasswordHasher, error) {
	return cryptox.NewPasswordHasher(p.Hasher, p.BcryptCost)
}
