// Package config loads accountd settings from ACCOUNT_* environment
// variables.
package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// Config controls the accountd process.
type Config struct {
	DatabaseDSN string `env:"ACCOUNT_DATABASE_DSN" envDefault:"file:account.db?cache=shared"`
	DebugSQL    bool   `env:"ACCOUNT_SQL_DEBUG"`

	HTTPAddr string `env:"ACCOUNT_HTTP_ADDR" envDefault:"127.0.0.1:8080"`

	SigningKey  string        `env:"ACCOUNT_SIGNING_KEY"`
	Issuer      string        `env:"ACCOUNT_ISSUER"        envDefault:"go-account"`
	TokenTTL    time.Duration `env:"ACCOUNT_TOKEN_TTL"     envDefault:"1h"`
	SessionTTL  time.Duration `env:"ACCOUNT_SESSION_TTL"   envDefault:"24h"`
	LinkBaseURL string        `env:"ACCOUNT_LINK_BASE_URL" envDefault:"http://localhost:8080"`
	BcryptCost  int           `env:"ACCOUNT_BCRYPT_COST"   envDefault:"12"`
	HashIDs     bool          `env:"ACCOUNT_HASH_IDS"`
	SessionFile string        `env:"ACCOUNT_SESSION_FILE"  envDefault:".account/session.msgpack"`

	// PollInterval re-queries open directory streams. Zero only refreshes
	// on writes made by this process.
	PollInterval time.Duration `env:"ACCOUNT_POLL_INTERVAL" envDefault:"0s"`

	LogLevel       string `env:"ACCOUNT_LOG_LEVEL"       envDefault:"info"`
	LogDevelopment bool   `env:"ACCOUNT_LOG_DEVELOPMENT"`
}

// Load reads the process environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to parse environment")
	}
	return cfg, cfg.Validate()
}

// LoadFrom reads the given variables instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to parse environment")
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.DatabaseDSN, validation.Required),
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.SigningKey, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.LinkBaseURL, validation.Required, is.URL),
		validation.Field(&c.SessionTTL, validation.Min(time.Minute)),
		validation.Field(&c.BcryptCost, validation.Min(4), validation.Max(31)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid configuration")
	}
	return nil
}
