package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/vasapolrittideah/showcase-api/shared/mailer"
	"github.com/vasapolrittideah/showcase-api/shared/storage"
)

// AccountServiceConfig is the complete runtime configuration, read from the environment.
type AccountServiceConfig struct {
	Env                 string `env:"APP_ENV"                envDefault:"development"`
	WebRoot             string `env:"WEB_ROOT"               envDefault:"./web"`
	AppPasswordResetURL string `env:"APP_PASSWORD_RESET_URL" envDefault:"http://localhost:8080/reset-password"`

	HTTP      HTTPConfig      `envPrefix:"HTTP_"`
	Mongo     MongoConfig     `envPrefix:"MONGO_"`
	Token     TokenConfig
	Guard     GuardConfig     `envPrefix:"GUARD_"`
	Storage   storage.Config  `envPrefix:"S3_"`
	Mailer    mailer.Config
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	Log       LogConfig       `envPrefix:"LOG_"`
}

type HTTPConfig struct {
	Addr            string        `env:"ADDR"             envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"    envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// MongoConfig selects the user store. An empty URI runs against the in-memory store.
type MongoConfig struct {
	URI            string        `env:"URI"`
	Database       string        `env:"DATABASE"        envDefault:"showcase"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

// TokenConfig holds signing material. Both secrets are mandatory; there is no fallback value.
type TokenConfig struct {
	Issuer                      string        `env:"JWT_ISSUER"            envDefault:"showcase-api"`
	SessionTokenSecret          string        `env:"JWT_SECRET,required,notEmpty"`
	SessionTokenExpiresIn       time.Duration `env:"JWT_EXPIRES_IN"        envDefault:"720h"`
	PasswordResetTokenSecret    string        `env:"PASSWORD_RESET_SECRET,required,notEmpty"`
	PasswordResetTokenExpiresIn time.Duration `env:"PASSWORD_RESET_TTL"    envDefault:"15m"`
}

// GuardConfig points the page guard at a remote verify-token endpoint. Empty means verify in process.
type GuardConfig struct {
	VerifyURL     string        `env:"VERIFY_URL"`
	VerifyTimeout time.Duration `env:"VERIFY_TIMEOUT" envDefault:"3s"`
}

// RateLimitConfig throttles the /auth routes. RedisAddr switches from per-process to shared counters.
type RateLimitConfig struct {
	Requests      int           `env:"REQUESTS"       envDefault:"20"`
	Window        time.Duration `env:"WINDOW"         envDefault:"1m"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB"       envDefault:"0"`
}

type LogConfig struct {
	Level  string `env:"LEVEL"  envDefault:"info"`
	Pretty bool   `env:"PRETTY" envDefault:"false"`
}

// IsProduction reports whether cookies must be marked Secure.
func (c *AccountServiceConfig) IsProduction() bool {
	return c.Env == "production"
}

// Load reads an optional .env file and then the process environment.
func Load() (*AccountServiceConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := env.ParseAs[AccountServiceConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AccountServiceConfig) validate() error {
	if c.Token.SessionTokenExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	if c.Token.PasswordResetTokenExpiresIn <= 0 {
		return errors.New("PASSWORD_RESET_TTL must be positive")
	}
	if c.Token.SessionTokenSecret == c.Token.PasswordResetTokenSecret {
		return errors.New("JWT_SECRET and PASSWORD_RESET_SECRET must differ")
	}
	if c.RateLimit.Requests < 1 || c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if c.Mailer.Enabled() {
		if err := c.Mailer.Validate(); err != nil {
			return err
		}
	}

	return nil
}
