package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Backend API
	APIBaseURL  string        `env:"CARTEIRA_API_URL"     envDefault:"http://localhost:8080"`
	HTTPTimeout time.Duration `env:"CARTEIRA_HTTP_TIMEOUT" envDefault:"30s"`

	// Session state (token, cached user, device token). Empty means the
	// user config directory is used.
	StateDir string `env:"CARTEIRA_STATE_DIR" envDefault:""`

	// Connectivity monitor
	PingInterval time.Duration `env:"CARTEIRA_PING_INTERVAL" envDefault:"5s"`

	// Logging
	LogLevel  string `env:"CARTEIRA_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"CARTEIRA_LOG_FORMAT" envDefault:"console"`

	// Dev server
	DevServerPort            string        `env:"DEVSERVER_PORT"             envDefault:"8080"`
	DevServerJWTSecret       string        `env:"DEVSERVER_JWT_SECRET"       envDefault:"dev-only-secret"`
	DevServerJWTExpiration   time.Duration `env:"DEVSERVER_JWT_EXPIRATION"   envDefault:"24h"`
	DevServerReadTimeout     time.Duration `env:"DEVSERVER_READ_TIMEOUT"     envDefault:"30s"`
	DevServerWriteTimeout    time.Duration `env:"DEVSERVER_WRITE_TIMEOUT"    envDefault:"30s"`
	DevServerShutdownTimeout time.Duration `env:"DEVSERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
