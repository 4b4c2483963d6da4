// Package configs handles the application-wide configuration.
package configs

import (
	"time"

	"github.com/caarlos0/env/v6"
	log "github.com/sirupsen/logrus"
)

// Config struct for the application.
type Config struct {
	Host                 string        `env:"REGISTRY_HOST"`
	Port                 int           `env:"REGISTRY_PORT" envDefault:"3000"`
	// Optional server-side request deadline, 0 leaves requests without a
	// service-applied timeout.
	ServerRequestTimeout time.Duration `env:"REGISTRY_REQUEST_TIMEOUT" envDefault:"0s"`
	LogLevel             string        `env:"REGISTRY_LOG_LEVEL" envDefault:"info"`

	// Maximum account writes per second, 0 disables rate limiting.
	WriteMaxRate int `env:"REGISTRY_WRITE_MAX_RATE" envDefault:"0"`

	EnableIdempotencyMiddleware bool   `env:"REGISTRY_ENABLE_IDEMPOTENCY_MIDDLEWARE" envDefault:"false"`
	IdempotencyStoreType        string `env:"REGISTRY_IDEMPOTENCY_STORE_TYPE" envDefault:"local"`
	IdempotencyRedisURL         string `env:"REGISTRY_IDEMPOTENCY_REDIS_URL"`
}

// Parse parses environment variables to a valid Config.
func Parse() (*Config, error) {
	cfg := Config{}
	err := env.Parse(&cfg)
	return &cfg, err
}

// ConfigureLogger sets the process-wide logger level and format.
func ConfigureLogger(level string) {
	ll, err := log.ParseLevel(level)
	if err != nil {
		ll = log.InfoLevel
	}

	log.SetLevel(ll)
	log.SetFormatter(&log.JSONFormatter{})
}
