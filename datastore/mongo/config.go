package mongo

import (
	"time"

	"github.com/caarlos0/env/v6"
)

// Config struct for the mongo datastore.
type Config struct {
	URI            string        `env:"REGISTRY_MONGO_URI" envDefault:"mongodb://127.0.0.1:27017"`
	DatabaseName   string        `env:"REGISTRY_DB_NAME" envDefault:"test_db"`
	ConnectTimeout time.Duration `env:"REGISTRY_MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
}

// ParseConfig parses environment variables to a valid Config.
func ParseConfig() (cfg Config) {
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return
}
