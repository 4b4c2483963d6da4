package accounts

import (
	"github.com/caarlos0/env/v6"
)

// Config struct for account storage.
type Config struct {
	CollectionName string `env:"REGISTRY_ACCOUNTS_COLLECTION" envDefault:"Accounts"`
}

// ParseConfig parses environment variables to a valid Config.
func ParseConfig() (cfg Config) {
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return
}
