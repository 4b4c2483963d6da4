// Package mongo manages the shared database connection.
package mongo

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	driver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DB is the shared database handle. It carries the connect timeout it was
// configured with so pings and the shutdown path do not re-read the
// environment.
type DB struct {
	*driver.Database

	timeout time.Duration
}

// New creates the shared database handle. The driver holds a single client
// for the life of the process and establishes socket connections lazily on
// first operation.
func New() (*DB, error) {
	cfg := ParseConfig()

	client, err := driver.NewClient(options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		return nil, err
	}

	return &DB{
		Database: client.Database(cfg.DatabaseName),
		timeout:  cfg.ConnectTimeout,
	}, nil
}

// Ping verifies the connection is alive.
func (db *DB) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), db.timeout)
	defer cancel()

	return db.Client().Ping(ctx, readpref.Primary())
}

// Close releases the shared connection.
func (db *DB) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), db.timeout)
	defer cancel()

	if err := db.Client().Disconnect(ctx); err != nil {
		log.Warn(err)
	}
}
