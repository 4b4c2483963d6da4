package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gomodule/redigo/redis"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Idempotency Handler middleware
// ===========================================================================

type IdempotencyStoreType int

const (
	IdempotencyStoreTypeLocal IdempotencyStoreType = iota
	IdempotencyStoreTypeShared
	IdempotencyStoreTypeRedis
)

func (ist IdempotencyStoreType) String() string {
	return [...]string{"local", "shared", "redis"}[ist]
}

type IdempotencyHandlerOptions struct {
	IgnorePaths []string
	Expiry      time.Duration
}

type IdempotencyStore interface {
	Get(key string) (bool, error)               // Get key by name, return bool "found" and possible error
	Set(key string, expiry time.Duration) error // Set key by name & expiry, return possible error
}

// Redis store for idempotency keys
type IdempotencyStoreRedis struct {
	conn   redis.Conn
	prefix string
}

func NewIdempotencyStoreRedis(c redis.Conn) *IdempotencyStoreRedis {
	return &IdempotencyStoreRedis{conn: c, prefix: "idempotencykey"}
}

func (r *IdempotencyStoreRedis) prefixedKey(key string) string {
	return fmt.Sprintf("%s:%s", r.prefix, key)
}

func (r *IdempotencyStoreRedis) Get(key string) (bool, error) {
	keyExists, err := redis.Bool(r.conn.Do("EXISTS", r.prefixedKey(key)))
	return keyExists, err
}

func (r *IdempotencyStoreRedis) Set(key string, expiry time.Duration) error {
	res, err := r.conn.Do("PSETEX", r.prefixedKey(key), int(expiry.Milliseconds()), 1)
	if err != nil {
		return err
	}

	if res != "OK" {
		return fmt.Errorf("failed to set key: %v", res)
	}

	return nil
}

// Mongo store for idempotency keys, shared with the main app database
type IdempotencyStoreMongo struct {
	col *mongo.Collection
}

type idempotencyItem struct {
	Key        string    `bson:"_id"`
	ExpiryDate time.Time `bson:"expiryDate"`
}

func NewIdempotencyStoreMongo(db *mongo.Database) *IdempotencyStoreMongo {
	return &IdempotencyStoreMongo{col: db.Collection("IdempotencyKeys")}
}

func (m *IdempotencyStoreMongo) Get(key string) (bool, error) {
	var item idempotencyItem
	err := m.col.FindOne(context.Background(),
		bson.M{"_id": key, "expiryDate": bson.M{"$gt": time.Now()}},
	).Decode(&item)

	if err == mongo.ErrNoDocuments {
		// key doesn't exist or has expired
		return false, nil
	} else if err != nil {
		return false, err
	}

	return true, nil
}

func (m *IdempotencyStoreMongo) Set(key string, expiry time.Duration) error {
	// update expiry date if exists or create a new item
	_, err := m.col.UpdateOne(context.Background(),
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"expiryDate": time.Now().Add(expiry)}},
		options.Update().SetUpsert(true),
	)
	return err
}

// Prune deletes all expired keys from the collection
func (m *IdempotencyStoreMongo) Prune() error {
	_, err := m.col.DeleteMany(context.Background(),
		bson.M{"expiryDate": bson.M{"$lt": time.Now()}},
	)
	return err
}

// Local / in-memory store for idempotency keys, mainly for testing purposes
type IdempotencyStoreLocal struct {
	mu   sync.Mutex
	keys map[string]time.Time // key: expiry
}

func NewIdempotencyStoreLocal() *IdempotencyStoreLocal {
	return &IdempotencyStoreLocal{keys: make(map[string]time.Time)}
}

func (m *IdempotencyStoreLocal) Get(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.keys[key]
	if !ok {
		return false, nil
	}

	// Still valid
	if v.After(time.Now()) {
		return true, nil
	}

	// Expired
	// NOTE: item is removed as a side effect
	delete(m.keys, key)
	return false, nil
}

func (m *IdempotencyStoreLocal) Set(key string, expiry time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.keys[key] = time.Now().Add(expiry)
	return nil
}

// UseIdempotency returns a handler that checks for request idempotency
// when applicable.
func UseIdempotency(h http.Handler, opts IdempotencyHandlerOptions, store IdempotencyStore) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		// Check for ignored paths
		for _, path := range opts.IgnorePaths {
			if strings.HasPrefix(r.URL.Path, path) {
				h.ServeHTTP(rw, r)
				return
			}
		}

		// Only POST requests are checked
		if r.Method != http.MethodPost {
			h.ServeHTTP(rw, r)
			return
		}

		key := r.Header.Get("Idempotency-Key")
		if len(key) == 0 {
			http.Error(rw, "Idempotency-Key header not found", http.StatusBadRequest)
			return
		}

		exists, err := store.Get(key)
		if err != nil {
			log.
				WithFields(log.Fields{"error": err, "key": key}).
				Warn("Error while reading idempotency key from storage")
			http.Error(rw, "Error while reading idempotency key", http.StatusInternalServerError)
			return
		}

		if exists {
			http.Error(rw, fmt.Sprintf("Idempotency-Key conflict, key: %s", key), http.StatusConflict)
			return
		}

		if err := store.Set(key, opts.Expiry); err != nil {
			log.
				WithFields(log.Fields{"error": err, "key": key}).
				Warn("Error while saving used idempotency key")
			http.Error(rw, "Error while saving used idempotency key", http.StatusInternalServerError)
			return
		}

		h.ServeHTTP(rw, r)
	})
}
