package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/gorilla/mux"
	"github.com/hydraulics-labs/account-registry-api/accounts"
	"github.com/hydraulics-labs/account-registry-api/configs"
	datastore "github.com/hydraulics-labs/account-registry-api/datastore/mongo"
	"github.com/hydraulics-labs/account-registry-api/debug"
	"github.com/hydraulics-labs/account-registry-api/handlers"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

const version = "0.1.0"

var (
	sha1ver   string // sha1 revision used to build the program
	buildTime string // when the executable was built
)

func main() {
	var printVersion bool

	// If we should just print the version number and exit
	flag.BoolVar(&printVersion, "version", false, "if true, print version and exit")
	flag.Parse()

	if printVersion {
		fmt.Printf("v%s build on %s from sha1 %s\n", version, buildTime, sha1ver)
		os.Exit(0)
	}

	cfg, err := configs.Parse()
	if err != nil {
		panic(err)
	}

	runServer(cfg)

	os.Exit(0)
}

func runServer(cfg *configs.Config) {
	configs.ConfigureLogger(cfg.LogLevel)

	log.Info("Starting server")

	// Database
	db, err := datastore.New()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		db.Close()
		log.Info("Closed database connection")
	}()

	// Services
	var serviceOpts []accounts.ServiceOption
	if cfg.WriteMaxRate > 0 {
		writeRatelimiter := ratelimit.New(cfg.WriteMaxRate, ratelimit.WithoutSlack)
		serviceOpts = append(serviceOpts, accounts.WithWriteRatelimiter(writeRatelimiter))
	}
	accountService := accounts.NewService(accounts.NewMongoStore(db.Database), serviceOpts...)

	// HTTP handling
	accountHandler := handlers.NewAccounts(accountService)
	debugService := debug.Service{
		RepoUrl:   "https://github.com/hydraulics-labs/account-registry-api",
		Sha1ver:   sha1ver,
		BuildTime: buildTime,
	}

	r := mux.NewRouter()

	// Debug
	r.HandleFunc("/debug", debugService.HandleDebug).Methods(http.MethodGet)

	// Health
	r.HandleFunc("/health/ready", handlers.HandleHealthReady).Methods(http.MethodGet)
	r.Handle("/health/liveness", handlers.Liveness(db.Ping)).Methods(http.MethodGet)

	// Accounts
	// The stats route is registered before the id route so "stats" is never
	// read as an identifier.
	r.Handle("/accounts/stats", accountHandler.Stats()).Methods(http.MethodGet)                           // stats
	r.Handle("/accounts", handlers.UseAccountPayload(accountHandler.Create())).Methods(http.MethodPost)   // create
	r.Handle("/accounts/{id}", handlers.UseAccountPayload(accountHandler.Update())).Methods(http.MethodPut) // update

	var h http.Handler = r
	if cfg.ServerRequestTimeout > 0 {
		h = http.TimeoutHandler(h, cfg.ServerRequestTimeout, "request timed out")
	}
	h = handlers.UseCors(h)
	h = handlers.UseLogging(h)
	h = handlers.UseCompress(h)
	h = handlers.UseJson(h)

	// Setup idempotency key middleware if it's enabled
	if cfg.EnableIdempotencyMiddleware {
		var is handlers.IdempotencyStore
		switch cfg.IdempotencyStoreType {
		// Shared Mongo store (same as for main app)
		case handlers.IdempotencyStoreTypeShared.String():
			is = handlers.NewIdempotencyStoreMongo(db.Database)
		// Redis, separate from app db
		case handlers.IdempotencyStoreTypeRedis.String():
			if cfg.IdempotencyRedisURL == "" {
				log.Fatal("idempotency middleware store set to redis but Redis URL is empty")
			}
			pool := &redis.Pool{
				MaxIdle:   80,
				MaxActive: 12000,
				Dial: func() (redis.Conn, error) {
					c, err := redis.DialURL(cfg.IdempotencyRedisURL)
					if err != nil {
						panic(err.Error())
					}
					return c, err
				},
			}

			client := pool.Get()

			defer func() {
				log.Info("Closing Redis client..")
				if err := client.Close(); err != nil {
					log.Warn(err)
				}
			}()

			is = handlers.NewIdempotencyStoreRedis(client)
		case handlers.IdempotencyStoreTypeLocal.String():
			is = handlers.NewIdempotencyStoreLocal()
		}

		h = handlers.UseIdempotency(h, handlers.IdempotencyHandlerOptions{
			Expiry:      1 * time.Hour,
			IgnorePaths: []string{"/accounts/stats"}, // Stats is read-only
		}, is)
	}

	// Server boilerplate
	srv := &http.Server{
		Handler:      h,
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		WriteTimeout: 0, // Disabled, set cfg.ServerRequestTimeout instead
		ReadTimeout:  0, // Disabled, set cfg.ServerRequestTimeout instead
	}

	// Run our server in a goroutine so that it doesn't block.
	go func() {
		log.
			WithFields(log.Fields{
				"host": cfg.Host,
				"port": cfg.Port,
			}).
			Info("Server listening")
		if err := srv.ListenAndServe(); err != nil {
			log.Warn(err)
		}
	}()

	// Trap interrupt or sigterm and gracefully shutdown the server
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	// Block until we receive our signal.
	sig := <-c

	log.Infof("Got signal: %s. Shutting down..", sig)

	// Create a deadline to wait for.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warnf("Error in server shutdown: %s", err)
	}
}
