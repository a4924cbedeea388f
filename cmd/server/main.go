package main

import (
	"flag"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"furiousfive-server/internal/config"
	"furiousfive-server/internal/mux"
	"furiousfive-server/pkg/db"
	"furiousfive-server/pkg/store"
)

const readTimeout = time.Second * 5
const writeTimeout = time.Second * 10

// Version is the server version
var Version = "v0.0.0-dev"

var addr = flag.String("addr", ":5000", "the listen address")

func main() {
	flag.Parse()
	setupLogger()

	st := newStore()

	c := cors.New(cors.Options{
		AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})

	srv := &http.Server{
		Addr:         *addr,
		Handler:      loggingHandler(c.Handler(mux.NewMux(Version, st))),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	logrus.WithFields(logrus.Fields{
		"addr":  srv.Addr,
		"store": config.Instance().Store.Type,
	}).Info("listening")
	logrus.Fatal(srv.ListenAndServe())
}

// newStore builds the room store the configuration asks for
func newStore() store.Store {
	cfg := config.Instance()

	switch cfg.Store.Type {
	case "", "memory":
		return store.NewMemory(cfg.RoomIdleTTL(), cfg.RoomSweepInterval())
	case "postgres":
		db.Migrate()
		return store.NewPostgres(db.Instance(), cfg.RoomIdleTTL(), cfg.RoomSweepInterval())
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr: cfg.Store.RedisAddr,
			DB:   cfg.Store.RedisDB,
		})
		return store.NewRedis(client, cfg.RoomIdleTTL())
	}

	logrus.WithField("type", cfg.Store.Type).Fatal("unknown store type")
	return nil
}

func loggingHandler(next http.Handler) http.Handler {
	if config.Instance().Log.DisableAccessLogs {
		return next
	}

	return handlers.CombinedLoggingHandler(os.Stdout, next)
}

func setupLogger() {
	if lvl := config.Instance().Log.Level; lvl != "" {
		level, err := logrus.ParseLevel(lvl)
		if err != nil {
			logrus.WithError(err).Fatal("could not parse level")
		}

		logrus.SetLevel(level)
	}

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}
