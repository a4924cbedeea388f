package config

import (
	"os"
	"time"

	"furiousfive-server/internal/util"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config provides configuration for the Furious Five server
type Config struct {
	loaded bool

	Log struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`

	Store struct {
		// Type selects the room store backend: memory, postgres, or redis
		Type           string `yaml:"type" envconfig:"type"`
		PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
		MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
		RedisAddr      string `yaml:"redisAddr" envconfig:"redis_addr"`
		RedisDB        int    `yaml:"redisDb" envconfig:"redis_db"`
	} `yaml:"store"`

	Room struct {
		// DisconnectGraceSeconds is how long a silent connection keeps its
		// player marked connected
		DisconnectGraceSeconds int `yaml:"disconnectGraceSeconds" envconfig:"disconnect_grace_seconds"`

		// IdleTTLMinutes is how long an untouched room survives before eviction
		IdleTTLMinutes int `yaml:"idleTtlMinutes" envconfig:"idle_ttl_minutes"`

		// SweepIntervalMinutes is how often idle rooms are swept
		SweepIntervalMinutes int `yaml:"sweepIntervalMinutes" envconfig:"sweep_interval_minutes"`
	} `yaml:"room"`
}

// DisconnectGracePeriod returns the disconnect grace period as a duration
func (c Config) DisconnectGracePeriod() time.Duration {
	return time.Duration(c.Room.DisconnectGraceSeconds) * time.Second
}

// RoomIdleTTL returns the room idle TTL as a duration
func (c Config) RoomIdleTTL() time.Duration {
	return time.Duration(c.Room.IdleTTLMinutes) * time.Minute
}

// RoomSweepInterval returns the eviction sweep interval as a duration
func (c Config) RoomSweepInterval() time.Duration {
	return time.Duration(c.Room.SweepIntervalMinutes) * time.Minute
}

// DefaultConfig returns the configuration defaults
func DefaultConfig() Config {
	c := Config{}
	c.Log.Level = "info"
	c.Store.Type = "memory"
	c.Store.PGDSN = "postgres://postgres@localhost:5432/postgres?sslmode=disable"
	c.Store.MigrationsPath = "./sql"
	c.Store.RedisAddr = "localhost:6379"
	c.Room.DisconnectGraceSeconds = 60
	c.Room.IdleTTLMinutes = 120
	c.Room.SweepIntervalMinutes = 30
	return c
}

var config Config

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration.
// A missing config file is not an error; defaults plus the environment apply.
func Load() error {
	_ = godotenv.Load()

	config = DefaultConfig()

	configFile := util.Getenv("FF_CONFIG_FILE", "config.yaml")
	if file, err := os.Open(configFile); err == nil {
		err = yaml.NewDecoder(file).Decode(&config)
		_ = file.Close()
		if err != nil {
			return err
		}
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := envconfig.Process("ff", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
