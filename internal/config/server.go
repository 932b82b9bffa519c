package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendBadger = "badger"
)

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	BrokerBackend    string `env:"BROKER_BACKEND" envDefault:"redis"`
	ActionLogBackend string `env:"ACTION_LOG_BACKEND" envDefault:"redis"`
	BadgerDir        string `env:"BADGER_DIR" envDefault:"data/actions"`

	CacheTTL           time.Duration `env:"CACHE_TTL" envDefault:"5m"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000"`

	MigrateOnStart bool `env:"MIGRATE_ON_START" envDefault:"true"`
	StartupRetries int  `env:"STARTUP_RETRIES" envDefault:"5"`
}

func LoadServer() (ServerConfig, error) {
	loadDotEnv()
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	switch cfg.BrokerBackend {
	case BackendRedis, BackendMemory:
	default:
		return cfg, fmt.Errorf("BROKER_BACKEND: unsupported value %q", cfg.BrokerBackend)
	}
	switch cfg.ActionLogBackend {
	case BackendRedis, BackendBadger:
	default:
		return cfg, fmt.Errorf("ACTION_LOG_BACKEND: unsupported value %q", cfg.ActionLogBackend)
	}
	return cfg, nil
}
