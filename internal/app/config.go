package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/specialistvlad/dmngrid/internal/engine"
	"gopkg.in/yaml.v3"
)

// Result store backends.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// DefaultServiceAddr is where the evaluation service listens unless told
// otherwise. It matches the remote engine's default base URL.
const DefaultServiceAddr = ":21345"

// Config holds all the necessary configuration for an App instance to run.
//
// Values are layered: defaults, then the YAML config file, then DMNGRID_*
// environment variables. Command-line flags are applied last by the CLI.
type Config struct {
	LogFormat string `yaml:"logFormat" env:"DMNGRID_LOG_FORMAT"`
	LogLevel  string `yaml:"logLevel" env:"DMNGRID_LOG_LEVEL"`

	// Engine is the id of the engine used when none is requested.
	Engine string `yaml:"engine" env:"DMNGRID_ENGINE"`
	// Engines holds loosely typed options keyed by engine id.
	Engines map[string]map[string]any `yaml:"engines"`
	// RemoteURL overrides engines.remoteService.baseUrl.
	RemoteURL string `yaml:"-" env:"DMNGRID_REMOTE_URL"`

	// Concurrency bounds batch test runs. 0 picks a default per engine.
	Concurrency int `yaml:"concurrency" env:"DMNGRID_CONCURRENCY"`

	Store StoreConfig `yaml:"store"`

	ServiceAddr string `yaml:"serviceAddr" env:"DMNGRID_SERVICE_ADDR"`
}

// StoreConfig selects where test results are kept.
type StoreConfig struct {
	Type      string        `yaml:"type" env:"DMNGRID_STORE"`
	RedisAddr string        `yaml:"redisAddr" env:"DMNGRID_REDIS_ADDR"`
	Prefix    string        `yaml:"prefix" env:"DMNGRID_REDIS_PREFIX"`
	TTL       time.Duration `yaml:"ttl" env:"DMNGRID_RESULT_TTL"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		LogFormat:   "text",
		LogLevel:    "info",
		Engine:      engine.LocalInterpreterID,
		Engines:     map[string]map[string]any{},
		Store:       StoreConfig{Type: StoreMemory},
		ServiceAddr: DefaultServiceAddr,
	}
}

// LoadConfig layers the config file at path, when path is not empty, and
// the environment over the defaults. A nil environ reads the process
// environment.
func LoadConfig(path string, environ map[string]string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file '%s': %w", path, err)
		}
	}

	if err := env.Parse(&cfg, env.Options{Environment: environ}); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %w", err)
	}

	if cfg.RemoteURL != "" {
		if cfg.Engines == nil {
			cfg.Engines = map[string]map[string]any{}
		}
		opts := cfg.Engines[engine.RemoteServiceID]
		if opts == nil {
			opts = map[string]any{}
		}
		opts["baseUrl"] = cfg.RemoteURL
		cfg.Engines[engine.RemoteServiceID] = opts
	}
	return cfg, nil
}

// NewConfig validates cfg and returns it.
func NewConfig(cfg Config) (*Config, error) {
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}

	switch cfg.Engine {
	case engine.LocalInterpreterID, engine.RemoteServiceID:
	default:
		return nil, fmt.Errorf("invalid engine %q: must be '%s' or '%s'", cfg.Engine, engine.LocalInterpreterID, engine.RemoteServiceID)
	}
	for id := range cfg.Engines {
		if id != engine.LocalInterpreterID && id != engine.RemoteServiceID {
			return nil, fmt.Errorf("options given for unknown engine %q", id)
		}
	}

	if cfg.Concurrency < 0 {
		return nil, errors.New("concurrency cannot be negative")
	}

	switch cfg.Store.Type {
	case StoreMemory:
	case StoreRedis:
		if cfg.Store.RedisAddr == "" {
			return nil, errors.New("the redis store requires a redis address")
		}
	default:
		return nil, fmt.Errorf("invalid store %q: must be '%s' or '%s'", cfg.Store.Type, StoreMemory, StoreRedis)
	}

	return &cfg, nil
}
