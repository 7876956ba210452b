// Package config loads server configuration from a TOML file.
//
// Configuration only applies to the serve command; the generate and scan
// commands are configured entirely by flags. Missing files are not an
// error - the defaults describe a standalone instance with a file cache.
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/playgraph/playgraph/pkg/errors"
)

// Cache backends selectable in the config file.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the server configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `toml:"listen"`

	Cache   CacheConfig   `toml:"cache"`
	Diagram DiagramConfig `toml:"diagram"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	// Backend is one of "file", "redis", "none".
	Backend string `toml:"backend"`

	// Dir is the cache directory for the file backend.
	Dir string `toml:"dir"`

	// RedisAddr is the host:port for the redis backend.
	RedisAddr string `toml:"redis_addr"`

	// TTLMinutes bounds staleness of cached diagrams.
	TTLMinutes int `toml:"ttl_minutes"`
}

// DiagramConfig holds rendering defaults.
type DiagramConfig struct {
	// Layout is the default flow direction when a request omits one.
	Layout string `toml:"layout"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Listen: ":8080",
		Cache: CacheConfig{
			Backend:    BackendFile,
			TTLMinutes: 15,
		},
		Diagram: DiagramConfig{
			Layout: "LR",
		},
	}
}

// Load reads the configuration from path, layered over the defaults.
// A missing file returns the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid config %s", path)
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// TTL returns the configured cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

func validate(cfg Config) error {
	switch cfg.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidInput,
			"invalid cache backend: %q (must be one of: file, redis, none)", cfg.Cache.Backend)
	}
	if cfg.Cache.Backend == BackendRedis && cfg.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "redis backend requires redis_addr")
	}
	return nil
}
