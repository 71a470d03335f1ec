// Package config loads rendercache settings from a YAML or JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/rendercache/cache"
	"github.com/IvanBrykalov/rendercache/internal/logging"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the file representation of the cache settings.
type Config struct {
	Private CacheConfig  `yaml:"private" json:"private"`
	Shared  CacheConfig  `yaml:"shared" json:"shared"`
	Warm    WarmConfig   `yaml:"warm" json:"warm"`
	Log     LogConfig    `yaml:"log" json:"log"`
	Server  ServerConfig `yaml:"server" json:"server"`
}

// CacheConfig holds the options of one cache shape.
type CacheConfig struct {
	MaxSize int      `yaml:"max_size" json:"max_size"`
	TTL     Duration `yaml:"ttl" json:"ttl"`
	// EnableMetrics is honored by the private shape only.
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
}

// WarmConfig tunes predictive warming.
type WarmConfig struct {
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// ServerConfig configures the HTTP stats endpoint of the serve command.
type ServerConfig struct {
	Addr string `yaml:"addr" json:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Private: CacheConfig{MaxSize: 100, TTL: Duration(cache.DefaultTTL), EnableMetrics: true},
		Shared:  CacheConfig{MaxSize: 200, TTL: Duration(cache.DefaultTTL), EnableMetrics: true},
		Warm:    WarmConfig{Concurrency: 1},
		Log:     LogConfig{Level: "info", Format: "json"},
		Server:  ServerConfig{Addr: ":8080"},
	}
}

// Load reads a config file from path on top of Default().
// Supported formats: JSON (.json), YAML (.yaml, .yml).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension %q: use .json, .yaml, or .yml", ext)
	}
	return &cfg, nil
}

// Validate checks a Config for values the caches cannot work with.
func Validate(cfg Config) error {
	shapes := []struct {
		name string
		c    CacheConfig
	}{{"private", cfg.Private}, {"shared", cfg.Shared}}
	for _, sh := range shapes {
		name, c := sh.name, sh.c
		if c.MaxSize <= 0 {
			return fmt.Errorf("%w: %s.max_size must be > 0, got %d", ErrInvalid, name, c.MaxSize)
		}
		if c.TTL <= 0 {
			return fmt.Errorf("%w: %s.ttl must be > 0, got %s", ErrInvalid, name, c.TTL)
		}
	}
	if cfg.Warm.Concurrency < 0 {
		return fmt.Errorf("%w: warm.concurrency must be >= 0", ErrInvalid)
	}
	if _, ok := logging.ParseLevel(cfg.Log.Level); !ok {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, cfg.Log.Format)
	}
	return nil
}

// Duration is a time.Duration written as a Go duration string ("5m", "1500ms").
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// UnmarshalYAML accepts a duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration: %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalYAML writes the duration string.
func (d Duration) MarshalYAML() (any, error) { return d.String(), nil }

// UnmarshalJSON accepts a duration string or a number of milliseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return fmt.Errorf("duration: want string or milliseconds, got %s", b)
	}
	*d = Duration(time.Duration(ms) * time.Millisecond)
	return nil
}

// MarshalJSON writes the duration string.
func (d Duration) MarshalJSON() ([]byte, error) { return json.Marshal(d.String()) }
