package config

import (
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vango-dev/morph/internal/errors"
)

const (
	// JSONFileName and TOMLFileName are the file names LoadFromDir looks for.
	JSONFileName = "morph.json"
	TOMLFileName = "morph.toml"

	// DefaultPort is the default tree server port.
	DefaultPort = 7070

	// DefaultHost is the default tree server host.
	DefaultHost = "localhost"
)

// Config represents a complete morph configuration file.
type Config struct {
	Server    ServerConfig    `json:"server" toml:"server"`
	Reconcile ReconcileConfig `json:"reconcile" toml:"reconcile"`
	Store     StoreConfig     `json:"store" toml:"store"`
	Metrics   MetricsConfig   `json:"metrics" toml:"metrics"`
	Tracing   TracingConfig   `json:"tracing" toml:"tracing"`
	Log       LogConfig       `json:"log" toml:"log"`

	// path is the file the config was loaded from.
	path string
}

// ServerConfig configures the tree server.
type ServerConfig struct {
	Host            string   `json:"host" toml:"host"`
	Port            int      `json:"port" toml:"port"`
	MaxBodyBytes    int64    `json:"maxBodyBytes" toml:"max_body_bytes"`
	ReadTimeout     Duration `json:"readTimeout" toml:"read_timeout"`
	WriteTimeout    Duration `json:"writeTimeout" toml:"write_timeout"`
	ShutdownTimeout Duration `json:"shutdownTimeout" toml:"shutdown_timeout"`
}

// ReconcileConfig sets the options used for every reconcile.
type ReconcileConfig struct {
	// KeyAttribute names the attribute keys are read from. Empty uses id.
	KeyAttribute        string `json:"keyAttribute" toml:"key_attribute"`
	ChildrenOnly        bool   `json:"childrenOnly" toml:"children_only"`
	IgnoreControlValues bool   `json:"ignoreControlValues" toml:"ignore_control_values"`
}

// StoreConfig selects the snapshot backend.
type StoreConfig struct {
	// Backend is one of "memory", "redis", "s3".
	Backend  string   `json:"backend" toml:"backend"`
	Compress bool     `json:"compress" toml:"compress"`
	RedisURL string   `json:"redisURL" toml:"redis_url"`
	Prefix   string   `json:"prefix" toml:"prefix"`
	TTL      Duration `json:"ttl" toml:"ttl"`
	Bucket   string   `json:"bucket" toml:"bucket"`
	Region   string   `json:"region" toml:"region"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" toml:"enabled"`
	Namespace string `json:"namespace" toml:"namespace"`
	Path      string `json:"path" toml:"path"`
}

// TracingConfig configures OpenTelemetry spans.
type TracingConfig struct {
	Enabled    bool   `json:"enabled" toml:"enabled"`
	TracerName string `json:"tracerName" toml:"tracer_name"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `json:"level" toml:"level"`
	// Format is "text" or "json".
	Format string `json:"format" toml:"format"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			MaxBodyBytes:    4 << 20,
			ReadTimeout:     Duration{30 * time.Second},
			WriteTimeout:    Duration{30 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Store: StoreConfig{
			Backend: "memory",
			Prefix:  "morph:",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "morph",
			Path:      "/metrics",
		},
		Tracing: TracingConfig{
			TracerName: "morph",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the file at path. The format follows the extension: .json or
// .toml. Fields absent from the file keep their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("C001").
				WithDetail("no such file: " + path).
				WithSuggestion("Create " + JSONFileName + " or " + TOMLFileName + ", or omit --config")
		}
		return nil, errors.New("C001").Wrap(err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, errors.New("C002").
			WithDetailf("unsupported extension %q", ext).
			WithSuggestion("Use a .json or .toml file")
	}
	if err != nil {
		return nil, errors.New("C002").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error())
	}

	cfg.path = path
	return cfg, nil
}

// LoadFromDir loads morph.toml or morph.json from dir, in that order of
// preference. When neither exists it returns Default().
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{TOMLFileName, JSONFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// Validate checks field values. The first problem is returned as a C003
// error naming the field.
func (c *Config) Validate() error {
	invalid := func(field, format string, args ...any) error {
		return errors.New("C003").WithDetailf(field+": "+format, args...)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return invalid("server.port", "must be between 0 and 65535, got %d", c.Server.Port)
	}
	if c.Server.MaxBodyBytes < 0 {
		return invalid("server.maxBodyBytes", "must not be negative")
	}

	switch c.Store.Backend {
	case "memory":
	case "redis":
		if c.Store.RedisURL == "" {
			return invalid("store.redisURL", "required for the redis backend")
		}
	case "s3":
		if c.Store.Bucket == "" {
			return invalid("store.bucket", "required for the s3 backend")
		}
	default:
		return invalid("store.backend", "unknown backend %q", c.Store.Backend)
	}
	if c.Store.TTL.Duration < 0 {
		return invalid("store.ttl", "must not be negative")
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path", "must start with /, got %q", c.Metrics.Path)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return invalid("log.level", "%v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format", "must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(l.Level))
	return level, err
}
