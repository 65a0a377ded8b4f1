package server

import (
	"net/http"
	"time"

	"github.com/vango-dev/morph/pkg/morph"
)

// Config configures a Server.
type Config struct {
	// Address is the listen address for Run (default: "localhost:7070").
	Address string

	// MaxBodyBytes limits request bodies (default: 4 MiB).
	MaxBodyBytes int64

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// KeyAttribute names the attribute reconcile keys are read from.
	// Empty uses id.
	KeyAttribute string

	// ChildrenOnly and IgnoreControlValues are passed to every reconcile.
	ChildrenOnly        bool
	IgnoreControlValues bool

	// MetricsPath is where the gatherer is served (default: "/metrics").
	MetricsPath string

	// CheckOrigin validates WebSocket upgrade origins. Nil accepts
	// same-origin requests only.
	CheckOrigin func(r *http.Request) bool

	// WatchBuffer is the number of events queued per watcher before it is
	// dropped as too slow (default: 64).
	WatchBuffer int
}

// DefaultConfig returns a Config with defaults filled in.
func DefaultConfig() Config {
	return Config{
		Address:         "localhost:7070",
		MaxBodyBytes:    4 << 20,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MetricsPath:     "/metrics",
		WatchBuffer:     64,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = d.MaxBodyBytes
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.MetricsPath == "" {
		c.MetricsPath = d.MetricsPath
	}
	if c.WatchBuffer <= 0 {
		c.WatchBuffer = d.WatchBuffer
	}
}

// reconcileOptions returns the per-call options derived from the config.
func (c *Config) reconcileOptions() morph.Options {
	opts := morph.Options{
		ChildrenOnly:        c.ChildrenOnly,
		IgnoreControlValues: c.IgnoreControlValues,
	}
	if c.KeyAttribute != "" {
		opts.GetNodeKey = morph.KeyAttr(c.KeyAttribute)
	}
	return opts
}
