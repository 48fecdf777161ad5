package api

import "time"

// Config configures the layout API server.
type Config struct {
	// Port is the TCP port to listen on. Default: 8080.
	Port int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// RequestTimeout bounds each request's handling. Default: 30s.
	RequestTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 30s.
	ShutdownTimeout time.Duration

	// MaxBodySize bounds request bodies in bytes. Default: 16MiB.
	MaxBodySize int64

	// MetricsPath serves Prometheus metrics when metrics are enabled.
	// Empty disables the endpoint.
	MetricsPath string

	// JWTSecret enables bearer-token authentication of /api/v1 when set.
	JWTSecret string
}

// applyDefaults fills zero values.
func (c *Config) applyDefaults() {
	if c.Port <= 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 10 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if c.MaxBodySize <= 0 {
		c.MaxBodySize = 16 << 20
	}
}
