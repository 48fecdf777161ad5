package config

import (
	"context"
	"fmt"
	"math"

	"github.com/marmos91/binlayout/pkg/api"
	"github.com/marmos91/binlayout/pkg/api/auth"
	"github.com/marmos91/binlayout/pkg/codec"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/metrics"
	"github.com/marmos91/binlayout/pkg/registry"
	"github.com/marmos91/binlayout/pkg/registry/badger"
	"github.com/marmos91/binlayout/pkg/registry/memory"
)

// OpenRegistry creates the layout registry described by cfg.Registry,
// instrumented with m when m is non-nil.
func OpenRegistry(ctx context.Context, cfg *Config, m metrics.StoreMetrics) (registry.Store, error) {
	var (
		s   registry.Store
		err error
	)

	switch cfg.Registry.Type {
	case "memory", "":
		s = memory.New()
	case "badger":
		s, err = createBadgerRegistry(ctx, cfg.Registry)
	default:
		return nil, fmt.Errorf("unknown registry type: %q", cfg.Registry.Type)
	}
	if err != nil {
		return nil, err
	}

	backend := cfg.Registry.Type
	if backend == "" {
		backend = "memory"
	}
	return registry.Instrument(s, backend, m), nil
}

func createBadgerRegistry(ctx context.Context, cfg RegistryConfig) (registry.Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("badger registry requires path to be set")
	}
	s, err := badger.Open(ctx, badger.Config{Path: cfg.Path, SyncWrites: cfg.SyncWrites})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CodecOptions returns the codec options implied by cfg.Codec. The
// endianness was validated by Validate; an unparsable value falls back to
// little-endian.
func (c *Config) CodecOptions() []codec.Option {
	order, err := layout.ParseEndianness(c.Codec.Endianness)
	if err != nil {
		order = layout.Little
	}

	opts := []codec.Option{
		codec.WithEndianness(order),
		codec.WithMaxInputSize(c.Codec.MaxInputSize.Int()),
	}
	if c.Codec.TerminatedText {
		opts = append(opts, codec.WithTerminatedText())
	}
	return opts
}

// APIConfig returns the API server settings implied by cfg.
func (c *Config) APIConfig() api.Config {
	metricsPath := ""
	if c.Metrics.Enabled {
		metricsPath = c.Metrics.Path
	}
	return api.Config{
		Port:            c.Server.Port,
		ReadTimeout:     c.Server.ReadTimeout,
		WriteTimeout:    c.Server.WriteTimeout,
		IdleTimeout:     c.Server.IdleTimeout,
		RequestTimeout:  c.Server.RequestTimeout,
		ShutdownTimeout: c.ShutdownTimeout,
		MaxBodySize:     int64(min(c.Server.MaxBodySize.Uint64(), math.MaxInt64)),
		MetricsPath:     metricsPath,
		JWTSecret:       c.Server.Auth.JWTSecret,
	}
}

// TokenService returns the API token service, or nil when authentication
// is disabled.
func (c *Config) TokenService() (*auth.TokenService, error) {
	if c.Server.Auth.JWTSecret == "" {
		return nil, nil
	}
	return auth.NewTokenService(c.Server.Auth.JWTSecret, c.Server.Auth.Issuer)
}
