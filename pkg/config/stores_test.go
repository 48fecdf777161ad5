package config

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/registry"
)

func TestOpenRegistry(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		s, err := OpenRegistry(ctx, GetDefaultConfig(), nil)
		if err != nil {
			t.Fatalf("OpenRegistry failed: %v", err)
		}
		defer func() { _ = s.Close() }()

		if err := s.Put(ctx, &registry.Layout{Name: "n", Descriptor: layout.NewText("s")}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	})

	t.Run("Badger", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Registry = RegistryConfig{Type: "badger", Path: filepath.Join(t.TempDir(), "db")}

		s, err := OpenRegistry(ctx, cfg, nil)
		if err != nil {
			t.Fatalf("OpenRegistry failed: %v", err)
		}
		defer func() { _ = s.Close() }()

		ls, err := s.List(ctx)
		if err != nil || len(ls) != 0 {
			t.Fatalf("List = %v, %v", ls, err)
		}
	})

	t.Run("BadgerWithoutPath", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Registry = RegistryConfig{Type: "badger"}
		if _, err := OpenRegistry(ctx, cfg, nil); err == nil {
			t.Fatal("Expected error for badger without path")
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		cfg := GetDefaultConfig()
		cfg.Registry.Type = "etcd"
		if _, err := OpenRegistry(ctx, cfg, nil); err == nil {
			t.Fatal("Expected error for unknown type")
		}
	})
}

func TestAPIConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	ac := cfg.APIConfig()
	if ac.Port != 8080 || ac.RequestTimeout != 30*time.Second || ac.ShutdownTimeout != cfg.ShutdownTimeout {
		t.Errorf("unexpected API config: %+v", ac)
	}
	if ac.MaxBodySize != int64(DefaultMaxBodySize) {
		t.Errorf("MaxBodySize = %d, want %d", ac.MaxBodySize, DefaultMaxBodySize)
	}
	if ac.MetricsPath != "" {
		t.Errorf("MetricsPath = %q with metrics disabled", ac.MetricsPath)
	}

	cfg.Metrics.Enabled = true
	if got := cfg.APIConfig().MetricsPath; got != "/metrics" {
		t.Errorf("MetricsPath = %q, want /metrics", got)
	}
}

func TestTokenService(t *testing.T) {
	cfg := GetDefaultConfig()

	svc, err := cfg.TokenService()
	if err != nil || svc != nil {
		t.Fatalf("TokenService without secret = %v, %v; want nil, nil", svc, err)
	}

	cfg.Server.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	svc, err = cfg.TokenService()
	if err != nil || svc == nil {
		t.Fatalf("TokenService failed: %v", err)
	}
	token, err := svc.Issue("t", nil, time.Minute)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	claims, err := svc.Validate(token)
	if err != nil || claims.Issuer != "binlayout" {
		t.Errorf("Validate = %+v, %v", claims, err)
	}

	cfg.Server.Auth.JWTSecret = "short"
	if err := Validate(cfg); err == nil {
		t.Error("Validate accepted a short JWT secret")
	}
}
