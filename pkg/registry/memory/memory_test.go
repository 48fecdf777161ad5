package memory_test

import (
	"testing"

	"github.com/marmos91/binlayout/pkg/registry"
	"github.com/marmos91/binlayout/pkg/registry/memory"
	"github.com/marmos91/binlayout/pkg/registry/registrytest"
)

func TestConformance(t *testing.T) {
	registrytest.RunConformanceSuite(t, func(t *testing.T) registry.Store {
		s := memory.New()
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestClosedStoreFails(t *testing.T) {
	s := memory.New()
	if err := registry.Healthcheck(t.Context(), s); err != nil {
		t.Fatalf("Healthcheck on open store failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := s.List(t.Context()); err == nil {
		t.Fatal("List on closed store succeeded")
	}
	if err := s.Put(t.Context(), &registry.Layout{Name: "p", Descriptor: registrytest.Point()}); err == nil {
		t.Fatal("Put on closed store succeeded")
	}
	if err := registry.Healthcheck(t.Context(), s); err == nil {
		t.Fatal("Healthcheck on closed store succeeded")
	}
}
