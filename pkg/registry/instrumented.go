package registry

import (
	"context"
	"time"

	"github.com/marmos91/binlayout/internal/logger"
	"github.com/marmos91/binlayout/pkg/metrics"
)

// instrumented decorates a Store with metrics and debug logging.
type instrumented struct {
	Store
	backend string
	m       metrics.StoreMetrics
}

// Instrument wraps s so every operation is observed on m under the backend
// label. A nil m returns s unchanged.
func Instrument(s Store, backend string, m metrics.StoreMetrics) Store {
	if m == nil {
		return s
	}
	return &instrumented{Store: s, backend: backend, m: m}
}

func (s *instrumented) observe(op string, start time.Time, err error) {
	metrics.ObserveStoreOp(s.m, s.backend, op, time.Since(start), err)
	logger.Debug("registry operation",
		logger.Store(s.backend), logger.Op(op),
		logger.DurationMs(logger.Duration(start)), logger.Err(err))
}

func (s *instrumented) Put(ctx context.Context, l *Layout) error {
	start := time.Now()
	err := s.Store.Put(ctx, l)
	s.observe("put", start, err)
	return err
}

func (s *instrumented) Get(ctx context.Context, name string) (*Layout, error) {
	start := time.Now()
	l, err := s.Store.Get(ctx, name)
	s.observe("get", start, err)
	return l, err
}

func (s *instrumented) List(ctx context.Context) ([]*Layout, error) {
	start := time.Now()
	ls, err := s.Store.List(ctx)
	s.observe("list", start, err)
	if err == nil {
		metrics.RecordLayoutCount(s.m, s.backend, len(ls))
	}
	return ls, err
}

func (s *instrumented) Delete(ctx context.Context, name string) error {
	start := time.Now()
	err := s.Store.Delete(ctx, name)
	s.observe("delete", start, err)
	return err
}

func (s *instrumented) Healthcheck(ctx context.Context) error {
	return Healthcheck(ctx, s.Store)
}
