// Package memory is an in-process layout registry. Contents are lost when
// the process exits.
package memory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/marmos91/binlayout/pkg/registry"
)

var errClosed = errors.New("memory registry is closed")

// Store keeps layouts in a map guarded by an RWMutex.
type Store struct {
	mu      sync.RWMutex
	layouts map[string]*registry.Layout
	closed  bool
	now     func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{
		layouts: make(map[string]*registry.Layout),
		now:     time.Now,
	}
}

func (s *Store) Put(ctx context.Context, l *registry.Layout) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed
	}
	var prev *registry.Layout
	if l != nil {
		prev = s.layouts[l.Name]
	}
	if err := registry.Prepare(l, prev, s.now()); err != nil {
		return err
	}
	s.layouts[l.Name] = l.Clone()
	return nil
}

func (s *Store) Get(ctx context.Context, name string) (*registry.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errClosed
	}
	l, ok := s.layouts[name]
	if !ok {
		return nil, registry.ErrNotFound
	}
	return l.Clone(), nil
}

func (s *Store) List(ctx context.Context) ([]*registry.Layout, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, errClosed
	}
	out := make([]*registry.Layout, 0, len(s.layouts))
	for _, l := range s.layouts {
		out = append(out, l.Clone())
	}
	slices.SortFunc(out, func(a, b *registry.Layout) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed
	}
	if _, ok := s.layouts[name]; !ok {
		return registry.ErrNotFound
	}
	delete(s.layouts, name)
	return nil
}

// Healthcheck fails once the store is closed.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.layouts = nil
	return nil
}
