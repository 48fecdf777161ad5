// Package registry stores named layout descriptors for reuse by the CLI and
// the HTTP service.
//
// A Store is a flat namespace of layouts keyed by name. Put creates or
// replaces a layout; on replace the ID and creation time of the existing
// entry are kept. Backends live in sub-packages (memory, badger) and share
// the conformance suite in registrytest.
package registry

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/binlayout/pkg/layout"
)

var (
	// ErrNotFound is returned when no layout has the requested name.
	ErrNotFound = errors.New("layout not found")

	// ErrInvalidName is returned for names outside [A-Za-z0-9._-], empty
	// names, or names longer than 128 characters.
	ErrInvalidName = errors.New("invalid layout name")

	// ErrInvalidLayout is returned by Put for a layout without a valid
	// descriptor.
	ErrInvalidLayout = errors.New("invalid layout")
)

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// Layout is a named descriptor.
type Layout struct {
	ID          uuid.UUID
	Name        string
	Description string
	Descriptor  layout.Descriptor
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store persists layouts. Implementations are safe for concurrent use.
type Store interface {
	// Put creates or replaces the layout named l.Name. ID, CreatedAt and
	// UpdatedAt are filled in on l.
	Put(ctx context.Context, l *Layout) error

	// Get returns the layout named name, or ErrNotFound.
	Get(ctx context.Context, name string) (*Layout, error)

	// List returns every layout sorted by name.
	List(ctx context.Context) ([]*Layout, error)

	// Delete removes the layout named name, or returns ErrNotFound.
	Delete(ctx context.Context, name string) error

	// Close releases the backend. The store must not be used afterwards.
	Close() error
}

// Healthchecker is implemented by stores that can probe their backend.
type Healthchecker interface {
	Healthcheck(ctx context.Context) error
}

// Healthcheck probes s when it supports it and otherwise succeeds.
func Healthcheck(ctx context.Context, s Store) error {
	if h, ok := s.(Healthchecker); ok {
		return h.Healthcheck(ctx)
	}
	return ctx.Err()
}

// ValidateName checks that name can be used as a layout key.
func ValidateName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Prepare validates l and stamps it for storage. prev is the entry being
// replaced, or nil for a new layout. Backends call it inside their write
// critical section.
func Prepare(l *Layout, prev *Layout, now time.Time) error {
	if l == nil {
		return fmt.Errorf("%w: nil layout", ErrInvalidLayout)
	}
	if err := ValidateName(l.Name); err != nil {
		return err
	}
	if l.Descriptor == nil {
		return fmt.Errorf("%w: %s has no descriptor", ErrInvalidLayout, l.Name)
	}
	if err := layout.Validate(l.Descriptor); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}

	now = now.UTC()
	if prev != nil {
		l.ID = prev.ID
		l.CreatedAt = prev.CreatedAt
	} else {
		if l.ID == uuid.Nil {
			l.ID = uuid.New()
		}
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	return nil
}

// Clone returns a shallow copy of l. Descriptors are treated as immutable
// once stored, so they are shared.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}
