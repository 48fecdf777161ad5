package apiclient

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/registry"
	"github.com/marmos91/binlayout/pkg/schema"
)

// Store is a registry.Store that keeps layouts on a remote binlayout
// service. Names and descriptors are validated locally so a Store reports
// the same sentinel errors as the local backends.
type Store struct {
	client *Client
}

var (
	_ registry.Store         = (*Store)(nil)
	_ registry.Healthchecker = (*Store)(nil)
)

// NewStore creates a Store on top of client.
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

// Put registers l on the service and copies the stamped identity back
// into l.
func (s *Store) Put(ctx context.Context, l *registry.Layout) error {
	if l == nil {
		return fmt.Errorf("%w: nil layout", registry.ErrInvalidLayout)
	}
	if err := registry.ValidateName(l.Name); err != nil {
		return err
	}
	if l.Descriptor == nil {
		return fmt.Errorf("%w: %s has no descriptor", registry.ErrInvalidLayout, l.Name)
	}
	if err := layout.Validate(l.Descriptor); err != nil {
		return fmt.Errorf("%w: %w", registry.ErrInvalidLayout, err)
	}

	doc, err := schema.Marshal(l.Descriptor, schema.FormatJSON)
	if err != nil {
		return err
	}
	resp, err := s.client.PutLayout(ctx, l.Name, doc, l.Description)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(resp.ID)
	if err != nil {
		return fmt.Errorf("invalid layout id in response: %w", err)
	}
	l.ID = id
	l.CreatedAt = resp.CreatedAt
	l.UpdatedAt = resp.UpdatedAt
	return nil
}

// Get fetches the named layout.
func (s *Store) Get(ctx context.Context, name string) (*registry.Layout, error) {
	if err := registry.ValidateName(name); err != nil {
		return nil, err
	}
	resp, err := s.client.GetLayout(ctx, name)
	if err != nil {
		return nil, err
	}
	return toLayout(resp)
}

// List fetches every layout with its descriptor.
func (s *Store) List(ctx context.Context) ([]*registry.Layout, error) {
	resp, err := s.client.ListLayouts(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]*registry.Layout, 0, len(resp))
	for i := range resp {
		l, err := toLayout(&resp[i])
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

// Delete removes the named layout.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := registry.ValidateName(name); err != nil {
		return err
	}
	return s.client.DeleteLayout(ctx, name)
}

// Healthcheck calls the service's readiness probe.
func (s *Store) Healthcheck(ctx context.Context) error {
	_, err := s.client.Ready(ctx)
	return err
}

// Close releases idle connections.
func (s *Store) Close() error {
	s.client.httpClient.CloseIdleConnections()
	return nil
}

func toLayout(resp *Layout) (*registry.Layout, error) {
	d, err := resp.Descriptor()
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", resp.Name, err)
	}
	id, err := uuid.Parse(resp.ID)
	if err != nil {
		return nil, fmt.Errorf("layout %s: invalid id: %w", resp.Name, err)
	}
	return &registry.Layout{
		ID:          id,
		Name:        resp.Name,
		Description: resp.Description,
		Descriptor:  d,
		CreatedAt:   resp.CreatedAt,
		UpdatedAt:   resp.UpdatedAt,
	}, nil
}
