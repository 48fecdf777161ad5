package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/schema"
)

// Layout is a registered layout as returned by the API.
type Layout struct {
	Name        string        `json:"name"`
	ID          string        `json:"id"`
	Description string        `json:"description,omitempty"`
	Type        string        `json:"type"`
	Size        int           `json:"size"`
	Dynamic     bool          `json:"dynamic"`
	Fingerprint string        `json:"fingerprint"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Schema      *schema.Field `json:"schema,omitempty"`
}

// Descriptor builds the descriptor from the layout's schema document. It
// fails for listings fetched without schemas.
func (l *Layout) Descriptor() (layout.Descriptor, error) {
	if l.Schema == nil {
		return nil, errors.New("layout response carries no schema")
	}
	return l.Schema.Descriptor()
}

// CodecOptions override the service's codec defaults for one call.
type CodecOptions struct {
	// Endian is "little" or "big"; empty keeps the service default.
	Endian string

	// Terminated NUL-terminates unterminated text fields.
	Terminated bool
}

func (o CodecOptions) query() url.Values {
	q := url.Values{}
	if o.Endian != "" {
		q.Set("endian", o.Endian)
	}
	if o.Terminated {
		q.Set("terminated", "true")
	}
	return q
}

// DecodeResult is the response of a decode call.
type DecodeResult struct {
	Layout string `json:"layout"`
	Size   int    `json:"size"`
	Value  any    `json:"value"`
}

// SizeResult is the response of a size call.
type SizeResult struct {
	Layout  string `json:"layout"`
	Size    int    `json:"size"`
	Dynamic bool   `json:"dynamic"`
}

// ListLayouts returns every registered layout sorted by name. withSchema
// includes the schema documents.
func (c *Client) ListLayouts(ctx context.Context, withSchema bool) ([]Layout, error) {
	var query url.Values
	if withSchema {
		query = url.Values{"schema": {"true"}}
	}
	resp, err := getResource[struct {
		Layouts []Layout `json:"layouts"`
	}](ctx, c, "/api/v1/layouts", query)
	if err != nil {
		return nil, err
	}
	return resp.Layouts, nil
}

// GetLayout returns the named layout with its schema.
func (c *Client) GetLayout(ctx context.Context, name string) (*Layout, error) {
	return getResource[Layout](ctx, c, layoutPath(name), nil)
}

// PutLayout registers doc, a YAML or JSON descriptor document, under name.
func (c *Client) PutLayout(ctx context.Context, name string, doc []byte, description string) (*Layout, error) {
	query := url.Values{}
	if description != "" {
		query.Set("description", description)
	}

	var result Layout
	_, body, err := c.send(ctx, request{
		method:      http.MethodPut,
		path:        layoutPath(name),
		query:       query,
		contentType: "application/yaml",
		body:        doc,
	})
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteLayout removes the named layout.
func (c *Client) DeleteLayout(ctx context.Context, name string) error {
	return c.delete(ctx, layoutPath(name))
}

// Encode encodes value, plain JSON-compatible data, with the named layout.
func (c *Client) Encode(ctx context.Context, name string, value any, opts CodecOptions) ([]byte, error) {
	data, err := encodeJSON(value)
	if err != nil {
		return nil, err
	}
	_, body, err := c.send(ctx, request{
		method:      http.MethodPost,
		path:        layoutPath(name, "encode"),
		query:       opts.query(),
		contentType: "application/json",
		body:        data,
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Decode decodes buf with the named layout.
func (c *Client) Decode(ctx context.Context, name string, buf []byte, opts CodecOptions) (*DecodeResult, error) {
	var result DecodeResult
	if err := c.sendBinary(ctx, layoutPath(name, "decode"), buf, opts, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Size returns the static size of the named layout, or the size it
// occupies in buf when buf is non-nil.
func (c *Client) Size(ctx context.Context, name string, buf []byte, opts CodecOptions) (*SizeResult, error) {
	if buf == nil {
		return getResource[SizeResult](ctx, c, layoutPath(name, "size"), opts.query())
	}
	var result SizeResult
	if err := c.sendBinary(ctx, layoutPath(name, "size"), buf, opts, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DescriptorSchema returns the JSON Schema of descriptor documents.
func (c *Client) DescriptorSchema(ctx context.Context) ([]byte, error) {
	_, body, err := c.send(ctx, request{method: http.MethodGet, path: "/api/v1/schema"})
	return body, err
}

func (c *Client) sendBinary(ctx context.Context, path string, buf []byte, opts CodecOptions, result any) error {
	if buf == nil {
		buf = []byte{}
	}
	_, body, err := c.send(ctx, request{
		method:      http.MethodPost,
		path:        path,
		query:       opts.query(),
		contentType: "application/octet-stream",
		body:        buf,
	})
	if err != nil {
		return err
	}
	return decodeJSON(body, result)
}
