package apiclient

import (
	"context"
	"errors"
	"net/http"

	"github.com/marmos91/binlayout/internal/cli/health"
)

// Health calls the liveness probe.
func (c *Client) Health(ctx context.Context) (*health.Response, error) {
	return c.probe(ctx, "/health")
}

// Ready calls the readiness probe. An unready service returns its
// response together with the error.
func (c *Client) Ready(ctx context.Context) (*health.Response, error) {
	return c.probe(ctx, "/health/ready")
}

func (c *Client) probe(ctx context.Context, path string) (*health.Response, error) {
	_, body, err := c.send(ctx, request{method: http.MethodGet, path: path})

	var apiErr *APIError
	if err != nil && !(errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable) {
		return nil, err
	}

	var resp health.Response
	if decodeErr := decodeJSON(body, &resp); decodeErr != nil {
		if err != nil {
			return nil, err
		}
		return nil, decodeErr
	}
	if err != nil {
		if resp.Error != "" {
			err = errors.New("service unavailable: " + resp.Error)
		}
		return &resp, err
	}
	return &resp, nil
}
