package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// getResource performs a GET request to the given path and decodes the response
// body into a value of type T. Returns a pointer to the decoded value.
//
// Example:
//
//	l, err := getResource[Layout](ctx, c, layoutPath("header"), nil)
func getResource[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	var result T
	if err := c.get(ctx, path, query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// layoutPath returns the resource path of the named layout, with an
// optional sub-resource such as "decode".
func layoutPath(name string, sub ...string) string {
	p := "/api/v1/layouts/" + url.PathEscape(name)
	for _, s := range sub {
		p += "/" + s
	}
	return p
}

func encodeJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, nil
}

func decodeJSON(body []byte, result any) error {
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
