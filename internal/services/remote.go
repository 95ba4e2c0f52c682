// Client for a running spr server, for remote CLI control
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/desertthunder/spr/internal/shared"
	"github.com/go-resty/resty/v2"
)

const remoteTimeout = 15 * time.Second

// RemoteResponse is one spr server reply: the raw body plus the decoded
// envelope when the body is JSON.
type RemoteResponse struct {
	StatusCode int
	Body       []byte
	JSON       map[string]any
}

// Success reports whether the server answered 2xx with a truthy envelope.
func (r *RemoteResponse) Success() bool {
	if r.StatusCode < 200 || r.StatusCode >= 300 {
		return false
	}
	if r.JSON == nil {
		return true
	}
	if ok, present := r.JSON["success"].(bool); present {
		return ok
	}
	return true
}

// RemoteClient drives a running spr server's HTTP API, so the CLI can
// control a deployed instance instead of talking to the provider directly.
type RemoteClient struct {
	http *resty.Client
}

// NewRemoteClient creates a client for the spr server at baseURL.
func NewRemoteClient(baseURL string) (*RemoteClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: server URL is required", shared.ErrInvalidConfig)
	}

	client := resty.NewWithClient(&http.Client{Timeout: remoteTimeout}).
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json")

	return &RemoteClient{http: client}, nil
}

// Call issues one request against the server and decodes the reply.
func (c *RemoteClient) Call(ctx context.Context, method, path string) (*RemoteResponse, error) {
	resp, err := c.http.R().SetContext(ctx).Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, method, path, err)
	}

	result := &RemoteResponse{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
	}

	var decoded map[string]any
	if err := json.Unmarshal(result.Body, &decoded); err == nil {
		result.JSON = decoded
	}

	return result, nil
}

// Get issues a GET against the server.
func (c *RemoteClient) Get(ctx context.Context, path string) (*RemoteResponse, error) {
	return c.Call(ctx, http.MethodGet, path)
}
