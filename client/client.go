// Package client talks to the message API over HTTP.
package client

import (
	"contactdash/models"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
)

const defaultTimeout = 10 * time.Second

// Config holds configuration for creating a client
type Config struct {
	// URL is the API base, prefix included (e.g. http://localhost:2000/api)
	URL     string
	Timeout time.Duration
	// Dial overrides how connections are opened; nil uses TCP
	Dial fasthttp.DialFunc
}

// Client is a dashboard.Backend served by a remote message API
type Client struct {
	baseURL string
	timeout time.Duration
	http    *fasthttp.Client
}

// StatusError is returned for any non-2xx response
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the API
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == fasthttp.StatusNotFound
}

// New creates a client for the API at cfg.URL
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("API URL is required")
	}

	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid API URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("URL scheme must be http or https, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("API URL must include a host (e.g., http://localhost:2000/api)")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		timeout: timeout,
		http: &fasthttp.Client{
			Name:                "contactdash",
			Dial:                cfg.Dial,
			MaxIdleConnDuration: time.Minute,
		},
	}, nil
}

// idRequest is the body of every mutation on an existing message
type idRequest struct {
	ID string `json:"id"`
}

// List fetches every message, deleted ones included
func (c *Client) List(ctx context.Context) ([]models.Message, error) {
	var resp listResponse
	if err := c.do(ctx, fasthttp.MethodGet, "/all", nil, &resp); err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(resp.Messages))
	for _, w := range resp.Messages {
		messages = append(messages, w.toModel())
	}
	return messages, nil
}

// Create submits a new message
func (c *Client) Create(ctx context.Context, msg models.NewMessage) error {
	return c.do(ctx, fasthttp.MethodPost, "/new", msg, nil)
}

// Perform runs action against the message id. Permanent deletion is the only
// DELETE call; every other action is a PATCH named after the action.
func (c *Client) Perform(ctx context.Context, id string, action models.Action) error {
	if action == models.ActionPermanentDelete {
		return c.do(ctx, fasthttp.MethodDelete, "/delete", idRequest{ID: id}, nil)
	}
	if _, _, ok := action.Patch(); !ok {
		return errors.Errorf("unsupported action %q", action)
	}
	return c.do(ctx, fasthttp.MethodPatch, "/"+string(action), idRequest{ID: id}, nil)
}

// do sends body as JSON and decodes a 2xx response into out when non-nil
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		req.Header.SetContentType("application/json")
		req.SetBody(data)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return decodeError(code, resp.Body())
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return errors.Wrapf(err, "decode %s response", path)
	}
	return nil
}

// decodeError turns an error response into a StatusError
func decodeError(code int, body []byte) error {
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		return &StatusError{Code: code, Message: apiErr.Error}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = fasthttp.StatusMessage(code)
	}
	return &StatusError{Code: code, Message: msg}
}
