// Package remote is the HTTP client for the remote note authority.
//
// Responses are wrapped in the envelope {"data": ..., "message": ...,
// "success": ...}. The list endpoint also accepts a bare JSON array. Every
// transport failure or non-2xx status is reported as an error matching
// types.ErrRemote.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/mesh-intelligence/notesync/pkg/types"
)

var _ types.Remote = (*Client)(nil)

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.URL, e.StatusCode)
}

// Is reports 404 responses as types.ErrRemoteNotFound.
//
//nolint:errorlint
func (e *StatusError) Is(target error) bool {
	return target == types.ErrRemoteNotFound && e.StatusCode == http.StatusNotFound
}

// ErrEmptyResponse reports a success response that carried no note.
var ErrEmptyResponse = errors.New("empty response body")

// maxBody bounds how much of a response is read.
const maxBody = 8 << 20

// Client talks to the remote authority rooted at a base URL such as
// http://host/notes.
type Client struct {
	base   string
	http   *http.Client
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New returns a Client for baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		http:   http.DefaultClient,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List implements types.Remote.
func (c *Client) List(ctx context.Context) ([]types.RemoteNote, error) {
	body, err := c.do(ctx, http.MethodGet, c.base, nil)
	if err != nil {
		return nil, types.RemoteError("list", err)
	}
	notes, err := decodeList(body)
	if err != nil {
		return nil, types.RemoteError("list", err)
	}
	return notes, nil
}

// Create implements types.Remote.
func (c *Client) Create(ctx context.Context, payload types.CreatePayload) (types.RemoteNote, error) {
	n, err := c.send(ctx, http.MethodPost, c.base, payload)
	if err != nil {
		return types.RemoteNote{}, types.RemoteError("create", err)
	}
	return n, nil
}

// Update implements types.Remote.
func (c *Client) Update(ctx context.Context, payload types.UpdatePayload) (types.RemoteNote, error) {
	n, err := c.send(ctx, http.MethodPost, c.base+"/update", payload)
	if err != nil {
		return types.RemoteNote{}, types.RemoteError("update", err)
	}
	return n, nil
}

// Delete implements types.Remote.
func (c *Client) Delete(ctx context.Context, id string) error {
	u := c.base + "?" + url.Values{"id": {id}}.Encode()
	if _, err := c.do(ctx, http.MethodDelete, u, nil); err != nil {
		return types.RemoteError("delete", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, u string, payload any) (types.RemoteNote, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return types.RemoteNote{}, fmt.Errorf("encode payload: %w", err)
	}
	body, err := c.do(ctx, method, u, raw)
	if err != nil {
		return types.RemoteNote{}, err
	}
	var env types.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return types.RemoteNote{}, fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return types.RemoteNote{}, ErrEmptyResponse
	}
	var n types.RemoteNote
	if err := json.Unmarshal(env.Data, &n); err != nil {
		return types.RemoteNote{}, fmt.Errorf("decode note: %w", err)
	}
	return n, nil
}

func (c *Client) do(ctx context.Context, method, u string, body []byte) ([]byte, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	c.logger.Debug("remote call", "method", method, "url", u, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &StatusError{Method: method, URL: u, StatusCode: resp.StatusCode}
		var env types.Envelope
		if json.Unmarshal(data, &env) == nil {
			se.Message = env.Message
		}
		return nil, se
	}
	return data, nil
}

// decodeList accepts either the envelope or a bare array.
func decodeList(body []byte) ([]types.RemoteNote, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return []types.RemoteNote{}, nil
	}
	if trimmed[0] == '{' {
		var env types.Envelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode response: %w", err)
		}
		trimmed = bytes.TrimSpace(env.Data)
		if len(trimmed) == 0 || string(trimmed) == "null" {
			return []types.RemoteNote{}, nil
		}
	}
	var notes []types.RemoteNote
	if err := json.Unmarshal(trimmed, &notes); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}
	if notes == nil {
		notes = []types.RemoteNote{}
	}
	return notes, nil
}
