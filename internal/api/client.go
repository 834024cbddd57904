// Package api is a typed client for the SmartMart REST backend.
//
// Every call takes a context. Non-2xx responses become *Error values that
// carry the status code and, when the backend sent one, its "detail" message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/JonMunkholm/smartmart/internal/config"
	"github.com/JonMunkholm/smartmart/internal/logging"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// DefaultTimeout bounds every request made by the client.
const DefaultTimeout = 10 * time.Second

// RequestIDHeader carries the console request id to the backend.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// ErrNotFound matches *Error values with status 404 via errors.Is.
var ErrNotFound = errors.New("resource not found")

// Error is a non-2xx response from the backend.
type Error struct {
	Method string
	Path   string
	Status int
	Detail string // Structured validation message from the backend, if any
}

func (e *Error) Error() string {
	if e.Status == http.StatusNotFound {
		return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Status, ErrNotFound)
	}
	if e.Detail != "" {
		return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("api: %s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// DetailOf returns the backend's detail message carried by err, if any.
func DetailOf(err error) (string, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail, true
	}
	return "", false
}

// Client talks to the SmartMart backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for baseURL. An empty baseURL selects
// DefaultBaseURL.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url must be absolute: %q", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// New creates a client from the API configuration section.
func New(cfg config.APIConfig, opts ...Option) (*Client, error) {
	return NewClient(cfg.BaseURL, cfg.Timeout, opts...)
}

// BaseURL returns the backend location the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string) string {
	return c.baseURL.String() + path
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	reqID := middleware.GetReqID(ctx)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, reqID)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// send executes req and converts non-2xx responses into *Error.
// On success the caller owns resp.Body.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	logger := logging.FromContext(req.Context())
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Warn("api request failed",
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
		)
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}

	logger.Debug("api request",
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &Error{
			Method: req.Method,
			Path:   req.URL.Path,
			Status: resp.StatusCode,
			Detail: parseDetail(body),
		}
		logger.Warn("api error response",
			"method", req.Method,
			"path", req.URL.Path,
			"status", resp.StatusCode,
			"body", string(body),
		)
		return nil, apiErr
	}

	return resp, nil
}

// doJSON sends in as a JSON body (when non-nil) and decodes the response
// into out (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// Download is a binary resource fetched from the backend.
type Download struct {
	Data        []byte
	ContentType string
	FileName    string // From Content-Disposition, or the fallback name
}

// download fetches a binary resource.
func (c *Client) download(ctx context.Context, path, fallbackName string) (*Download, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "*/*")

	resp, err := c.send(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	name := fallbackName
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		name = params["filename"]
	}

	return &Download{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		FileName:    name,
	}, nil
}

// parseDetail extracts the backend's "detail" field. It is either a plain
// string or, for request validation failures, a list of {"msg": ...}.
func parseDetail(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(envelope.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}
