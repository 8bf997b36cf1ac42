// Package client talks to the ingestion backend's REST API under /rest.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// StatusTeapot is accepted as success alongside 200; the backend uses it for
// partially completed requests.
const StatusTeapot = http.StatusTeapot

// ErrUnauthorized is returned when the backend answers 401.
var ErrUnauthorized = errors.New("session expired, not logged in")

// StatusError is returned for any other unexpected status code.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("bad status code from server: %d", e.Code)
	}
	return fmt.Sprintf("bad status code from server: %d: %s", e.Code, e.Body)
}

// BackendError carries the "error" field some endpoints return with a 200.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string { return e.Message }

// Client is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	log        logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for the backend at baseURL, e.g. http://localhost:8080.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("invalid server url: %q", baseURL)
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        discard,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the server the client talks to.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// endpoint builds /rest/<parts...> below the base URL, escaping each part.
func (c *Client) endpoint(parts ...string) string {
	u := *c.baseURL
	plain := strings.TrimRight(u.Path, "/") + "/rest"
	raw := plain
	for _, p := range parts {
		plain += "/" + p
		raw += "/" + url.PathEscape(p)
	}
	u.Path, u.RawPath = plain, raw
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

// do sends req and returns the response for statuses the backend treats as
// success. Callers close the body.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	c.log.WithFields(logrus.Fields{
		"method":   req.Method,
		"path":     req.URL.Path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("Backend request")

	switch resp.StatusCode {
	case http.StatusOK, StatusTeapot:
		return resp, nil
	case http.StatusUnauthorized:
		_ = resp.Body.Close()
		return nil, ErrUnauthorized
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
	return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// doJSON sends reqBody as JSON (when non-nil) and decodes the response into out
// (when non-nil).
func (c *Client) doJSON(ctx context.Context, method, target string, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return errors.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(b)
	}
	req, err := c.newRequest(ctx, method, target, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s", req.URL.Path)
	}
	return nil
}

// backendErr turns a body-level error message into an error.
func backendErr(msg string) error {
	if strings.TrimSpace(msg) == "" {
		return nil
	}
	return &BackendError{Message: msg}
}
