package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/rushtracker/rushtracker/pkg/session"
)

const defaultTimeout = 30 * time.Second

// Options configures a Client
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Transport is the underlying round tripper; nil means http.DefaultTransport
	Transport http.RoundTripper
}

// Client talks to the rushtracker REST API. Authenticated calls carry the bearer token of the
// session store; public calls (login, the rushee-facing forms) go out without it.
type Client struct {
	baseURL *url.URL
	public  *http.Client
	authed  *http.Client
	session *session.Store
	logger  *zap.Logger
}

// NewClient creates a client for the API at opts.BaseURL
func NewClient(opts Options, store *session.Store, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api base url must be absolute, got %q", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}

	return &Client{
		baseURL: base,
		public:  &http.Client{Timeout: timeout, Transport: transport},
		authed: &http.Client{
			Timeout: timeout,
			Transport: &oauth2.Transport{
				Source: store,
				Base:   transport,
			},
		},
		session: store,
		logger:  logger,
	}, nil
}

// Session returns the store backing authenticated calls
func (c *Client) Session() *session.Store {
	return c.session
}

// fraternity returns the logged-in brother's fraternity, used to scope calls
func (c *Client) fraternity() (string, error) {
	b, ok := c.session.Brother()
	if !ok {
		return "", session.ErrNoSession
	}
	return b.Frat, nil
}

func fratQuery(frat string) url.Values {
	q := url.Values{}
	if frat != "" {
		q.Set("fraternity", frat)
	}
	return q
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	public bool
}

// do sends req and decodes the envelope payload into out (which may be nil)
func (c *Client) do(ctx context.Context, req request, out any) error {
	u := c.baseURL.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return c.send(httpReq, req.public, out)
}

// send executes httpReq and applies the error taxonomy: 401 clears the session, 404 becomes
// ErrNotFound and everything else non-2xx becomes an *APIError
func (c *Client) send(httpReq *http.Request, public bool, out any) error {
	client := c.authed
	if public {
		client = c.public
	}

	start := time.Now()
	resp, err := client.Do(httpReq)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return session.ErrNoSession
		}
		return fmt.Errorf("failed to call %s %s: %w", httpReq.Method, httpReq.URL.Path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("API call",
		zap.String("method", httpReq.Method),
		zap.String("path", httpReq.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
		if resp.StatusCode == http.StatusUnauthorized {
			c.logger.Warn("API rejected the session, logging out")
			if clearErr := c.session.Clear(); clearErr != nil {
				c.logger.Error("Failed to clear session", zap.Error(clearErr))
			}
		}
		return apiErr
	}

	payload, err := unwrapEnvelope(resp.StatusCode, data)
	if err != nil {
		return err
	}
	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", httpReq.Method, httpReq.URL.Path, err)
	}
	return nil
}
