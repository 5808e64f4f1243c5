// Package apiclient is the single chokepoint through which every call to the
// attendance backend passes. It attaches headers and bearer auth, decodes and
// validates JSON responses and normalizes failures into *errors.Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-client/pkg/config"
	appErrors "github.com/noah-isme/attendance-client/pkg/errors"
	"github.com/noah-isme/attendance-client/pkg/middleware/requestid"
	"github.com/noah-isme/attendance-client/pkg/session"
)

const (
	contentTypeJSON = "application/json"
	maxErrorBody    = 1 << 20
)

// Observer receives one observation per outbound request. status is 0 when
// no response was received.
type Observer interface {
	ObserveUpstreamRequest(method, route string, status int, duration time.Duration)
}

// Options configures a Client.
type Options struct {
	BaseURL             string
	HTTPClient          *http.Client
	Session             *session.Session
	DefaultHeaders      map[string]string
	Logger              *zap.Logger
	Observer            Observer
	Validator           *validator.Validate
	ClearOnUnauthorized bool
	// Now is used for token expiry checks; defaults to time.Now.
	Now func() time.Time
}

// Client performs JSON requests against the backend.
type Client struct {
	baseURL             string
	httpClient          *http.Client
	session             *session.Session
	defaultHeaders      http.Header
	logger              *zap.Logger
	observer            Observer
	validator           *validator.Validate
	clearOnUnauthorized bool
	now                 func() time.Time
}

// New constructs a Client. BaseURL and Session are required.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, errors.New("apiclient: base URL required")
	}
	if opts.Session == nil {
		return nil, errors.New("apiclient: session required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := opts.Validator
	if validate == nil {
		validate = validator.New()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	defaults := make(http.Header, len(opts.DefaultHeaders))
	for k, v := range opts.DefaultHeaders {
		if k == "" {
			continue
		}
		defaults.Set(k, v)
	}

	return &Client{
		baseURL:             strings.TrimRight(opts.BaseURL, "/"),
		httpClient:          httpClient,
		session:             opts.Session,
		defaultHeaders:      defaults,
		logger:              logger,
		observer:            opts.Observer,
		validator:           validate,
		clearOnUnauthorized: opts.ClearOnUnauthorized,
		now:                 now,
	}, nil
}

// OptionsFromConfig maps cfg onto Options. Session, Logger and Observer are
// left for the caller.
func OptionsFromConfig(cfg config.APIConfig) Options {
	headers := map[string]string{}
	if cfg.TunnelHeader != "" {
		headers[cfg.TunnelHeader] = cfg.TunnelHeaderValue
	}
	return Options{
		BaseURL:             cfg.BaseURL(),
		HTTPClient:          &http.Client{Timeout: cfg.Timeout},
		DefaultHeaders:      headers,
		ClearOnUnauthorized: cfg.ClearTokenOnUnauthz,
	}
}

// FromConfig builds a Client for cfg using the tunnel header, timeout and 401
// policy it carries.
func FromConfig(cfg config.APIConfig, sess *session.Session, logger *zap.Logger, observer Observer) (*Client, error) {
	opts := OptionsFromConfig(cfg)
	opts.Session = sess
	opts.Logger = logger
	opts.Observer = observer
	return New(opts)
}

// Session returns the session the client authenticates with.
func (c *Client) Session() *session.Session {
	return c.session
}

// RequestOption customises a single call.
type RequestOption func(*requestConfig)

type requestConfig struct {
	headers http.Header
}

// WithHeader adds a header to one call. Content-Type cannot be overridden.
func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) {
		rc.headers.Add(key, value)
	}
}

// Do sends method path with body JSON-encoded (nil sends no body) and decodes
// a success response into out (nil discards it). A 204 leaves out untouched.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}, opts ...RequestOption) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rc := requestConfig{headers: http.Header{}}
	for _, opt := range opts {
		opt(&rc)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, "ENCODE_ERROR", http.StatusBadRequest, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return appErrors.Transport(err)
	}
	c.applyHeaders(req, rc.headers)

	token := c.session.Token()
	if token != "" {
		if exp, ok := session.ExpiryOf(token); ok && !c.now().Before(exp) {
			c.logger.Info("session token expired, clearing", zap.Time("expired_at", exp))
			c.session.ClearToken()
			token = ""
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	reqID := requestid.FromContext(ctx)
	if reqID == "" {
		reqID = requestid.New()
	}
	req.Header.Set(requestid.Header, reqID)

	route := RouteTemplate(path)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, route, 0, time.Since(start))
		c.logger.Debug("upstream request failed",
			zap.String("method", method),
			zap.String("route", route),
			zap.String("request_id", reqID),
			zap.Error(err),
		)
		return appErrors.Transport(err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)
	c.observe(method, route, resp.StatusCode, duration)
	c.logger.Debug("upstream request",
		zap.String("method", method),
		zap.String("route", route),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
		zap.String("request_id", reqID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusUnauthorized && c.clearOnUnauthorized {
			c.session.ClearToken()
		}
		return appErrors.HTTPStatus(resp.StatusCode, errorMessage(raw))
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		// Drain so the connection goes back to the keep-alive pool.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return appErrors.Decode(err)
	}
	if err := c.validateShape(out); err != nil {
		return appErrors.Shape(err)
	}
	return nil
}

// Get issues a GET without body.
func (c *Client) Get(ctx context.Context, path string, out interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST.
func (c *Client) Post(ctx context.Context, path string, body, out interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put issues a PUT.
func (c *Client) Put(ctx context.Context, path string, body, out interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

// Patch issues a PATCH.
func (c *Client) Patch(ctx context.Context, path string, body, out interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, path, body, out, opts...)
}

// Delete issues a DELETE without body.
func (c *Client) Delete(ctx context.Context, path string, out interface{}, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

func (c *Client) applyHeaders(req *http.Request, extra http.Header) {
	for k, vs := range c.defaultHeaders {
		req.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range extra {
		if strings.EqualFold(k, "Content-Type") {
			continue
		}
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("Accept", contentTypeJSON)
}

func (c *Client) observe(method, route string, status int, d time.Duration) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveUpstreamRequest(method, route, status, d)
}
