package rmcloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/rmcloud-go/internal/telemetry/logger"
	"github.com/yndnr/rmcloud-go/pkg/ident"
)

const (
	// DefaultAuthURL is the base URL of the token service.
	DefaultAuthURL = "https://my.remarkable.com"

	// DefaultDiscoveryURL is the service-discovery endpoint that resolves
	// the document-storage host.
	DefaultDiscoveryURL = "https://service-manager-production-dot-remarkable-production.appspot.com/service/json/1/document-storage"

	// UserAgent is sent with every request.
	UserAgent = "remarkable-tablet-api"
)

// Operation names, used as the "operation" label on metrics and logs.
const (
	OpAuthenticateDevice = "authenticate_device"
	OpAuthenticateUser   = "authenticate_user"
	OpGetStorageHost     = "get_storage_host"
	OpDocs               = "docs"
	OpUploadRequest      = "upload_request"
	OpUploadBlob         = "upload_blob"
	OpUpdateStatus       = "update_status"
	OpDeleteItem         = "delete_item"
)

// Client talks to the document-storage service.
//
// A Client holds no per-session state: tokens and the storage host are
// passed to every call. It is safe for concurrent use.
type Client struct {
	httpClient   *http.Client
	authURL      string
	discoveryURL string
	userAgent    string
	newID        ident.Generator
	limiter      *rate.Limiter
	metrics      *Metrics
	log          logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithAuthURL overrides the token service base URL.
func WithAuthURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.authURL = strings.TrimRight(u, "/")
		}
	}
}

// WithDiscoveryURL overrides the storage host discovery endpoint.
func WithDiscoveryURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.discoveryURL = u
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithIDGenerator overrides how device and document identifiers are made.
func WithIDGenerator(gen ident.Generator) Option {
	return func(c *Client) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithRateLimiter makes every request wait for a token from l before it is
// sent.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithLogger sends the client's debug logs to l. Without it, the logger
// carried by the request context is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = logger.FromSlog(l)
		}
	}
}

// WithMetrics records request metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a Client that talks to the production service unless
// overridden by opts.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{},
		authURL:      DefaultAuthURL,
		discoveryURL: DefaultDiscoveryURL,
		userAgent:    UserAgent,
		newID:        ident.New,
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request describes one outbound call.
type request struct {
	operation string
	method    string
	url       string
	token     string      // bearer token, empty for unauthenticated calls
	header    http.Header // extra headers
	body      any         // JSON-encoded when non-nil
	raw       io.Reader   // sent verbatim when non-nil
	size      int64       // length of raw, or -1 if unknown
}

// do sends r and returns the response. The caller owns the response body.
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%s: rate limit: %w", r.operation, err)
		}
	}

	var bodyReader io.Reader
	switch {
	case r.raw != nil:
		bodyReader = r.raw
	case r.body != nil:
		data, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal body: %w", r.operation, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", r.operation, err)
	}
	if r.raw != nil {
		switch {
		case r.size > 0:
			req.ContentLength = r.size
		case r.size == 0:
			req.Body = http.NoBody
			req.ContentLength = 0
		}
	}

	c.addHeaders(req, r)

	ctx = logger.WithRequestID(ctx, ulid.Make().String())
	if c.log != nil {
		ctx = logger.WithLogger(ctx, c.log)
	}
	log := logger.L(ctx).With("operation", r.operation)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.metrics.observe(r.operation, status, err, elapsed)

	if err != nil {
		log.Debug("request failed", "method", r.method, "url", redactURL(req.URL.String()), "duration", elapsed, "error", err)
		return nil, fmt.Errorf("%s: %w", r.operation, err)
	}

	log.Debug("request completed", "method", r.method, "url", redactURL(req.URL.String()), "status", status, "duration", elapsed)
	return resp, nil
}

// addHeaders adds authentication and common headers.
func (c *Client) addHeaders(req *http.Request, r request) {
	req.Header.Set("User-Agent", c.userAgent)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.body != nil && r.raw == nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
}

// readText reads and closes the response body.
func readText(resp *http.Response) (string, error) {
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return string(data), nil
}

// decodeJSON decodes the response body into target and closes it.
func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

// redactURL drops the query string, which for upload slots carries a
// signature.
func redactURL(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}
	return u
}
