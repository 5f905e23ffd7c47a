package rmcloud

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient()

	assert.Equal(t, DefaultAuthURL, c.authURL)
	assert.Equal(t, DefaultDiscoveryURL, c.discoveryURL)
	assert.Equal(t, UserAgent, c.userAgent)
	assert.NotNil(t, c.httpClient)
	assert.NotNil(t, c.newID)
	assert.Nil(t, c.limiter)
	assert.Nil(t, c.metrics)
}

func TestNewClient_Options(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c := NewClient(
		WithHTTPClient(hc),
		WithAuthURL("http://auth.local/"),
		WithDiscoveryURL("http://discovery.local/x"),
		WithUserAgent("custom/1.0"),
		WithIDGenerator(func() string { return "fixed" }),
	)

	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, "http://auth.local", c.authURL)
	assert.Equal(t, "http://discovery.local/x", c.discoveryURL)
	assert.Equal(t, "custom/1.0", c.userAgent)
	assert.Equal(t, "fixed", c.newID())
}

func TestNewClient_EmptyOptionsKeepDefaults(t *testing.T) {
	c := NewClient(WithHTTPClient(nil), WithAuthURL(""), WithDiscoveryURL(""), WithUserAgent(""), WithIDGenerator(nil))

	assert.NotNil(t, c.httpClient)
	assert.Equal(t, DefaultAuthURL, c.authURL)
	assert.Equal(t, DefaultDiscoveryURL, c.discoveryURL)
	assert.Equal(t, UserAgent, c.userAgent)
	assert.NotNil(t, c.newID)
}

func TestClient_CustomUserAgent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "custom/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	_, err := NewClient(WithUserAgent("custom/1.0")).Docs(context.Background(), server.URL, "t", nil)
	require.NoError(t, err)
}

func TestClient_WithLogger(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := NewClient(WithLogger(log)).Docs(context.Background(), server.URL, "secret-user-token", nil)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "request completed")
	assert.Contains(t, out, "operation=docs")
	assert.Contains(t, out, "request_id=")
	assert.Contains(t, out, "status=200")
	assert.NotContains(t, out, "secret-user-token")
}

func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the server")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient().Docs(ctx, server.URL, "t", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_RateLimiter(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	// One request per ~17 minutes with a burst of one.
	c := NewClient(WithRateLimiter(rate.NewLimiter(rate.Limit(0.001), 1)))

	_, err := c.Docs(context.Background(), server.URL, "t", nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Docs(ctx, server.URL, "t", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
	assert.Equal(t, int32(1), hits.Load())
}

func TestClient_Metrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token/json/2/user/new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := NewClient(WithAuthURL(server.URL), WithMetrics(m))

	_, err := c.Docs(context.Background(), server.URL, "t", nil)
	require.NoError(t, err)
	_, err = c.Docs(context.Background(), server.URL, "t", nil)
	require.NoError(t, err)
	_, err = c.AuthenticateUser(context.Background(), "device")
	require.ErrorIs(t, err, ErrUserAuthFailure)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(OpDocs, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(OpAuthenticateUser, "401")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.requests))
	assert.Equal(t, 2, testutil.CollectAndCount(m.duration))
}

func TestMetrics_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	m := NewMetrics(prometheus.NewRegistry())
	_, err := NewClient(WithMetrics(m)).Docs(context.Background(), url, "t", nil)
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(OpDocs, "error")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe(OpDocs, 200, nil, time.Millisecond) })
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://x/blob", redactURL("https://x/blob?X-Goog-Signature=abc"))
	assert.Equal(t, "https://x/blob", redactURL("https://x/blob"))
}
