package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultTimeout(t *testing.T) {
	c := New()
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
	assert.Nil(t, c.limiter)
	assert.Nil(t, c.breaker)
}

func TestNew_WithTimeout(t *testing.T) {
	c := New(WithTimeout(60 * time.Second))
	assert.Equal(t, 60*time.Second, c.httpClient.Timeout)
}

func TestNew_WithHeader(t *testing.T) {
	c := New(WithHeader("X-Custom-1", "value1"), WithHeader("X-Custom-2", "value2"), WithUserAgent("wau/test"))
	assert.Equal(t, "value1", c.headers["X-Custom-1"])
	assert.Equal(t, "value2", c.headers["X-Custom-2"])
	assert.Equal(t, "wau/test", c.headers["User-Agent"])
}

func TestNew_WithRateLimit(t *testing.T) {
	assert.NotNil(t, New(WithRateLimit(5, 0)).limiter)
	assert.Nil(t, New(WithRateLimit(0, 1)).limiter)
}

func TestClient_Get_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	}))
	defer server.Close()

	c := New()
	resp, err := c.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestClient_Get_Error(t *testing.T) {
	c := New(WithTimeout(100 * time.Millisecond))

	_, err := c.Get(context.Background(), "http://localhost:99999/nonexistent")
	require.Error(t, err)
}

func TestClient_Request_POST(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	c := New()
	resp, err := c.Request(context.Background(), http.MethodPost, server.URL,
		map[string]string{"Content-Type": "application/json"}, []byte(`{"url":"x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
}

func TestClient_Do_RequestID(t *testing.T) {
	var ids []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get(RequestIDHeader))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New()
	for i := 0; i < 2; i++ {
		resp, err := c.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}

	require.Len(t, ids, 2)
	assert.Len(t, ids[0], 36)
	assert.NotEqual(t, ids[0], ids[1])

	// An explicit id is kept
	resp, err := c.Request(context.Background(), http.MethodGet, server.URL, map[string]string{RequestIDHeader: "fixed"}, nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "fixed", ids[2])
}

func TestClient_Do_NoOverrideExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "request-value", r.Header.Get("X-Default"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(WithHeader("X-Default", "default-value"))
	resp, err := c.Request(context.Background(), http.MethodGet, server.URL, map[string]string{"X-Default": "request-value"}, nil)
	require.NoError(t, err)
	resp.Body.Close()
}

func TestClient_CircuitBreaker(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := New(WithCircuitBreaker("registry", 2, time.Minute))

	// 5xx responses are returned to the caller but count as failures
	for i := 0; i < 2; i++ {
		resp, err := c.Get(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		resp.Body.Close()
	}

	_, err := c.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, int32(2), hits.Load())
}

func TestClient_RateLimitCancelled(t *testing.T) {
	c := New(WithRateLimit(0.001, 1))
	c.limiter.Allow() // drain the burst

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter")
}

func TestClient_RedirectLimit(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/again", http.StatusFound)
	}))
	defer server.Close()

	c := New(WithRedirectLimit(3))
	_, err := c.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stopped after 3 redirects")
}

func TestTimedRequest_Latency(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(10 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New()
	result, err := c.TimedRequest(context.Background(), http.MethodGet, server.URL, nil, nil)
	require.NoError(t, err)
	defer result.Response.Body.Close()

	assert.GreaterOrEqual(t, result.Latency, 10*time.Millisecond)
	assert.GreaterOrEqual(t, result.LatencyMs, int64(10))
}

func TestParseRetryAfter(t *testing.T) {
	future := time.Now().Add(60 * time.Second).UTC().Format(http.TimeFormat)
	past := time.Now().Add(-60 * time.Second).UTC().Format(http.TimeFormat)

	tests := []struct {
		name  string
		value string
		min   time.Duration
		max   time.Duration
	}{
		{"seconds", "120", 120 * time.Second, 120 * time.Second},
		{"empty", "", 0, 0},
		{"invalid", "soon", 0, 0},
		{"negative", "-5", 0, 0},
		{"http date", future, 50 * time.Second, 70 * time.Second},
		{"past date", past, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.value != "" {
				resp.Header.Set("Retry-After", tt.value)
			}
			got := ParseRetryAfter(resp)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}
