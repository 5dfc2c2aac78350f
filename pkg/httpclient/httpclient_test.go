package httpclient

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/reputation/pkg/errors"
)

func testConfig(retries int) Config {
	return Config{
		Timeout:         2 * time.Second,
		MaxRetries:      retries,
		RetryWaitMin:    time.Millisecond,
		RetryWaitMax:    5 * time.Millisecond,
		MaxConnsPerHost: 4,
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type scoreRequest struct {
	Text string `json:"text"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

func TestPostJSON_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"text":"great"}`, string(body))
		_, _ = w.Write([]byte(`{"score":0.8}`))
	}))
	defer server.Close()

	var out scoreResponse
	err := PostJSON(context.Background(), New(testConfig(0)), server.URL, "sentiment", scoreRequest{Text: "great"}, &out)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, out.Score, 1e-9)
}

func TestClient_RetriesOn5xxAndReplaysBody(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"text":"x"}`, string(body))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"score":-0.5}`))
	}))
	defer server.Close()

	var out scoreResponse
	err := PostJSON(context.Background(), New(testConfig(3)), server.URL, "sentiment", scoreRequest{Text: "x"}, &out)
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.InDelta(t, -0.5, out.Score, 1e-9)
}

func TestClient_DoesNotRetry501(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotImplemented)
	}))
	defer server.Close()

	req, _ := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	resp, err := New(testConfig(3)).Do(context.Background(), req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_ContextCanceledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(5)
	cfg.RetryWaitMin = time.Second
	cfg.RetryWaitMax = time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req, _ := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	_, err := New(cfg).Do(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestPostJSON_StructuredError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"INVALID_INPUT","message":"text is empty"}}`))
	}))
	defer server.Close()

	err := PostJSON(context.Background(), New(testConfig(0)), server.URL, "sentiment", scoreRequest{}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "sentiment: text is empty")
}

func TestParseResponseError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		target error
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":"UNAUTHORIZED","message":"no"}}`, apperrors.ErrUnauthorized},
		{"forbidden", http.StatusForbidden, `{"error":{"code":"FORBIDDEN","message":"no"}}`, apperrors.ErrForbidden},
		{"conflict", http.StatusConflict, `{"error":{"code":"CONFLICT","message":"dup"}}`, apperrors.ErrConflict},
		{"rate limited", http.StatusTooManyRequests, `{"error":{"code":"RATE_LIMITED","message":"slow"}}`, apperrors.ErrRateLimited},
		{"unavailable", http.StatusServiceUnavailable, `{"error":{"code":"SERVICE_UNAVAILABLE","message":"down"}}`, apperrors.ErrServiceUnavail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			rec.WriteHeader(tt.status)
			_, _ = rec.WriteString(tt.body)

			err := ParseResponseError(rec.Result(), "sentiment")
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestParseResponseError_Unstructured(t *testing.T) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(http.StatusBadGateway)
	_, _ = rec.WriteString("upstream exploded")

	err := ParseResponseError(rec.Result(), "sentiment")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := DefaultCircuitBreakerConfig("sentiment-test")
	cfg.MinRequests = 3
	cfg.Timeout = time.Minute
	cb := NewCircuitBreakerClient(New(testConfig(0)), cfg, quietLogger())

	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
		_, err := cb.Do(context.Background(), req)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	req, _ := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
	_, err := cb.Do(context.Background(), req)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, int32(3), calls.Load(), "open breaker must not reach the server")
}

func TestCircuitBreaker_ClientErrorsDoNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	cfg := DefaultCircuitBreakerConfig("sentiment-4xx")
	cfg.MinRequests = 2
	cb := NewCircuitBreakerClient(New(testConfig(0)), cfg, quietLogger())

	for i := 0; i < 5; i++ {
		req, _ := http.NewRequest(http.MethodGet, server.URL, http.NoBody)
		resp, err := cb.Do(context.Background(), req)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
