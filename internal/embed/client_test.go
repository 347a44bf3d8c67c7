package embed

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func quietClient(url string, opts ...ClientOption) *Client {
	opts = append(opts, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	c := NewClient(url, "test-model", 5*time.Second, opts...)
	c.backoff = func(int) time.Duration { return time.Millisecond }
	return c
}

func TestClientEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" || len(req.Input) != 1 || req.Input[0] != "Overview" {
			t.Errorf("unexpected request %+v", req)
		}
		w.Write([]byte(`{"data":[{"index":0,"embedding":[0.5,0.25,1]}]}`))
	}))
	defer srv.Close()

	stats := NewStats(time.Hour)
	c := quietClient(srv.URL+"/", WithAPIKey("secret"), WithStats(stats))
	defer c.Close()

	vec, err := c.Embed(context.Background(), "Overview")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 || vec[2] != 1 {
		t.Errorf("unexpected vector %v", vec)
	}
	if snap := stats.Snapshot(); snap.Calls != 1 || snap.Failures != 0 {
		t.Errorf("expected one recorded call, got %+v", snap)
	}
}

func TestClientRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[{"index":0,"embedding":[1,0]}]}`))
	}))
	defer srv.Close()

	stats := NewStats(time.Hour)
	c := quietClient(srv.URL, WithStats(stats))
	if _, err := c.Embed(context.Background(), "Results"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
	snap := stats.Snapshot()
	if snap.Retries != 2 || snap.Failures != 2 || snap.Calls != 3 {
		t.Errorf("unexpected stats %+v", snap)
	}
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := quietClient(srv.URL).Embed(context.Background(), "x")
	if !IsRetryable(err) {
		t.Fatalf("expected wrapped retryable error, got %v", err)
	}
	if int(calls.Load()) != MaxRetries+1 {
		t.Errorf("expected %d attempts, got %d", MaxRetries+1, calls.Load())
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad model", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := quietClient(srv.URL).Embed(context.Background(), "x")
	if err == nil || IsRetryable(err) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single attempt, got %d", calls.Load())
	}
}

func TestClientEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	if _, err := quietClient(srv.URL).Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty data")
	}
}

func TestBackoffBounds(t *testing.T) {
	for attempt, base := range []time.Duration{time.Second, 2 * time.Second, 4 * time.Second} {
		got := Backoff(attempt)
		if got < base || got >= base+base/2 {
			t.Errorf("attempt %d: %v outside [%v, %v)", attempt, got, base, base+base/2)
		}
	}
	if got := Backoff(10); got < 30*time.Second || got >= 45*time.Second {
		t.Errorf("expected capped backoff, got %v", got)
	}
}

func TestIsRetryable(t *testing.T) {
	if IsRetryable(errors.New("plain")) {
		t.Error("plain error should not be retryable")
	}
	wrapped := errors.Join(errors.New("ctx"), &RetryableError{StatusCode: 503})
	if !IsRetryable(wrapped) {
		t.Error("wrapped RetryableError should be retryable")
	}
}
