package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestClient returns a client with no politeness delay, for tests that
// exercise classification rather than pacing.
func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithDelayWindow(0, 0)}, opts...)
	return NewClient(5*time.Second, opts...)
}

// TestGetClassification tests HTTP status to outcome mapping.
func TestGetClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		wantKind Kind
	}{
		{"200 is ok", http.StatusOK, KindOK},
		{"403 is blocked", http.StatusForbidden, KindBlocked},
		{"404 is not found", http.StatusNotFound, KindNotFound},
		{"500 is a network error", http.StatusInternalServerError, KindNetworkError},
		{"429 is a network error", http.StatusTooManyRequests, KindNetworkError},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, "body")
			}))
			defer server.Close()

			outcome := newTestClient(t).Get(context.Background(), server.URL)
			if outcome.Kind != tt.wantKind {
				t.Errorf("expected %v, got %v", tt.wantKind, outcome.Kind)
			}
			if outcome.OK() {
				body, err := io.ReadAll(outcome.Body)
				if err != nil {
					t.Fatalf("failed to read body: %v", err)
				}
				_ = outcome.Body.Close()
				if string(body) != "body" {
					t.Errorf("unexpected body %q", body)
				}
			} else if outcome.Body != nil {
				t.Error("non-ok outcome must not carry a body")
			}
		})
	}
}

// TestGetIdentityHeaders tests that every request carries the fixed
// identity and configured collection headers.
func TestGetIdentityHeaders(t *testing.T) {
	t.Parallel()

	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t,
		WithUserAgent("docarc-test/1.0"),
		WithCookie("gate=open"),
		WithHeaders(map[string]string{"DNT": "1"}),
	)

	outcome := client.Get(context.Background(), server.URL, WithReferer("https://example.gov/prev"))
	if !outcome.OK() {
		t.Fatalf("expected ok outcome, got %v", outcome.Kind)
	}
	_ = outcome.Body.Close()

	if got.Get("User-Agent") != "docarc-test/1.0" {
		t.Errorf("unexpected user agent %q", got.Get("User-Agent"))
	}
	if got.Get("Cookie") != "gate=open" {
		t.Errorf("expected cookie to be sent, got %q", got.Get("Cookie"))
	}
	if got.Get("DNT") != "1" {
		t.Errorf("expected DNT header, got %q", got.Get("DNT"))
	}
	if got.Get("Referer") != "https://example.gov/prev" {
		t.Errorf("expected referer, got %q", got.Get("Referer"))
	}
	if got.Get("Accept") == "" {
		t.Error("expected an Accept header")
	}
}

// TestGetPoliteDelay tests that the randomized pause happens before the
// request and respects cancellation.
func TestGetPoliteDelay(t *testing.T) {
	t.Parallel()

	t.Run("request waits at least the minimum delay", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(5*time.Second, WithDelayWindow(100*time.Millisecond, 150*time.Millisecond))

		start := time.Now()
		outcome := client.Get(context.Background(), server.URL)
		elapsed := time.Since(start)

		if !outcome.OK() {
			t.Fatalf("expected ok outcome, got %v", outcome.Kind)
		}
		_ = outcome.Body.Close()

		if elapsed < 100*time.Millisecond {
			t.Errorf("request returned after %v, before the minimum delay", elapsed)
		}
	})

	t.Run("cancellation during the pause aborts without a request", func(t *testing.T) {
		t.Parallel()

		requested := false
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			requested = true
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(5*time.Second, WithDelayWindow(5*time.Second, 5*time.Second))

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		outcome := client.Get(ctx, server.URL)
		if outcome.Kind != KindNetworkError {
			t.Errorf("expected network error on cancellation, got %v", outcome.Kind)
		}
		if requested {
			t.Error("request must not reach the server when cancelled during the pause")
		}
	})
}

// TestGetTimeout tests timeout classification.
func TestGetTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewClient(100*time.Millisecond, WithDelayWindow(0, 0))

	outcome := client.Get(context.Background(), server.URL)
	if outcome.Kind != KindTimeout {
		t.Errorf("expected timeout, got %v (err=%v)", outcome.Kind, outcome.Err)
	}
}

// TestGetConnectionRefused tests network error classification.
func TestGetConnectionRefused(t *testing.T) {
	t.Parallel()

	// Reserve a port and close it so nothing is listening.
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	outcome := newTestClient(t).Get(context.Background(), url)
	if outcome.Kind != KindNetworkError {
		t.Errorf("expected network error, got %v", outcome.Kind)
	}
	if outcome.Err == nil {
		t.Error("expected error detail")
	}
}

// TestOutcomeDescribe tests the error summaries stored on records.
func TestOutcomeDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		outcome Outcome
		want    string
	}{
		{Outcome{Kind: KindBlocked, StatusCode: 403}, "access blocked (HTTP 403)"},
		{Outcome{Kind: KindNotFound, StatusCode: 404}, "not found (HTTP 404)"},
		{Outcome{Kind: KindTimeout}, "request timeout"},
		{Outcome{Kind: KindNetworkError, StatusCode: 503}, "HTTP 503"},
	}

	for _, tt := range tests {
		if got := tt.outcome.Describe(); got != tt.want {
			t.Errorf("Describe() = %q, want %q", got, tt.want)
		}
	}
}
