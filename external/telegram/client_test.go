package telegram

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/tonttery/internal/platform/resilience"
	"github.com/riskibarqy/tonttery/internal/usecase"
)

func newTestClient(baseURL string, retries int, breaker resilience.CircuitBreakerConfig) *Client {
	return NewClient(ClientConfig{
		BaseURL:        baseURL,
		Token:          "123:secret",
		Timeout:        2 * time.Second,
		MaxRetries:     retries,
		RetryBackoff:   time.Millisecond,
		CircuitBreaker: breaker,
	})
}

func TestClient_SendMessage(t *testing.T) {
	t.Parallel()

	var got sendMessageRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/bot123:secret/sendMessage" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if err := sonic.Unmarshal(raw, &got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{})
	if err := client.SendMessage(context.Background(), "@tonttery", "hello"); err != nil {
		t.Fatalf("send message: %v", err)
	}
	if got.ChatID != "@tonttery" || got.Text != "hello" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":502,"description":"Bad Gateway"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2, resilience.CircuitBreakerConfig{})
	if err := client.SendMessage(context.Background(), "42", "hi"); err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3, resilience.CircuitBreakerConfig{})
	err := client.SendMessage(context.Background(), "42", "hi")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("expected chat not found error, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("client errors must not be retried, attempts=%d", got)
	}
}

func TestClient_CircuitOpensOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 0, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	if err := client.SendMessage(context.Background(), "42", "first"); err == nil {
		t.Fatalf("expected first call to fail")
	}
	err := client.SendMessage(context.Background(), "42", "second")
	if !errors.Is(err, usecase.ErrDependencyUnavailable) || !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("open circuit must not reach the server, calls=%d", got)
	}
}

func TestClient_RequiresConfiguration(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{})
	if err := client.SendMessage(context.Background(), "42", "hi"); err == nil {
		t.Fatalf("expected missing token error")
	}
	if err := newTestClient("http://127.0.0.1:1", 0, resilience.CircuitBreakerConfig{}).SendMessage(context.Background(), " ", "hi"); err == nil {
		t.Fatalf("expected missing chat id error")
	}
}

func TestClient_RedactsToken(t *testing.T) {
	t.Parallel()

	client := newTestClient("http://127.0.0.1:1", 0, resilience.CircuitBreakerConfig{})
	got := client.redact("dial http://api.telegram.org/bot123:secret/sendMessage failed")
	if strings.Contains(got, "secret") {
		t.Fatalf("token leaked: %s", got)
	}
}
