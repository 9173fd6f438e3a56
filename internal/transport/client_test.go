package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// newTestClient — клиент с быстрым backoff для тестов.
func newTestClient(baseURL string, timeout time.Duration) *Client {
	return New(Config{
		BaseURL:        baseURL,
		Timeout:        timeout,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	})
}

func TestSend_Success(t *testing.T) {
	var receivedBody map[string]any
	var receivedContentType string
	var receivedMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedMethod = r.Method
		receivedContentType = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&receivedBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	resp, err := client.Send(context.Background(), http.MethodPost, "/webhook/tarefa/logs", map[string]any{"level": "info"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receivedMethod != http.MethodPost {
		t.Errorf("expected POST, got %s", receivedMethod)
	}
	if receivedContentType != "application/json" {
		t.Errorf("expected application/json, got %q", receivedContentType)
	}
	if receivedBody["level"] != "info" {
		t.Errorf("server should receive body, got %v", receivedBody)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"ok": true}` {
		t.Errorf("unexpected response body: %s", resp.Body)
	}
}

func TestSend_HTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("bad payload"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	_, err := client.Send(context.Background(), http.MethodPost, "/webhook/tarefa/logs", nil)
	if !errors.Is(err, ErrHTTPStatus) {
		t.Fatalf("expected ErrHTTPStatus, got %v", err)
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T", err)
	}
	if statusErr.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", statusErr.Code)
	}
	if statusErr.Retriable() {
		t.Error("4xx must not be retriable")
	}
}

func TestSend_ConnectionRefused(t *testing.T) {
	// Сервер закрыт до запроса — соединение будет отклонено.
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(url, time.Second)

	_, err := client.Send(context.Background(), http.MethodPost, "/webhook/worker/heartbeat", nil)
	if !errors.Is(err, ErrConnectionRefused) {
		t.Fatalf("expected ErrConnectionRefused, got %v", err)
	}
}

func TestSend_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 20*time.Millisecond)

	_, err := client.Send(context.Background(), http.MethodPost, "/webhook/worker/heartbeat", nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestSendRetry_RecoversAfter5xx(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	resp, err := client.SendRetry(context.Background(), http.MethodPost, "/webhook/tarefa/kpi", nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected 3 calls, got %d", got)
	}
}

func TestSendRetry_4xxNotRetried(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	_, err := client.SendRetry(context.Background(), http.MethodPost, "/webhook/tarefa/kpi", nil, 5)
	if !errors.Is(err, ErrHTTPStatus) {
		t.Fatalf("expected ErrHTTPStatus, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("4xx must not be retried, got %d calls", got)
	}
}

func TestSendRetry_Exhausted(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	_, err := client.SendRetry(context.Background(), http.MethodPost, "/webhook/worker/registro", nil, 3)
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("expected exactly 3 attempts, got %d", got)
	}
}

func TestSendRetry_UnmarshalableBodyNotRetried(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL, time.Second)

	// chan не сериализуется в JSON — запрос собрать невозможно.
	_, err := client.SendRetry(context.Background(), http.MethodPost, "/webhook/tarefa/kpi", map[string]any{"ch": make(chan int)}, 5)
	if !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if errors.Is(err, ErrRetryExhausted) {
		t.Error("marshal failure must not burn the retry budget")
	}
	if got := calls.Load(); got != 0 {
		t.Errorf("no requests expected, got %d", got)
	}
}

func TestSendRetry_ContextCancelStopsBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(Config{
		BaseURL:        server.URL,
		Timeout:        time.Second,
		InitialBackoff: time.Hour, // backoff должен прерваться контекстом
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := client.SendRetry(ctx, http.MethodPost, "/webhook/tarefa/logs", nil, 2)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, ErrRetryExhausted) {
			t.Fatalf("expected ErrRetryExhausted, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("SendRetry did not return after context cancel")
	}
}

func TestEndpointLabel(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/webhook/tarefa/logs", "tarefa/logs"},
		{"/webhook/tarefa/42/status", "tarefa/status"},
		{"/webhook/worker/heartbeat", "worker/heartbeat"},
		{"/webhook/worker/registro", "worker/registro"},
		{"/webhook/meu-hook", "meu-hook"},
	}

	for _, tt := range tests {
		if got := endpointLabel(tt.path); got != tt.want {
			t.Errorf("endpointLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
