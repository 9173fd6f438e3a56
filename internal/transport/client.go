package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/shaiso/botlink/internal/telemetry"
)

// Default configuration values.
const (
	defaultTimeout        = 30 * time.Second
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 10 * time.Second

	maxErrorBodyLen = 200
)

// Client — HTTP-клиент для webhooks оркестратора.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

// Config — конфигурация Client.
type Config struct {
	// BaseURL — базовый URL webhooks оркестратора (обязательно).
	BaseURL string

	// Timeout — таймаут каждого запроса (default: 30s).
	Timeout time.Duration

	// InitialBackoff — стартовая задержка retry (default: 500ms).
	InitialBackoff time.Duration

	// MaxBackoff — потолок задержки retry (default: 10s).
	MaxBackoff time.Duration

	// Logger (опционально; если nil — slog.Default()).
	Logger *slog.Logger
}

// New создаёт новый Client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	initialBackoff := cfg.InitialBackoff
	if initialBackoff <= 0 {
		initialBackoff = defaultInitialBackoff
	}

	maxBackoff := cfg.MaxBackoff
	if maxBackoff <= 0 {
		maxBackoff = defaultMaxBackoff
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:     &http.Client{Timeout: timeout},
		initialBackoff: initialBackoff,
		maxBackoff:     maxBackoff,
		logger:         logger,
	}
}

// Response — ответ оркестратора.
type Response struct {
	// StatusCode — HTTP-код ответа.
	StatusCode int

	// Body — тело ответа.
	Body []byte
}

// Send выполняет один запрос без retry.
//
// Body сериализуется в JSON. Ответ с кодом >= 400 возвращается
// как *StatusError вместе с прочитанным телом.
func (c *Client) Send(ctx context.Context, method, path string, body any) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: marshal body: %v", ErrInvalidRequest, err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrInvalidRequest, err)
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.count(path, telemetry.OutcomeError)
		return nil, classify(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.count(path, telemetry.OutcomeError)
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.count(path, telemetry.OutcomeError)
		return nil, &StatusError{
			Code: resp.StatusCode,
			Body: truncate(string(respBody), maxErrorBodyLen),
		}
	}

	c.count(path, telemetry.OutcomeOK)
	return &Response{StatusCode: resp.StatusCode, Body: respBody}, nil
}

// SendRetry выполняет запрос с bounded retry и exponential backoff.
//
// Повторяются сетевые ошибки и 5xx; 4xx возвращается сразу.
// После исчерпания попыток возвращается последняя ошибка,
// обёрнутая в ErrRetryExhausted.
func (c *Client) SendRetry(ctx context.Context, method, path string, body any, attempts int) (*Response, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	backoff := c.initialBackoff

	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.Send(ctx, method, path, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retriable(err) {
			return nil, err
		}

		if attempt == attempts {
			break
		}

		c.logger.Debug("request failed, retrying",
			"path", path,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)
		telemetry.RetriesTotal.WithLabelValues(endpointLabel(path)).Inc()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrRetryExhausted, ctx.Err())
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > c.maxBackoff {
			backoff = c.maxBackoff
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

// count инкрементирует счётчик исходящих запросов.
func (c *Client) count(path, outcome string) {
	telemetry.RequestsTotal.WithLabelValues(endpointLabel(path), outcome).Inc()
}

// classify переводит ошибку net/http в таксономию транспорта.
func classify(err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: %v", ErrConnectionRefused, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return err
}

// retriable возвращает true, если ошибку имеет смысл повторить.
func retriable(err error) bool {
	if errors.Is(err, ErrInvalidRequest) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Retriable()
	}
	// Всё остальное — инфраструктура (сеть, таймаут), retriable.
	return true
}

// endpointLabel нормализует path в метку метрики с ограниченной
// кардинальностью: "/webhook/tarefa/{id}/status" → "tarefa/status".
func endpointLabel(path string) string {
	p := strings.Trim(strings.TrimPrefix(path, "/webhook"), "/")
	segs := strings.Split(p, "/")
	if len(segs) >= 3 {
		return segs[0] + "/" + segs[len(segs)-1]
	}
	return p
}

// truncate обрезает строку до указанной длины.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
