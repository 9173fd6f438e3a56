package heartbeat

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shaiso/botlink/internal/telemetry"
	"github.com/shaiso/botlink/internal/transport"
)

// Endpoint path контракта N8N.
const pathHeartbeat = "/webhook/worker/heartbeat"

// Default configuration values.
const (
	defaultInterval = 30 * time.Second
	defaultAttempts = 2
)

// Payload — тело запроса /webhook/worker/heartbeat.
type Payload struct {
	WorkerID  string `json:"worker_id"`
	Timestamp string `json:"timestamp"`
}

// Monitor отправляет периодические heartbeat-сигналы.
type Monitor struct {
	client   *transport.Client
	workerID string
	interval time.Duration
	attempts int
	logger   *slog.Logger

	// Lifecycle.
	mu         sync.Mutex
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	started    bool
	stopped    bool
}

// Config — конфигурация Monitor.
type Config struct {
	// Client — транспорт (обязательно).
	Client *transport.Client

	// WorkerID — идентификатор воркера (обязательно).
	WorkerID string

	// Interval — период heartbeat (default: 30s).
	Interval time.Duration

	// Attempts — retry budget одного сигнала (default: 2).
	Attempts int

	// Logger (опционально; если nil — slog.Default()).
	Logger *slog.Logger
}

// New создаёт новый Monitor.
func New(cfg Config) *Monitor {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Monitor{
		client:   cfg.Client,
		workerID: cfg.WorkerID,
		interval: interval,
		attempts: attempts,
		logger:   logger.With("worker_id", cfg.WorkerID),
	}
}

// Start запускает фоновую горутину heartbeat.
//
// Повторный Start после Stop не поддерживается: Monitor одноразовый,
// как и процесс задачи.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started || m.stopped {
		return
	}
	m.started = true

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.loop(ctx)
	}()

	m.logger.Debug("heartbeat monitor started", "interval", m.interval)
}

// Stop останавливает Monitor и блокируется до выхода горутины.
// Идемпотентна; безопасна, если Start не вызывался.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	cancel := m.cancelFunc
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()

	m.logger.Debug("heartbeat monitor stopped")
}

// loop — тикер-цикл отправки сигналов.
func (m *Monitor) loop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Первый сигнал сразу при старте.
	m.beat(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.beat(ctx)
		}
	}
}

// beat отправляет один heartbeat. Ошибка логируется и глотается.
func (m *Monitor) beat(ctx context.Context) {
	payload := Payload{
		WorkerID:  m.workerID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	_, err := m.client.SendRetry(ctx, http.MethodPost, pathHeartbeat, payload, m.attempts)
	if err != nil {
		if ctx.Err() != nil {
			// Остановка монитора, не сбой сети.
			return
		}
		m.logger.Warn("heartbeat send failed", "error", err)
		telemetry.HeartbeatsTotal.WithLabelValues(telemetry.OutcomeError).Inc()
		return
	}
	telemetry.HeartbeatsTotal.WithLabelValues(telemetry.OutcomeOK).Inc()
}
