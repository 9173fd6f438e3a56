package report

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shaiso/botlink/internal/config"
	"github.com/shaiso/botlink/internal/telemetry"
	"github.com/shaiso/botlink/internal/transport"
)

// Endpoint paths контракта N8N.
const (
	pathLogs = "/webhook/tarefa/logs"
	pathKPI  = "/webhook/tarefa/kpi"
)

// Default configuration values.
const (
	defaultAttempts         = 3
	defaultTerminalAttempts = 5
)

// Reporter — канал отчётности задачи.
//
// Потокобезопасен. Статусы сериализуются под мьютексом,
// логи и KPI могут отправляться параллельно.
type Reporter struct {
	client   *transport.Client
	identity config.Identity
	logger   *slog.Logger

	// Retry budgets.
	attempts         int
	terminalAttempts int

	// Терминальный латч: attempted выставляется при первой попытке,
	// delivered — при подтверждённой доставке.
	statusMu  sync.Mutex
	attempted bool
	delivered bool
}

// Config — конфигурация Reporter.
type Config struct {
	// Client — транспорт (обязательно).
	Client *transport.Client

	// Identity — идентичность воркера (обязательно).
	Identity config.Identity

	// Attempts — retry budget best-effort каналов (default: 3).
	Attempts int

	// TerminalAttempts — retry budget терминального статуса (default: 5).
	TerminalAttempts int

	// Logger (опционально; если nil — slog.Default()).
	Logger *slog.Logger
}

// New создаёт новый Reporter.
func New(cfg Config) *Reporter {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}

	terminalAttempts := cfg.TerminalAttempts
	if terminalAttempts <= 0 {
		terminalAttempts = defaultTerminalAttempts
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reporter{
		client:           cfg.Client,
		identity:         cfg.Identity,
		logger:           logger.With("task_id", cfg.Identity.TaskID),
		attempts:         attempts,
		terminalAttempts: terminalAttempts,
	}
}

// LogPayload — тело запроса /webhook/tarefa/logs.
type LogPayload struct {
	TaskID    string `json:"task_id"`
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	Source    string `json:"source,omitempty"`
	Timestamp string `json:"timestamp"`
}

// KpiPayload — тело запроса /webhook/tarefa/kpi.
type KpiPayload struct {
	TaskID    string         `json:"task_id"`
	KpiName   string         `json:"kpi_name"`
	Fields    map[string]any `json:"fields"`
	Timestamp string         `json:"timestamp"`
}

// StatusPayload — тело запроса /webhook/tarefa/{task_id}/status.
type StatusPayload struct {
	Status         Status `json:"status"`
	Message        string `json:"message"`
	TotalItems     int    `json:"total_items"`
	ProcessedItems int    `json:"processed_items"`
	FailedItems    int    `json:"failed_items"`
	BotVersion     string `json:"bot_version"`
	FinishedAt     string `json:"finished_at,omitempty"`
}

// StatusUpdate — отчёт о статусе задачи.
type StatusUpdate struct {
	Status         Status
	Message        string
	TotalItems     int
	ProcessedItems int
	FailedItems    int
}

// Log отправляет структурный лог. Best-effort: ошибка транспорта
// логируется локально и не возвращается.
func (r *Reporter) Log(ctx context.Context, level Level, message, source string) {
	payload := LogPayload{
		TaskID:    r.identity.TaskID,
		Level:     level,
		Message:   message,
		Source:    source,
		Timestamp: now(),
	}

	_, err := r.client.SendRetry(ctx, http.MethodPost, pathLogs, payload, r.attempts)
	if err != nil {
		// Не через Log — иначе цикл.
		r.logger.Warn("failed to deliver log entry", "level", level, "error", err)
		telemetry.ReportsTotal.WithLabelValues("log", telemetry.OutcomeError).Inc()
		return
	}
	telemetry.ReportsTotal.WithLabelValues("log", telemetry.OutcomeOK).Inc()
}

// Kpi отправляет KPI-запись. Каждый вызов добавляет новую запись,
// update-in-place отсутствует. Best-effort.
func (r *Reporter) Kpi(ctx context.Context, name string, fields map[string]any) {
	payload := KpiPayload{
		TaskID:    r.identity.TaskID,
		KpiName:   name,
		Fields:    fields,
		Timestamp: now(),
	}

	_, err := r.client.SendRetry(ctx, http.MethodPost, pathKPI, payload, r.attempts)
	if err != nil {
		r.logger.Warn("failed to deliver kpi entry", "kpi_name", name, "error", err)
		telemetry.ReportsTotal.WithLabelValues("kpi", telemetry.OutcomeError).Inc()
		return
	}
	telemetry.ReportsTotal.WithLabelValues("kpi", telemetry.OutcomeOK).Inc()
}

// UpdateStatus отправляет отчёт о статусе.
//
// Промежуточные (running) отчёты best-effort: ошибка логируется
// и возвращается nil. Терминальный отчёт отправляется не более
// одного раза; его ошибка после retry возвращается вызывающему.
func (r *Reporter) UpdateStatus(ctx context.Context, upd StatusUpdate) error {
	if !upd.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, upd.Status)
	}
	if err := ValidateCounts(upd.TotalItems, upd.ProcessedItems, upd.FailedItems); err != nil {
		return err
	}

	r.statusMu.Lock()
	defer r.statusMu.Unlock()

	terminal := upd.Status.IsTerminal()
	if terminal {
		if r.attempted {
			return ErrAlreadyFinished
		}
		if upd.Message == "" {
			return ErrEmptyMessage
		}
		r.attempted = true
	}

	payload := StatusPayload{
		Status:         upd.Status,
		Message:        upd.Message,
		TotalItems:     upd.TotalItems,
		ProcessedItems: upd.ProcessedItems,
		FailedItems:    upd.FailedItems,
		BotVersion:     r.identity.BotVersion,
	}
	if terminal {
		payload.FinishedAt = now()
	}

	path := fmt.Sprintf("/webhook/tarefa/%s/status", r.identity.TaskID)

	attempts := r.attempts
	if terminal {
		attempts = r.terminalAttempts
	}

	_, err := r.client.SendRetry(ctx, http.MethodPost, path, payload, attempts)
	if err != nil {
		telemetry.ReportsTotal.WithLabelValues("status", telemetry.OutcomeError).Inc()
		if terminal {
			return fmt.Errorf("send terminal status: %w", err)
		}
		r.logger.Warn("failed to deliver progress update", "status", upd.Status, "error", err)
		return nil
	}

	telemetry.ReportsTotal.WithLabelValues("status", telemetry.OutcomeOK).Inc()
	if terminal {
		r.delivered = true
		r.logger.Info("task finished",
			"status", upd.Status,
			"total_items", upd.TotalItems,
			"processed_items", upd.ProcessedItems,
			"failed_items", upd.FailedItems,
		)
	}
	return nil
}

// SendCustomWebhook отправляет произвольный payload на
// оркестраторский hook /webhook/<hook>. Best-effort: ошибка
// возвращается только для локального логирования вызывающим,
// на корректность задачи не влияет.
func (r *Reporter) SendCustomWebhook(ctx context.Context, hook string, body any) error {
	hook = strings.Trim(hook, "/")
	if hook == "" || strings.Contains(hook, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidHook, hook)
	}

	_, err := r.client.SendRetry(ctx, http.MethodPost, "/webhook/"+hook, body, r.attempts)
	if err != nil {
		telemetry.ReportsTotal.WithLabelValues("webhook", telemetry.OutcomeError).Inc()
		return err
	}
	telemetry.ReportsTotal.WithLabelValues("webhook", telemetry.OutcomeOK).Inc()
	return nil
}

// Finished возвращает true, если терминальный статус уже отправлялся
// (независимо от успеха доставки).
func (r *Reporter) Finished() bool {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	return r.attempted
}

// TerminalDelivered возвращает true, если терминальный статус
// подтверждённо доставлен.
func (r *Reporter) TerminalDelivered() bool {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	return r.delivered
}

// ValidateCounts проверяет согласованность счётчиков items.
func ValidateCounts(total, processed, failed int) error {
	if total < 0 || processed < 0 || failed < 0 {
		return fmt.Errorf("%w: negative count", ErrInvalidCounts)
	}
	if processed+failed > total {
		return fmt.Errorf("%w: processed+failed exceeds total", ErrInvalidCounts)
	}
	return nil
}

// now — единый формат времени для всех payload.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
