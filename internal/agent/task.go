package agent

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shaiso/botlink/internal/config"
	"github.com/shaiso/botlink/internal/report"
)

// Task — handle, через который логика задачи общается с оркестратором.
//
// Передаётся в TaskFunc контроллером. Инкапсулирует неизменную
// идентичность, параметры задачи и канал отчётности; вся связь
// с оркестратором идёт через него.
type Task struct {
	cfg      *config.Config
	reporter *report.Reporter
	logger   *slog.Logger

	// beforeTerminal останавливает heartbeat перед терминальным
	// отчётом: ни один сигнал живости не должен уйти после него.
	beforeTerminal func()

	// Счётчики items и cleanup-хуки.
	mu        sync.Mutex
	total     int
	processed int
	failed    int
	cleanups  []func()
}

func newTask(cfg *config.Config, reporter *report.Reporter, logger *slog.Logger, beforeTerminal func()) *Task {
	return &Task{
		cfg:            cfg,
		reporter:       reporter,
		logger:         logger,
		beforeTerminal: beforeTerminal,
	}
}

// Identity возвращает идентичность воркера.
func (t *Task) Identity() config.Identity {
	return t.cfg.Identity
}

// --- Параметры ---

// GetParameter возвращает параметр задачи, либо default.
func (t *Task) GetParameter(name string, defaultVal any) any {
	return t.cfg.Params.Get(name, defaultVal)
}

// GetString возвращает строковый параметр, либо default.
func (t *Task) GetString(name, defaultVal string) string {
	return t.cfg.Params.GetString(name, defaultVal)
}

// GetInt возвращает целочисленный параметр, либо default.
func (t *Task) GetInt(name string, defaultVal int) int {
	return t.cfg.Params.GetInt(name, defaultVal)
}

// GetFloat возвращает числовой параметр, либо default.
func (t *Task) GetFloat(name string, defaultVal float64) float64 {
	return t.cfg.Params.GetFloat(name, defaultVal)
}

// GetBool возвращает булев параметр, либо default.
func (t *Task) GetBool(name string, defaultVal bool) bool {
	return t.cfg.Params.GetBool(name, defaultVal)
}

// Parameters возвращает копию всех параметров.
func (t *Task) Parameters() map[string]any {
	return t.cfg.Params.All()
}

// --- Логи ---

// LogInfo отправляет информационный лог и дублирует его локально.
func (t *Task) LogInfo(ctx context.Context, message string) {
	t.logger.Info(message)
	t.reporter.Log(ctx, report.LevelInfo, message, "stdout")
}

// LogWarning отправляет предупреждение.
func (t *Task) LogWarning(ctx context.Context, message string) {
	t.logger.Warn(message)
	t.reporter.Log(ctx, report.LevelWarning, message, "system")
}

// LogError отправляет лог ошибки.
func (t *Task) LogError(ctx context.Context, message string) {
	t.logger.Error(message)
	t.reporter.Log(ctx, report.LevelError, message, "stderr")
}

// LogDebug отправляет отладочный лог.
func (t *Task) LogDebug(ctx context.Context, message string) {
	t.logger.Debug(message)
	t.reporter.Log(ctx, report.LevelDebug, message, "system")
}

// Errorf логирует ошибку с контекстом.
func (t *Task) Errorf(ctx context.Context, err error, errContext string) {
	msg := err.Error()
	if errContext != "" {
		msg = fmt.Sprintf("%s: %s", errContext, msg)
	}
	t.LogError(ctx, msg)
}

// --- KPI ---

// NewKpiEntry добавляет KPI-запись. Каждый вызов — новая запись.
func (t *Task) NewKpiEntry(ctx context.Context, name string, fields map[string]any) {
	t.reporter.Kpi(ctx, name, fields)
}

// --- Custom webhooks ---

// SendCustomWebhook отправляет произвольный payload на оркестраторский
// hook. Best-effort: ошибка возвращается только для логирования.
func (t *Task) SendCustomWebhook(ctx context.Context, hook string, body any) error {
	return t.reporter.SendCustomWebhook(ctx, hook, body)
}

// --- Статус ---

// Progress отправляет промежуточный отчёт (status=running) и
// запоминает счётчики. Best-effort. Несогласованные счётчики
// отклоняются и не запоминаются.
func (t *Task) Progress(ctx context.Context, message string, total, processed, failed int) error {
	if err := report.ValidateCounts(total, processed, failed); err != nil {
		return err
	}
	t.setCounts(total, processed, failed)
	return t.reporter.UpdateStatus(ctx, report.StatusUpdate{
		Status:         report.StatusRunning,
		Message:        message,
		TotalItems:     total,
		ProcessedItems: processed,
		FailedItems:    failed,
	})
}

// Finish отправляет терминальный статус. Все параметры обязательны.
// Повторный вызов возвращает report.ErrAlreadyFinished.
//
// Невалидный вызов отклоняется до останова heartbeat: задача
// продолжает выполняться и может завершиться корректно.
func (t *Task) Finish(ctx context.Context, status report.Status, message string, total, processed, failed int) error {
	if !status.IsTerminal() {
		return fmt.Errorf("%w: %q is not terminal", report.ErrInvalidStatus, status)
	}
	if message == "" {
		return report.ErrEmptyMessage
	}
	if err := report.ValidateCounts(total, processed, failed); err != nil {
		return err
	}
	if t.beforeTerminal != nil {
		t.beforeTerminal()
	}
	t.setCounts(total, processed, failed)
	return t.reporter.UpdateStatus(ctx, report.StatusUpdate{
		Status:         status,
		Message:        message,
		TotalItems:     total,
		ProcessedItems: processed,
		FailedItems:    failed,
	})
}

// --- Cleanup ---

// OnCleanup регистрирует хук освобождения ресурсов.
// Хуки выполняются в финализации в обратном порядке регистрации,
// на любом пути выхода из задачи.
func (t *Task) OnCleanup(fn func()) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cleanups = append(t.cleanups, fn)
}

// runCleanups выполняет хуки LIFO. Panic в хуке логируется,
// остальные хуки всё равно выполняются.
func (t *Task) runCleanups() {
	t.mu.Lock()
	hooks := t.cleanups
	t.cleanups = nil
	t.mu.Unlock()

	for i := len(hooks) - 1; i >= 0; i-- {
		func(fn func()) {
			defer func() {
				if r := recover(); r != nil {
					t.logger.Error("cleanup hook panicked", "panic", r)
				}
			}()
			fn()
		}(hooks[i])
	}
}

// setCounts запоминает счётчики items.
func (t *Task) setCounts(total, processed, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = total
	t.processed = processed
	t.failed = failed
}

// counts возвращает последние известные счётчики.
func (t *Task) counts() (total, processed, failed int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.total, t.processed, t.failed
}
