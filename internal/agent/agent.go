package agent

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/shaiso/botlink/internal/config"
	"github.com/shaiso/botlink/internal/heartbeat"
	"github.com/shaiso/botlink/internal/report"
	"github.com/shaiso/botlink/internal/telemetry"
	"github.com/shaiso/botlink/internal/transport"
)

// Endpoint path контракта N8N.
const pathRegister = "/webhook/worker/registro"

// Default configuration values.
const defaultRegisterAttempts = 5

// TaskFunc — логика задачи, поставляемая пользователем.
//
// Возврат nil — успех; возврат ошибки или panic конвертируются
// контроллером в терминальный статус "error".
type TaskFunc func(ctx context.Context, t *Task) error

// Controller управляет жизненным циклом одной задачи.
//
// Один Controller — один процесс — одна задача. Повторное
// использование после Run не поддерживается.
type Controller struct {
	cfg      *config.Config
	client   *transport.Client
	reporter *report.Reporter
	monitor  *heartbeat.Monitor
	logger   *slog.Logger

	registerAttempts int

	mu    sync.Mutex
	state State
}

// Config — конфигурация Controller.
type Config struct {
	// Cfg — конфигурация агента (обязательно).
	Cfg *config.Config

	// Client — транспорт (опционально; если nil — создаётся из Cfg).
	Client *transport.Client

	// Reporter (опционально; если nil — создаётся из Client и Cfg).
	Reporter *report.Reporter

	// Monitor (опционально; если nil — создаётся из Client и Cfg).
	Monitor *heartbeat.Monitor

	// RegisterAttempts — retry budget регистрации (default: 5).
	RegisterAttempts int

	// Logger (опционально; если nil — slog.Default()).
	Logger *slog.Logger
}

// New создаёт новый Controller.
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = telemetry.WithTaskID(logger, cfg.Cfg.Identity.TaskID)
	logger = telemetry.WithWorkerID(logger, cfg.Cfg.Identity.WorkerID)
	logger = telemetry.WithAutomationID(logger, cfg.Cfg.Identity.AutomationID)

	client := cfg.Client
	if client == nil {
		client = transport.New(transport.Config{
			BaseURL: cfg.Cfg.BaseURL,
			Timeout: cfg.Cfg.APITimeout,
			Logger:  logger,
		})
	}

	reporter := cfg.Reporter
	if reporter == nil {
		reporter = report.New(report.Config{
			Client:   client,
			Identity: cfg.Cfg.Identity,
			Logger:   logger,
		})
	}

	monitor := cfg.Monitor
	if monitor == nil {
		monitor = heartbeat.New(heartbeat.Config{
			Client:   client,
			WorkerID: cfg.Cfg.Identity.WorkerID,
			Interval: cfg.Cfg.HeartbeatInterval,
			Logger:   logger,
		})
	}

	registerAttempts := cfg.RegisterAttempts
	if registerAttempts <= 0 {
		registerAttempts = defaultRegisterAttempts
	}

	return &Controller{
		cfg:              cfg.Cfg,
		client:           client,
		reporter:         reporter,
		monitor:          monitor,
		logger:           logger,
		registerAttempts: registerAttempts,
		state:            StateCreated,
	}
}

// State возвращает текущее состояние контроллера.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reporter возвращает канал отчётности контроллера.
func (c *Controller) Reporter() *report.Reporter {
	return c.reporter
}

// RegisterPayload — тело запроса /webhook/worker/registro.
type RegisterPayload struct {
	WorkerID     string `json:"worker_id"`
	TaskID       string `json:"task_id"`
	AutomationID string `json:"automation_id"`
	BotVersion   string `json:"bot_version"`
	Timestamp    string `json:"timestamp"`
}

// Run выполняет полный жизненный цикл задачи.
//
// Регистрация → heartbeat → логика задачи → финализация.
// На любом пути выхода из логики задачи (возврат, ошибка, panic)
// heartbeat останавливается, оркестратору уходит ровно один
// терминальный статус и выполняются cleanup-хуки.
//
// Возвращаемые ошибки:
//   - ErrRegistrationFailed — задача не запускалась;
//   - ErrFinalizationFailed — терминальный статус не доставлен,
//     запись оркестратора может быть устаревшей;
//   - ErrTaskFailed — логика упала, но статус "error" доставлен.
func (c *Controller) Run(ctx context.Context, task TaskFunc) error {
	if err := c.register(ctx); err != nil {
		c.setState(StateFailed)
		return fmt.Errorf("%w: %v", ErrRegistrationFailed, err)
	}
	c.setState(StateRegistered)

	c.monitor.Start(ctx)
	c.setState(StateRunning)
	c.logger.Info("task started")

	t := newTask(c.cfg, c.reporter, c.logger, c.monitor.Stop)
	taskErr := c.runTask(ctx, task, t)

	return c.finalize(ctx, t, taskErr)
}

// register регистрирует воркера у оркестратора.
func (c *Controller) register(ctx context.Context) error {
	c.setState(StateRegistering)

	payload := RegisterPayload{
		WorkerID:     c.cfg.Identity.WorkerID,
		TaskID:       c.cfg.Identity.TaskID,
		AutomationID: c.cfg.Identity.AutomationID,
		BotVersion:   c.cfg.Identity.BotVersion,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}

	_, err := c.client.SendRetry(ctx, http.MethodPost, pathRegister, payload, c.registerAttempts)
	if err != nil {
		c.logger.Error("worker registration failed", "error", err)
		return err
	}

	c.logger.Info("worker registered", "bot_version", c.cfg.Identity.BotVersion)
	return nil
}

// runTask выполняет логику задачи, перехватывая panic со стеком.
func (c *Controller) runTask(ctx context.Context, task TaskFunc, t *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return task(ctx, t)
}

// finalize — единственный путь завершения: останов heartbeat,
// терминальный статус, cleanup-хуки.
func (c *Controller) finalize(ctx context.Context, t *Task, taskErr error) error {
	c.setState(StateFinalizing)

	// Heartbeat останавливается до терминального отчёта: ни один
	// сигнал живости не должен уйти после него.
	c.monitor.Stop()

	// Финализация обязана дойти до оркестратора, даже если процесс
	// останавливают по сигналу.
	finalCtx := context.WithoutCancel(ctx)

	finalErr := c.sendTerminal(finalCtx, t, taskErr)

	t.runCleanups()

	if finalErr != nil {
		c.setState(StateFailed)
		// Локальная fallback-запись: оркестратор мог не узнать исход.
		c.logger.Error("terminal status not delivered, orchestrator record may be stale",
			"task_error", taskErr,
			"error", finalErr,
		)
		return fmt.Errorf("%w: %v", ErrFinalizationFailed, finalErr)
	}

	c.setState(StateFinished)

	if taskErr != nil {
		return fmt.Errorf("%w: %v", ErrTaskFailed, taskErr)
	}
	return nil
}

// sendTerminal отправляет терминальный статус, если логика задачи
// не сделала этого сама через Finish.
func (c *Controller) sendTerminal(ctx context.Context, t *Task, taskErr error) error {
	if c.reporter.Finished() {
		if c.reporter.TerminalDelivered() {
			return nil
		}
		// Finish уже отправлялся и не дошёл после retry —
		// повторная попытка бюджет не вернёт.
		return fmt.Errorf("terminal status attempted by task logic but not delivered")
	}

	total, processed, failed := t.counts()

	upd := report.StatusUpdate{
		Status:         report.StatusCompleted,
		Message:        "task completed",
		TotalItems:     total,
		ProcessedItems: processed,
		FailedItems:    failed,
	}
	if taskErr != nil {
		upd.Status = report.StatusError
		upd.Message = taskErr.Error()
	}

	return c.reporter.UpdateStatus(ctx, upd)
}

// setState переводит контроллер в новое состояние.
func (c *Controller) setState(s State) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()

	if prev != s {
		c.logger.Debug("state transition", "from", prev, "to", s)
	}
}
