// Botlink Agent — worker-агент для задач N8N-оркестратора.
//
// Агент:
//   - Загружает идентичность и параметры задачи из окружения
//   - Регистрируется у оркестратора
//   - Поддерживает heartbeat на всё время выполнения
//   - Выполняет логику автоматизации, отчитываясь логами, KPI и статусами
//   - Гарантирует ровно один терминальный статус на любом пути выхода
//
// Один процесс — одна задача.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/botlink/internal/agent"
	"github.com/shaiso/botlink/internal/config"
	"github.com/shaiso/botlink/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting botlink-agent")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Конфигурация: идентичность обязательна, без неё не стартуем
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		"task_id", cfg.Identity.TaskID,
		"worker_id", cfg.Identity.WorkerID,
		"automation_id", cfg.Identity.AutomationID,
		"bot_version", cfg.Identity.BotVersion,
		"dev_mode", cfg.DevMode,
	)

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8082"
	if v := os.Getenv("WORKER_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
		}
	}()

	// Контроллер жизненного цикла
	ctl := agent.New(agent.Config{
		Cfg:    cfg,
		Logger: logger,
	})

	// Выполняем автоматизацию
	err = ctl.Run(ctx, runExampleAutomation)
	switch {
	case err == nil:
		logger.Info("botlink-agent finished")
	case errors.Is(err, agent.ErrRegistrationFailed):
		logger.Error("agent could not register, task was not executed", "error", err)
		os.Exit(1)
	case errors.Is(err, agent.ErrFinalizationFailed):
		logger.Error("agent finished but orchestrator may not know", "error", err)
		os.Exit(1)
	default:
		logger.Error("automation failed", "error", err)
		os.Exit(1)
	}
}
