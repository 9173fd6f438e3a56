package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus метрики агента.
//
// Экспортируются на /metrics endpoint бинарника botlink-agent.
var (
	// RequestsTotal — количество исходящих HTTP-запросов к оркестратору.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "botlink",
		Name:      "requests_total",
		Help:      "Outbound HTTP requests to the orchestrator.",
	}, []string{"endpoint", "outcome"})

	// RetriesTotal — количество повторных попыток отправки.
	RetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "botlink",
		Name:      "retries_total",
		Help:      "Retried outbound HTTP requests.",
	}, []string{"endpoint"})

	// HeartbeatsTotal — количество отправленных heartbeat-сигналов.
	HeartbeatsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "botlink",
		Name:      "heartbeats_total",
		Help:      "Heartbeat signals sent to the orchestrator.",
	}, []string{"outcome"})

	// ReportsTotal — количество отправленных отчётов по типам.
	ReportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "botlink",
		Name:      "reports_total",
		Help:      "Reports emitted through the reporting channel.",
	}, []string{"kind", "outcome"})
)

// Значения label outcome.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)
