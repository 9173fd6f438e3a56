// Package telemetry обеспечивает наблюдаемость агента.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики
//
// Агент использует единый формат логирования
// и экспортирует метрики на /metrics endpoint.
package telemetry
