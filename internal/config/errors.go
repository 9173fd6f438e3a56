package config

import "errors"

// Ошибки старта. Все фатальны: без идентичности агент не может работать.
var (
	// ErrMissingBaseURL — не задан N8N_WEBHOOK_URL.
	ErrMissingBaseURL = errors.New("orchestrator base URL is not set")

	// ErrMissingTaskID — не задан TASK_ID.
	ErrMissingTaskID = errors.New("task id is not set")

	// ErrMissingAutomationID — не задан AUTOMATION_ID.
	ErrMissingAutomationID = errors.New("automation id is not set")

	// ErrMissingWorkerID — не задан WORKER_ID.
	ErrMissingWorkerID = errors.New("worker id is not set")

	// ErrInvalidParameters — TASK_PARAMETERS не является JSON-объектом.
	ErrInvalidParameters = errors.New("task parameters are not a JSON object")

	// ErrInvalidSchema — TASK_PARAMETERS_SCHEMA не компилируется.
	ErrInvalidSchema = errors.New("task parameters schema is invalid")

	// ErrSchemaViolation — параметры не прошли валидацию по схеме.
	ErrSchemaViolation = errors.New("task parameters do not match schema")
)
