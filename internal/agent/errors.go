package agent

import "errors"

// Ошибки контроллера.
var (
	// ErrRegistrationFailed — регистрация воркера не удалась после retry.
	ErrRegistrationFailed = errors.New("worker registration failed")

	// ErrFinalizationFailed — терминальный статус не доставлен после retry;
	// запись оркестратора о задаче может быть устаревшей.
	ErrFinalizationFailed = errors.New("terminal status delivery failed")

	// ErrTaskFailed — логика задачи завершилась ошибкой
	// (терминальный статус "error" при этом доставлен).
	ErrTaskFailed = errors.New("task logic failed")
)
