package report

import "errors"

// Ошибки канала отчётности.
var (
	// ErrAlreadyFinished — терминальный статус уже отправлялся.
	ErrAlreadyFinished = errors.New("terminal status already sent")

	// ErrInvalidStatus — неизвестный статус.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidCounts — счётчики items не согласованы.
	ErrInvalidCounts = errors.New("invalid item counts")

	// ErrEmptyMessage — терминальный статус без сообщения.
	ErrEmptyMessage = errors.New("terminal status requires a message")

	// ErrInvalidHook — недопустимое имя custom webhook.
	ErrInvalidHook = errors.New("invalid webhook hook name")
)
