package transport

import (
	"errors"
	"fmt"
)

// Ошибки транспорта.
var (
	// ErrTimeout — запрос не уложился в таймаут.
	ErrTimeout = errors.New("request timed out")

	// ErrConnectionRefused — соединение с оркестратором отклонено.
	ErrConnectionRefused = errors.New("connection refused")

	// ErrHTTPStatus — оркестратор ответил кодом ошибки.
	ErrHTTPStatus = errors.New("http error status")

	// ErrRetryExhausted — все попытки retry исчерпаны.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrInvalidRequest — запрос не удалось собрать (несериализуемое
	// тело, битый URL). Retry бессмысленен.
	ErrInvalidRequest = errors.New("invalid request")
)

// StatusError — ответ оркестратора с кодом >= 400.
type StatusError struct {
	// Code — HTTP-код ответа.
	Code int

	// Body — начало тела ответа (для диагностики).
	Body string
}

// Error реализует error.
func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// Is позволяет errors.Is(err, ErrHTTPStatus).
func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

// Retriable возвращает true для кодов, при которых имеет смысл retry.
func (e *StatusError) Retriable() bool {
	return e.Code >= 500
}
