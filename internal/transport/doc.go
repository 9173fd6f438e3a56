// Package transport — HTTP-клиент для webhooks оркестратора.
//
// # Обзор
//
// Тонкая обёртка над net/http: JSON-тело, Content-Type, таймаут на каждый
// запрос и bounded retry с exponential backoff. Транспорт ничего не знает
// о семантике endpoint'ов — политику ошибок выбирает вызывающий:
//
//   - best-effort каналы (логи, KPI, heartbeat, custom webhooks) глотают
//     ошибку после исчерпания retry и продолжают работу;
//   - регистрация и терминальный статус возвращают ошибку наверх.
//
// # Retry
//
// Retry выполняется в процессе с точным контролем backoff:
//
//	delay = initialBackoff * 2^(attempt-1), capped at maxBackoff
//
// Повторяются только сетевые ошибки и ответы 5xx. Ответы 4xx не
// повторяются никогда: это ошибка контракта, а не инфраструктуры.
//
// # Ошибки
//
// Классификация через сентинелы и typed error:
//
//	errors.Is(err, transport.ErrTimeout)
//	errors.Is(err, transport.ErrConnectionRefused)
//	var statusErr *transport.StatusError
//	errors.As(err, &statusErr) // statusErr.Code
package transport
