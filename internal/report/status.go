package report

// Status — статус задачи в терминах оркестратора.
//
// Жизненный цикл:
//
//	running → completed
//	        ↘ partially_completed
//	        ↘ error
type Status string

const (
	// StatusRunning — задача выполняется, отчёт о прогрессе.
	StatusRunning Status = "running"

	// StatusCompleted — задача успешно завершена.
	StatusCompleted Status = "completed"

	// StatusPartiallyCompleted — часть items обработана, часть упала.
	StatusPartiallyCompleted Status = "partially_completed"

	// StatusError — задача завершилась ошибкой.
	StatusError Status = "error"
)

// IsTerminal возвращает true, если статус финальный (задача завершена).
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusPartiallyCompleted, StatusError:
		return true
	default:
		return false
	}
}

// Valid возвращает true для известных статусов.
func (s Status) Valid() bool {
	switch s {
	case StatusRunning, StatusCompleted, StatusPartiallyCompleted, StatusError:
		return true
	default:
		return false
	}
}

// Level — уровень структурного лога.
type Level string

const (
	// LevelDebug — отладочный лог.
	LevelDebug Level = "debug"

	// LevelInfo — информационный лог.
	LevelInfo Level = "info"

	// LevelWarning — предупреждение.
	LevelWarning Level = "warning"

	// LevelError — ошибка.
	LevelError Level = "error"
)
