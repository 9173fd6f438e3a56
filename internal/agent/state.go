package agent

// State — состояние контроллера жизненного цикла.
//
// Жизненный цикл:
//
//	CREATED → REGISTERING → REGISTERED → RUNNING → FINALIZING → FINISHED
//	               ↘ FAILED                  ↘ FAILED
type State string

const (
	// StateCreated — контроллер создан, ничего не происходило.
	StateCreated State = "CREATED"

	// StateRegistering — идёт регистрация воркера.
	StateRegistering State = "REGISTERING"

	// StateRegistered — воркер зарегистрирован, задача ещё не запущена.
	StateRegistered State = "REGISTERED"

	// StateRunning — выполняется логика задачи.
	StateRunning State = "RUNNING"

	// StateFinalizing — останов heartbeat, терминальный статус, cleanup.
	StateFinalizing State = "FINALIZING"

	// StateFinished — процесс завершён штатно.
	StateFinished State = "FINISHED"

	// StateFailed — невосстановимая ошибка (регистрация или финализация).
	StateFailed State = "FAILED"
)

// IsTerminal возвращает true, если состояние финальное.
func (s State) IsTerminal() bool {
	switch s {
	case StateFinished, StateFailed:
		return true
	default:
		return false
	}
}
