// Package agent — контроллер жизненного цикла задачи.
//
// # Обзор
//
// Controller — верхний уровень воркер-агента. Он регистрирует воркера
// у оркестратора, запускает heartbeat-монитор, передаёт управление
// пользовательской логике задачи и гарантирует, что оркестратор
// в любом случае получит ровно один терминальный статус, а ресурсы
// будут освобождены.
//
// # Состояния
//
//	CREATED → REGISTERING → REGISTERED → RUNNING → FINALIZING → FINISHED
//	               ↘ FAILED                  ↘ FAILED (через FINALIZING)
//
//   - Регистрация не удалась после retry → FAILED, логика задачи
//     не запускается, heartbeat не стартует.
//   - Любой выход из RUNNING (нормальный возврат, ошибка, panic,
//     ранний Finish) проходит через FINALIZING: останов heartbeat,
//     терминальный статус, cleanup-хуки. Отдельного "crash path",
//     минующего финализацию, не существует.
//
// # Логика задачи
//
// Пользовательский код — обычная функция TaskFunc, получающая *Task:
// инжектированный handle с каналом отчётности, параметрами и
// custom webhooks. Наследования нет — все коллабораторы явные:
//
//	err := ctl.Run(ctx, func(ctx context.Context, t *agent.Task) error {
//	    t.LogInfo(ctx, "starting")
//	    total := t.GetInt("total_items", 1)
//	    ...
//	    return t.Finish(ctx, report.StatusCompleted, "done", total, total, 0)
//	})
//
// Panic в логике задачи перехватывается вместе со стеком и
// конвертируется в терминальный статус "error".
package agent
