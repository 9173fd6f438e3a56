// Package report — канал отчётности агента перед оркестратором.
//
// # Обзор
//
// Reporter переводит структурные вызовы (лог, KPI, статус, custom webhook)
// в конкретный endpoint и форму payload контракта N8N:
//
//	/webhook/tarefa/logs           — структурные логи
//	/webhook/tarefa/kpi            — KPI-записи (append-only)
//	/webhook/tarefa/{task_id}/status — статус/прогресс/терминальный отчёт
//	/webhook/<hook>                — произвольные custom webhooks
//
// Каждый payload несёт task_id из неизменной Identity процесса.
//
// # Политика ошибок
//
// Логи, KPI и custom webhooks — best-effort: ошибка транспорта после
// retry логируется локально и не влияет на ход задачи. Логирование
// никогда не должно ронять то, о чём оно отчитывается.
//
// Статусы — отдельный случай. Промежуточные (running) — best-effort.
// Терминальный статус (completed / partially_completed / error) —
// единственный источник правды об исходе задачи: его ошибка после
// retry возвращается вызывающему, потому что потеря терминального
// отчёта ломает инвариант оркестратора.
//
// # Упорядоченность
//
// Статусы сериализуются под мьютексом: порядок доставки совпадает
// с порядком вызовов. Терминальный статус отправляется не более
// одного раза за процесс (повторный вызов — ErrAlreadyFinished).
package report
