// Package heartbeat — фоновый монитор живости воркера.
//
// # Обзор
//
// Monitor раз в интервал отправляет POST /webhook/worker/heartbeat
// с worker_id и timestamp — сигнал "процесс жив", независимый от
// прогресса задачи. Работает в собственной горутине на тикере и не
// разделяет с основной линией выполнения ничего, кроме read-only
// идентичности и стоп-сигнала.
//
// Первый сигнал уходит сразу при Start, далее — по тикеру.
//
// # Политика ошибок
//
// Каждый сигнал fire-and-forget: неудачная отправка логируется на Warn
// и никогда не эскалируется в ошибку задачи. Потеря heartbeat — сигнал
// живости для оркестратора, а не фатальное условие воркера.
//
// # Остановка
//
// Stop() синхронна: блокируется до полного завершения горутины, так что
// после возврата ни один heartbeat не может гоняться с терминальным
// отчётом или следовать за ним. Stop() идемпотентна и безопасна,
// если Start никогда не вызывался.
package heartbeat
