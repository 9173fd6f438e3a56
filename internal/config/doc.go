// Package config загружает идентичность и параметры worker-агента.
//
// # Обзор
//
// Оркестратор запускает отдельный процесс агента на каждую задачу
// и передаёт ему идентичность и параметры через переменные окружения:
//
//   - N8N_WEBHOOK_URL — базовый URL webhooks оркестратора (обязательно)
//   - TASK_ID — идентификатор задачи (обязательно)
//   - AUTOMATION_ID — идентификатор автоматизации (обязательно)
//   - WORKER_ID — идентификатор воркера (обязательно)
//   - BOT_VERSION — версия бота (default: "main")
//   - TASK_PARAMETERS — JSON-объект с параметрами задачи (default: {})
//   - TASK_PARAMETERS_SCHEMA — JSON Schema для валидации параметров (опционально)
//   - API_TIMEOUT — таймаут HTTP-запросов в секундах (default: 30)
//   - HEARTBEAT_INTERVAL — интервал heartbeat в секундах (default: 30)
//   - AGENT_DEV_MODE — "1"/"true": недостающая идентичность генерируется
//
// Config создаётся один раз через Load() при старте процесса и далее
// неизменяем: все компоненты получают его по ссылке и только читают.
// Отсутствие обязательной идентичности — фатальная ошибка старта,
// без попытки регистрации.
//
// # Параметры
//
// Params — read-only отображение имени параметра в JSON-значение
// с типизированным доступом через default:
//
//	total := cfg.Params.GetInt("total_items", 100)
//	delay := cfg.Params.GetFloat("delay_seconds", 1.0)
//
// Несовпадение типа трактуется как отсутствие параметра — Get* никогда
// не возвращает ошибку.
package config
