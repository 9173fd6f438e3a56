package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Default configuration values.
const (
	defaultBotVersion        = "main"
	defaultAPITimeout        = 30 * time.Second
	defaultHeartbeatInterval = 30 * time.Second
)

// Identity — идентичность воркера.
//
// Назначается оркестратором, неизменна на всё время жизни процесса
// и сопровождает каждый исходящий запрос.
type Identity struct {
	// TaskID — идентификатор задачи, которую выполняет этот процесс.
	TaskID string

	// AutomationID — идентификатор автоматизации (шаблона задачи).
	AutomationID string

	// WorkerID — идентификатор воркера.
	WorkerID string

	// BotVersion — версия кода бота (тег сборки).
	BotVersion string
}

// Config — полная конфигурация агента.
//
// Создаётся один раз в Load() и далее только читается.
type Config struct {
	// Identity — идентичность воркера.
	Identity Identity

	// BaseURL — базовый URL webhooks оркестратора, без завершающего "/".
	BaseURL string

	// Params — параметры задачи.
	Params Params

	// APITimeout — таймаут каждого исходящего HTTP-запроса.
	APITimeout time.Duration

	// HeartbeatInterval — период heartbeat-сигналов.
	HeartbeatInterval time.Duration

	// DevMode — режим разработки: недостающая идентичность генерируется.
	DevMode bool
}

// Load читает конфигурацию из окружения.
//
// Отсутствие обязательной идентичности (TASK_ID, AUTOMATION_ID, WORKER_ID)
// или базового URL — фатальная ошибка старта. В dev-режиме (AGENT_DEV_MODE)
// недостающие идентификаторы генерируются, чтобы бота можно было гонять
// локально без оркестратора.
func Load() (*Config, error) {
	devMode := isTruthy(os.Getenv("AGENT_DEV_MODE"))

	baseURL := strings.TrimSuffix(os.Getenv("N8N_WEBHOOK_URL"), "/")
	if baseURL == "" {
		if !devMode {
			return nil, ErrMissingBaseURL
		}
		baseURL = "http://localhost:5678/webhook"
	}

	identity, err := loadIdentity(devMode)
	if err != nil {
		return nil, err
	}

	params, err := loadParams(os.Getenv("TASK_PARAMETERS"), os.Getenv("TASK_PARAMETERS_SCHEMA"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Identity:          identity,
		BaseURL:           baseURL,
		Params:            params,
		APITimeout:        secondsEnv("API_TIMEOUT", defaultAPITimeout),
		HeartbeatInterval: secondsEnv("HEARTBEAT_INTERVAL", defaultHeartbeatInterval),
		DevMode:           devMode,
	}, nil
}

// loadIdentity собирает Identity из окружения.
func loadIdentity(devMode bool) (Identity, error) {
	identity := Identity{
		TaskID:       os.Getenv("TASK_ID"),
		AutomationID: os.Getenv("AUTOMATION_ID"),
		WorkerID:     os.Getenv("WORKER_ID"),
		BotVersion:   os.Getenv("BOT_VERSION"),
	}

	if identity.BotVersion == "" {
		identity.BotVersion = defaultBotVersion
	}

	if devMode {
		// В dev-режиме идентичность синтезируется — оркестратора нет.
		if identity.TaskID == "" {
			identity.TaskID = "dev-task-" + uuid.NewString()
		}
		if identity.AutomationID == "" {
			identity.AutomationID = "dev-automation-" + uuid.NewString()
		}
		if identity.WorkerID == "" {
			identity.WorkerID = "dev-worker-" + uuid.NewString()
		}
		return identity, nil
	}

	if identity.TaskID == "" {
		return Identity{}, ErrMissingTaskID
	}
	if identity.AutomationID == "" {
		return Identity{}, ErrMissingAutomationID
	}
	if identity.WorkerID == "" {
		return Identity{}, ErrMissingWorkerID
	}
	return identity, nil
}

// loadParams парсит TASK_PARAMETERS и, если задана схема, валидирует их.
//
// Повреждённый JSON — фатальная ошибка, а не молчаливый fallback на {}:
// искажённый блок параметров означает баг на стороне оркестратора.
func loadParams(raw, schemaRaw string) (Params, error) {
	if raw == "" {
		raw = "{}"
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}

	if schemaRaw != "" {
		if err := validateSchema(schemaRaw, values); err != nil {
			return nil, err
		}
	}

	return Params(values), nil
}

// validateSchema проверяет параметры по JSON Schema.
func validateSchema(schemaRaw string, values map[string]any) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("parameters.json", strings.NewReader(schemaRaw)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	schema, err := compiler.Compile("parameters.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}

	// Schema.Validate ожидает уже распарсенное значение.
	if err := schema.Validate(map[string]any(values)); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}
	return nil
}

// secondsEnv читает длительность в секундах из переменной окружения.
func secondsEnv(name string, defaultVal time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultVal
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return defaultVal
	}
	return time.Duration(secs) * time.Second
}

// isTruthy трактует "1", "true", "yes" (без учёта регистра) как true.
func isTruthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
