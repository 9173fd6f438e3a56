package config

// Params — параметры задачи из TASK_PARAMETERS.
//
// Read-only после Load(). Доступ всегда через типизированный default:
// отсутствие параметра или несовпадение типа возвращает default,
// ошибок не бывает.
type Params map[string]any

// Get возвращает параметр как есть, либо default.
func (p Params) Get(name string, defaultVal any) any {
	if val, ok := p[name]; ok {
		return val
	}
	return defaultVal
}

// GetString возвращает строковый параметр, либо default.
func (p Params) GetString(name, defaultVal string) string {
	if val, ok := p[name]; ok {
		if s, ok := val.(string); ok {
			return s
		}
	}
	return defaultVal
}

// GetInt возвращает целочисленный параметр, либо default.
//
// JSON-числа приходят как float64; значение принимается, если оно целое.
func (p Params) GetInt(name string, defaultVal int) int {
	if val, ok := p[name]; ok {
		switch v := val.(type) {
		case float64:
			if v == float64(int(v)) {
				return int(v)
			}
		case int:
			return v
		}
	}
	return defaultVal
}

// GetFloat возвращает числовой параметр, либо default.
func (p Params) GetFloat(name string, defaultVal float64) float64 {
	if val, ok := p[name]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		}
	}
	return defaultVal
}

// GetBool возвращает булев параметр, либо default.
func (p Params) GetBool(name string, defaultVal bool) bool {
	if val, ok := p[name]; ok {
		if b, ok := val.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// All возвращает копию всех параметров.
func (p Params) All() map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
