package config

import (
	"encoding/json"
	"testing"
)

// paramsFromJSON строит Params так же, как Load: через json.Unmarshal,
// чтобы числа приходили как float64.
func paramsFromJSON(t *testing.T, raw string) Params {
	t.Helper()
	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		t.Fatalf("bad test json: %v", err)
	}
	return Params(values)
}

func TestParams_GetInt(t *testing.T) {
	params := paramsFromJSON(t, `{"total_items": 50, "ratio": 0.5, "name": "x"}`)

	// Настроенное значение
	if got := params.GetInt("total_items", 100); got != 50 {
		t.Errorf("expected 50, got %d", got)
	}

	// Отсутствующий параметр — default
	if got := params.GetInt("missing", 100); got != 100 {
		t.Errorf("expected default 100, got %d", got)
	}

	// Нецелое число — default
	if got := params.GetInt("ratio", 7); got != 7 {
		t.Errorf("non-integral value should fall back, got %d", got)
	}

	// Несовпадение типа — default
	if got := params.GetInt("name", 7); got != 7 {
		t.Errorf("type mismatch should fall back, got %d", got)
	}
}

func TestParams_GetString(t *testing.T) {
	params := paramsFromJSON(t, `{"mode": "fast", "count": 3}`)

	if got := params.GetString("mode", "slow"); got != "fast" {
		t.Errorf("expected fast, got %q", got)
	}
	if got := params.GetString("missing", "slow"); got != "slow" {
		t.Errorf("expected default slow, got %q", got)
	}
	if got := params.GetString("count", "slow"); got != "slow" {
		t.Errorf("type mismatch should fall back, got %q", got)
	}
}

func TestParams_GetFloat(t *testing.T) {
	params := paramsFromJSON(t, `{"delay_seconds": 1.5, "items": 3}`)

	if got := params.GetFloat("delay_seconds", 0); got != 1.5 {
		t.Errorf("expected 1.5, got %v", got)
	}
	if got := params.GetFloat("items", 0); got != 3 {
		t.Errorf("integral json number should convert, got %v", got)
	}
	if got := params.GetFloat("missing", 2.5); got != 2.5 {
		t.Errorf("expected default 2.5, got %v", got)
	}
}

func TestParams_GetBool(t *testing.T) {
	params := paramsFromJSON(t, `{"simulate_errors": true, "count": 1}`)

	if !params.GetBool("simulate_errors", false) {
		t.Error("expected true")
	}
	if params.GetBool("missing", false) {
		t.Error("expected default false")
	}
	if params.GetBool("count", false) {
		t.Error("type mismatch should fall back to false")
	}
}

func TestParams_Get(t *testing.T) {
	params := paramsFromJSON(t, `{"nested": {"a": 1}}`)

	if got := params.Get("nested", nil); got == nil {
		t.Error("expected nested value")
	}
	if got := params.Get("missing", "fallback"); got != "fallback" {
		t.Errorf("expected fallback, got %v", got)
	}
}

func TestParams_AllReturnsCopy(t *testing.T) {
	params := paramsFromJSON(t, `{"a": 1}`)

	all := params.All()
	all["a"] = 2
	all["b"] = 3

	if got := params.GetInt("a", 0); got != 1 {
		t.Errorf("mutating the copy must not affect params, got %d", got)
	}
	if _, ok := params["b"]; ok {
		t.Error("mutating the copy must not add keys to params")
	}
}
