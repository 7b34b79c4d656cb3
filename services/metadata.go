package services

import (
	"encoding/json"
	"fmt"
)

// NormalizeMetadata flattens a heterogeneous metadata record into
// primitive-only values, as required by the vector store. Lists and nested
// maps become JSON text (object keys sorted, list order preserved), so the
// same input always produces byte-identical output. Nil stays nil; strings,
// numbers, and booleans pass through; anything else is stringified.
func NormalizeMetadata(raw map[string]any) map[string]any {
	normalized := make(map[string]any, len(raw))
	for key, value := range raw {
		normalized[key] = normalizeValue(value)
	}
	return normalized
}

func normalizeValue(value any) any {
	switch v := value.(type) {
	case nil:
		return nil
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return v
	case []any, map[string]any:
		// json.Marshal sorts map keys, which makes the textual form
		// deterministic regardless of insertion order.
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", v)
	}
}
