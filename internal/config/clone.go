package config

// CloneMap creates a deep copy of a decoded value map.
func CloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for key, val := range src {
		dst[key] = CloneValue(val)
	}

	return dst
}

// CloneSlice creates a deep copy of a decoded value slice.
func CloneSlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))
	for i, val := range src {
		dst[i] = CloneValue(val)
	}

	return dst
}

// CloneValue deep-copies maps and slices; scalars are returned as is.
func CloneValue(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return CloneMap(x)
	case []any:
		return CloneSlice(x)
	case []map[string]any:
		out := make([]any, len(x))
		for i, m := range x {
			out[i] = CloneMap(m)
		}
		return out
	default:
		return v
	}
}
