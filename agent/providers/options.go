package providers

// Option values come from JSON or TOML config, so numbers may arrive as int,
// int64 or float64.

func intOption(opts map[string]any, key string) (int64, bool) {
	switch v := opts[key].(type) {
	case int:
		return int64(v), true
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func floatOption(opts map[string]any, key string) (float64, bool) {
	switch v := opts[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// MergeOptions layers per-call options over defaults without mutating either.
func MergeOptions(defaults map[string]any, overrides ...map[string]any) map[string]any {
	out := make(map[string]any, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	for _, o := range overrides {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}
