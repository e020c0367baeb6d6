// Package fieldfilter whitelists the keys of a decoded JSON object.
package fieldfilter

// Filter returns a new map holding only the entries of obj whose key is
// in allowed. obj is not modified. A nil or empty obj yields an empty map.
func Filter(obj map[string]any, allowed ...string) map[string]any {
	out := make(map[string]any, len(allowed))
	for _, k := range allowed {
		if v, ok := obj[k]; ok {
			out[k] = v
		}
	}
	return out
}

// HasAny reports whether obj carries a truthy value under any of keys.
// Absent keys, nil, false, "" and 0 count as not set.
func HasAny(obj map[string]any, keys ...string) bool {
	for _, k := range keys {
		v, ok := obj[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case nil:
		case bool:
			if t {
				return true
			}
		case string:
			if t != "" {
				return true
			}
		case float64:
			if t != 0 {
				return true
			}
		default:
			return true
		}
	}
	return false
}
