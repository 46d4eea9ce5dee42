package postgres

import "strings"

// The legacy schema stores is_paid as TEXT: old rows carry 't'/'f', newer
// writers used 'true'/'false'. The coercion to a canonical bool happens here,
// at the store boundary, and nowhere else.

func decodePaidFlag(raw *string) bool {
	if raw == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(*raw)) {
	case "t", "true", "1":
		return true
	default:
		return false
	}
}

func encodePaidFlag(paid bool) string {
	if paid {
		return "t"
	}
	return "f"
}
