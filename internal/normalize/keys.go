package normalize

import "strings"

// Key normalizes an entry name read from a dotenv file or the process environment.
// Surrounding whitespace and a leading "export " are removed; case is preserved
// because entry names are matched case-sensitively.
// Examples:
//   - "  PORT " → "PORT"
//   - "export DATABASE_URL" → "DATABASE_URL"
//   - "App_Name" → "App_Name"
func Key(key string) string {
	key = strings.TrimSpace(key)
	if rest, ok := strings.CutPrefix(key, "export "); ok {
		key = strings.TrimSpace(rest)
	}
	return key
}

// StripPrefix removes prefix from key and reports whether it was present.
// When caseSensitive is false the prefix matches regardless of case.
// An empty prefix matches every key.
// Examples:
//   - StripPrefix("APP_PORT", "APP_", true) → "PORT", true
//   - StripPrefix("app_PORT", "APP_", false) → "PORT", true
//   - StripPrefix("OTHER", "APP_", false) → "OTHER", false
func StripPrefix(key, prefix string, caseSensitive bool) (string, bool) {
	if prefix == "" {
		return key, true
	}

	var hasPrefix bool
	if caseSensitive {
		hasPrefix = strings.HasPrefix(key, prefix)
	} else {
		hasPrefix = len(key) >= len(prefix) && strings.EqualFold(key[:len(prefix)], prefix)
	}

	if !hasPrefix {
		return key, false
	}
	return key[len(prefix):], true
}
