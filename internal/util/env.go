// Package util provides environment variable parsing helpers shared across components.
package util

import (
	"log/slog"
	"os"
	"strings"
)

// ParseBoolEnv parses a boolean environment variable, falling back to def.
// Accepts true/1/yes/on and false/0/no/off (case-insensitive).
func ParseBoolEnv(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		slog.Warn("ParseBoolEnv: invalid boolean value, using default", "key", key, "value", val, "default", def)
		return def
	}
}

// EnvOrDefault returns the value of the environment variable key, or def when
// the variable is unset or empty. The fallback is logged at debug level so
// startup output shows which settings came from the environment.
func EnvOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	slog.Debug("environment variable not set, using default", "key", key, "default", def)
	return def
}
