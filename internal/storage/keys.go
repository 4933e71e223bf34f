package storage

import (
	"regexp"
	"strings"
)

const (
	// DefaultKey is the key the task list is stored under.
	DefaultKey = "taskmaster_pro_tasks"

	fallbackKeyName = "default"
)

//nolint:gochecknoglobals // compiled once
var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// SanitizeKey converts a storage key to a safe file name stem.
// "taskmaster/pro tasks" -> "taskmaster-pro-tasks"
func SanitizeKey(key string) string {
	result := unsafeKeyChars.ReplaceAllString(key, "-")

	// Trim leading/trailing dashes
	result = strings.Trim(result, "-")

	if result == "" {
		return fallbackKeyName
	}
	return result
}
