package env

import (
	"os"
	"strings"
)

// Get returns the value of the given environment variable or a fallback.
// A set-but-blank variable counts as unset.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
