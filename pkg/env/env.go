// Package env wraps process environment lookups for the few call sites
// that run before config parsing, such as logger bootstrap.
package env

import (
	"os"
	"strings"
)

// Get returns the trimmed value of key. Unset and blank variables both
// yield fallback, so `SHOPYARD_X=""` behaves the same as no variable.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}
