// Package envutil applies environment variable overrides onto config fields.
// An empty key or an unset variable leaves the destination untouched.
package envutil

import (
	"os"
	"strconv"
	"strings"
)

func lookup(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	v := os.Getenv(key)
	return v, v != ""
}

// String overwrites dst with the value of key.
func String(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

// Int overwrites dst with the integer value of key. Unparseable values are ignored.
func Int(dst *int, key string) {
	if v, ok := lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Bool overwrites dst with the boolean value of key. Unparseable values are ignored.
func Bool(dst *bool, key string) {
	if v, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// List overwrites dst with the comma-separated, trimmed, non-empty entries of key.
func List(dst *[]string, key string) {
	v, ok := lookup(key)
	if !ok {
		return
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	*dst = out
}
