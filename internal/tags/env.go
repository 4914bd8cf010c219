// Package tags implements the struct-tag processors used by the load engine.
package tags

import (
	"os"
	"reflect"
	"strings"

	"github.com/arloliu/envdesc/internal/types"
)

// ProcessEnv processes the 'env' tag for a field.
// Returns true if an environment variable was found and applied, false otherwise.
// Environment variables always override current values when the variable is set,
// even when it is set to an empty string.
func ProcessEnv(field reflect.StructField, value reflect.Value, prefix string) (bool, error) {
	key := EnvKey(field, prefix)
	if key == "" {
		return false, nil
	}

	envVal, ok := os.LookupEnv(key)
	if !ok {
		return false, nil
	}

	return true, types.Convert(envVal, value)
}

// EnvKey returns the environment variable name bound to field, with prefix
// applied, or "" when the field carries no env tag.
func EnvKey(field reflect.StructField, prefix string) string {
	tag, _, _ := strings.Cut(field.Tag.Get("env"), ",")
	if tag == "" || tag == "-" {
		return ""
	}

	return prefix + tag
}
