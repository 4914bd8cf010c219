package types

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Convert converts a string value to the target reflect.Value's type.
// Descriptor fields are strings and bools.
func Convert(value string, target reflect.Value) error {
	if !target.CanSet() {
		return nil
	}

	//nolint:exhaustive // descriptor fields are scalars
	switch target.Kind() {
	case reflect.String:
		target.SetString(value)
	case reflect.Bool:
		return convertBool(value, target)
	default:
		return fmt.Errorf("unsupported type: %s", target.Kind())
	}

	return nil
}

func convertBool(value string, target reflect.Value) error {
	v, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	target.SetBool(v)

	return nil
}
