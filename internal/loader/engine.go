// Package loader implements the descriptor processing engine.
package loader

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/arloliu/envdesc/internal/tags"
	"github.com/arloliu/envdesc/internal/types"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Engine is the internal descriptor processing engine.
// It runs, in order: dotenv loading, template expansion, YAML/JSON decoding,
// env tag overrides, default tags and validation.
type Engine struct {
	Validator      *validator.Validate
	Fs             afero.Fs
	EnvPrefix      string
	Source         []byte
	SourceName     string // Name of the source (e.g., "production.yaml", "reader", "bytes")
	TemplateConfig *TemplateConfig
	TemplateData   any
	DotenvConfig   *DotenvConfig
}

// Load populates target, which must be a non-nil pointer to a struct.
func (e *Engine) Load(target any) error {
	targetVal := reflect.ValueOf(target)
	if targetVal.Kind() != reflect.Pointer || targetVal.IsNil() || targetVal.Elem().Kind() != reflect.Struct {
		return &types.FieldError{Message: "target must be a non-nil pointer to a struct"}
	}

	if err := e.loadDotenvFiles(); err != nil {
		return &types.LoadError{Source: "dotenv", Err: err}
	}

	source := e.Source
	if e.TemplateData != nil && len(source) > 0 {
		processed, err := ProcessTemplate(source, e.TemplateData, e.TemplateConfig)
		if err != nil {
			return &types.LoadError{Source: e.SourceName, Err: fmt.Errorf("failed to process template: %w", err)}
		}

		source = processed
	}

	if len(source) > 0 {
		if err := yaml.Unmarshal(source, target); err != nil {
			return &types.LoadError{Source: e.SourceName, Err: fmt.Errorf("failed to unmarshal: %w", err)}
		}
	}

	if err := e.processStruct(targetVal.Elem(), ""); err != nil {
		return err
	}

	// Defaults run after env overrides so an exported variable always wins
	// over a default, and creasty/defaults calls SetDefaults last.
	if err := defaults.Set(target); err != nil {
		return &types.FieldError{Tag: "default", Err: err}
	}

	if e.Validator != nil {
		if err := e.Validator.Struct(target); err != nil {
			return types.FromValidator(err)
		}
	}

	return nil
}

// processStruct applies env tags to every exported field of v, descending
// into nested structs. path is the dotted field path used in errors.
func (e *Engine) processStruct(v reflect.Value, path string) error {
	t := v.Type()
	for i := range v.NumField() {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		fieldPath := joinPath(path, field)
		if fieldVal.Kind() == reflect.Struct {
			if err := e.processStruct(fieldVal, fieldPath); err != nil {
				return err
			}

			continue
		}

		if _, err := tags.ProcessEnv(field, fieldVal, e.EnvPrefix); err != nil {
			return &types.FieldError{
				Path:  fieldPath,
				Tag:   "env",
				Value: tags.EnvKey(field, e.EnvPrefix),
				Err:   err,
			}
		}
	}

	return nil
}

// joinPath extends path with the field's yaml name, falling back to the Go name.
func joinPath(path string, field reflect.StructField) string {
	name := YAMLName(field)
	if name == "" {
		name = field.Name
	}

	if path == "" {
		return name
	}

	return path + "." + name
}

// YAMLName returns the key a field is decoded from, or "" when the field has
// no yaml tag or is skipped with "-".
func YAMLName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
	if name == "-" {
		return ""
	}

	return name
}
