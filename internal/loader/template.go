package loader

import (
	"bytes"
	"errors"
	"fmt"
	"text/template"
)

// TemplateConfig holds template parsing configuration.
type TemplateConfig struct {
	LeftDelim  string
	RightDelim string
	MissingKey string // "invalid", "zero", "error"
	FuncMap    template.FuncMap
}

// builtinFuncs are available in every descriptor template. User functions
// with the same name replace them.
var builtinFuncs = template.FuncMap{
	// required fails the expansion when a substituted value is empty, so a
	// deployment that forgets a value cannot produce a descriptor.
	"required": func(name string, v any) (any, error) {
		if v == nil || fmt.Sprint(v) == "" {
			return nil, fmt.Errorf("template value %q is required", name)
		}

		return v, nil
	},
	"default": func(fallback, v any) any {
		if v == nil || fmt.Sprint(v) == "" {
			return fallback
		}

		return v
	},
}

// ProcessTemplate expands Go template actions in source with data.
func ProcessTemplate(source []byte, data any, cfg *TemplateConfig) ([]byte, error) {
	if data == nil {
		return nil, errors.New("template data is nil")
	}

	tmpl := template.New("descriptor").Funcs(builtinFuncs)

	if cfg != nil {
		if cfg.LeftDelim != "" && cfg.RightDelim != "" {
			tmpl = tmpl.Delims(cfg.LeftDelim, cfg.RightDelim)
		}
		if cfg.MissingKey != "" {
			tmpl = tmpl.Option("missingkey=" + cfg.MissingKey)
		}
		if cfg.FuncMap != nil {
			tmpl = tmpl.Funcs(cfg.FuncMap)
		}
	}

	parsed, err := tmpl.Parse(string(source))
	if err != nil {
		return nil, fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := parsed.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("template execution error: %w", err)
	}

	return buf.Bytes(), nil
}
