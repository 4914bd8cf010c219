// Package envdesc provides the environment descriptor of the coffee-shop web
// client: whether the build is a production build, the base URL of the API
// server, and the identity-provider parameters used to start a login.
//
// A descriptor is an immutable Environment. The one embedded in the binary
// is returned by Get:
//
//	env := envdesc.Get()
//	client := newAPIClient(env.APIServerURL())
//	loginURL := env.Auth().AuthorizeURL()
//
// Descriptor files are loaded and validated with the Builder, which is how
// a deployment pipeline checks a descriptor before it is embedded:
//
//	loader, err := envdesc.New().
//	    FromFile("descriptors/production.yaml").
//	    WithEnvPrefix("COFFEE_").
//	    Build()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	env, err := loader.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package envdesc

import (
	"io"
	"text/template"

	"github.com/arloliu/envdesc/internal/loader"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

// Loader is responsible for loading an Environment from a descriptor source.
type Loader struct {
	loaderConfig
	source     []byte
	sourceName string
}

// loaderConfig holds the configuration for the loader.
type loaderConfig struct {
	envPrefix  string
	validator  *validator.Validate
	fs         afero.Fs
	dotenv     *loader.DotenvConfig
	tmplConfig *templateConfig
	tmplData   any
}

// templateConfig holds template parsing configuration.
type templateConfig struct {
	leftDelim  string
	rightDelim string
	missingKey string
	funcMap    template.FuncMap
}

// TemplateOption configures template parsing behavior.
type TemplateOption func(*templateConfig)

// WithDelimiters sets custom delimiters for template parsing.
func WithDelimiters(left, right string) TemplateOption {
	return func(c *templateConfig) {
		c.leftDelim = left
		c.rightDelim = right
	}
}

// WithMissingKey controls behavior when a map is indexed with a key not in the map.
// Valid values:
//   - "invalid" (default): no error, outputs "<no value>"
//   - "zero": outputs the zero value for the type
//   - "error": template execution stops with an error
func WithMissingKey(behavior string) TemplateOption {
	return func(c *templateConfig) {
		c.missingKey = behavior
	}
}

// WithFuncs adds custom template functions. They are merged with the
// built-in "required" and "default" functions.
func WithFuncs(funcMap template.FuncMap) TemplateOption {
	return func(c *templateConfig) {
		c.funcMap = funcMap
	}
}

// New creates a new descriptor Builder.
func New() *Builder {
	return &Builder{}
}

// Builder provides a fluent API for constructing a Loader.
type Builder struct {
	config loaderConfig
	source []byte
	path   string
	name   string
	err    error
}

// FromFile reads the descriptor from the file at path when Build is called.
// The file is read through the builder's filesystem (see WithFilesystem).
// The format (YAML or JSON) is auto-detected from content.
func (b *Builder) FromFile(path string) *Builder {
	b.path = path
	b.source = nil
	b.name = path

	return b
}

// FromReader reads the descriptor from an io.Reader.
func (b *Builder) FromReader(r io.Reader) *Builder {
	if b.err != nil {
		return b
	}

	data, err := io.ReadAll(r)
	if err != nil {
		b.err = &LoadError{Source: "reader", Err: err}

		return b
	}

	b.path = ""
	b.source = data
	b.name = "reader"

	return b
}

// FromBytes uses the provided byte slice as the descriptor.
func (b *Builder) FromBytes(data []byte) *Builder {
	b.path = ""
	b.source = data
	b.name = "bytes"

	return b
}

// WithName sets the source name reported in errors.
func (b *Builder) WithName(name string) *Builder {
	b.name = name

	return b
}

// WithEnvPrefix sets a prefix for environment variable lookups.
// For example, with prefix "COFFEE_", the API server URL is read from
// COFFEE_API_SERVER_URL.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.config.envPrefix = prefix

	return b
}

// WithValidator sets a custom validator instance. The descriptor rules are
// registered on it when Build is called.
func (b *Builder) WithValidator(v *validator.Validate) *Builder {
	b.config.validator = v

	return b
}

// WithFilesystem sets the filesystem used for FromFile and dotenv files.
// If not set, DefaultFs is used.
func (b *Builder) WithFilesystem(fs afero.Fs) *Builder {
	b.config.fs = fs

	return b
}

// WithDotEnv loads a single dotenv file before environment overrides are
// applied. A missing file is ignored.
func (b *Builder) WithDotEnv(path string) *Builder {
	return b.WithDotEnvFiles([]string{path})
}

// WithDotEnvFiles loads several dotenv files in order. Unless
// WithDotEnvOverride is set, the first file defining a variable wins and
// variables already in the environment are kept.
func (b *Builder) WithDotEnvFiles(paths []string) *Builder {
	b.dotenv().Files = append(b.dotenv().Files, paths...)

	return b
}

// WithDotEnvSearch loads the first file called name found in dirs.
func (b *Builder) WithDotEnvSearch(name string, dirs []string) *Builder {
	b.dotenv().SearchName = name
	b.dotenv().SearchPaths = dirs

	return b
}

// WithDotEnvOverride lets dotenv values replace variables that are already
// set, with later files winning.
func (b *Builder) WithDotEnvOverride() *Builder {
	b.dotenv().Override = true

	return b
}

func (b *Builder) dotenv() *loader.DotenvConfig {
	if b.config.dotenv == nil {
		b.config.dotenv = &loader.DotenvConfig{}
	}

	return b.config.dotenv
}

// WithTemplate enables Go template processing on the descriptor before it
// is decoded. This is the build-time substitution step: one descriptor
// file can be rendered for a deployment target from data.
//
//	loader, _ := envdesc.New().
//	    FromFile("descriptor.yaml.tmpl").
//	    WithTemplate(map[string]string{"APIHost": "api.example.org"}).
//	    Build()
func (b *Builder) WithTemplate(data any, opts ...TemplateOption) *Builder {
	cfg := &templateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	b.config.tmplConfig = cfg
	b.config.tmplData = data

	return b
}

// Apply applies a configuration function to the builder.
// This enables reusable configuration bundles:
//
//	var pipeline = func(b *envdesc.Builder) {
//	    b.WithEnvPrefix("COFFEE_").WithDotEnv(".env")
//	}
//	loader, _ := envdesc.New().FromFile("production.yaml").Apply(pipeline).Build()
func (b *Builder) Apply(fn func(*Builder)) *Builder {
	fn(b)

	return b
}

// Build creates the Loader with the configured options.
// Returns an error if the source could not be read.
func (b *Builder) Build() (*Loader, error) {
	if b.err != nil {
		return nil, b.err
	}

	fs := b.config.fs
	if fs == nil {
		fs = DefaultFs
	}

	source := b.source
	if b.path != "" {
		data, err := afero.ReadFile(fs, b.path)
		if err != nil {
			return nil, &LoadError{Source: b.path, Err: err}
		}

		source = data
	}

	validate, err := config{validator: b.config.validator}.resolveValidator()
	if err != nil {
		return nil, err
	}

	cfg := b.config
	cfg.fs = fs
	cfg.validator = validate
	if cfg.dotenv != nil {
		dotenv := *cfg.dotenv
		cfg.dotenv = &dotenv
	}

	return &Loader{
		loaderConfig: cfg,
		source:       source,
		sourceName:   b.name,
	}, nil
}

// Load reads, overrides, defaults and validates the descriptor and returns
// the frozen Environment. Each call produces an independent Environment.
func (l *Loader) Load() (Environment, error) {
	var tmplCfg *loader.TemplateConfig
	if l.tmplConfig != nil {
		tmplCfg = &loader.TemplateConfig{
			LeftDelim:  l.tmplConfig.leftDelim,
			RightDelim: l.tmplConfig.rightDelim,
			MissingKey: l.tmplConfig.missingKey,
			FuncMap:    l.tmplConfig.funcMap,
		}
	}

	engine := &loader.Engine{
		Validator:      l.validator,
		Fs:             l.fs,
		EnvPrefix:      l.envPrefix,
		Source:         l.source,
		SourceName:     l.sourceName,
		TemplateConfig: tmplCfg,
		TemplateData:   l.tmplData,
		DotenvConfig:   l.dotenv,
	}

	var v Values
	if err := engine.Load(&v); err != nil {
		return Environment{}, err
	}

	return freeze(v), nil
}

// Source returns the raw descriptor bytes the loader was built with.
func (l *Loader) Source() []byte {
	return append([]byte(nil), l.source...)
}

// Convenience Functions

// LoadFile loads and validates the descriptor file at path.
func LoadFile(path string) (Environment, error) {
	l, err := New().FromFile(path).Build()
	if err != nil {
		return Environment{}, err
	}

	return l.Load()
}

// LoadBytes loads and validates a descriptor held in memory.
func LoadBytes(data []byte) (Environment, error) {
	l, err := New().FromBytes(data).Build()
	if err != nil {
		return Environment{}, err
	}

	return l.Load()
}

// LoadReader loads and validates a descriptor read from r.
func LoadReader(r io.Reader) (Environment, error) {
	l, err := New().FromReader(r).Build()
	if err != nil {
		return Environment{}, err
	}

	return l.Load()
}

// MustLoadFile is like LoadFile but panics on error.
func MustLoadFile(path string) Environment {
	env, err := LoadFile(path)
	if err != nil {
		panic(err)
	}

	return env
}

// MustLoadBytes is like LoadBytes but panics on error.
func MustLoadBytes(data []byte) Environment {
	env, err := LoadBytes(data)
	if err != nil {
		panic(err)
	}

	return env
}
