package watcher

import (
	"os"
	"time"

	"github.com/arloliu/envdesc"
	"github.com/go-playground/validator/v10"
)

// Builder provides a fluent API for constructing a Watcher.
type Builder struct {
	config watcherConfig
	path   string
	err    error
}

// FromFile sets the descriptor file to watch.
func (b *Builder) FromFile(path string) *Builder {
	if b.err != nil {
		return b
	}

	if _, err := os.Stat(path); err != nil {
		b.err = err
		return b
	}

	b.path = path

	return b
}

// WithEnvPrefix sets a prefix for environment variable lookups.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	return b.Apply(func(lb *envdesc.Builder) {
		lb.WithEnvPrefix(prefix)
	})
}

// WithDotEnv loads a dotenv file before every reload.
func (b *Builder) WithDotEnv(path string) *Builder {
	return b.Apply(func(lb *envdesc.Builder) {
		lb.WithDotEnv(path)
	})
}

// WithValidator sets a custom validator instance.
func (b *Builder) WithValidator(v *validator.Validate) *Builder {
	return b.Apply(func(lb *envdesc.Builder) {
		lb.WithValidator(v)
	})
}

// Apply adds a loader configuration function run on every reload.
func (b *Builder) Apply(fn func(*envdesc.Builder)) *Builder {
	b.config.apply = append(b.config.apply, fn)
	return b
}

// WithPollInterval sets how often the file content is compared even without
// a change notification. Zero disables polling.
//
// Default is 30 seconds.
func (b *Builder) WithPollInterval(interval time.Duration) *Builder {
	b.config.pollInterval = interval
	return b
}

// WithDebounceInterval sets the debounce interval for file changes.
// Multiple rapid changes are coalesced into a single reload.
//
// Default is 100 milliseconds.
func (b *Builder) WithDebounceInterval(interval time.Duration) *Builder {
	b.config.debounceInterval = interval
	return b
}

// Build creates the Watcher with the configured options.
func (b *Builder) Build() (*Watcher, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.path == "" {
		return nil, &WatcherError{Message: "no descriptor file to watch"}
	}

	return &Watcher{
		config: b.config,
		path:   b.path,
	}, nil
}
