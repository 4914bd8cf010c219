package loader

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/afero"
)

// DotenvConfig holds dotenv file loading configuration.
type DotenvConfig struct {
	Files       []string // Explicit file paths to load
	SearchPaths []string // Directories to search for env file
	SearchName  string   // Filename to search for (e.g., ".env")
	Override    bool     // If true, dotenv values replace variables already set
}

// loadDotenvFiles exports the configured dotenv files into the process
// environment. It runs before any env tag processing.
//
// Without Override the first file that defines a key wins and variables
// already present in the environment are kept, matching godotenv.Load.
// With Override later files win, matching godotenv.Overload.
func (e *Engine) loadDotenvFiles() error {
	if e.DotenvConfig == nil {
		return nil
	}

	fs := e.fs()
	for _, path := range e.resolveEnvFiles(fs) {
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return err
		}

		vars, err := godotenv.UnmarshalBytes(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", path, err)
		}

		for key, val := range vars {
			if _, exists := os.LookupEnv(key); exists && !e.DotenvConfig.Override {
				continue
			}

			if err := os.Setenv(key, val); err != nil {
				return err
			}
		}
	}

	return nil
}

func (e *Engine) fs() afero.Fs {
	if e.Fs == nil {
		return afero.NewOsFs()
	}

	return e.Fs
}

// resolveEnvFiles returns the list of env files to load.
// Priority: explicit files > search paths
func (e *Engine) resolveEnvFiles(fs afero.Fs) []string {
	if len(e.DotenvConfig.Files) > 0 {
		return filterExistingFiles(fs, e.DotenvConfig.Files)
	}

	if len(e.DotenvConfig.SearchPaths) > 0 && e.DotenvConfig.SearchName != "" {
		return searchForEnvFile(fs, e.DotenvConfig.SearchPaths, e.DotenvConfig.SearchName)
	}

	return nil
}

// filterExistingFiles returns only files that exist.
// Missing files are silently ignored to support optional .env.local patterns.
func filterExistingFiles(fs afero.Fs, files []string) []string {
	var existing []string
	for _, f := range files {
		if ok, _ := afero.Exists(fs, f); ok {
			existing = append(existing, f)
		}
	}

	return existing
}

// searchForEnvFile returns the first dir/name that exists, or nil.
func searchForEnvFile(fs afero.Fs, dirs []string, name string) []string {
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if ok, _ := afero.Exists(fs, path); ok {
			return []string{path}
		}
	}

	return nil
}
