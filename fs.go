package envdesc

import "github.com/spf13/afero"

// DefaultFs is the filesystem used by builders that do not call
// WithFilesystem. It defaults to the OS filesystem.
//
// Tests can swap in a memory filesystem:
//
//	memFs := afero.NewMemMapFs()
//	afero.WriteFile(memFs, "/production.yaml", data, 0o644)
//	envdesc.SetDefaultFs(memFs)
//	defer envdesc.ResetDefaultFs()
var DefaultFs afero.Fs = afero.NewOsFs()

// SetDefaultFs sets the global default filesystem.
//
// WARNING: This modifies global state and is NOT thread-safe.
// Do not use with t.Parallel() tests. For concurrent tests,
// use WithFilesystem() on individual builders instead.
func SetDefaultFs(fs afero.Fs) {
	DefaultFs = fs
}

// ResetDefaultFs resets the global filesystem to the OS filesystem.
func ResetDefaultFs() {
	DefaultFs = afero.NewOsFs()
}
