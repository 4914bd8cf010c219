package envdesc

import (
	"embed"
	"fmt"
)

//go:embed descriptors/*.yaml
var descriptorFS embed.FS

// current is frozen once at process start from the descriptor selected by
// build tags. A descriptor that does not validate stops the process here.
var current = mustLoadEmbedded(embeddedDescriptor)

// Get returns the environment descriptor embedded in this build.
func Get() Environment {
	return current
}

// Embedded returns the raw descriptor selected for this build and its name.
func Embedded() (name string, data []byte) {
	data, err := descriptorFS.ReadFile(embeddedDescriptor)
	if err != nil {
		panic(err)
	}

	return embeddedDescriptor, data
}

// mustLoadEmbedded freezes the embedded descriptor called name. Environment
// variables are not consulted, the embedded values are fixed at build time.
func mustLoadEmbedded(name string) Environment {
	data, err := descriptorFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("envdesc: embedded descriptor %s: %v", name, err))
	}

	v, err := ParseValues(data)
	if err != nil {
		panic(fmt.Sprintf("envdesc: embedded descriptor %s: %v", name, err))
	}

	env, err := Freeze(v)
	if err != nil {
		panic(fmt.Sprintf("envdesc: embedded descriptor %s: %v", name, err))
	}

	return env
}
