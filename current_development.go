//go:build !production

package envdesc

const embeddedDescriptor = "descriptors/development.yaml"
