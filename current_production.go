//go:build production

package envdesc

const embeddedDescriptor = "descriptors/production.yaml"
