package envdesc

import "github.com/arloliu/envdesc/internal/types"

// FieldError represents an error that occurred while processing a specific field.
type FieldError = types.FieldError

// LoadError represents an error that occurred while reading a descriptor source.
type LoadError = types.LoadError

// ValidationError collects the fields of a descriptor that failed validation.
type ValidationError = types.ValidationError

// ErrPlaceholder is matched by errors.Is when a production descriptor still
// carries a placeholder value.
var ErrPlaceholder = types.ErrPlaceholder
