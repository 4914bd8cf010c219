package envdesc

import "github.com/go-playground/validator/v10"

// config holds configuration for Freeze and Validate.
type config struct {
	validator *validator.Validate
}

// Option configures Freeze and Validate.
type Option func(*config)

// WithValidator sets a custom validator instance for Freeze or Validate.
// The descriptor rules (absurl, production placeholder check and yaml field
// names) are registered on v the first time it is used, so v may carry
// additional rules. Rules registered on v afterwards are left in place.
//
// Example:
//
//	v := validator.New()
//	v.RegisterValidation("tenant", tenantFunc)
//
//	env, err := envdesc.Freeze(values, envdesc.WithValidator(v))
func WithValidator(v *validator.Validate) Option {
	return func(c *config) {
		c.validator = v
	}
}

// resolveValidator returns the configured validator with the descriptor rules
// registered once, or the shared default validator.
func (c config) resolveValidator() (*validator.Validate, error) {
	if c.validator == nil {
		return defaultValidator(), nil
	}

	if err := RegisterRules(c.validator); err != nil {
		return nil, err
	}

	return c.validator, nil
}
