package envdesc

import (
	"net"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/arloliu/envdesc/internal/loader"
	"github.com/go-playground/validator/v10"
)

var (
	validatorOnce   sync.Once
	sharedValidator *validator.Validate
)

// defaultValidator returns the package validator. validator.Validate caches
// struct metadata and is safe for concurrent use, so one instance is shared.
func defaultValidator() *validator.Validate {
	validatorOnce.Do(func() {
		sharedValidator = NewValidator()
	})

	return sharedValidator
}

// NewValidator returns a validator with the descriptor rules registered.
func NewValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterRules(v); err != nil {
		panic(err)
	}

	return v
}

// registration records the one-time rule registration on a validator.
type registration struct {
	once sync.Once
	err  error
}

// registered maps *validator.Validate to its *registration.
var registered sync.Map

// RegisterRules registers the descriptor rules on v:
//   - field names in errors follow the yaml keys ("auth.clientId");
//   - "absurl" requires a URL with scheme and host;
//   - a production Values must not carry placeholder values.
//
// Registration on a validator is not safe while it validates, so the rules
// are registered once per instance and later calls return the first result.
func RegisterRules(v *validator.Validate) error {
	r, _ := registered.LoadOrStore(v, &registration{})
	reg := r.(*registration) //nolint:forcetypeassert // only *registration is stored

	reg.once.Do(func() {
		reg.err = registerRules(v)
	})

	return reg.err
}

func registerRules(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return loader.YAMLName(field)
	})

	if err := v.RegisterValidation("absurl", validateAbsURL); err != nil {
		return err
	}

	v.RegisterStructValidation(validateProduction, Values{})

	return nil
}

// Validate checks v against the descriptor rules without freezing it.
func Validate(v Values, opts ...Option) error {
	_, err := Freeze(v, opts...)

	return err
}

func validateAbsURL(fl validator.FieldLevel) bool {
	return IsAbsoluteURL(fl.Field().String())
}

// IsAbsoluteURL reports whether s parses as a URL with both scheme and a
// non-empty host name. "https://:443" is rejected.
func IsAbsoluteURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	return u.Scheme != "" && u.Hostname() != "" && u.Opaque == ""
}

// productionField is one value checked for placeholders in production.
type productionField struct {
	value     string
	name      string
	fieldName string
	isURL     bool
}

func validateProduction(sl validator.StructLevel) {
	v, ok := sl.Current().Interface().(Values)
	if !ok || !v.Production {
		return
	}

	fields := []productionField{
		{v.APIServerURL, "apiServerUrl", "APIServerURL", true},
		{v.Auth.Domain, "auth.domain", "Domain", false},
		{v.Auth.Audience, "auth.audience", "Audience", false},
		{v.Auth.ClientID, "auth.clientId", "ClientID", false},
		{v.Auth.CallbackURL, "auth.callbackUrl", "CallbackURL", true},
	}

	for _, f := range fields {
		// Empty values are reported by the required rule.
		if f.value == "" {
			continue
		}

		if IsPlaceholder(f.value) || (f.isURL && isLoopbackURL(f.value)) {
			sl.ReportError(f.value, f.name, f.fieldName, "placeholder", "")
		}
	}
}

var placeholderValues = map[string]struct{}{
	"todo":        {},
	"tbd":         {},
	"fixme":       {},
	"xxx":         {},
	"changeme":    {},
	"change-me":   {},
	"change_me":   {},
	"replaceme":   {},
	"replace-me":  {},
	"replace_me":  {},
	"placeholder": {},
}

// IsPlaceholder reports whether s looks like an unfilled template value:
// a marker such as "TODO" or "changeme", an angle-bracketed name such as
// "<client-id>", a "your-..." value, or an unexpanded "{{ ... }}" action.
func IsPlaceholder(s string) bool {
	t := strings.ToLower(strings.TrimSpace(s))
	if t == "" {
		return false
	}

	if _, ok := placeholderValues[t]; ok {
		return true
	}

	if strings.HasPrefix(t, "<") && strings.HasSuffix(t, ">") {
		return true
	}

	return strings.HasPrefix(t, "your-") || strings.HasPrefix(t, "your_") || strings.Contains(t, "{{")
}

// isLoopbackURL reports whether s points at localhost or a loopback or
// unspecified address, which a production build must never ship.
func isLoopbackURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	host := u.Hostname()
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return true
	}

	ip := net.ParseIP(host)

	return ip != nil && (ip.IsLoopback() || ip.IsUnspecified())
}
