package envdesc

import (
	"strings"

	"github.com/arloliu/envdesc/internal/types"
	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// Values is the mutable input an Environment is frozen from. Files are
// decoded into it and env tags override it. Every field is required; a
// missing value is reported rather than filled in.
//
// Keys follow the web client's environment object:
//
//	production: false
//	apiServerUrl: http://127.0.0.1:5000
//	auth:
//	  domain: dev21.us
//	  audience: coffee_shop
//	  clientId: Frh1OED5ev75o5vIO0gy69PJfF6sIWkZ
//	  callbackUrl: http://localhost:4200/tabs/user-page
type Values struct {
	// Production marks a production deployment.
	Production bool `yaml:"production" json:"production" env:"PRODUCTION"`
	// APIServerURL is the base address of the backend HTTP service.
	APIServerURL string `yaml:"apiServerUrl" json:"apiServerUrl" env:"API_SERVER_URL" validate:"required,absurl"`
	// Auth holds the identity-provider parameters.
	Auth AuthValues `yaml:"auth" json:"auth"`
}

// AuthValues holds the identity-provider parameters of Values.
type AuthValues struct {
	// Domain is the identity-provider tenant. It is a prefix completed with
	// ".auth0.com" unless FullDomain is set.
	Domain string `yaml:"domain" json:"domain" env:"AUTH_DOMAIN" validate:"required,excludesall=/"`
	// FullDomain uses Domain verbatim as the identity-provider host.
	FullDomain bool `yaml:"fullDomain,omitempty" json:"fullDomain,omitempty" env:"AUTH_FULL_DOMAIN"`
	// Audience identifies the API that issued tokens must target.
	Audience string `yaml:"audience" json:"audience" env:"AUTH_AUDIENCE" validate:"required"`
	// ClientID is the public client identifier registered with the provider.
	ClientID string `yaml:"clientId" json:"clientId" env:"AUTH_CLIENT_ID" validate:"required"`
	// CallbackURL is where the provider redirects after authentication.
	CallbackURL string `yaml:"callbackUrl" json:"callbackUrl" env:"AUTH_CALLBACK_URL" validate:"required,absurl"`
}

// SetDefaults trims surrounding whitespace from every string value, so a
// blank value fails the required rule. defaults.Set calls it during loading
// and Freeze calls it before validating.
func (v *Values) SetDefaults() {
	v.APIServerURL = strings.TrimSpace(v.APIServerURL)
	v.Auth.Domain = strings.TrimSpace(v.Auth.Domain)
	v.Auth.Audience = strings.TrimSpace(v.Auth.Audience)
	v.Auth.ClientID = strings.TrimSpace(v.Auth.ClientID)
	v.Auth.CallbackURL = strings.TrimSpace(v.Auth.CallbackURL)
}

// ParseValues decodes a YAML or JSON descriptor and trims its values.
// Environment variables are not consulted; use a Loader for that.
func ParseValues(data []byte) (Values, error) {
	var v Values
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Values{}, &LoadError{Source: "bytes", Err: err}
	}

	if err := defaults.Set(&v); err != nil {
		return Values{}, &FieldError{Tag: "default", Err: err}
	}

	return v, nil
}

// Freeze trims and validates v and returns the immutable Environment built
// from it. Later changes to v do not affect the returned Environment.
func Freeze(v Values, opts ...Option) (Environment, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	validate, err := cfg.resolveValidator()
	if err != nil {
		return Environment{}, err
	}

	v.SetDefaults()
	if err := validate.Struct(&v); err != nil {
		return Environment{}, types.FromValidator(err)
	}

	return freeze(v), nil
}

// MustFreeze is like Freeze but panics on error.
func MustFreeze(v Values, opts ...Option) Environment {
	env, err := Freeze(v, opts...)
	if err != nil {
		panic(err)
	}

	return env
}

func freeze(v Values) Environment {
	return Environment{
		production:   v.Production,
		apiServerURL: v.APIServerURL,
		auth: Auth{
			domain:      v.Auth.Domain,
			fullDomain:  v.Auth.FullDomain,
			audience:    v.Auth.Audience,
			clientID:    v.Auth.ClientID,
			callbackURL: v.Auth.CallbackURL,
		},
	}
}
