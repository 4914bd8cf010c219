package envdesc

import (
	"encoding/json"
	"fmt"
)

// Environment is the immutable environment descriptor of the web client.
//
// All fields are unexported and read through value accessors, so an
// Environment cannot be modified after it is frozen. It holds no pointers,
// copies are independent, and any number of goroutines may read it.
type Environment struct {
	production   bool
	apiServerURL string
	auth         Auth
}

// Auth holds the identity-provider parameters of an Environment.
type Auth struct {
	domain      string
	fullDomain  bool
	audience    string
	clientID    string
	callbackURL string
}

// Production reports whether the descriptor is for a production deployment.
func (e Environment) Production() bool { return e.production }

// APIServerURL returns the base address of the backend HTTP service.
func (e Environment) APIServerURL() string { return e.apiServerURL }

// Auth returns the identity-provider parameters.
func (e Environment) Auth() Auth { return e.auth }

// IsZero reports whether e is the zero Environment, which no successful
// Freeze or Load ever returns.
func (e Environment) IsZero() bool { return e == Environment{} }

// Equal reports whether e and other carry the same values.
func (e Environment) Equal(other Environment) bool { return e == other }

// Values returns a mutable copy of the descriptor's values.
// Changing the copy does not affect e.
func (e Environment) Values() Values {
	return Values{
		Production:   e.production,
		APIServerURL: e.apiServerURL,
		Auth: AuthValues{
			Domain:      e.auth.domain,
			FullDomain:  e.auth.fullDomain,
			Audience:    e.auth.audience,
			ClientID:    e.auth.clientID,
			CallbackURL: e.auth.callbackURL,
		},
	}
}

// MarshalJSON encodes the descriptor with the web client's key names.
func (e Environment) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Values())
}

// String implements fmt.Stringer.
func (e Environment) String() string {
	return fmt.Sprintf("Environment{production=%t apiServerUrl=%s auth=%s}", e.production, e.apiServerURL, e.auth)
}

// Domain returns the identity-provider domain as configured. See Host for
// the resolved hostname.
func (a Auth) Domain() string { return a.domain }

// FullDomain reports whether Domain is used verbatim as the provider host.
func (a Auth) FullDomain() bool { return a.fullDomain }

// Audience returns the identifier of the API issued tokens must target.
func (a Auth) Audience() string { return a.audience }

// ClientID returns the public client identifier.
func (a Auth) ClientID() string { return a.clientID }

// CallbackURL returns the URL the provider redirects back to.
func (a Auth) CallbackURL() string { return a.callbackURL }

// String implements fmt.Stringer.
func (a Auth) String() string {
	return fmt.Sprintf("{domain=%s audience=%s clientId=%s callbackUrl=%s}", a.domain, a.audience, a.clientID, a.callbackURL)
}
