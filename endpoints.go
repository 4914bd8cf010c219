package envdesc

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// auth0Suffix completes a tenant prefix such as "dev21.us" into the
// provider host "dev21.us.auth0.com".
const auth0Suffix = ".auth0.com"

// Host returns the identity-provider hostname. Domain is used verbatim when
// FullDomain is set or it already ends in ".auth0.com"; otherwise it is
// treated as a tenant prefix.
func (a Auth) Host() string {
	if a.fullDomain || strings.HasSuffix(strings.ToLower(a.domain), auth0Suffix) {
		return a.domain
	}

	return a.domain + auth0Suffix
}

// Issuer returns the expected "iss" claim of tokens from the provider.
func (a Auth) Issuer() string {
	return a.endpoint("/", nil)
}

// JWKSURL returns the provider's JSON Web Key Set endpoint.
func (a Auth) JWKSURL() string {
	return a.endpoint("/.well-known/jwks.json", nil)
}

// AuthorizeURL returns the implicit-flow login URL the web client sends
// users to. Tokens are requested for the configured audience and returned
// to the callback URL.
func (a Auth) AuthorizeURL() string {
	q := url.Values{}
	q.Set("audience", a.audience)
	q.Set("response_type", "token")
	q.Set("client_id", a.clientID)
	q.Set("redirect_uri", a.callbackURL)

	return a.endpoint("/authorize", q)
}

// LogoutURL returns the provider logout URL. An empty returnTo sends the
// user back to the callback URL.
func (a Auth) LogoutURL(returnTo string) string {
	if returnTo == "" {
		returnTo = a.callbackURL
	}

	q := url.Values{}
	q.Set("client_id", a.clientID)
	q.Set("returnTo", returnTo)

	return a.endpoint("/v2/logout", q)
}

// OAuth2Config returns an authorization-code configuration for a public
// client. It carries no client secret; pair it with AuthCodeOptions so the
// audience reaches the provider.
func (a Auth) OAuth2Config(scopes ...string) *oauth2.Config {
	return &oauth2.Config{
		ClientID: a.clientID,
		Endpoint: oauth2.Endpoint{
			AuthURL:   a.endpoint("/authorize", nil),
			TokenURL:  a.endpoint("/oauth/token", nil),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		RedirectURL: a.callbackURL,
		Scopes:      scopes,
	}
}

// AuthCodeOptions returns the extra authorization parameters the provider
// needs to issue tokens for the configured audience.
func (a Auth) AuthCodeOptions() []oauth2.AuthCodeOption {
	return []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("audience", a.audience)}
}

func (a Auth) endpoint(path string, query url.Values) string {
	u := url.URL{Scheme: "https", Host: a.Host(), Path: path}
	if query != nil {
		u.RawQuery = query.Encode()
	}

	return u.String()
}

// APIEndpoint joins elem onto the API server base URL.
func (e Environment) APIEndpoint(elem ...string) (string, error) {
	base, err := url.Parse(e.apiServerURL)
	if err != nil {
		return "", fmt.Errorf("invalid api server url %q: %w", e.apiServerURL, err)
	}

	return base.JoinPath(elem...).String(), nil
}
