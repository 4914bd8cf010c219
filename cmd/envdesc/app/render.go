package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/arloliu/envdesc"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

// Output formats accepted by --format.
const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatTS   = "ts"
)

func newRenderCommand(o *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "render FILE",
		Short: "Print a validated descriptor for the web build",
		Long: `Load and validate a descriptor file and print the frozen result.

The ts format emits the environment module consumed by the web client,
with its original key names:

  export const environment = {
    production: ...,
    apiServerUrl: ...,
    auth0: { url, audience, clientId, callbackURL },
  };`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := o.load(args[0])
			if err != nil {
				return err
			}

			return render(cmd.OutOrStdout(), env, format)
		},
	}

	o.addLoadFlags(cmd)
	cmd.Flags().StringVarP(&format, "format", "o", formatJSON, "output format: json, yaml or ts")

	return cmd
}

// render writes env to w in the given format.
func render(w io.Writer, env envdesc.Environment, format string) error {
	var out []byte

	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(env, "", "  ")
		if err != nil {
			return err
		}
		out = append(data, '\n')
	case formatYAML:
		data, err := yaml.Marshal(env)
		if err != nil {
			return err
		}
		out = data
	case formatTS:
		web, err := newWebEnvironment(env)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(web, "", "  ")
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		buf.WriteString("export const environment = ")
		buf.Write(data)
		buf.WriteString(";\n")
		out = buf.Bytes()
	default:
		return fmt.Errorf("unknown format %q (want json, yaml or ts)", format)
	}

	_, err := w.Write(out)

	return err
}

// webEnvironment is the environment object of the web client. Its auth0.url
// holds the tenant prefix the client completes with ".auth0.com".
type webEnvironment struct {
	Production   bool     `json:"production"`
	APIServerURL string   `json:"apiServerUrl"`
	Auth0        webAuth0 `json:"auth0"`
}

type webAuth0 struct {
	URL         string `json:"url"`
	Audience    string `json:"audience"`
	ClientID    string `json:"clientId"`
	CallbackURL string `json:"callbackURL"`
}

const auth0Suffix = ".auth0.com"

func newWebEnvironment(env envdesc.Environment) (webEnvironment, error) {
	auth := env.Auth()
	host := auth.Host()
	if !strings.HasSuffix(strings.ToLower(host), auth0Suffix) {
		return webEnvironment{}, fmt.Errorf("auth host %q is not an %s tenant, the web client cannot address it", host, auth0Suffix)
	}

	return webEnvironment{
		Production:   env.Production(),
		APIServerURL: env.APIServerURL(),
		Auth0: webAuth0{
			URL:         host[:len(host)-len(auth0Suffix)],
			Audience:    auth.Audience(),
			ClientID:    auth.ClientID(),
			CallbackURL: auth.CallbackURL(),
		},
	}, nil
}
