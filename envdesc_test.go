package envdesc_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arloliu/envdesc"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
production: false
apiServerUrl: http://127.0.0.1:5000
auth:
  domain: dev21.us
  audience: coffee_shop
  clientId: Frh1OED5ev75o5vIO0gy69PJfF6sIWkZ
  callbackUrl: http://localhost:4200/tabs/user-page
`

func TestLoadBytes(t *testing.T) {
	env, err := envdesc.LoadBytes([]byte(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, envdesc.MustFreeze(sampleValues()), env)
}

func TestLoadBytes_MissingURLsAreRequired(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"development", "auth: {domain: dev21.us, audience: coffee_shop, clientId: abc}"},
		{"production", "production: true\nauth: {domain: dev21.us, audience: coffee_shop, clientId: abc}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := envdesc.LoadBytes([]byte(tt.source))
			require.Error(t, err)
			assert.True(t, env.IsZero())
			assert.False(t, errors.Is(err, envdesc.ErrPlaceholder))
			assert.Equal(t, []string{"apiServerUrl:required", "auth.callbackUrl:required"}, fieldPaths(t, err))
		})
	}
}

func TestLoadBytes_BlankValuesAreRequired(t *testing.T) {
	source := strings.Replace(sampleYAML, "clientId: Frh1OED5ev75o5vIO0gy69PJfF6sIWkZ", `clientId: "   "`, 1)

	_, err := envdesc.LoadBytes([]byte(source))
	require.Error(t, err)
	assert.Equal(t, []string{"auth.clientId:required"}, fieldPaths(t, err))
}

func TestLoadFile(t *testing.T) {
	t.Run("reads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "development.yaml")
		require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

		env, err := envdesc.LoadFile(path)
		require.NoError(t, err)
		assert.Equal(t, sampleClientID, env.Auth().ClientID())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := envdesc.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)

		var lerr *envdesc.LoadError
		require.ErrorAs(t, err, &lerr)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("uses default filesystem", func(t *testing.T) {
		memFs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(memFs, "/descriptors/development.yaml", []byte(sampleYAML), 0o644))
		envdesc.SetDefaultFs(memFs)
		defer envdesc.ResetDefaultFs()

		env, err := envdesc.LoadFile("/descriptors/development.yaml")
		require.NoError(t, err)
		assert.Equal(t, sampleDomain, env.Auth().Domain())
	})
}

func TestLoadReader(t *testing.T) {
	env, err := envdesc.LoadReader(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, sampleCallbackURL, env.Auth().CallbackURL())
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("read failed") }

func TestBuilder_FromReaderError(t *testing.T) {
	_, err := envdesc.New().FromReader(failingReader{}).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read failed")
}

func TestBuilder_WithFilesystem(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/production.yaml", []byte(`
production: true
apiServerUrl: https://coffee-shop-api.herokuapp.com
auth:
  domain: dev21.us
  audience: coffee_shop
  clientId: Frh1OED5ev75o5vIO0gy69PJfF6sIWkZ
  callbackUrl: https://coffee-shop-web.herokuapp.com/tabs/user-page
`), 0o644))

	loader, err := envdesc.New().
		WithFilesystem(fs).
		FromFile("/srv/production.yaml").
		WithEnvPrefix("ENVDESC_FS_TEST_").
		Build()
	require.NoError(t, err)

	env, err := loader.Load()
	require.NoError(t, err)
	assert.True(t, env.Production())
	assert.Equal(t, "https://coffee-shop-api.herokuapp.com", env.APIServerURL())
}

func TestBuilder_EnvOverrides(t *testing.T) {
	t.Setenv("COFFEE_API_SERVER_URL", "http://10.0.0.5:5000")
	t.Setenv("COFFEE_AUTH_CLIENT_ID", "OverriddenClientId")

	loader, err := envdesc.New().
		FromBytes([]byte(sampleYAML)).
		WithEnvPrefix("COFFEE_").
		Build()
	require.NoError(t, err)

	env, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:5000", env.APIServerURL())
	assert.Equal(t, "OverriddenClientId", env.Auth().ClientID())
	assert.Equal(t, sampleDomain, env.Auth().Domain())
}

func TestBuilder_ProductionPlaceholderFromEnv(t *testing.T) {
	t.Setenv("ENVDESC_PH_PRODUCTION", "true")

	loader, err := envdesc.New().
		FromBytes([]byte(sampleYAML)).
		WithEnvPrefix("ENVDESC_PH_").
		WithName("development.yaml").
		Build()
	require.NoError(t, err)

	_, err = loader.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, envdesc.ErrPlaceholder)
	assert.ElementsMatch(t, []string{"apiServerUrl:placeholder", "auth.callbackUrl:placeholder"}, fieldPaths(t, err))
}

func TestBuilder_DotEnv(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/app/.env", []byte(
		"ENVDESC_DOT_API_SERVER_URL=http://127.0.0.1:5000\n"+
			"ENVDESC_DOT_AUTH_DOMAIN=dev21.us\n"+
			"ENVDESC_DOT_AUTH_AUDIENCE=coffee_shop\n"+
			"ENVDESC_DOT_AUTH_CLIENT_ID=Frh1OED5ev75o5vIO0gy69PJfF6sIWkZ\n"+
			"ENVDESC_DOT_AUTH_CALLBACK_URL=http://localhost:4200/tabs/user-page\n"), 0o600))
	t.Cleanup(func() {
		for _, k := range []string{
			"ENVDESC_DOT_API_SERVER_URL", "ENVDESC_DOT_AUTH_DOMAIN", "ENVDESC_DOT_AUTH_AUDIENCE",
			"ENVDESC_DOT_AUTH_CLIENT_ID", "ENVDESC_DOT_AUTH_CALLBACK_URL",
		} {
			_ = os.Unsetenv(k)
		}
	})

	loader, err := envdesc.New().
		WithFilesystem(fs).
		WithDotEnv("/app/.env").
		WithEnvPrefix("ENVDESC_DOT_").
		Build()
	require.NoError(t, err)

	// No source at all: dotenv supplies every value.
	env, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, envdesc.MustFreeze(sampleValues()), env)
}

func TestBuilder_DotEnvSearchAndOverride(t *testing.T) {
	t.Setenv("ENVDESC_DOTS_AUTH_AUDIENCE", "from-env")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/etc/coffee/.env", []byte("ENVDESC_DOTS_AUTH_AUDIENCE=coffee_shop\n"), 0o600))

	loader, err := envdesc.New().
		WithFilesystem(fs).
		FromBytes([]byte(sampleYAML)).
		WithDotEnvSearch(".env", []string{"/app", "/etc/coffee"}).
		WithDotEnvOverride().
		WithEnvPrefix("ENVDESC_DOTS_").
		Build()
	require.NoError(t, err)

	env, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "coffee_shop", env.Auth().Audience())
}

func TestBuilder_Template(t *testing.T) {
	source := []byte(`
production: {{ .Production }}
apiServerUrl: https://{{ required "APIHost" .APIHost }}
auth:
  domain: dev21.us
  audience: coffee_shop
  clientId: Frh1OED5ev75o5vIO0gy69PJfF6sIWkZ
  callbackUrl: https://<{ .WebHost }>/tabs/user-page
`)

	t.Run("renders deployment target", func(t *testing.T) {
		loader, err := envdesc.New().
			FromBytes([]byte(strings.ReplaceAll(string(source), "<{ .WebHost }>", "{{ .WebHost }}"))).
			WithEnvPrefix("ENVDESC_TMPL_").
			WithTemplate(map[string]any{
				"Production": true,
				"APIHost":    "coffee-shop-api.herokuapp.com",
				"WebHost":    "coffee-shop-web.herokuapp.com",
			}).
			Build()
		require.NoError(t, err)

		env, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, envdesc.MustFreeze(productionValues()), env)
	})

	t.Run("missing required value fails the load", func(t *testing.T) {
		loader, err := envdesc.New().
			FromBytes(source).
			WithEnvPrefix("ENVDESC_TMPL_").
			WithTemplate(map[string]any{"Production": true, "APIHost": ""}).
			Build()
		require.NoError(t, err)

		_, err = loader.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"APIHost" is required`)
	})

	t.Run("custom delimiters", func(t *testing.T) {
		loader, err := envdesc.New().
			FromBytes([]byte(strings.ReplaceAll(strings.ReplaceAll(string(source), "{{", "<{"), "}}", "}>"))).
			WithEnvPrefix("ENVDESC_TMPL_").
			WithTemplate(map[string]any{
				"Production": false,
				"APIHost":    "coffee-shop-api.herokuapp.com",
				"WebHost":    "coffee-shop-web.herokuapp.com",
			}, envdesc.WithDelimiters("<{", "}>"), envdesc.WithMissingKey("error")).
			Build()
		require.NoError(t, err)

		env, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, "https://coffee-shop-web.herokuapp.com/tabs/user-page", env.Auth().CallbackURL())
	})
}

func TestBuilder_Apply(t *testing.T) {
	t.Setenv("ENVDESC_APPLY_AUTH_AUDIENCE", "espresso_bar")

	pipeline := func(b *envdesc.Builder) {
		b.WithEnvPrefix("ENVDESC_APPLY_")
	}

	loader, err := envdesc.New().FromBytes([]byte(sampleYAML)).Apply(pipeline).Build()
	require.NoError(t, err)

	env, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "espresso_bar", env.Auth().Audience())
}

func TestLoader_LoadIsRepeatable(t *testing.T) {
	loader, err := envdesc.New().FromBytes([]byte(sampleYAML)).WithEnvPrefix("ENVDESC_REPEAT_").Build()
	require.NoError(t, err)

	first, err := loader.Load()
	require.NoError(t, err)
	second, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, first, second)

	src := loader.Source()
	src[0] = '#'
	assert.Equal(t, []byte(sampleYAML), loader.Source())
}

func TestMustLoad_Panics(t *testing.T) {
	require.Panics(t, func() {
		envdesc.MustLoadBytes([]byte("production: true\n"))
	})
	require.Panics(t, func() {
		envdesc.MustLoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	})
}
