package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arloliu/envdesc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDescriptor = `production: false
apiServerUrl: http://127.0.0.1:5000
auth:
  domain: dev21.us
  audience: coffee_shop
  clientId: Frh1OED5ev75o5vIO0gy69PJfF6sIWkZ
  callbackUrl: http://localhost:4200/tabs/user-page
`

const missingClientID = `production: false
apiServerUrl: http://127.0.0.1:5000
auth:
  domain: dev21.us
  audience: coffee_shop
  callbackUrl: http://localhost:4200/tabs/user-page
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	cmd := NewCommand(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)

	return out.String(), errOut.String(), err
}

func TestCheck_Valid(t *testing.T) {
	path := writeFile(t, "env.yaml", validDescriptor)

	out, _, err := execute(t, context.Background(), "check", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok "+path)
	assert.Contains(t, out, "(development)")
}

func TestCheck_InvalidReportsFields(t *testing.T) {
	good := writeFile(t, "good.yaml", validDescriptor)
	bad := writeFile(t, "bad.yaml", missingClientID)

	out, _, err := execute(t, context.Background(), "check", good, bad)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, err.Error(), "1 of 2 invalid")

	assert.Contains(t, out, "ok "+good)
	assert.Contains(t, out, "FAIL "+bad)
	assert.Contains(t, out, "auth.clientId")
}

func TestCheck_MissingFile(t *testing.T) {
	out, _, err := execute(t, context.Background(), "check", filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "failed to load environment descriptor")
}

func TestCheck_EnvPrefixOverride(t *testing.T) {
	path := writeFile(t, "env.yaml", missingClientID)
	t.Setenv("CLITEST_AUTH_CLIENT_ID", "from-env")

	_, _, err := execute(t, context.Background(), "check", "--env-prefix", "CLITEST_", path)
	require.NoError(t, err)
}

func TestCheck_DotEnv(t *testing.T) {
	path := writeFile(t, "env.yaml", missingClientID)
	dotenv := writeFile(t, ".env", "CLIDOTENV_AUTH_CLIENT_ID=from-dotenv\n")
	t.Cleanup(func() { _ = os.Unsetenv("CLIDOTENV_AUTH_CLIENT_ID") })

	_, _, err := execute(t, context.Background(), "check", "--env-prefix", "CLIDOTENV_", "--dotenv", dotenv, path)
	require.NoError(t, err)
}

func TestCheck_ProductionPlaceholder(t *testing.T) {
	path := writeFile(t, "prod.yaml", strings.Replace(validDescriptor, "production: false", "production: true", 1))

	out, _, err := execute(t, context.Background(), "check", path)
	require.ErrorIs(t, err, ErrCheckFailed)
	assert.Contains(t, out, "apiServerUrl")
	assert.Contains(t, out, "auth.callbackUrl")
}

func TestCheck_WatchNeedsOneFile(t *testing.T) {
	a := writeFile(t, "a.yaml", validDescriptor)
	b := writeFile(t, "b.yaml", validDescriptor)

	_, _, err := execute(t, context.Background(), "check", "--watch", a, b)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCheckFailed)
}

func TestCheck_WatchStopsOnCancel(t *testing.T) {
	path := writeFile(t, "env.yaml", validDescriptor)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, _, err := execute(t, ctx, "check", "--watch", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ok "+path)
}

func TestRender_Formats(t *testing.T) {
	path := writeFile(t, "env.yaml", validDescriptor)

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, context.Background(), "render", path)
		require.NoError(t, err)

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, false, got["production"])
		assert.Equal(t, "http://127.0.0.1:5000", got["apiServerUrl"])

		auth, ok := got["auth"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "dev21.us", auth["domain"])
		assert.Equal(t, "Frh1OED5ev75o5vIO0gy69PJfF6sIWkZ", auth["clientId"])
		assert.NotContains(t, auth, "fullDomain")
	})

	t.Run("yaml", func(t *testing.T) {
		out, _, err := execute(t, context.Background(), "render", "--format", "yaml", path)
		require.NoError(t, err)
		assert.Contains(t, out, "apiServerUrl: http://127.0.0.1:5000")
		assert.Contains(t, out, "  clientId: Frh1OED5ev75o5vIO0gy69PJfF6sIWkZ")

		env, err := envdesc.LoadBytes([]byte(out))
		require.NoError(t, err)
		assert.Equal(t, "coffee_shop", env.Auth().Audience())
	})

	t.Run("ts", func(t *testing.T) {
		out, _, err := execute(t, context.Background(), "render", "-o", "ts", path)
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(out, "export const environment = "))
		require.True(t, strings.HasSuffix(out, ";\n"))

		body := strings.TrimSuffix(strings.TrimPrefix(out, "export const environment = "), ";\n")
		assert.JSONEq(t, `{
			"production": false,
			"apiServerUrl": "http://127.0.0.1:5000",
			"auth0": {
				"url": "dev21.us",
				"audience": "coffee_shop",
				"clientId": "Frh1OED5ev75o5vIO0gy69PJfF6sIWkZ",
				"callbackURL": "http://localhost:4200/tabs/user-page"
			}
		}`, body)
	})

	t.Run("ts full domain", func(t *testing.T) {
		full := writeFile(t, "full.yaml", strings.Replace(validDescriptor, "domain: dev21.us", "domain: dev21.us.auth0.com\n  fullDomain: true", 1))

		out, _, err := execute(t, context.Background(), "render", "-o", "ts", full)
		require.NoError(t, err)
		assert.Contains(t, out, `"url": "dev21.us"`)
	})

	t.Run("ts custom domain", func(t *testing.T) {
		custom := writeFile(t, "custom.yaml", strings.Replace(validDescriptor, "domain: dev21.us", "domain: login.coffee.example\n  fullDomain: true", 1))

		out, _, err := execute(t, context.Background(), "render", "-o", "ts", custom)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "login.coffee.example")
		assert.Empty(t, out)
	})

	t.Run("unknown", func(t *testing.T) {
		_, _, err := execute(t, context.Background(), "render", "--format", "toml", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown format "toml"`)
	})
}

func TestRender_InvalidDescriptor(t *testing.T) {
	path := writeFile(t, "env.yaml", missingClientID)

	out, _, err := execute(t, context.Background(), "render", path)
	require.Error(t, err)
	assert.Empty(t, out)

	var verr *envdesc.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestShow(t *testing.T) {
	name, data := envdesc.Embedded()

	t.Run("yaml", func(t *testing.T) {
		out, _, err := execute(t, context.Background(), "show")
		require.NoError(t, err)
		assert.Contains(t, out, "# "+name)
		assert.Contains(t, out, "domain: "+envdesc.Get().Auth().Domain())
	})

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, context.Background(), "show", "--format", "json")
		require.NoError(t, err)

		got, err := json.Marshal(envdesc.Get())
		require.NoError(t, err)
		assert.JSONEq(t, string(got), out)
	})

	t.Run("raw", func(t *testing.T) {
		out, _, err := execute(t, context.Background(), "show", "--raw")
		require.NoError(t, err)
		assert.Equal(t, string(data), out)
	})
}

func TestVerboseLogsToErrOut(t *testing.T) {
	path := writeFile(t, "env.yaml", validDescriptor)

	_, errOut, err := execute(t, context.Background(), "--verbose", "check", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "loading descriptor")

	_, errOut, err = execute(t, context.Background(), "check", path)
	require.NoError(t, err)
	assert.Empty(t, errOut)
}
