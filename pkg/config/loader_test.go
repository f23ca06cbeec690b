package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hoverfly.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func clearHoverflyEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvProxyPort, EnvAdminPort, EnvHost, EnvDestination, EnvUpstreamProxy, EnvAuthToken} {
		t.Setenv(key, "")
	}
}

func TestLoadFile_Local(t *testing.T) {
	clearHoverflyEnv(t)
	path := writeConfig(t, `
mode: local
proxyPort: 8500
adminPort: 8888
proxyLocalHost: true
destination: 'api\.example\.com'
captureHeaders: [Authorization, X-Request-Id]
sslCertificatePath: cert.pem
sslKeyPath: key.pem
middleware:
  binary: python
  path: middleware.py
disableTlsVerification: true
logLevel: debug
commands: ["-db", "memory"]
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, ModeLocal, cfg.Mode())
	assert.Equal(t, 8500, cfg.ProxyPort())
	assert.Equal(t, 8888, cfg.AdminPort())
	assert.True(t, cfg.ProxyLocalHost())
	assert.Equal(t, `api\.example\.com`, cfg.Destination())
	assert.Equal(t, []string{"Authorization", "X-Request-Id"}, cfg.CaptureHeaders())
	assert.True(t, cfg.MiddlewareEnabled())
	assert.True(t, cfg.TLSVerificationDisabled())
	assert.False(t, cfg.PlainHTTPTunneling())

	local, ok := cfg.Local()
	require.True(t, ok)
	assert.Equal(t, "debug", local.LogLevel)
	assert.Equal(t, []string{"-db", "memory"}, local.Commands)
}

func TestLoad_DefaultsToLocal(t *testing.T) {
	clearHoverflyEnv(t)

	cfg, err := Load([]byte("webServer: true\n"), "inline")
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, cfg.Mode())
	assert.True(t, cfg.WebServer())
}

func TestLoad_EmptyDocument(t *testing.T) {
	clearHoverflyEnv(t)

	cfg, err := Load(nil, "inline")
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, cfg.Mode())
}

func TestLoad_Remote(t *testing.T) {
	clearHoverflyEnv(t)

	cfg, err := Load([]byte(`
mode: remote
host: hoverfly.internal
authToken: abc
httpsAdminEndpoint: true
captureAllHeaders: true
`), "inline")
	require.NoError(t, err)

	assert.True(t, cfg.IsRemoteInstance())
	assert.Equal(t, "https://hoverfly.internal:443", cfg.AdminURL())
	assert.Equal(t, DefaultRemoteProxyPort, cfg.ProxyPort())
	assert.Equal(t, []string{"*"}, cfg.CaptureHeaders())
	token, _ := cfg.AuthToken()
	assert.Equal(t, "abc", token)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearHoverflyEnv(t)
	t.Setenv(EnvProxyPort, "9500")
	t.Setenv(EnvAdminPort, "not-a-port")
	t.Setenv(EnvHost, "env-host")
	t.Setenv(EnvAuthToken, "env-token")
	t.Setenv(EnvDestination, "env.example.com")

	cfg, err := Load([]byte(`
mode: remote
host: file-host
proxyPort: 8600
adminPort: 8900
authToken: file-token
`), "inline")
	require.NoError(t, err)

	assert.Equal(t, 9500, cfg.ProxyPort())
	assert.Equal(t, 8900, cfg.AdminPort(), "unparseable env port is ignored")
	assert.Equal(t, "env-host", cfg.Host())
	assert.Equal(t, "env.example.com", cfg.Destination())
	token, _ := cfg.AuthToken()
	assert.Equal(t, "env-token", token)
}

func TestLoad_RemoteEnvIgnoredForLocal(t *testing.T) {
	clearHoverflyEnv(t)
	t.Setenv(EnvHost, "env-host")
	t.Setenv(EnvAuthToken, "env-token")
	t.Setenv(EnvUpstreamProxy, "corp-proxy:3128")

	cfg, err := Load([]byte("mode: local\n"), "inline")
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Host())
	assert.Equal(t, "corp-proxy:3128", cfg.UpstreamProxy())
	_, ok := cfg.AuthToken()
	assert.False(t, ok)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{"local TLS on remote", "mode: remote\nsslCertificatePath: cert.pem\n", "sslCertificatePath only valid for local instances"},
		{"middleware on remote", "mode: remote\nmiddleware: {binary: python, path: mw.py}\n", "middleware only valid for local instances"},
		{"auth token on local", "mode: local\nauthToken: abc\n", "authToken only valid for remote instances"},
		{"unknown mode", "mode: cloud\n", `invalid mode "cloud"`},
		{"unknown key", "proxyPorts: 1\n", "field proxyPorts not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearHoverflyEnv(t)
			_, err := Load([]byte(tt.yaml), "hoverfly.yaml")

			var ferr *FileError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, "hoverfly.yaml", ferr.Path)
			assert.Contains(t, ferr.Message, tt.msg)
		})
	}
}

func TestLoad_SyntaxErrorHasLine(t *testing.T) {
	clearHoverflyEnv(t)

	_, err := Load([]byte("mode: local\nproxyPort: [1\n"), "hoverfly.yaml")

	var ferr *FileError
	require.ErrorAs(t, err, &ferr)
	assert.Positive(t, ferr.Line)
	assert.Contains(t, ferr.Error(), "hoverfly.yaml (line ")
}

func TestLoad_ValidationErrorPassesThrough(t *testing.T) {
	clearHoverflyEnv(t)

	_, err := Load([]byte("proxyPort: -5\n"), "inline")

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "proxyPort", verr.Field)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = LoadFile(t.TempDir())
	assert.ErrorContains(t, err, "is a directory")

	_, err = LoadFile(writeConfig(t, "  \n"))
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestConfiguration_MarshalYAML(t *testing.T) {
	clearHoverflyEnv(t)
	remote, err := Remote().Host("hoverfly.internal").AuthToken("s3cr3t").Build()
	require.NoError(t, err)

	out, err := yaml.Marshal(remote)
	require.NoError(t, err)
	assert.Contains(t, string(out), "mode: remote")
	assert.Contains(t, string(out), "host: hoverfly.internal")
	assert.Contains(t, string(out), "authToken:")
	assert.Contains(t, string(out), "***")
	assert.NotContains(t, string(out), "s3cr3t")

	local, err := Local().LocalMiddleware("python", "mw.py").Build()
	require.NoError(t, err)

	out, err = yaml.Marshal(local)
	require.NoError(t, err)
	assert.Contains(t, string(out), "middlewareEnabled: true")
	assert.Contains(t, string(out), "binary: python")
}
