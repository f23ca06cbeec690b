package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_Enabled(t *testing.T) {
	tests := []struct {
		name   string
		mw     Middleware
		expect bool
	}{
		{"both set", Middleware{Binary: "python", Path: "middleware.py"}, true},
		{"surrounding whitespace", Middleware{Binary: " node ", Path: "\tmw.js\n"}, true},
		{"binary only", Middleware{Binary: "python"}, false},
		{"path only", Middleware{Path: "middleware.py"}, false},
		{"blank path", Middleware{Binary: "python", Path: "   "}, false},
		{"blank binary", Middleware{Binary: "\t", Path: "middleware.py"}, false},
		{"both blank", Middleware{Binary: " ", Path: " "}, false},
		{"zero value", Middleware{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.mw.Enabled())
		})
	}
}

func TestMiddleware_String(t *testing.T) {
	mw := Middleware{Binary: " python3", Path: "mw/modify.py "}
	assert.Equal(t, "python3 mw/modify.py", mw.String())
}

func TestConfiguration_MiddlewareEnabled_NoMiddleware(t *testing.T) {
	cfg, err := Local().Build()
	require.NoError(t, err)

	_, ok := cfg.LocalMiddleware()
	assert.False(t, ok)
	assert.False(t, cfg.MiddlewareEnabled())
}

func TestConfiguration_URLs(t *testing.T) {
	cfg, err := Remote().Host("hoverfly.internal").ProxyPort(9500).AdminPort(9888).Build()
	require.NoError(t, err)

	assert.Equal(t, "http://hoverfly.internal:9888", cfg.AdminURL())
	assert.Equal(t, "hoverfly.internal:9500", cfg.ProxyAddress())
}

func TestConfiguration_AdminURL_IPv6(t *testing.T) {
	cfg, err := Remote().Host("::1").Build()
	require.NoError(t, err)

	assert.Equal(t, "http://[::1]:8888", cfg.AdminURL())
}

func TestConfiguration_String_RedactsToken(t *testing.T) {
	cfg, err := Remote().Host("hoverfly.internal").AuthToken("s3cr3t").Build()
	require.NoError(t, err)

	s := cfg.String()
	assert.Contains(t, s, "remote hoverfly")
	assert.Contains(t, s, "auth=***")
	assert.NotContains(t, s, "s3cr3t")
}

func TestConfiguration_AccessorsReturnCopies(t *testing.T) {
	cfg, err := Local().
		CaptureHeaders("Authorization").
		LocalMiddleware("python", "mw.py").
		AddCommands("-db", "memory").
		Build()
	require.NoError(t, err)

	headers := cfg.CaptureHeaders()
	headers[0] = "Cookie"

	local, ok := cfg.Local()
	require.True(t, ok)
	local.Middleware.Path = ""
	local.Commands[0] = "-mutated"

	assert.Equal(t, []string{"Authorization"}, cfg.CaptureHeaders())
	assert.True(t, cfg.MiddlewareEnabled())
	again, _ := cfg.Local()
	assert.Equal(t, []string{"-db", "memory"}, again.Commands)
}

func TestConfiguration_ModeSpecificAccessors(t *testing.T) {
	local, err := Local().SSLCertificatePath("cert.pem").SSLKeyPath("key.pem").Build()
	require.NoError(t, err)

	_, isRemote := local.Remote()
	assert.False(t, isRemote)
	_, hasAdminCert := local.AdminCertificate()
	assert.False(t, hasAdminCert)

	remote, err := Remote().AdminCertificate("admin.pem").Build()
	require.NoError(t, err)

	_, isLocal := remote.Local()
	assert.False(t, isLocal)
	assert.False(t, remote.TLSVerificationDisabled())
	assert.False(t, remote.PlainHTTPTunneling())
	assert.False(t, remote.MiddlewareEnabled())
	cert, ok := remote.AdminCertificate()
	assert.True(t, ok)
	assert.Equal(t, "admin.pem", cert)
}
