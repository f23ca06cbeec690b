package config

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/getmockd/hoverfly-go/pkg/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(cfg *Configuration) Configuration {
	s := *cfg
	s.captureHeaders = slices.Clone(cfg.captureHeaders)
	s.instance = cfg.instance.clone()
	return s
}

func TestValidate_Nil(t *testing.T) {
	_, err := Validate(nil)
	assert.ErrorIs(t, err, ErrNilConfiguration)
}

func TestValidate_MissingInstance(t *testing.T) {
	_, err := Validate(&Configuration{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "mode", verr.Field)

	var nilLocal *LocalInstance
	_, err = Validate(&Configuration{instance: nilLocal})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "mode", verr.Field)
}

func TestValidate_FillsMissingSchemeAndHost(t *testing.T) {
	cfg := &Configuration{instance: &RemoteInstance{}}

	got, err := Validate(cfg)
	require.NoError(t, err)
	assert.Same(t, cfg, got)
	assert.Equal(t, SchemeHTTP, got.Scheme())
	assert.Equal(t, DefaultHost, got.Host())
}

func TestValidate_Idempotent(t *testing.T) {
	builds := map[string]func() (*Configuration, error){
		"local": Local().
			ProxyPort(8500).
			Destination("example.com").
			SSLCertificatePath("cert.pem").
			SSLKeyPath("key.pem").
			LocalMiddleware("python", "").
			CaptureHeaders("Authorization").
			Build,
		"remote": Remote().
			Host("hoverfly.internal").
			AuthToken("abc").
			WithHTTPSAdminEndpoint().
			Build,
	}

	for name, build := range builds {
		t.Run(name, func(t *testing.T) {
			cfg, err := build()
			require.NoError(t, err)
			before := snapshot(cfg)

			again, err := Validate(cfg)
			require.NoError(t, err)

			if diff := cmp.Diff(before, *again, cmp.AllowUnexported(Configuration{})); diff != "" {
				t.Errorf("second validation changed the configuration (-before +after):\n%s", diff)
			}
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Configuration, error)
		field string
		msg   string
	}{
		{
			name:  "negative proxy port",
			build: Local().ProxyPort(-1).Build,
			field: "proxyPort",
			msg:   "at least 0",
		},
		{
			name:  "admin port out of range",
			build: Remote().AdminPort(70000).Build,
			field: "adminPort",
			msg:   "at most 65535",
		},
		{
			name:  "unknown scheme",
			build: Remote().Scheme("ftp").Build,
			field: "scheme",
			msg:   "must be one of",
		},
		{
			name:  "blank host",
			build: Remote().Host("   ").Build,
			field: "host",
			msg:   "must not be blank",
		},
		{
			name:  "certificate without key",
			build: Local().SSLCertificatePath("cert.pem").Build,
			field: "sslKeyPath",
			msg:   "both SSL key and certificate",
		},
		{
			name:  "key without certificate",
			build: Local().SSLKeyPath("key.pem").Build,
			field: "sslCertificatePath",
			msg:   "both SSL key and certificate",
		},
		{
			name:  "invalid destination regex",
			build: Local().Destination("api.(example").Build,
			field: "destination",
			msg:   "invalid regex pattern",
		},
		{
			name:  "blank capture header",
			build: Local().CaptureHeaders("Authorization", " ").Build,
			field: "captureHeaders[1]",
			msg:   "must not be blank",
		},
		{
			name:  "upstream proxy without port",
			build: Local().UpstreamProxy("corp-proxy").Build,
			field: "upstreamProxy",
			msg:   "host:port",
		},
		{
			name:  "upstream proxy bad port",
			build: Local().UpstreamProxy("corp-proxy:0").Build,
			field: "upstreamProxy",
			msg:   "between 1 and 65535",
		},
		{
			name:  "upstream proxy URL without host",
			build: Remote().UpstreamProxy("http://:3128").Build,
			field: "upstreamProxy",
			msg:   "host is required",
		},
		{
			name:  "unknown hoverfly log level",
			build: Local().LogLevel("verbose").Build,
			field: "logLevel",
			msg:   "must be one of",
		},
		{
			name:  "blank extra command",
			build: Local().AddCommands("-db", "").Build,
			field: "commands[1]",
			msg:   "must not be blank",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.build()
			assert.Nil(t, cfg)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Contains(t, verr.Message, tt.msg)
		})
	}
}

func TestValidate_AcceptsUpstreamProxyForms(t *testing.T) {
	for _, addr := range []string{
		"corp-proxy:3128",
		"10.0.0.1:8080",
		"[::1]:3128",
		"http://corp-proxy:3128",
		"https://corp-proxy",
	} {
		t.Run(addr, func(t *testing.T) {
			_, err := Local().UpstreamProxy(addr).Build()
			assert.NoError(t, err)
		})
	}
}

func TestValidate_RemoteKeepsExplicitPorts(t *testing.T) {
	cfg, err := Remote().ProxyPort(9500).AdminPort(9888).Build()
	require.NoError(t, err)
	assert.Equal(t, 9500, cfg.ProxyPort())
	assert.Equal(t, 9888, cfg.AdminPort())
}

func TestValidator_LogsPartialMiddleware(t *testing.T) {
	var buf bytes.Buffer
	v := NewValidator(logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf}))

	cfg := newLocalConfiguration(common{}, &LocalInstance{
		Middleware: &Middleware{Binary: "python"},
	})
	_, err := v.Validate(cfg)
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "middleware is partially configured")
	assert.Contains(t, buf.String(), "binary=python")
	assert.False(t, cfg.MiddlewareEnabled())
}

func TestValidator_QuietForCompleteOrEmptyMiddleware(t *testing.T) {
	var buf bytes.Buffer
	v := NewValidator(logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf}))

	for _, mw := range []*Middleware{nil, {}, {Binary: "python", Path: "mw.py"}} {
		_, err := v.Validate(newLocalConfiguration(common{}, &LocalInstance{Middleware: mw}))
		require.NoError(t, err)
	}
	assert.NotContains(t, buf.String(), "partially configured")
}

func TestValidationError_Error(t *testing.T) {
	err := error(&ValidationError{Field: "proxyPort", Message: "must be at least 0"})
	assert.Equal(t, "validation error on proxyPort: must be at least 0", err.Error())

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}
