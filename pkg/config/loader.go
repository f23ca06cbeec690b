package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Common errors for configuration loading.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// fileConfig is the YAML document shape. Pointer fields are nil when the key
// is absent so that only present keys reach the builder.
type fileConfig struct {
	Mode *string `yaml:"mode"`

	ProxyPort         *int     `yaml:"proxyPort"`
	AdminPort         *int     `yaml:"adminPort"`
	ProxyLocalHost    *bool    `yaml:"proxyLocalHost"`
	Destination       *string  `yaml:"destination"`
	ProxyCACert       *string  `yaml:"proxyCaCert"`
	CaptureHeaders    []string `yaml:"captureHeaders"`
	CaptureAllHeaders *bool    `yaml:"captureAllHeaders"`
	UpstreamProxy     *string  `yaml:"upstreamProxy"`
	WebServer         *bool    `yaml:"webServer"`

	// local only
	SSLCertificatePath     *string     `yaml:"sslCertificatePath"`
	SSLKeyPath             *string     `yaml:"sslKeyPath"`
	Middleware             *Middleware `yaml:"middleware"`
	DisableTLSVerification *bool       `yaml:"disableTlsVerification"`
	PlainHTTPTunneling     *bool       `yaml:"plainHttpTunneling"`
	BinaryLocation         *string     `yaml:"binaryLocation"`
	LogLevel               *string     `yaml:"logLevel"`
	Commands               []string    `yaml:"commands"`

	// remote only
	Scheme             *string `yaml:"scheme"`
	Host               *string `yaml:"host"`
	AuthToken          *string `yaml:"authToken"`
	AdminCertificate   *string `yaml:"adminCertificate"`
	HTTPSAdminEndpoint *bool   `yaml:"httpsAdminEndpoint"`
}

// localOnlyKeys returns the YAML keys set in f that a remote instance cannot use.
func (f *fileConfig) localOnlyKeys() []string {
	var keys []string
	add := func(set bool, key string) {
		if set {
			keys = append(keys, key)
		}
	}
	add(f.SSLCertificatePath != nil, "sslCertificatePath")
	add(f.SSLKeyPath != nil, "sslKeyPath")
	add(f.Middleware != nil, "middleware")
	add(f.DisableTLSVerification != nil, "disableTlsVerification")
	add(f.PlainHTTPTunneling != nil, "plainHttpTunneling")
	add(f.BinaryLocation != nil, "binaryLocation")
	add(f.LogLevel != nil, "logLevel")
	add(len(f.Commands) > 0, "commands")
	return keys
}

// remoteOnlyKeys returns the YAML keys set in f that a local instance cannot use.
func (f *fileConfig) remoteOnlyKeys() []string {
	var keys []string
	add := func(set bool, key string) {
		if set {
			keys = append(keys, key)
		}
	}
	add(f.Scheme != nil, "scheme")
	add(f.Host != nil, "host")
	add(f.AuthToken != nil, "authToken")
	add(f.AdminCertificate != nil, "adminCertificate")
	add(f.HTTPSAdminEndpoint != nil, "httpsAdminEndpoint")
	return keys
}

// LoadFile reads a configuration from a YAML file, applies HOVERFLY_*
// environment overrides and validates the result.
func LoadFile(path string) (*Configuration, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	return Load(data, path)
}

// Load parses a YAML document, applies HOVERFLY_* environment overrides and
// validates the result. source names the document in errors.
func Load(data []byte, source string) (*Configuration, error) {
	var f fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, yamlError(source, err)
	}

	mode := ModeLocal
	if f.Mode != nil {
		mode = Mode(*f.Mode)
	}
	applyEnv(&f, mode)

	switch mode {
	case ModeLocal:
		if keys := f.remoteOnlyKeys(); len(keys) > 0 {
			return nil, &FileError{Path: source, Message: fmt.Sprintf("%s only valid for remote instances", keys[0])}
		}
		return f.localBuilder().Build()
	case ModeRemote:
		if keys := f.localOnlyKeys(); len(keys) > 0 {
			return nil, &FileError{Path: source, Message: fmt.Sprintf("%s only valid for local instances", keys[0])}
		}
		return f.remoteBuilder().Build()
	default:
		return nil, &FileError{Path: source, Message: fmt.Sprintf("invalid mode %q (must be 'local' or 'remote')", mode)}
	}
}

func (f *fileConfig) applyCommon(c *common) {
	if f.ProxyPort != nil {
		c.proxyPort = *f.ProxyPort
	}
	if f.AdminPort != nil {
		c.adminPort = *f.AdminPort
	}
	if f.ProxyLocalHost != nil {
		c.proxyLocalHost = *f.ProxyLocalHost
	}
	if f.Destination != nil {
		c.destination = *f.Destination
	}
	if f.ProxyCACert != nil {
		c.proxyCACert = *f.ProxyCACert
	}
	if f.CaptureHeaders != nil {
		c.captureHeaders = f.CaptureHeaders
	}
	if f.CaptureAllHeaders != nil && *f.CaptureAllHeaders {
		c.captureHeaders = []string{CaptureAllHeaders}
	}
	if f.UpstreamProxy != nil {
		c.upstreamProxy = *f.UpstreamProxy
	}
	if f.WebServer != nil {
		c.webServer = *f.WebServer
	}
}

func (f *fileConfig) localBuilder() *LocalBuilder {
	b := Local()
	f.applyCommon(&b.common)
	if f.SSLCertificatePath != nil {
		b.SSLCertificatePath(*f.SSLCertificatePath)
	}
	if f.SSLKeyPath != nil {
		b.SSLKeyPath(*f.SSLKeyPath)
	}
	if f.Middleware != nil {
		b.LocalMiddleware(f.Middleware.Binary, f.Middleware.Path)
	}
	if f.DisableTLSVerification != nil && *f.DisableTLSVerification {
		b.DisableTLSVerification()
	}
	if f.PlainHTTPTunneling != nil && *f.PlainHTTPTunneling {
		b.PlainHTTPTunneling()
	}
	if f.BinaryLocation != nil {
		b.BinaryLocation(*f.BinaryLocation)
	}
	if f.LogLevel != nil {
		b.LogLevel(*f.LogLevel)
	}
	b.AddCommands(f.Commands...)
	return b
}

func (f *fileConfig) remoteBuilder() *RemoteBuilder {
	b := Remote()
	f.applyCommon(&b.common)
	if f.Scheme != nil {
		b.Scheme(Scheme(*f.Scheme))
	}
	if f.Host != nil {
		b.Host(*f.Host)
	}
	if f.AuthToken != nil {
		b.AuthToken(*f.AuthToken)
	}
	if f.AdminCertificate != nil {
		b.AdminCertificate(*f.AdminCertificate)
	}
	if f.HTTPSAdminEndpoint != nil && *f.HTTPSAdminEndpoint {
		b.WithHTTPSAdminEndpoint()
	}
	return b
}

var yamlLine = regexp.MustCompile(`line (\d+)`)

func yamlError(source string, err error) error {
	fe := &FileError{Path: source, Message: err.Error()}
	if m := yamlLine.FindStringSubmatch(err.Error()); m != nil {
		fe.Line, _ = strconv.Atoi(m[1])
		fe.Column = 1
	}
	return fe
}

// document is the YAML rendering of a finished Configuration.
type document struct {
	Mode               Mode        `yaml:"mode"`
	Scheme             Scheme      `yaml:"scheme"`
	Host               string      `yaml:"host"`
	ProxyPort          int         `yaml:"proxyPort"`
	AdminPort          int         `yaml:"adminPort"`
	ProxyLocalHost     bool        `yaml:"proxyLocalHost,omitempty"`
	Destination        string      `yaml:"destination,omitempty"`
	ProxyCACert        string      `yaml:"proxyCaCert,omitempty"`
	CaptureHeaders     []string    `yaml:"captureHeaders,omitempty"`
	UpstreamProxy      string      `yaml:"upstreamProxy,omitempty"`
	WebServer          bool        `yaml:"webServer,omitempty"`
	SSLCertificatePath string      `yaml:"sslCertificatePath,omitempty"`
	SSLKeyPath         string      `yaml:"sslKeyPath,omitempty"`
	Middleware         *Middleware `yaml:"middleware,omitempty"`
	MiddlewareEnabled  bool        `yaml:"middlewareEnabled,omitempty"`
	DisableTLS         bool        `yaml:"disableTlsVerification,omitempty"`
	PlainHTTPTunneling bool        `yaml:"plainHttpTunneling,omitempty"`
	BinaryLocation     string      `yaml:"binaryLocation,omitempty"`
	LogLevel           string      `yaml:"logLevel,omitempty"`
	Commands           []string    `yaml:"commands,omitempty"`
	AuthToken          string      `yaml:"authToken,omitempty"`
	AdminCertificate   string      `yaml:"adminCertificate,omitempty"`
}

// MarshalYAML renders the configuration with the auth token redacted.
func (c *Configuration) MarshalYAML() (interface{}, error) {
	d := document{
		Mode:           c.Mode(),
		Scheme:         c.scheme,
		Host:           c.host,
		ProxyPort:      c.proxyPort,
		AdminPort:      c.adminPort,
		ProxyLocalHost: c.proxyLocalHost,
		Destination:    c.destination,
		CaptureHeaders: c.CaptureHeaders(),
		UpstreamProxy:  c.upstreamProxy,
		WebServer:      c.webServer,
	}
	d.ProxyCACert, _ = c.ProxyCACertificate()
	if l, ok := c.Local(); ok {
		d.SSLCertificatePath = l.SSLCertificatePath
		d.SSLKeyPath = l.SSLKeyPath
		d.Middleware = l.Middleware
		d.MiddlewareEnabled = c.MiddlewareEnabled()
		d.DisableTLS = l.TLSVerificationDisabled
		d.PlainHTTPTunneling = l.PlainHTTPTunneling
		d.BinaryLocation = l.BinaryLocation
		d.LogLevel = l.LogLevel
		d.Commands = l.Commands
	}
	if r, ok := c.Remote(); ok {
		if r.AuthToken != nil {
			d.AuthToken = "***"
		}
		d.AdminCertificate = r.AdminCertificate
	}
	return d, nil
}
