package config

import (
	"fmt"
	"net"
	"slices"
	"strconv"
	"strings"
)

// Scheme is the URI scheme of the Hoverfly admin API.
type Scheme string

// Supported schemes.
const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

// Mode identifies how an instance is managed.
type Mode string

// Instance modes.
const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

// Defaults applied during validation.
const (
	DefaultHost = "localhost"

	// DefaultRemoteProxyPort and DefaultRemoteAdminPort are Hoverfly's own
	// defaults, used when a remote configuration leaves the ports unset.
	DefaultRemoteProxyPort = 8500
	DefaultRemoteAdminPort = 8888

	// HTTPSAdminPort is used by WithHTTPSAdminEndpoint when no admin port is set.
	HTTPSAdminPort = 443

	// CaptureAllHeaders captures every request header.
	CaptureAllHeaders = "*"
)

// Middleware pairs an executable with the script it runs.
type Middleware struct {
	// Binary is the interpreter or executable, e.g. "python" or "node".
	Binary string `json:"binary,omitempty" yaml:"binary,omitempty"`
	// Path is the script or module location passed to Binary.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Enabled reports whether both Binary and Path are non-blank.
func (m Middleware) Enabled() bool {
	return isNotBlank(m.Binary) && isNotBlank(m.Path)
}

// String renders the middleware as Hoverfly's -middleware flag value.
func (m Middleware) String() string {
	return strings.TrimSpace(m.Binary) + " " + strings.TrimSpace(m.Path)
}

func isNotBlank(s string) bool {
	return strings.TrimSpace(s) != ""
}

// Instance holds the settings that only make sense for one management mode.
// It is implemented by *LocalInstance and *RemoteInstance only.
type Instance interface {
	Mode() Mode
	clone() Instance
}

// LocalInstance holds settings for a Hoverfly process spawned by the harness.
type LocalInstance struct {
	// SSLCertificatePath overrides Hoverfly's default self-signed certificate (PEM).
	SSLCertificatePath string `json:"sslCertificatePath,omitempty" yaml:"sslCertificatePath,omitempty"`
	// SSLKeyPath is the key matching SSLCertificatePath (PEM).
	SSLKeyPath string `json:"sslKeyPath,omitempty" yaml:"sslKeyPath,omitempty"`
	// Middleware is optional; see Middleware.Enabled.
	Middleware *Middleware `json:"middleware,omitempty" yaml:"middleware,omitempty"`
	// TLSVerificationDisabled turns off upstream certificate checks.
	TLSVerificationDisabled bool `json:"tlsVerificationDisabled,omitempty" yaml:"tlsVerificationDisabled,omitempty"`
	// PlainHTTPTunneling allows CONNECT tunnels carrying plain HTTP.
	PlainHTTPTunneling bool `json:"plainHttpTunneling,omitempty" yaml:"plainHttpTunneling,omitempty"`
	// BinaryLocation is the hoverfly executable; empty means "hoverfly" on PATH.
	BinaryLocation string `json:"binaryLocation,omitempty" yaml:"binaryLocation,omitempty"`
	// LogLevel is passed as -log-level when set.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty" validate:"omitempty,oneof=debug info warn error fatal panic"`
	// Commands are extra raw arguments appended to the hoverfly command line.
	Commands []string `json:"commands,omitempty" yaml:"commands,omitempty" validate:"dive,notblank"`
}

// Mode returns ModeLocal.
func (l *LocalInstance) Mode() Mode { return ModeLocal }

func (l *LocalInstance) clone() Instance {
	c := *l
	if l.Middleware != nil {
		mw := *l.Middleware
		c.Middleware = &mw
	}
	c.Commands = slices.Clone(l.Commands)
	return &c
}

// RemoteInstance holds settings for an already running Hoverfly.
type RemoteInstance struct {
	// AuthToken is sent as a bearer token to the admin API. Nil means no auth.
	AuthToken *string `json:"-" yaml:"-"`
	// AdminCertificate is a PEM certificate to trust for the admin API.
	AdminCertificate string `json:"adminCertificate,omitempty" yaml:"adminCertificate,omitempty"`
}

// Mode returns ModeRemote.
func (r *RemoteInstance) Mode() Mode { return ModeRemote }

func (r *RemoteInstance) clone() Instance {
	c := *r
	if r.AuthToken != nil {
		token := *r.AuthToken
		c.AuthToken = &token
	}
	return &c
}

// Configuration is the finished description of a Hoverfly instance.
// It is produced by a builder's Build and must not be modified afterwards;
// every accessor returns copies of reference-typed fields.
type Configuration struct {
	scheme             Scheme
	host               string
	proxyPort          int
	adminPort          int
	proxyLocalHost     bool
	destination        string
	proxyCACertificate *string
	captureHeaders     []string
	upstreamProxy      string
	webServer          bool
	instance           Instance
}

// newLocalConfiguration creates a configuration for an internally managed instance.
func newLocalConfiguration(c common, local *LocalInstance) *Configuration {
	cfg := newConfiguration(c)
	cfg.instance = local
	return cfg
}

// newRemoteConfiguration creates a configuration for an external instance.
// Empty scheme or host keep their defaults.
func newRemoteConfiguration(c common, scheme Scheme, host string, remote *RemoteInstance) *Configuration {
	cfg := newConfiguration(c)
	cfg.setScheme(scheme)
	cfg.setHost(host)
	cfg.instance = remote
	return cfg
}

func newConfiguration(c common) *Configuration {
	cfg := &Configuration{
		scheme:         SchemeHTTP,
		host:           DefaultHost,
		proxyPort:      c.proxyPort,
		adminPort:      c.adminPort,
		proxyLocalHost: c.proxyLocalHost,
		destination:    c.destination,
		captureHeaders: slices.Clone(c.captureHeaders),
		upstreamProxy:  c.upstreamProxy,
		webServer:      c.webServer,
	}
	if cfg.captureHeaders == nil {
		cfg.captureHeaders = []string{}
	}
	if c.proxyCACert != "" {
		ca := c.proxyCACert
		cfg.proxyCACertificate = &ca
	}
	return cfg
}

func (c *Configuration) setScheme(s Scheme) {
	if s != "" {
		c.scheme = s
	}
}

func (c *Configuration) setHost(h string) {
	if h != "" {
		c.host = h
	}
}

// Scheme returns the admin API scheme.
func (c *Configuration) Scheme() Scheme { return c.scheme }

// Host returns the admin API host.
func (c *Configuration) Host() string { return c.host }

// ProxyPort returns the proxy port. Zero on a local instance means the port is
// chosen when the process is started.
func (c *Configuration) ProxyPort() int { return c.proxyPort }

// AdminPort returns the admin port. Zero on a local instance means the port is
// chosen when the process is started.
func (c *Configuration) AdminPort() int { return c.adminPort }

// ProxyLocalHost reports whether traffic to loopback addresses is proxied too.
func (c *Configuration) ProxyLocalHost() bool { return c.proxyLocalHost }

// Destination returns the destination filter, empty when everything is proxied.
func (c *Configuration) Destination() string { return c.destination }

// ProxyCACertificate returns the CA certificate used to trust the proxy.
func (c *Configuration) ProxyCACertificate() (string, bool) {
	if c.proxyCACertificate == nil {
		return "", false
	}
	return *c.proxyCACertificate, true
}

// CaptureHeaders returns the request headers recorded in capture mode.
func (c *Configuration) CaptureHeaders() []string { return slices.Clone(c.captureHeaders) }

// UpstreamProxy returns the proxy Hoverfly chains through, if any.
func (c *Configuration) UpstreamProxy() string { return c.upstreamProxy }

// WebServer reports whether Hoverfly runs as a webserver instead of a proxy.
func (c *Configuration) WebServer() bool { return c.webServer }

// Mode returns how the instance is managed.
func (c *Configuration) Mode() Mode {
	if c.instance == nil {
		return ""
	}
	return c.instance.Mode()
}

// IsRemoteInstance reports whether the configuration targets an external instance.
func (c *Configuration) IsRemoteInstance() bool { return c.Mode() == ModeRemote }

// Local returns a copy of the local instance settings.
func (c *Configuration) Local() (*LocalInstance, bool) {
	l, ok := c.instance.(*LocalInstance)
	if !ok || l == nil {
		return nil, false
	}
	return l.clone().(*LocalInstance), true
}

// Remote returns a copy of the remote instance settings.
func (c *Configuration) Remote() (*RemoteInstance, bool) {
	r, ok := c.instance.(*RemoteInstance)
	if !ok || r == nil {
		return nil, false
	}
	return r.clone().(*RemoteInstance), true
}

func (c *Configuration) local() *LocalInstance {
	l, _ := c.instance.(*LocalInstance)
	return l
}

func (c *Configuration) remote() *RemoteInstance {
	r, _ := c.instance.(*RemoteInstance)
	return r
}

// SSLCertificatePath returns the custom certificate of a local instance.
func (c *Configuration) SSLCertificatePath() (string, bool) {
	if l := c.local(); l != nil && l.SSLCertificatePath != "" {
		return l.SSLCertificatePath, true
	}
	return "", false
}

// SSLKeyPath returns the custom key of a local instance.
func (c *Configuration) SSLKeyPath() (string, bool) {
	if l := c.local(); l != nil && l.SSLKeyPath != "" {
		return l.SSLKeyPath, true
	}
	return "", false
}

// TLSVerificationDisabled reports whether a local instance skips upstream TLS checks.
func (c *Configuration) TLSVerificationDisabled() bool {
	l := c.local()
	return l != nil && l.TLSVerificationDisabled
}

// PlainHTTPTunneling reports whether a local instance tunnels plain HTTP.
func (c *Configuration) PlainHTTPTunneling() bool {
	l := c.local()
	return l != nil && l.PlainHTTPTunneling
}

// LocalMiddleware returns the middleware of a local instance, enabled or not.
func (c *Configuration) LocalMiddleware() (Middleware, bool) {
	if l := c.local(); l != nil && l.Middleware != nil {
		return *l.Middleware, true
	}
	return Middleware{}, false
}

// MiddlewareEnabled reports whether the local middleware is fully specified.
func (c *Configuration) MiddlewareEnabled() bool {
	mw, ok := c.LocalMiddleware()
	return ok && mw.Enabled()
}

// AuthToken returns the admin API token of a remote instance.
func (c *Configuration) AuthToken() (string, bool) {
	if r := c.remote(); r != nil && r.AuthToken != nil {
		return *r.AuthToken, true
	}
	return "", false
}

// AdminCertificate returns the admin API certificate of a remote instance.
func (c *Configuration) AdminCertificate() (string, bool) {
	if r := c.remote(); r != nil && r.AdminCertificate != "" {
		return r.AdminCertificate, true
	}
	return "", false
}

// AdminURL returns the base URL of the admin API.
func (c *Configuration) AdminURL() string {
	return string(c.scheme) + "://" + net.JoinHostPort(c.host, strconv.Itoa(c.adminPort))
}

// ProxyAddress returns the host:port of the proxy listener.
func (c *Configuration) ProxyAddress() string {
	return net.JoinHostPort(c.host, strconv.Itoa(c.proxyPort))
}

// String describes the configuration for logs. The auth token is never printed.
func (c *Configuration) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s hoverfly admin=%s proxy=%s", c.Mode(), c.AdminURL(), c.ProxyAddress())
	if c.destination != "" {
		fmt.Fprintf(&b, " destination=%q", c.destination)
	}
	if c.webServer {
		b.WriteString(" webserver")
	}
	if _, ok := c.AuthToken(); ok {
		b.WriteString(" auth=***")
	}
	if c.MiddlewareEnabled() {
		mw, _ := c.LocalMiddleware()
		fmt.Fprintf(&b, " middleware=%q", mw.String())
	}
	return b.String()
}
