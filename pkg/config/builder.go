package config

import (
	"net"
	"os"
	"slices"
	"strconv"
)

// EnvAuthToken is read by RemoteBuilder.WithAuthHeader.
const EnvAuthToken = "HOVERFLY_AUTH_TOKEN"

// common holds the settings shared by both builder variants.
type common struct {
	proxyPort      int
	adminPort      int
	proxyLocalHost bool
	destination    string
	proxyCACert    string
	captureHeaders []string
	upstreamProxy  string
	webServer      bool
}

func upstreamAddr(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// LocalBuilder accumulates settings for a Hoverfly process managed by the harness.
// Setters only record values; Build validates them.
type LocalBuilder struct {
	common
	local LocalInstance
}

// Local returns a builder for a locally managed instance.
func Local() *LocalBuilder {
	return &LocalBuilder{}
}

// ProxyPort sets the proxy port. Zero lets the launcher pick a free port.
func (b *LocalBuilder) ProxyPort(port int) *LocalBuilder {
	b.proxyPort = port
	return b
}

// AdminPort sets the admin port. Zero lets the launcher pick a free port.
func (b *LocalBuilder) AdminPort(port int) *LocalBuilder {
	b.adminPort = port
	return b
}

// ProxyLocalHost makes Hoverfly intercept traffic to loopback addresses.
func (b *LocalBuilder) ProxyLocalHost(enabled bool) *LocalBuilder {
	b.proxyLocalHost = enabled
	return b
}

// Destination restricts the hosts that are proxied. It is a regular expression.
func (b *LocalBuilder) Destination(destination string) *LocalBuilder {
	b.destination = destination
	return b
}

// ProxyCACert sets the CA certificate clients use to trust the proxy.
func (b *LocalBuilder) ProxyCACert(path string) *LocalBuilder {
	b.proxyCACert = path
	return b
}

// CaptureHeaders sets the request headers recorded in capture mode.
func (b *LocalBuilder) CaptureHeaders(headers ...string) *LocalBuilder {
	b.captureHeaders = slices.Clone(headers)
	return b
}

// CaptureAllHeaders records every request header in capture mode.
func (b *LocalBuilder) CaptureAllHeaders() *LocalBuilder {
	return b.CaptureHeaders(CaptureAllHeaders)
}

// UpstreamProxy chains Hoverfly through another proxy ("host:port" or a URL).
func (b *LocalBuilder) UpstreamProxy(addr string) *LocalBuilder {
	b.upstreamProxy = addr
	return b
}

// UpstreamProxyAddr is UpstreamProxy for a separate host and port.
func (b *LocalBuilder) UpstreamProxyAddr(host string, port int) *LocalBuilder {
	return b.UpstreamProxy(upstreamAddr(host, port))
}

// WebServer runs Hoverfly as a webserver serving simulations directly.
func (b *LocalBuilder) WebServer() *LocalBuilder {
	b.webServer = true
	return b
}

// SSLCertificatePath overrides the default Hoverfly certificate.
// The file must be PEM encoded; SSLKeyPath must be set as well.
func (b *LocalBuilder) SSLCertificatePath(path string) *LocalBuilder {
	b.local.SSLCertificatePath = path
	return b
}

// SSLKeyPath overrides the default Hoverfly key.
func (b *LocalBuilder) SSLKeyPath(path string) *LocalBuilder {
	b.local.SSLKeyPath = path
	return b
}

// LocalMiddleware runs path through binary for every request.
func (b *LocalBuilder) LocalMiddleware(binary, path string) *LocalBuilder {
	b.local.Middleware = &Middleware{Binary: binary, Path: path}
	return b
}

// DisableTLSVerification skips certificate checks against upstream servers.
func (b *LocalBuilder) DisableTLSVerification() *LocalBuilder {
	b.local.TLSVerificationDisabled = true
	return b
}

// PlainHTTPTunneling allows plain HTTP inside CONNECT tunnels.
func (b *LocalBuilder) PlainHTTPTunneling() *LocalBuilder {
	b.local.PlainHTTPTunneling = true
	return b
}

// BinaryLocation sets the hoverfly executable to launch.
func (b *LocalBuilder) BinaryLocation(path string) *LocalBuilder {
	b.local.BinaryLocation = path
	return b
}

// LogLevel sets Hoverfly's own log level.
func (b *LocalBuilder) LogLevel(level string) *LocalBuilder {
	b.local.LogLevel = level
	return b
}

// AddCommands appends raw command line arguments.
func (b *LocalBuilder) AddCommands(args ...string) *LocalBuilder {
	b.local.Commands = append(b.local.Commands, args...)
	return b
}

// Build copies the accumulated settings into a new Configuration and validates it.
// The builder is not consumed; calling Build again yields an independent copy.
func (b *LocalBuilder) Build() (*Configuration, error) {
	local := b.local.clone().(*LocalInstance)
	return Validate(newLocalConfiguration(b.common, local))
}

// RemoteBuilder accumulates settings for an already running Hoverfly.
type RemoteBuilder struct {
	common
	scheme        Scheme
	host          string
	remote        RemoteInstance
	httpsEndpoint bool
}

// Remote returns a builder for an externally managed instance.
func Remote() *RemoteBuilder {
	return &RemoteBuilder{}
}

// ProxyPort sets the proxy port. Zero means Hoverfly's default.
func (b *RemoteBuilder) ProxyPort(port int) *RemoteBuilder {
	b.proxyPort = port
	return b
}

// AdminPort sets the admin port. Zero means Hoverfly's default.
func (b *RemoteBuilder) AdminPort(port int) *RemoteBuilder {
	b.adminPort = port
	return b
}

// ProxyLocalHost makes Hoverfly intercept traffic to loopback addresses.
func (b *RemoteBuilder) ProxyLocalHost(enabled bool) *RemoteBuilder {
	b.proxyLocalHost = enabled
	return b
}

// Destination restricts the hosts that are proxied. It is a regular expression.
func (b *RemoteBuilder) Destination(destination string) *RemoteBuilder {
	b.destination = destination
	return b
}

// ProxyCACert sets the CA certificate clients use to trust the proxy.
func (b *RemoteBuilder) ProxyCACert(path string) *RemoteBuilder {
	b.proxyCACert = path
	return b
}

// CaptureHeaders sets the request headers recorded in capture mode.
func (b *RemoteBuilder) CaptureHeaders(headers ...string) *RemoteBuilder {
	b.captureHeaders = slices.Clone(headers)
	return b
}

// CaptureAllHeaders records every request header in capture mode.
func (b *RemoteBuilder) CaptureAllHeaders() *RemoteBuilder {
	return b.CaptureHeaders(CaptureAllHeaders)
}

// UpstreamProxy chains Hoverfly through another proxy ("host:port" or a URL).
func (b *RemoteBuilder) UpstreamProxy(addr string) *RemoteBuilder {
	b.upstreamProxy = addr
	return b
}

// UpstreamProxyAddr is UpstreamProxy for a separate host and port.
func (b *RemoteBuilder) UpstreamProxyAddr(host string, port int) *RemoteBuilder {
	return b.UpstreamProxy(upstreamAddr(host, port))
}

// WebServer marks the remote instance as running in webserver mode.
func (b *RemoteBuilder) WebServer() *RemoteBuilder {
	b.webServer = true
	return b
}

// Scheme sets the admin API scheme. An empty scheme keeps the current value.
func (b *RemoteBuilder) Scheme(scheme Scheme) *RemoteBuilder {
	if scheme != "" {
		b.scheme = scheme
	}
	return b
}

// Host sets the admin API host. An empty host keeps the current value.
func (b *RemoteBuilder) Host(host string) *RemoteBuilder {
	if host != "" {
		b.host = host
	}
	return b
}

// AuthToken sets the bearer token for the admin API.
func (b *RemoteBuilder) AuthToken(token string) *RemoteBuilder {
	b.remote.AuthToken = &token
	return b
}

// WithAuthHeader reads the admin API token from HOVERFLY_AUTH_TOKEN.
// Nothing is set when the variable is empty.
func (b *RemoteBuilder) WithAuthHeader() *RemoteBuilder {
	if token := os.Getenv(EnvAuthToken); token != "" {
		b.AuthToken(token)
	}
	return b
}

// AdminCertificate sets a PEM certificate to trust on the admin API.
func (b *RemoteBuilder) AdminCertificate(path string) *RemoteBuilder {
	b.remote.AdminCertificate = path
	return b
}

// WithHTTPSAdminEndpoint talks to the admin API over HTTPS, on port 443
// unless AdminPort is set.
func (b *RemoteBuilder) WithHTTPSAdminEndpoint() *RemoteBuilder {
	b.httpsEndpoint = true
	return b
}

// Build copies the accumulated settings into a new Configuration and validates it.
// The builder is not consumed; calling Build again yields an independent copy.
func (b *RemoteBuilder) Build() (*Configuration, error) {
	c := b.common
	scheme := b.scheme
	if b.httpsEndpoint {
		scheme = SchemeHTTPS
		if c.adminPort == 0 {
			c.adminPort = HTTPSAdminPort
		}
	}
	remote := b.remote.clone().(*RemoteInstance)
	return Validate(newRemoteConfiguration(c, scheme, b.host, remote))
}
