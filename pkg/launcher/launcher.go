package launcher

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os/exec"
	"strconv"

	"github.com/getmockd/hoverfly-go/pkg/config"
	"github.com/getmockd/hoverfly-go/pkg/logging"
)

// DefaultBinary is used when the configuration has no binary location.
const DefaultBinary = "hoverfly"

// ErrRemoteInstance is returned for configurations of instances this process does not manage.
var ErrRemoteInstance = errors.New("cannot launch a remote hoverfly instance")

// Launcher builds the command line for one local hoverfly instance.
type Launcher struct {
	cfg   *config.Configuration
	local *config.LocalInstance
	ports Ports
	log   *slog.Logger

	defaultLogLevel string
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithLogger sets the logger used to report the resolved command.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		if logger != nil {
			l.log = logger
		}
	}
}

// WithPorts overrides the configured ports. Zero values are still resolved.
func WithPorts(p Ports) Option {
	return func(l *Launcher) {
		l.ports = p
	}
}

// WithDefaultLogLevel sets -log-level when the configuration does not.
// Use logging.HoverflyLevel to derive it from the harness log level.
func WithDefaultLogLevel(level string) Option {
	return func(l *Launcher) {
		l.defaultLogLevel = level
	}
}

// New creates a Launcher for cfg, resolving zero ports to free ones.
func New(cfg *config.Configuration, opts ...Option) (*Launcher, error) {
	if cfg == nil {
		return nil, config.ErrNilConfiguration
	}
	local, ok := cfg.Local()
	if !ok {
		return nil, ErrRemoteInstance
	}

	l := &Launcher{
		cfg:   cfg,
		local: local,
		ports: Ports{Proxy: cfg.ProxyPort(), Admin: cfg.AdminPort()},
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}

	ports, err := resolve(l.ports)
	if err != nil {
		return nil, err
	}
	l.ports = ports
	return l, nil
}

// Ports returns the ports hoverfly will listen on.
func (l *Launcher) Ports() Ports {
	return l.ports
}

// AdminURL returns the admin API base URL of the launched instance.
func (l *Launcher) AdminURL() string {
	return string(config.SchemeHTTP) + "://" + net.JoinHostPort(config.DefaultHost, strconv.Itoa(l.ports.Admin))
}

// ProxyAddress returns the host:port of the launched proxy.
func (l *Launcher) ProxyAddress() string {
	return net.JoinHostPort(config.DefaultHost, strconv.Itoa(l.ports.Proxy))
}

// Binary returns the hoverfly executable.
func (l *Launcher) Binary() string {
	if l.local.BinaryLocation != "" {
		return l.local.BinaryLocation
	}
	return DefaultBinary
}

// Args returns the hoverfly arguments, without the binary.
func (l *Launcher) Args() []string {
	cfg := l.cfg
	args := []string{
		"-pp", strconv.Itoa(l.ports.Proxy),
		"-ap", strconv.Itoa(l.ports.Admin),
	}

	if cfg.WebServer() {
		args = append(args, "-webserver")
	}
	if cert, ok := cfg.SSLCertificatePath(); ok {
		key, _ := cfg.SSLKeyPath()
		args = append(args, "-cert", cert, "-key", key)
	}
	if cfg.TLSVerificationDisabled() {
		args = append(args, "-tls-verification=false")
	}
	if cfg.PlainHTTPTunneling() {
		args = append(args, "-plain-http-tunneling")
	}
	if upstream := cfg.UpstreamProxy(); upstream != "" {
		args = append(args, "-upstream-proxy", upstream)
	}
	if cfg.MiddlewareEnabled() {
		mw, _ := cfg.LocalMiddleware()
		args = append(args, "-middleware", mw.String())
	}
	if dest := cfg.Destination(); dest != "" {
		args = append(args, "-destination", dest)
	}
	if level := l.logLevel(); level != "" {
		args = append(args, "-log-level", level)
	}

	return append(args, l.local.Commands...)
}

func (l *Launcher) logLevel() string {
	if l.local.LogLevel != "" {
		return l.local.LogLevel
	}
	return l.defaultLogLevel
}

// Command returns an unstarted command running hoverfly with Args.
func (l *Launcher) Command(ctx context.Context) *exec.Cmd {
	args := l.Args()
	l.log.Debug("hoverfly command",
		"binary", l.Binary(),
		"args", args,
		"middleware", l.cfg.MiddlewareEnabled(),
	)
	return exec.CommandContext(ctx, l.Binary(), args...)
}
