package hoverflytest

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/getmockd/hoverfly-go/pkg/adminclient"
	"github.com/getmockd/hoverfly-go/pkg/config"
	"github.com/getmockd/hoverfly-go/pkg/launcher"
	"github.com/getmockd/hoverfly-go/pkg/logging"
)

// DefaultStartTimeout bounds how long Start waits for the admin API.
const DefaultStartTimeout = 30 * time.Second

// Hoverfly is a running instance bound to a test.
type Hoverfly struct {
	t         testing.TB
	cfg       *config.Configuration
	client    *adminclient.Client
	log       *slog.Logger
	adminURL  string
	proxyAddr string
	proxyTLS  *tls.Config // nil unless the configuration has a proxy CA

	cmd    *exec.Cmd
	cancel context.CancelFunc
	exited chan error

	stopOnce sync.Once
}

type options struct {
	log          *slog.Logger
	startTimeout time.Duration
	mode         string
	ports        launcher.Ports
}

// Option configures Start.
type Option func(*options)

// WithLogger sets the logger for the launcher and the admin client.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.log = logger
		}
	}
}

// WithStartTimeout sets how long Start waits for the admin API.
func WithStartTimeout(d time.Duration) Option {
	return func(o *options) {
		o.startTimeout = d
	}
}

// WithMode switches the instance to mode once it is healthy.
func WithMode(mode string) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithPorts overrides the ports of a local configuration. Zero ports are
// still chosen freely.
func WithPorts(p launcher.Ports) Option {
	return func(o *options) {
		o.ports = p
	}
}

// Start launches or attaches to the instance cfg describes and fails the test
// if it does not become healthy in time.
func Start(t testing.TB, cfg *config.Configuration, opts ...Option) *Hoverfly {
	t.Helper()

	o := options{log: logging.Nop(), startTimeout: DefaultStartTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	h, err := start(cfg, o)
	if err != nil {
		t.Fatalf("failed to start hoverfly: %v", err)
	}
	h.t = t
	t.Cleanup(h.Stop)
	return h
}

func start(cfg *config.Configuration, o options) (*Hoverfly, error) {
	if cfg == nil {
		return nil, config.ErrNilConfiguration
	}
	h := &Hoverfly{cfg: cfg, log: o.log}
	if ca, ok := cfg.ProxyCACertificate(); ok {
		tlsCfg, err := adminclient.TrustCertificate(ca)
		if err != nil {
			return nil, fmt.Errorf("proxy CA: %w", err)
		}
		h.proxyTLS = tlsCfg
	}

	clientOpts := []adminclient.Option{adminclient.WithLogger(o.log)}
	if cfg.IsRemoteInstance() {
		h.adminURL = cfg.AdminURL()
		h.proxyAddr = cfg.ProxyAddress()
	} else {
		if err := h.launch(cfg, o); err != nil {
			return nil, err
		}
		clientOpts = append(clientOpts, adminclient.WithBaseURL(h.adminURL))
	}

	client, err := adminclient.New(cfg, clientOpts...)
	if err != nil {
		h.Stop()
		return nil, err
	}
	h.client = client

	if err := h.waitHealthy(o.startTimeout); err != nil {
		h.Stop()
		return nil, err
	}

	ctx := context.Background()
	if cfg.IsRemoteInstance() {
		// A launched instance already got -destination on its command line.
		if err := client.ApplyConfiguration(ctx); err != nil {
			h.Stop()
			return nil, err
		}
	}
	if o.mode != "" {
		if _, err := client.SetMode(ctx, o.mode); err != nil {
			h.Stop()
			return nil, err
		}
	}

	h.log.Info("hoverfly ready", "admin", h.adminURL, "proxy", h.proxyAddr, "mode", cfg.Mode())
	return h, nil
}

func (h *Hoverfly) launch(cfg *config.Configuration, o options) error {
	launchOpts := []launcher.Option{
		launcher.WithLogger(o.log),
		launcher.WithDefaultLogLevel(logging.HoverflyLevel(logging.LevelWarn)),
	}
	if o.ports != (launcher.Ports{}) {
		launchOpts = append(launchOpts, launcher.WithPorts(o.ports))
	}
	l, err := launcher.New(cfg, launchOpts...)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := l.Command(ctx)
	if err := cmd.Start(); err != nil {
		cancel()
		return err
	}

	h.cmd = cmd
	h.cancel = cancel
	h.exited = make(chan error, 1)
	go func() { h.exited <- cmd.Wait() }()

	h.adminURL = l.AdminURL()
	h.proxyAddr = l.ProxyAddress()
	return nil
}

func (h *Hoverfly) waitHealthy(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if h.exited == nil {
		return h.client.WaitHealthy(ctx, 100*time.Millisecond)
	}

	healthy := make(chan error, 1)
	go func() { healthy <- h.client.WaitHealthy(ctx, 100*time.Millisecond) }()
	select {
	case err := <-healthy:
		return err
	case err := <-h.exited:
		h.exited <- err
		cancel()
		<-healthy
		if err == nil {
			err = errors.New("exit status 0")
		}
		return errors.Join(errors.New("hoverfly exited during startup"), err)
	}
}

// Stop stops a launched instance and waits for it to exit. It is safe to call
// more than once and does nothing for remote instances.
func (h *Hoverfly) Stop() {
	h.stopOnce.Do(func() {
		if h.cmd == nil {
			return
		}
		h.cancel()
		<-h.exited
		h.log.Debug("hoverfly stopped", "admin", h.adminURL)
	})
}

// Config returns the configuration the instance was started with.
func (h *Hoverfly) Config() *config.Configuration {
	return h.cfg
}

// Client returns the admin API client.
func (h *Hoverfly) Client() *adminclient.Client {
	return h.client
}

// AdminURL returns the admin API base URL.
func (h *Hoverfly) AdminURL() string {
	return h.adminURL
}

// ProxyAddress returns the host:port of the proxy.
func (h *Hoverfly) ProxyAddress() string {
	return h.proxyAddr
}

// ProxyURL returns the proxy as a URL usable in http.Transport.Proxy.
func (h *Hoverfly) ProxyURL() *url.URL {
	return &url.URL{Scheme: "http", Host: h.proxyAddr}
}

// HTTPClient returns a client that sends requests through the proxy.
// Requests to loopback hosts go direct unless the configuration sets
// ProxyLocalHost. The proxy CA certificate, when configured, is trusted.
func (h *Hoverfly) HTTPClient() *http.Client {
	transport := &http.Transport{Proxy: h.proxy}
	if h.proxyTLS != nil {
		transport.TLSClientConfig = h.proxyTLS.Clone()
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

func (h *Hoverfly) proxy(req *http.Request) (*url.URL, error) {
	if !h.cfg.ProxyLocalHost() && isLoopback(req.URL.Hostname()) {
		return nil, nil
	}
	return h.ProxyURL(), nil
}

// isLoopback reports whether host is localhost or a loopback address.
func isLoopback(host string) bool {
	host = strings.ToLower(host)
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// SetMode switches the mode and fails the test on error.
func (h *Hoverfly) SetMode(mode string) {
	h.t.Helper()
	if _, err := h.client.SetMode(context.Background(), mode); err != nil {
		h.t.Fatalf("failed to set hoverfly mode %q: %v", mode, err)
	}
}

// RequireBinary skips the test when the hoverfly executable cannot be found.
// An empty binary means launcher.DefaultBinary.
func RequireBinary(t testing.TB, binary string) {
	t.Helper()
	if binary == "" {
		binary = launcher.DefaultBinary
	}
	if _, err := exec.LookPath(binary); err != nil {
		t.Skipf("hoverfly binary %q not found: %v", binary, err)
	}
}
