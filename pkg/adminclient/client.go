package adminclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/getmockd/hoverfly-go/pkg/config"
	"github.com/getmockd/hoverfly-go/pkg/logging"
)

// Client talks to the admin API of the Hoverfly instance a Configuration describes.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string // optional auth token
	cfg        *config.Configuration
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHTTPClient uses a copy of hc. Later options such as WithTimeout change
// the copy, never hc itself. The admin certificate of the configuration is
// not applied to a replaced client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			copied := *hc
			c.httpClient = &copied
		}
	}
}

// WithBaseURL overrides the admin URL taken from the configuration, for
// local instances whose ports were chosen at launch.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.log = logger
		}
	}
}

// New creates an admin client for cfg. The base URL is cfg.AdminURL(); the
// auth token and admin certificate of a remote configuration are applied.
func New(cfg *config.Configuration, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, config.ErrNilConfiguration
	}

	c := &Client{
		baseURL: cfg.AdminURL(),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cfg: cfg,
		log: logging.Nop(),
	}
	if token, ok := cfg.AuthToken(); ok {
		c.token = token
	}
	if certPath, ok := cfg.AdminCertificate(); ok {
		tlsCfg, err := TrustCertificate(certPath)
		if err != nil {
			return nil, err
		}
		c.httpClient.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: tlsCfg,
		}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TrustCertificate returns a TLS config whose roots are the system pool plus
// the PEM certificates at path.
func TrustCertificate(path string) (*tls.Config, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("certificate %s contains no PEM certificates", path)
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// BaseURL returns the admin API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks if Hoverfly is healthy.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.get(ctx, "/api/health")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("hoverfly unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

// WaitHealthy polls Health every interval until it succeeds or ctx is done.
func (c *Client) WaitHealthy(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		err := c.Health(ctx)
		if err == nil {
			return nil
		}
		c.log.Debug("waiting for hoverfly", "admin", c.baseURL, "error", err)

		select {
		case <-ctx.Done():
			return errors.Join(ctx.Err(), err)
		case <-ticker.C:
		}
	}
}

// Info returns the state of the instance.
func (c *Client) Info(ctx context.Context) (*InfoView, error) {
	var info InfoView
	if err := c.getJSON(ctx, "/api/v2/hoverfly", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Mode returns the current mode.
func (c *Client) Mode(ctx context.Context) (*ModeView, error) {
	var mode ModeView
	if err := c.getJSON(ctx, "/api/v2/hoverfly/mode", &mode); err != nil {
		return nil, err
	}
	return &mode, nil
}

// SetMode switches the mode. Capture and spy modes record the configured
// capture headers.
func (c *Client) SetMode(ctx context.Context, mode string) (*ModeView, error) {
	req := ModeView{Mode: mode}
	if mode == ModeCapture || mode == ModeSpy {
		req.Arguments.HeadersWhitelist = c.cfg.CaptureHeaders()
	}

	var result ModeView
	if err := c.putJSON(ctx, "/api/v2/hoverfly/mode", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Destination returns the destination filter.
func (c *Client) Destination(ctx context.Context) (string, error) {
	var dest DestinationView
	if err := c.getJSON(ctx, "/api/v2/hoverfly/destination", &dest); err != nil {
		return "", err
	}
	return dest.Destination, nil
}

// SetDestination replaces the destination filter.
func (c *Client) SetDestination(ctx context.Context, destination string) error {
	return c.putJSON(ctx, "/api/v2/hoverfly/destination", DestinationView{Destination: destination}, nil)
}

// ApplyConfiguration pushes the runtime settings of the configuration that
// the admin API can change: currently the destination filter.
func (c *Client) ApplyConfiguration(ctx context.Context) error {
	dest := c.cfg.Destination()
	if dest == "" {
		return nil
	}
	if err := c.SetDestination(ctx, dest); err != nil {
		return fmt.Errorf("failed to set destination: %w", err)
	}
	c.log.Info("hoverfly configured", "admin", c.baseURL, "destination", dest)
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) putJSON(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.put(ctx, path, body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) put(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return c.httpClient.Do(req)
}

func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	var errResp ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return fmt.Errorf("hoverfly: %s (status %d)", errResp.Error, resp.StatusCode)
	}
	return fmt.Errorf("request failed: status %d", resp.StatusCode)
}
