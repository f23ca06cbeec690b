package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/getmockd/hoverfly-go/pkg/logging"
	"github.com/go-playground/validator/v10"
)

// fieldRules is the per-field view of a Configuration checked through struct tags.
type fieldRules struct {
	Scheme         Scheme   `yaml:"scheme" validate:"oneof=http https"`
	Host           string   `yaml:"host" validate:"notblank"`
	ProxyPort      int      `yaml:"proxyPort" validate:"gte=0,lte=65535"`
	AdminPort      int      `yaml:"adminPort" validate:"gte=0,lte=65535"`
	CaptureHeaders []string `yaml:"captureHeaders" validate:"dive,notblank"`
}

var validate = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return isNotBlank(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validator checks a Configuration and fills in defaults.
type Validator struct {
	log *slog.Logger
}

// NewValidator creates a Validator. A nil logger discards output.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Validator{log: logger}
}

var defaultValidator = NewValidator(nil)

// Validate checks cfg with a validator that does not log.
func Validate(cfg *Configuration) (*Configuration, error) {
	return defaultValidator.Validate(cfg)
}

// Validate normalizes defaults on cfg and checks its cross-field rules.
// It returns cfg itself on success. Validating an already valid configuration
// again changes nothing.
func (v *Validator) Validate(cfg *Configuration) (*Configuration, error) {
	if cfg == nil {
		return nil, ErrNilConfiguration
	}
	if cfg.instance == nil || reflect.ValueOf(cfg.instance).IsNil() {
		return nil, &ValidationError{Field: "mode", Message: "configuration must be either local or remote"}
	}

	if cfg.scheme == "" {
		cfg.scheme = SchemeHTTP
	}
	if cfg.host == "" {
		cfg.host = DefaultHost
	}

	if err := structErr(validate.Struct(fieldRules{
		Scheme:         cfg.scheme,
		Host:           cfg.host,
		ProxyPort:      cfg.proxyPort,
		AdminPort:      cfg.adminPort,
		CaptureHeaders: cfg.captureHeaders,
	})); err != nil {
		return nil, err
	}

	if cfg.destination != "" {
		if _, err := regexp.Compile(cfg.destination); err != nil {
			return nil, &ValidationError{Field: "destination", Message: "invalid regex pattern: " + err.Error()}
		}
	}
	if cfg.upstreamProxy != "" {
		if err := validateUpstreamProxy(cfg.upstreamProxy); err != nil {
			return nil, err
		}
	}

	switch inst := cfg.instance.(type) {
	case *LocalInstance:
		if err := v.validateLocal(inst); err != nil {
			return nil, err
		}
	case *RemoteInstance:
		v.normalizeRemote(cfg)
	default:
		return nil, &ValidationError{Field: "mode", Message: fmt.Sprintf("unsupported instance type %T", inst)}
	}

	return cfg, nil
}

func (v *Validator) validateLocal(l *LocalInstance) error {
	certSet := isNotBlank(l.SSLCertificatePath)
	keySet := isNotBlank(l.SSLKeyPath)
	if certSet != keySet {
		field := "sslKeyPath"
		if !certSet {
			field = "sslCertificatePath"
		}
		return &ValidationError{
			Field:   field,
			Message: "both SSL key and certificate files are required to override the default Hoverfly SSL",
		}
	}

	if err := structErr(validate.Struct(l)); err != nil {
		return err
	}

	// Half-specified middleware stays in place but is reported as disabled.
	if mw := l.Middleware; mw != nil && !mw.Enabled() && (isNotBlank(mw.Binary) || isNotBlank(mw.Path)) {
		v.log.Warn("middleware is partially configured and will not be used",
			"binary", mw.Binary,
			"path", mw.Path,
		)
	}
	return nil
}

func (v *Validator) normalizeRemote(cfg *Configuration) {
	if cfg.proxyPort == 0 {
		cfg.proxyPort = DefaultRemoteProxyPort
	}
	if cfg.adminPort == 0 {
		cfg.adminPort = DefaultRemoteAdminPort
	}
	v.log.Debug("using remote hoverfly", "admin", cfg.AdminURL(), "proxy", cfg.ProxyAddress())
}

func validateUpstreamProxy(addr string) error {
	host, port := "", ""
	if strings.Contains(addr, "://") {
		u, err := url.Parse(addr)
		if err != nil {
			return &ValidationError{Field: "upstreamProxy", Message: "invalid URL: " + err.Error()}
		}
		host, port = u.Hostname(), u.Port()
		if host != "" && port == "" {
			return nil
		}
	} else {
		var err error
		host, port, err = net.SplitHostPort(addr)
		if err != nil {
			return &ValidationError{Field: "upstreamProxy", Message: "must be host:port or a URL"}
		}
	}
	if host == "" {
		return &ValidationError{Field: "upstreamProxy", Message: "host is required"}
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return &ValidationError{Field: "upstreamProxy", Message: "port must be between 1 and 65535"}
	}
	return nil
}

// structErr converts the first struct-tag failure into a *ValidationError.
func structErr(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	e := fieldErrs[0]
	return &ValidationError{Field: e.Field(), Message: fieldMessage(e)}
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "notblank":
		return "must not be blank"
	case "gte":
		return "must be at least " + e.Param()
	case "lte":
		return "must be at most " + e.Param()
	case "oneof":
		return fmt.Sprintf("invalid value %v (must be one of: %s)", e.Value(), e.Param())
	default:
		return "is invalid"
	}
}
