package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/getmockd/hoverfly-go/pkg/config"
	"github.com/getmockd/hoverfly-go/pkg/logging"
	"github.com/spf13/cobra"
)

// EnvConfigFile names the configuration file used when -f is not given.
const EnvConfigFile = "HOVERFLY_CONFIG"

var (
	// Persistent flags available to all subcommands
	configPath string
	logLevel   string
	logFormat  string
	jsonOutput bool

	// logger is built from the log flags before any subcommand runs.
	logger = logging.Nop()

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hoverfly-config",
	Short: "Validate Hoverfly configurations and launch or query Hoverfly instances",
	Long: `hoverfly-config loads a Hoverfly test harness configuration from YAML,
validates it, and uses it to build the hoverfly command line or to talk to a
running instance's admin API.

Values from the file can be overridden with HOVERFLY_PROXY_PORT,
HOVERFLY_ADMIN_PORT, HOVERFLY_DESTINATION, HOVERFLY_UPSTREAM_PROXY and, for
remote instances, HOVERFLY_HOST and HOVERFLY_AUTH_TOKEN.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = logging.New(logging.Config{
			Level:  logging.ParseLevel(logLevel),
			Format: logging.ParseFormat(logFormat),
			Output: cmd.ErrOrStderr(),
		})
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", os.Getenv(EnvConfigFile), "Hoverfly configuration file (env: "+EnvConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}

// loadConfig loads and validates the configuration named by --config.
// It validates a second time with the CLI logger so that warnings are shown.
func loadConfig() (*config.Configuration, error) {
	if configPath == "" {
		return nil, fmt.Errorf("no configuration file given (use -f or set %s)", EnvConfigFile)
	}
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, err
	}
	if _, err := config.NewValidator(logger).Validate(cfg); err != nil {
		return nil, err
	}
	logger.Debug("configuration loaded", "path", configPath, "config", cfg.String())
	return cfg, nil
}

// harnessLevel returns the level selected by --log-level.
func harnessLevel() slog.Level {
	return logging.ParseLevel(logLevel)
}
