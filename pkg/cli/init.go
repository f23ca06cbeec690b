package cli

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/charmbracelet/huh"
	"github.com/getmockd/hoverfly-go/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	initMode        string
	initHost        string
	initDestination string
	initForce       bool
)

// starterDocument is what init writes. Its keys are a subset of those
// config.Load accepts.
type starterDocument struct {
	Mode        string `yaml:"mode"`
	Host        string `yaml:"host,omitempty"`
	ProxyPort   int    `yaml:"proxyPort,omitempty"`
	AdminPort   int    `yaml:"adminPort,omitempty"`
	Destination string `yaml:"destination,omitempty"`
}

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a starter Hoverfly configuration file",
	Long: `Create a starter Hoverfly configuration file (default hoverfly.yaml).

When --mode is not given and stdin is a terminal, the settings are asked for
interactively. The file is validated before it is written.`,
	Example: `  # Ask interactively
  hoverfly-config init

  # Remote instance, no prompts
  hoverfly-config init remote.yaml --mode remote --host hoverfly.ci.internal`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "hoverfly.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if !cmd.Flags().Changed("mode") && isTerminal() {
			if err := runInitForm(); err != nil {
				return err
			}
		}

		data, err := yaml.Marshal(starter(initMode, initHost, initDestination))
		if err != nil {
			return fmt.Errorf("failed to render configuration: %w", err)
		}
		if _, err := config.Load(data, path); err != nil {
			return err
		}

		if !initForce {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		logger.Debug("configuration written", "path", path, "mode", initMode)
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		return err
	},
}

// starter returns the document for mode. Remote documents spell out the
// default host and ports so they are easy to edit.
func starter(mode, host, destination string) starterDocument {
	doc := starterDocument{Mode: mode, Destination: destination}
	if mode == string(config.ModeRemote) {
		doc.Host = host
		if doc.Host == "" {
			doc.Host = config.DefaultHost
		}
		doc.ProxyPort = config.DefaultRemoteProxyPort
		doc.AdminPort = config.DefaultRemoteAdminPort
	}
	return doc
}

func runInitForm() error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where does Hoverfly run?").
				Options(
					huh.NewOption("Started by the tests (local)", string(config.ModeLocal)),
					huh.NewOption("Already running (remote)", string(config.ModeRemote)),
				).
				Value(&initMode),
			huh.NewInput().
				Title("Destination filter (regular expression, empty for all hosts)").
				Placeholder(`api\.example\.com`).
				Value(&initDestination).
				Validate(func(s string) error {
					if _, err := regexp.Compile(s); err != nil {
						return errors.New("not a valid regular expression")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Remote host").
				Placeholder(config.DefaultHost).
				Value(&initHost),
		).WithHideFunc(func() bool { return initMode != string(config.ModeRemote) }),
	)
	return form.Run()
}

// isTerminal checks if stdin is a terminal.
func isTerminal() bool {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

func init() {
	initCmd.Flags().StringVar(&initMode, "mode", string(config.ModeLocal), "Instance mode (local, remote)")
	initCmd.Flags().StringVar(&initHost, "host", "", "Host of a remote instance")
	initCmd.Flags().StringVar(&initDestination, "destination", "", "Destination filter (regular expression)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
	rootCmd.AddCommand(initCmd)
}
