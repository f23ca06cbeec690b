package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var showResolved bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a Hoverfly configuration file",
	Long: `Validate a Hoverfly configuration file without starting anything.

This command checks:
  - YAML syntax and unknown keys
  - Keys that do not apply to the chosen mode (local or remote)
  - Port ranges, scheme, host and capture headers
  - SSL certificate and key given together
  - Destination regular expression and upstream proxy address

Partially configured middleware is accepted but reported with a warning.`,
	Example: `  # Validate a file
  hoverfly-config validate -f hoverfly.yaml

  # Print the configuration after defaults and environment overrides
  hoverfly-config validate -f hoverfly.yaml --show-resolved`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if showResolved {
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}
			_, err = out.Write(data)
			return err
		}
		if jsonOutput {
			return printJSON(out, struct {
				Valid  bool   `json:"valid"`
				Path   string `json:"path"`
				Mode   string `json:"mode"`
				Config string `json:"config"`
			}{true, configPath, string(cfg.Mode()), cfg.String()})
		}
		_, err = fmt.Fprintf(out, "valid: %s\n", cfg)
		return err
	},
}

func init() {
	validateCmd.Flags().BoolVar(&showResolved, "show-resolved", false, "Print the resolved configuration as YAML")
	rootCmd.AddCommand(validateCmd)
}
