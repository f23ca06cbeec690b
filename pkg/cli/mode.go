package cli

import (
	"fmt"
	"strings"

	"github.com/getmockd/hoverfly-go/pkg/adminclient"
	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:   "mode [simulate|capture|spy|synthesize|modify|diff]",
	Short: "Show or change the mode of the configured hoverfly instance",
	Long: `Show the current mode, or switch to the given one.

Capture and spy modes record the captureHeaders of the configuration.`,
	Args: cobra.MaximumNArgs(1),
	ValidArgs: []string{
		adminclient.ModeSimulate,
		adminclient.ModeCapture,
		adminclient.ModeSpy,
		adminclient.ModeSynthesize,
		adminclient.ModeModify,
		adminclient.ModeDiff,
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newAdminClient(cfg)
		if err != nil {
			return err
		}

		var view *adminclient.ModeView
		if len(args) == 0 {
			view, err = client.Mode(cmd.Context())
		} else {
			view, err = client.SetMode(cmd.Context(), strings.ToLower(args[0]))
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, view)
		}
		_, err = fmt.Fprintln(out, view.Mode)
		return err
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Push the destination filter of the configuration to a running instance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client, err := newAdminClient(cfg)
		if err != nil {
			return err
		}
		if err := client.ApplyConfiguration(cmd.Context()); err != nil {
			return err
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "applied to %s\n", client.BaseURL())
		return err
	},
}

func init() {
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(applyCmd)
}
