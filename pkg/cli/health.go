package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var healthWait time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check if the configured hoverfly instance is healthy and reachable",
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

		type healthResult struct {
			Status   string `json:"status"`
			AdminURL string `json:"adminUrl"`
			Error    string `json:"error,omitempty"`
		}

		ctx := cmd.Context()
		if healthWait > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, healthWait)
			defer cancel()
			err = client.WaitHealthy(ctx, 250*time.Millisecond)
		} else {
			err = client.Health(ctx)
		}

		out := cmd.OutOrStdout()
		if err != nil {
			if jsonOutput {
				_ = printJSON(out, healthResult{Status: "unhealthy", AdminURL: client.BaseURL(), Error: err.Error()})
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "unhealthy: %v\n", err)
			}
			return errors.New("hoverfly is not healthy")
		}

		if jsonOutput {
			return printJSON(out, healthResult{Status: "healthy", AdminURL: client.BaseURL()})
		}
		_, err = fmt.Fprintln(out, "healthy")
		return err
	},
}

func init() {
	healthCmd.Flags().DurationVar(&healthWait, "wait", 0, "Keep polling until healthy or this much time has passed")
	rootCmd.AddCommand(healthCmd)
}
