package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getmockd/hoverfly-go/pkg/adminclient"
	"github.com/getmockd/hoverfly-go/pkg/launcher"
	"github.com/getmockd/hoverfly-go/pkg/logging"
	"github.com/spf13/cobra"
)

var (
	runMode         string
	runStartTimeout time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start a local hoverfly and keep it running until interrupted",
	Long: `Start the hoverfly binary of a local configuration, wait until its admin API
is healthy, optionally switch its mode, and keep it running until Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, err := launcher.New(cfg,
			launcher.WithLogger(logger),
			launcher.WithDefaultLogLevel(logging.HoverflyLevel(harnessLevel())),
		)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		proc := l.Command(ctx)
		proc.Stdout = cmd.ErrOrStderr()
		proc.Stderr = cmd.ErrOrStderr()
		if err := proc.Start(); err != nil {
			return fmt.Errorf("failed to start %s: %w", l.Binary(), err)
		}

		exited := make(chan error, 1)
		go func() { exited <- proc.Wait() }()
		kill := func() {
			_ = proc.Process.Kill()
			<-exited
		}

		client, err := adminclient.New(cfg,
			adminclient.WithBaseURL(l.AdminURL()),
			adminclient.WithTimeout(clientTimeout),
			adminclient.WithLogger(logger),
		)
		if err != nil {
			kill()
			return err
		}

		if gone, err := waitStarted(ctx, client, exited); err != nil {
			if !gone {
				kill()
			}
			return err
		}

		if runMode != "" {
			if _, err := client.SetMode(ctx, runMode); err != nil {
				kill()
				return fmt.Errorf("failed to set mode: %w", err)
			}
		}

		logger.Info("hoverfly running",
			"proxy", l.ProxyAddress(),
			"admin", l.AdminURL(),
			"pid", proc.Process.Pid,
		)
		fmt.Fprintf(cmd.OutOrStdout(), "proxy: %s\nadmin: %s\n", l.ProxyAddress(), l.AdminURL())

		err = <-exited
		if ctx.Err() != nil {
			logger.Info("hoverfly stopped")
			return nil
		}
		return fmt.Errorf("hoverfly exited: %w", err)
	},
}

// waitStarted waits for the admin API to come up, failing early if the
// process exits first. gone reports whether exited was consumed.
func waitStarted(ctx context.Context, client *adminclient.Client, exited <-chan error) (gone bool, err error) {
	ctx, cancel := context.WithTimeout(ctx, runStartTimeout)
	defer cancel()

	healthy := make(chan error, 1)
	go func() { healthy <- client.WaitHealthy(ctx, 100*time.Millisecond) }()

	select {
	case err := <-healthy:
		if err != nil {
			return false, fmt.Errorf("hoverfly did not become healthy: %w", err)
		}
		return false, nil
	case err := <-exited:
		cancel()
		<-healthy
		if err == nil {
			err = errors.New("exit status 0")
		}
		return true, fmt.Errorf("hoverfly exited during startup: %w", err)
	}
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "", "Mode to switch to once hoverfly is up")
	runCmd.Flags().DurationVar(&runStartTimeout, "start-timeout", 30*time.Second, "How long to wait for the admin API")
	rootCmd.AddCommand(runCmd)
}
