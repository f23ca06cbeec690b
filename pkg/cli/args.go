package cli

import (
	"fmt"
	"strings"

	"github.com/getmockd/hoverfly-go/pkg/launcher"
	"github.com/getmockd/hoverfly-go/pkg/logging"
	"github.com/spf13/cobra"
)

var argsCmd = &cobra.Command{
	Use:   "args",
	Short: "Print the hoverfly command line for a local configuration",
	Long: `Print the hoverfly command line for a local configuration.

Ports left at 0 are replaced by free ports. When the configuration has no
logLevel, hoverfly gets the level selected with --log-level.`,
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

		out := cmd.OutOrStdout()
		if jsonOutput {
			return printJSON(out, struct {
				Binary string   `json:"binary"`
				Args   []string `json:"args"`
			}{l.Binary(), l.Args()})
		}
		_, err = fmt.Fprintln(out, l.Binary()+" "+strings.Join(quoteArgs(l.Args()), " "))
		return err
	},
}

// quoteArgs single-quotes arguments that a shell would split or expand.
func quoteArgs(args []string) []string {
	quoted := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\n'\"\\$*?[]{}()|&;<>`!#~") {
			a = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
		}
		quoted[i] = a
	}
	return quoted
}

func init() {
	rootCmd.AddCommand(argsCmd)
}
