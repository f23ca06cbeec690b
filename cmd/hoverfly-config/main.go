// hoverfly-config CLI - validate Hoverfly configurations and drive instances
package main

import (
	"github.com/getmockd/hoverfly-go/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	cli.Execute()
}
