package cli

import (
	"errors"
	"time"

	"github.com/getmockd/hoverfly-go/pkg/adminclient"
	"github.com/getmockd/hoverfly-go/pkg/config"
)

var clientTimeout time.Duration

// errNoAdminPort is returned for local configurations whose admin port is
// only chosen at launch.
var errNoAdminPort = errors.New("local configuration has no adminPort; set one or use 'run'")

// newAdminClient creates an admin client for the instance cfg describes.
func newAdminClient(cfg *config.Configuration) (*adminclient.Client, error) {
	if !cfg.IsRemoteInstance() && cfg.AdminPort() == 0 {
		return nil, errNoAdminPort
	}
	return adminclient.New(cfg,
		adminclient.WithTimeout(clientTimeout),
		adminclient.WithLogger(logger),
	)
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&clientTimeout, "timeout", 30*time.Second, "Admin API request timeout")
}
