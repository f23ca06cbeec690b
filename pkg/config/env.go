package config

import (
	"os"
	"strconv"
)

// Environment variable names. Values present in the environment override the
// configuration file.
const (
	EnvProxyPort     = "HOVERFLY_PROXY_PORT"
	EnvAdminPort     = "HOVERFLY_ADMIN_PORT"
	EnvHost          = "HOVERFLY_HOST"
	EnvDestination   = "HOVERFLY_DESTINATION"
	EnvUpstreamProxy = "HOVERFLY_UPSTREAM_PROXY"
	// EnvAuthToken (HOVERFLY_AUTH_TOKEN) is declared with the remote builder.
)

// applyEnv copies HOVERFLY_* variables onto f. Host and auth token only apply
// to remote instances. Unparseable ports are ignored.
func applyEnv(f *fileConfig, mode Mode) {
	if v := os.Getenv(EnvProxyPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			f.ProxyPort = &port
		}
	}

	if v := os.Getenv(EnvAdminPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			f.AdminPort = &port
		}
	}

	if v := os.Getenv(EnvDestination); v != "" {
		f.Destination = &v
	}

	if v := os.Getenv(EnvUpstreamProxy); v != "" {
		f.UpstreamProxy = &v
	}

	if mode != ModeRemote {
		return
	}

	if v := os.Getenv(EnvHost); v != "" {
		f.Host = &v
	}

	if v := os.Getenv(EnvAuthToken); v != "" {
		f.AuthToken = &v
	}
}
