// Package cli provides the hoverfly-config command-line interface.
//
// Commands that act on an instance read a Hoverfly configuration file (-f),
// apply HOVERFLY_* environment overrides and validate it first:
//   - init: create a starter configuration file, interactively on a terminal
//   - validate: check a configuration file and optionally print the result
//   - args: print the hoverfly command line for a local configuration
//   - run: start a local hoverfly and keep it running until interrupted
//   - health: check the admin API of the configured instance
//   - mode: show or change the mode of the configured instance
//   - apply: push the destination filter to a running instance
//   - version: show version information
//
// Usage:
//
//	hoverfly-config init --mode remote --host hoverfly.ci.internal
//	hoverfly-config validate -f hoverfly.yaml --show-resolved
//	hoverfly-config args -f hoverfly.yaml
//	hoverfly-config run -f hoverfly.yaml --mode simulate
//	hoverfly-config health -f remote.yaml --wait 30s
//	hoverfly-config mode -f remote.yaml capture
package cli
