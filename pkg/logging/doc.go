// Package logging builds the *slog.Logger shared by the config validator,
// launcher, admin client, test harness and CLI.
//
//	logger := logging.New(logging.Config{Level: logging.LevelDebug, Format: logging.FormatJSON})
//	logger.Info("hoverfly configured", "admin", cfg.AdminURL())
//
// A zero Config is a usable info-level text logger on stderr. Components take
// a logger through their constructor or an option and fall back to Nop.
//
// HoverflyLevel turns the harness level into Hoverfly's own -log-level value,
// so a debug-level harness also starts Hoverfly at debug.
package logging
