// Package launcher turns a local Configuration into a hoverfly command line.
//
// It does not supervise the process: callers start the returned *exec.Cmd,
// wait for the admin API to become healthy and stop it when the test ends.
//
//	cfg, _ := config.Local().LocalMiddleware("python", "mw.py").Build()
//	l, err := launcher.New(cfg)
//	if err != nil {
//	    return err
//	}
//	cmd := l.Command(ctx)
//	if err := cmd.Start(); err != nil {
//	    return err
//	}
//
// Zero ports on the configuration are replaced by free ports when the Launcher
// is created; Ports reports the ones that were chosen.
package launcher
