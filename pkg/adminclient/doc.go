// Package adminclient is an HTTP client for the Hoverfly admin API.
//
// A Client is created from a finished *config.Configuration: the base URL,
// bearer token and trusted admin certificate all come from it.
//
//	client, err := adminclient.New(cfg)
//	if err != nil {
//	    return err
//	}
//	if err := client.WaitHealthy(ctx, 100*time.Millisecond); err != nil {
//	    return err
//	}
//	if _, err := client.SetMode(ctx, adminclient.ModeCapture); err != nil {
//	    return err
//	}
package adminclient
