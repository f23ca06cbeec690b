// Package hoverflytest runs Hoverfly from Go tests.
//
// A test describes the instance it needs with a config.Configuration and
// hands it to Start. Local configurations launch the hoverfly binary on free
// ports; remote configurations attach to an instance that is already running.
// Either way Start waits for the admin API to report healthy, pushes the
// destination filter, and registers cleanup with the test.
//
// # Local Instances
//
//	func TestCheckout(t *testing.T) {
//	    hoverflytest.RequireBinary(t, "")
//
//	    cfg, err := config.Local().Destination("payments.example.com").Build()
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    hf := hoverflytest.Start(t, cfg, hoverflytest.WithMode(adminclient.ModeSimulate))
//
//	    client := hf.HTTPClient() // routes requests through the proxy
//	    // ...
//	}
//
// # Remote Instances
//
//	cfg, err := config.Remote().Host("hoverfly.ci.internal").WithAuthHeader().Build()
//	if err != nil {
//	    t.Fatal(err)
//	}
//	hf := hoverflytest.Start(t, cfg)
//
// Stop is never required: the instance is stopped when the test finishes.
// Remote instances are left running; only the connection is released.
//
// # Assertions
//
//	hf.AssertHealthy(t)
//	hf.AssertMode(t, adminclient.ModeCapture)
//	hf.AssertDestination(t, "payments.example.com")
package hoverflytest
