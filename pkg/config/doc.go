// Package config builds and validates the configuration of a Hoverfly instance.
//
// A Configuration describes how to reach and control one Hoverfly instance. The
// instance is either managed locally (spawned by the test harness, optionally
// with custom TLS material and a middleware script) or already running
// somewhere on the network (reached through a host, scheme and auth token).
//
// The two shapes are kept apart by the Instance sum type: a configuration carries
// either a *LocalInstance or a *RemoteInstance, never both, so local-only settings
// cannot leak into a remote configuration.
//
// # Building
//
// Configurations are assembled with a fluent builder and finished by Build, which
// runs the Validator before returning:
//
//	cfg, err := config.Local().
//	    ProxyPort(8500).
//	    Destination("api.example.com").
//	    LocalMiddleware("python", "middleware.py").
//	    Build()
//	if err != nil {
//	    t.Fatal(err)
//	}
//
//	remote, err := config.Remote().
//	    Host("hoverfly.internal").
//	    WithAuthHeader().
//	    Build()
//
// Setters never fail. All checks happen in Build, and a failed Build returns a
// *ValidationError naming the offending field.
//
// # Files and environment
//
// LoadFile reads the same settings from a YAML document and applies HOVERFLY_*
// environment overrides on top:
//
//	mode: local
//	proxyPort: 8500
//	destination: "api\\.example\\.com"
//	middleware:
//	  binary: python
//	  path: middleware.py
//
// # Middleware
//
// Middleware is only active when both the binary and the script path are
// non-blank. A half-specified middleware is not an error; it is treated as
// disabled and the validator logs a warning.
package config
