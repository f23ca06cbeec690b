package launcher

import (
	"fmt"
	"net"
)

// Ports are the concrete listener ports handed to hoverfly.
type Ports struct {
	Proxy int
	Admin int
}

// FreePort asks the kernel for an unused TCP port on localhost.
func FreePort() (int, error) {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find a free port: %w", err)
	}
	defer func() { _ = ln.Close() }()
	return ln.Addr().(*net.TCPAddr).Port, nil
}

// Check returns an error if port cannot be bound.
func Check(port int) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return err
	}
	_ = ln.Close()
	return nil
}

// resolve fills zero ports with free ones that differ from each other.
// Ports that were set explicitly are kept, but may not be the same.
func resolve(p Ports) (Ports, error) {
	if p.Proxy != 0 && p.Proxy == p.Admin {
		return Ports{}, fmt.Errorf("proxy and admin port are both %d", p.Proxy)
	}
	var err error
	for p.Proxy == 0 || p.Proxy == p.Admin {
		if p.Proxy, err = FreePort(); err != nil {
			return Ports{}, err
		}
	}
	for p.Admin == 0 || p.Admin == p.Proxy {
		if p.Admin, err = FreePort(); err != nil {
			return Ports{}, err
		}
	}
	return p, nil
}
