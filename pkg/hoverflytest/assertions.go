package hoverflytest

import (
	"context"
	"testing"
)

// AssertHealthy asserts that the admin API reports healthy.
func (h *Hoverfly) AssertHealthy(t testing.TB) {
	t.Helper()

	if err := h.client.Health(context.Background()); err != nil {
		t.Errorf("hoverfly at %s is not healthy: %v", h.adminURL, err)
	}
}

// AssertMode asserts that the instance is in the expected mode.
func (h *Hoverfly) AssertMode(t testing.TB, expected string) {
	t.Helper()

	mode, err := h.client.Mode(context.Background())
	if err != nil {
		t.Errorf("failed to get hoverfly mode: %v", err)
		return
	}
	if mode.Mode != expected {
		t.Errorf("hoverfly mode does not match\nexpected: %q\nactual: %q", expected, mode.Mode)
	}
}

// AssertDestination asserts the destination filter of the instance.
func (h *Hoverfly) AssertDestination(t testing.TB, expected string) {
	t.Helper()

	dest, err := h.client.Destination(context.Background())
	if err != nil {
		t.Errorf("failed to get hoverfly destination: %v", err)
		return
	}
	if dest != expected {
		t.Errorf("hoverfly destination does not match\nexpected: %q\nactual: %q", expected, dest)
	}
}
