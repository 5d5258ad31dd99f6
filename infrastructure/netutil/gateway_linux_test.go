//go:build linux

package netutil

import "testing"

func TestNewDefaultGatewayNoopWhenNotReplacing(t *testing.T) {
	gw, err := NewDefaultGateway("10.10.10.1", "203.0.113.1", false)
	if err != nil {
		t.Fatalf("NewDefaultGateway: %v", err)
	}
	if gw.replaced {
		t.Fatal("expected replaced=false when replace=false")
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("Close on no-op gateway should be a no-op: %v", err)
	}
}

func TestNewDefaultGatewayReplacesAndReverts(t *testing.T) {
	if !IsRoot() {
		t.Skip("route mutation requires root")
	}
	if defaultRouteDevice() == "" {
		t.Skip("no default route present in this environment")
	}
	gw, err := NewDefaultGateway("10.10.10.1", "203.0.113.1", true)
	if err != nil {
		t.Skipf("route mutation unavailable: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
