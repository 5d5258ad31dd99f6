//go:build darwin

package tun

import "testing"

func TestCreateAssignsName(t *testing.T) {
	dev, err := Create(250)
	if err != nil {
		t.Skipf("creating a utun device requires elevated privileges: %v", err)
	}
	defer func() { _ = dev.Close() }()

	if dev.Name() == "" {
		t.Fatal("expected a non-empty interface name from the kernel")
	}

	if err := BringUp(dev.Name(), 250); err != nil {
		t.Fatalf("BringUp: %v", err)
	}
}
