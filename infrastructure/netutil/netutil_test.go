package netutil

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestIsRootMatchesEuid(t *testing.T) {
	want := os.Geteuid() == 0
	if got := IsRoot(); got != want {
		t.Fatalf("IsRoot() = %v, want %v", got, want)
	}
}

func TestGetPublicIP(t *testing.T) {
	if os.Getenv("NETWORK_TESTS") == "" {
		t.Skip("set NETWORK_TESTS=1 to run tests that reach the network")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	ip, err := GetPublicIP(ctx)
	if err != nil {
		t.Fatalf("GetPublicIP: %v", err)
	}
	if ip == nil {
		t.Fatal("expected a non-nil IP")
	}
}
