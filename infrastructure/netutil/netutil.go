package netutil

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

// GetPublicIP asks a well-known echo service for this host's externally
// visible IPv4 address, the way original_source's get_public_ip does via
// an HTTP round trip rather than interface inspection (NAT makes local
// addresses unreliable for this purpose).
func GetPublicIP(ctx context.Context) (net.IP, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.ipify.org", nil)
	if err != nil {
		return nil, fmt.Errorf("netutil: build public IP request: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("netutil: fetch public IP: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64))
	if err != nil {
		return nil, fmt.Errorf("netutil: read public IP response: %w", err)
	}

	ip := net.ParseIP(strings.TrimSpace(string(body)))
	if ip == nil {
		return nil, fmt.Errorf("netutil: malformed public IP response %q", body)
	}
	return ip, nil
}

// IsRoot reports whether the process is running with root/administrator
// privileges, required for TUN creation and route/sysctl mutation.
func IsRoot() bool {
	return os.Geteuid() == 0
}
