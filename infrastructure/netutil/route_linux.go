//go:build linux

// Package netutil wraps the handful of host-level network operations the
// engine needs as external collaborators (spec §4's "out of scope"
// list): DNS configuration, default-route takeover, public IP discovery,
// IPv4 forwarding, and a privilege check. Grounded on
// infrastructure/PAL/linux/ip/ip.go's style of one exec.Command per
// concern, and on original_source/src/network.rs's utils::set_dns /
// DefaultGateway / get_public_ip / enable_ipv4_forwarding / is_root.
package netutil

import (
	"fmt"
	"os/exec"
	"strings"
)

// SetDNS points the system resolver at dotted, a dotted-quad IPv4
// literal. Best-effort: callers surface the error at startup only, per
// spec §4's external-collaborator contract.
func SetDNS(dotted string) error {
	out, err := exec.Command("resolvectl", "dns", defaultRouteDevice(), dotted).CombinedOutput()
	if err != nil {
		return fmt.Errorf("netutil: set DNS to %s: %w: %s", dotted, err, out)
	}
	return nil
}

// defaultRouteDevice mirrors ip.RouteDefault: parses `ip route`'s
// "default ... dev <iface>" line for the current egress interface.
func defaultRouteDevice() string {
	out, err := exec.Command("ip", "route").Output()
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.HasPrefix(line, "default") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 5 {
			return fields[4]
		}
	}
	return ""
}

// EnableIPv4Forwarding turns on net.ipv4.ip_forward, required for a
// server to relay packets between tunneled clients.
func EnableIPv4Forwarding() error {
	out, err := exec.Command("sysctl", "-w", "net.ipv4.ip_forward=1").CombinedOutput()
	if err != nil {
		return fmt.Errorf("netutil: enable IPv4 forwarding: %w: %s", err, out)
	}
	return nil
}
