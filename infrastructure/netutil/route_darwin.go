//go:build darwin

package netutil

import (
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"
)

// SetDNS configures the primary network service's resolver via
// networksetup, the BSD/macOS counterpart to Linux's resolvectl.
func SetDNS(dotted string) error {
	service := primaryNetworkService()
	if service == "" {
		return fmt.Errorf("netutil: could not determine primary network service")
	}
	if err := run("networksetup", "-setdnsservers", service, dotted); err != nil {
		return fmt.Errorf("netutil: set DNS to %s: %w", dotted, err)
	}
	return nil
}

func primaryNetworkService() string {
	out, err := exec.Command("sh", "-c", "networksetup -listnetworkserviceorder | awk -F'Hardware Port: ' '/Hardware Port/{print $2}' | head -1 | cut -d, -f1").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func defaultRouteDevice() string {
	out, err := exec.Command("route", "-n", "get", "default").Output()
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "interface:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "interface:"))
		}
	}
	return ""
}

func defaultGatewayIP() string {
	out, err := exec.Command("route", "-n", "get", "default").Output()
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "gateway:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "gateway:"))
		}
	}
	return ""
}

// EnableIPv4Forwarding turns on net.inet.ip.forwarding, the BSD sysctl
// equivalent of Linux's net.ipv4.ip_forward.
func EnableIPv4Forwarding() error {
	if err := run("sysctl", "-w", "net.inet.ip.forwarding=1"); err != nil {
		return fmt.Errorf("netutil: enable IPv4 forwarding: %w", err)
	}
	return nil
}

// DefaultGateway is the Darwin counterpart of the Linux scoped resource
// of the same name: pins a host route to remoteIP via the pre-existing
// gateway, then repoints the default route at tunnelGW, reverting both
// in Close. A no-op when replace is false.
type DefaultGateway struct {
	remoteIP string
	priorGW  string
	replaced bool
}

func NewDefaultGateway(tunnelGW, remoteIP string, replace bool) (*DefaultGateway, error) {
	gw := &DefaultGateway{remoteIP: remoteIP}
	if !replace {
		return gw, nil
	}

	priorGW := defaultGatewayIP()
	if priorGW == "" {
		return nil, fmt.Errorf("netutil: no existing default gateway to preserve")
	}
	if err := run("route", "add", "-host", remoteIP, priorGW); err != nil {
		return nil, fmt.Errorf("netutil: pin route to %s via %s: %w", remoteIP, priorGW, err)
	}
	if err := run("route", "change", "default", tunnelGW); err != nil {
		_ = run("route", "delete", "-host", remoteIP, priorGW)
		return nil, fmt.Errorf("netutil: change default route to %s: %w", tunnelGW, err)
	}

	gw.priorGW = priorGW
	gw.replaced = true
	return gw, nil
}

func (g *DefaultGateway) Close() error {
	if !g.replaced {
		return nil
	}
	var eg errgroup.Group
	eg.Go(func() error { return run("route", "delete", "-host", g.remoteIP, g.priorGW) })
	eg.Go(func() error { return run("route", "change", "default", g.priorGW) })
	return eg.Wait()
}

func run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %v: %w: %s", name, args, err, out)
	}
	return nil
}
