//go:build linux

package netutil

import (
	"fmt"
	"os/exec"

	"golang.org/x/sync/errgroup"
)

// DefaultGateway is a scoped resource (spec §6 "Scoped resources"):
// constructing it with replace=true installs a host route to remoteIP via
// the pre-existing default gateway, then replaces the default route with
// tunnelGW; Close reverts both. With replace=false it does nothing in
// either direction, matching original_source's DefaultGateway::create.
type DefaultGateway struct {
	remoteIP string
	priorDev string
	replaced bool
}

// NewDefaultGateway installs the routes described above when replace is
// true. The caller must defer Close to restore the host's prior routing
// on both graceful shutdown and fatal error paths.
func NewDefaultGateway(tunnelGW, remoteIP string, replace bool) (*DefaultGateway, error) {
	gw := &DefaultGateway{remoteIP: remoteIP}
	if !replace {
		return gw, nil
	}

	priorDev := defaultRouteDevice()
	if priorDev == "" {
		return nil, fmt.Errorf("netutil: no existing default route to preserve")
	}
	if err := run("ip", "route", "add", remoteIP, "dev", priorDev); err != nil {
		return nil, fmt.Errorf("netutil: pin route to %s via %s: %w", remoteIP, priorDev, err)
	}
	if err := run("ip", "route", "replace", "default", "via", tunnelGW); err != nil {
		_ = run("ip", "route", "del", remoteIP)
		return nil, fmt.Errorf("netutil: replace default route with %s: %w", tunnelGW, err)
	}

	gw.priorDev = priorDev
	gw.replaced = true
	return gw, nil
}

// Close reverts both routes concurrently; partial failure on one leg
// doesn't prevent the other from being attempted.
func (g *DefaultGateway) Close() error {
	if !g.replaced {
		return nil
	}
	var eg errgroup.Group
	eg.Go(func() error { return run("ip", "route", "del", g.remoteIP) })
	eg.Go(func() error { return run("ip", "route", "add", "default", "dev", g.priorDev) })
	return eg.Wait()
}

func run(name string, args ...string) error {
	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %v: %w: %s", name, args, err, out)
	}
	return nil
}
