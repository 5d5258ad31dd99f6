// Package tun provides the layer-3 TUN device abstraction described in
// spec §4.A: a uniform Create/BringUp/Read/Write surface over two distinct
// OS personalities — Linux's /dev/net/tun ioctl interface and the
// BSD/Darwin utun control-socket interface.
//
// Grounded on original_source/src/device.rs (both personalities, in the
// same file behind #[cfg(target_os)]) and on the teacher's split PAL
// layout (infrastructure/PAL/linux/ip/tun_linux.go for the ioctl path,
// infrastructure/PAL/darwin/utun/utun.go for the control-socket path).
package tun

import "fmt"

// MTU is the fixed tunnel MTU: small enough that a sealed UDP datagram
// carrying one inner frame still fits a typical 1500-byte Ethernet path.
const MTU = 1380

// bufSize is the minimum read/write buffer size mandated by spec §4.A.
const bufSize = 1600

// Device is the uniform TUN handle exposed to the rest of the engine,
// matching application.TunDevice.
type Device interface {
	Name() string
	Read(buf []byte) (int, error)
	Write(buf []byte) (int, error)
	Close() error
	// Fd exposes the underlying file descriptor so the event loop can
	// register it with the OS readiness multiplexer alongside the UDP
	// socket (spec §4.E).
	Fd() int
}

// CreateAvailable tries successive seed ids until Create succeeds, so a
// leftover "tun0" from a previous run doesn't prevent startup. Mirrors
// original_source/src/device.rs's create_tun_attempt, which recurses from
// seed 0 and panics once it reaches 255.
func CreateAvailable() (Device, error) {
	var lastErr error
	for seed := 0; seed < 255; seed++ {
		dev, err := Create(uint8(seed))
		if err == nil {
			return dev, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("tun: unable to create TUN device after 255 attempts: %w", lastErr)
}
