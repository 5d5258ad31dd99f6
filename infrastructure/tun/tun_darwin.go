//go:build darwin

package tun

import (
	"fmt"
	"os/exec"
	"strconv"

	"golang.org/x/sys/unix"
)

const (
	utunControlName = "com.apple.net.utun_control"
	afHeaderLen     = 4
)

// darwinDevice is personality B: a kernel utun control socket. The kernel
// prepends a 4-byte big-endian address-family tag (2 = IPv4, 10 = IPv6) to
// every frame; this adapter strips it on read and prepends it on write,
// sized by inspecting the IP version nibble of the first payload byte.
type darwinDevice struct {
	fd   int
	name string
}

// Create connects a new utun control socket and assigns it unit seed+1,
// mirroring SocketAddrCtl{sc_unit: seed+1} in the Rust original.
func Create(seed uint8) (Device, error) {
	fd, err := unix.Socket(unix.AF_SYSTEM, unix.SOCK_DGRAM, unix.SYSPROTO_CONTROL)
	if err != nil {
		return nil, fmt.Errorf("tun: socket(AF_SYSTEM): %w", err)
	}

	var ci unix.CtlInfo
	copy(ci.Name[:], utunControlName)
	if err := unix.IoctlCtlInfo(fd, &ci); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("tun: CTLIOCGINFO: %w", err)
	}

	sa := &unix.SockaddrCtl{ID: ci.Id, Unit: uint32(seed) + 1}
	if err := unix.Connect(fd, sa); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("tun: connect utun control: %w", err)
	}

	name, err := unix.GetsockoptString(fd, unix.SYSPROTO_CONTROL, 2 /* UTUN_OPT_IFNAME */)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("tun: getsockopt ifname: %w", err)
	}

	if err := unix.SetNonblock(fd, false); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("tun: set blocking: %w", err)
	}
	if _, _, errno := unix.Syscall(unix.SYS_FCNTL, uintptr(fd), unix.F_SETFD, unix.FD_CLOEXEC); errno != 0 {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("tun: FD_CLOEXEC: %w", errno)
	}

	return &darwinDevice{fd: fd, name: name}, nil
}

func (d *darwinDevice) Name() string { return d.name }

// Read strips the kernel's 4-byte address-family prefix, returning just
// the inner IP frame byte count.
func (d *darwinDevice) Read(buf []byte) (int, error) {
	raw := make([]byte, len(buf)+afHeaderLen)
	n, err := unix.Read(d.fd, raw)
	if err != nil {
		return 0, err
	}
	if n <= afHeaderLen {
		return 0, nil
	}
	copy(buf, raw[afHeaderLen:n])
	return n - afHeaderLen, nil
}

// Write prepends the address-family prefix sized from the IP version
// nibble of buf's first byte (4 for IPv4, 6 for IPv6), then writes the
// combined frame.
func (d *darwinDevice) Write(buf []byte) (int, error) {
	if len(buf) == 0 {
		return 0, nil
	}
	family := uint32(2) // AF_INET
	if buf[0]>>4 == 6 {
		family = 10 // AF_INET6
	}
	raw := make([]byte, afHeaderLen+len(buf))
	raw[0] = byte(family >> 24)
	raw[1] = byte(family >> 16)
	raw[2] = byte(family >> 8)
	raw[3] = byte(family)
	copy(raw[afHeaderLen:], buf)

	n, err := unix.Write(d.fd, raw)
	if err != nil {
		return 0, err
	}
	if n <= afHeaderLen {
		return 0, nil
	}
	return n - afHeaderLen, nil
}

func (d *darwinDevice) Close() error { return unix.Close(d.fd) }

func (d *darwinDevice) Fd() int { return d.fd }

// BringUp assigns the point-to-point pair 10.10.10.<selfID> <-> 10.10.10.1
// (BSD-style utun interfaces have no broadcast/netmask concept the way
// Linux TUNs do) then sets MTU and brings the interface up via ifconfig.
func BringUp(name string, selfID uint8) error {
	local := fmt.Sprintf("10.10.10.%d", selfID)
	if out, err := exec.Command("ifconfig", name, local, "10.10.10.1").CombinedOutput(); err != nil {
		return fmt.Errorf("tun: assign %s to %s: %w: %s", local, name, err, out)
	}
	if out, err := exec.Command("ifconfig", name, "mtu", strconv.Itoa(MTU), "up").CombinedOutput(); err != nil {
		return fmt.Errorf("tun: bring up %s: %w: %s", name, err, out)
	}
	return nil
}
