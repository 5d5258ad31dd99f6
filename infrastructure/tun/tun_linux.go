//go:build linux

package tun

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sys/unix"
)

const (
	ifNamSiz  = 16
	tunSetIff = 0x400454ca // TUNSETIFF, _IOW('T', 202, int)
	iffTun    = 0x0001
	iffNoPI   = 0x1000
)

// ifReq mirrors struct ifreq's name+flags prefix, as used by TUNSETIFF.
type ifReq struct {
	Name  [ifNamSiz]byte
	Flags uint16
	_     [22]byte
}

// linuxDevice is personality A: /dev/net/tun with TUNSETIFF. Reads and
// writes transfer raw IP bytes directly — no OS-added framing.
type linuxDevice struct {
	file *os.File
	name string
}

// Create opens /dev/net/tun and requests interface name "tun<seed>". The
// kernel may rename it; the final name is read back from the ioctl result.
func Create(seed uint8) (Device, error) {
	file, err := os.OpenFile("/dev/net/tun", os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("tun: open /dev/net/tun: %w", err)
	}

	var req ifReq
	copy(req.Name[:], fmt.Sprintf("tun%d", seed))
	req.Flags = iffTun | iffNoPI

	_, _, errno := unix.Syscall(unix.SYS_IOCTL, file.Fd(), uintptr(tunSetIff), uintptr(unsafe.Pointer(&req)))
	if errno != 0 {
		_ = file.Close()
		return nil, fmt.Errorf("tun: TUNSETIFF: %w", errno)
	}

	name := strings.TrimRight(string(req.Name[:]), "\x00")
	return &linuxDevice{file: file, name: name}, nil
}

func (d *linuxDevice) Name() string { return d.name }

func (d *linuxDevice) Read(buf []byte) (int, error) { return d.file.Read(buf) }

func (d *linuxDevice) Write(buf []byte) (int, error) { return d.file.Write(buf) }

func (d *linuxDevice) Close() error { return d.file.Close() }

func (d *linuxDevice) Fd() int { return int(d.file.Fd()) }

// BringUp assigns 10.10.10.<selfID>/24 to the interface, then sets its MTU
// and brings it up, via the "ip" tool the way the teacher's
// infrastructure/tun_device/linux.go configures a freshly created TUN.
func BringUp(name string, selfID uint8) error {
	addr := fmt.Sprintf("10.10.10.%d/24", selfID)
	if out, err := exec.Command("ip", "addr", "add", addr, "dev", name).CombinedOutput(); err != nil {
		return fmt.Errorf("tun: assign %s to %s: %w: %s", addr, name, err, out)
	}
	if out, err := exec.Command("ip", "link", "set", "dev", name, "mtu", strconv.Itoa(MTU), "up").CombinedOutput(); err != nil {
		return fmt.Errorf("tun: bring up %s: %w: %s", name, err, out)
	}
	return nil
}
