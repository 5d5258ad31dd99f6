// Package iphdr parses the destination client id out of an IPv4 packet
// read from the TUN device, grounded on the teacher's
// infrastructure/network/ip/header_parser.go — same validate-then-read
// shape, narrowed to the single field the server forwarding path needs.
package iphdr

import (
	"fmt"

	"golang.org/x/net/ipv4"
)

// DestinationID returns the last octet of the destination address of an
// IPv4 packet, which doubles as the tunnel client id under the /24
// addressing scheme (10.10.10.<id>).
func DestinationID(frame []byte) (byte, error) {
	if len(frame) < ipv4.HeaderLen {
		return 0, fmt.Errorf("iphdr: packet too small (%d bytes)", len(frame))
	}
	ver := frame[0] >> 4
	if ver != 4 {
		return 0, fmt.Errorf("iphdr: unsupported IP version %d", ver)
	}
	ihl := int(frame[0]&0x0f) * 4
	if ihl < ipv4.HeaderLen {
		return 0, fmt.Errorf("iphdr: invalid IHL=%d", ihl)
	}
	if len(frame) < ihl {
		return 0, fmt.Errorf("iphdr: truncated header (len=%d < IHL=%d)", len(frame), ihl)
	}
	return frame[19], nil
}
