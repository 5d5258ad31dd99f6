package presentation

import (
	"net"

	"gonet-tunnel/infrastructure/tun"
)

// sendAllUDP loops WriteToUDP until every byte of b has been transferred,
// per spec §4.E "write loops".
func sendAllUDP(conn *net.UDPConn, b []byte, to *net.UDPAddr) error {
	for len(b) > 0 {
		n, err := conn.WriteToUDP(b, to)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

// writeAllTun loops Write until every byte of b has reached the TUN
// device, the TUN counterpart of sendAllUDP.
func writeAllTun(dev tun.Device, b []byte) error {
	for len(b) > 0 {
		n, err := dev.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
