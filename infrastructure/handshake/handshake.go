// Package handshake implements the single-shot Request/Response exchange
// that assigns a client its Id, Token and dns resolver.
//
// Grounded on original_source/src/network.rs's initiate() and the
// Message::Request arm of serve(), carried over with the teacher's
// interface-first style (application.Handshake in NLipatov-TunGo splits
// the client and server sides of a handshake into one small interface).
package handshake

import (
	"fmt"
	"net"

	"gonet-tunnel/application"
	"gonet-tunnel/infrastructure/wire"
)

// bufSize comfortably holds any sealed control frame: MTU (1380) plus the
// wire format's small per-field overhead plus the AEAD tag.
const bufSize = 1600

// Initiate performs the client side of the handshake: send one sealed
// Request, block on one recv, and accept only a Response. There is no
// retransmission — if either direction is lost this call blocks
// indefinitely on ReadFromUDP, exactly as spec §4.D documents.
func Initiate(conn *net.UDPConn, remote *net.UDPAddr, codec *wire.Codec) (id application.Id, token application.Token, dns string, err error) {
	sealed := codec.Seal(wire.Request())
	if writeErr := sendAll(conn, sealed, remote); writeErr != nil {
		return 0, 0, "", fmt.Errorf("handshake: send request: %w", writeErr)
	}

	buf := make([]byte, bufSize)
	n, _, err := conn.ReadFromUDP(buf)
	if err != nil {
		return 0, 0, "", fmt.Errorf("handshake: receive response: %w", err)
	}

	msg, err := codec.Open(buf[:n])
	if err != nil {
		return 0, 0, "", fmt.Errorf("handshake: open response: %w", err)
	}
	if msg.Kind != wire.KindResponse {
		return 0, 0, "", fmt.Errorf("handshake: invalid message kind %d from %s", msg.Kind, remote)
	}
	return msg.ResponseId, msg.ResponseToken, msg.ResponseDNS, nil
}

// Accept performs the server side: given a decoded Request and the sender's
// address, allocate a session and send back a sealed Response. Returns the
// allocated id for logging; reports ok=false on pool exhaustion.
func Accept(
	conn *net.UDPConn,
	from *net.UDPAddr,
	codec *wire.Codec,
	table application.SessionTable,
	newToken func() application.Token,
	dns string,
) (id application.Id, ok bool, err error) {
	addrPort := from.AddrPort()
	id, token, ok := table.Allocate(addrPort, newToken)
	if !ok {
		return 0, false, nil
	}
	sealed := codec.Seal(wire.Response(id, token, dns))
	if writeErr := sendAll(conn, sealed, from); writeErr != nil {
		return id, true, fmt.Errorf("handshake: send response: %w", writeErr)
	}
	return id, true, nil
}

// sendAll loops the UDP write until every byte has been transferred,
// matching the "while remaining_len > 0" pattern in the Rust original and
// spec §4.E's "write loops" requirement.
func sendAll(conn *net.UDPConn, b []byte, to *net.UDPAddr) error {
	for len(b) > 0 {
		n, err := conn.WriteToUDP(b, to)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
