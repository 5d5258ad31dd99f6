package presentation

import (
	"fmt"
	"net"

	"gonet-tunnel/application"
	"gonet-tunnel/infrastructure/handshake"
	"gonet-tunnel/infrastructure/netutil"
	"gonet-tunnel/infrastructure/tun"
	"gonet-tunnel/infrastructure/wire"
)

// StartClient runs the client role's event loop until flags.Interrupted()
// is observed, implementing original_source/src/network.rs's connect()
// and spec §4.E's client-side dispatch rules.
func StartClient(flags *application.Flags, logger application.Logger, host, port, secret string, replaceDefaultRoute bool) error {
	logger.Printf("working in client mode")

	remoteAddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, port))
	if err != nil {
		return fmt.Errorf("presentation: resolve %s:%s: %w", host, port, err)
	}
	logger.Printf("remote server: %s", remoteAddr)

	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		return fmt.Errorf("presentation: open local socket: %w", err)
	}
	defer func() { _ = conn.Close() }()

	codec, err := wire.NewCodec(secret)
	if err != nil {
		return fmt.Errorf("presentation: build codec: %w", err)
	}

	id, sessionToken, dns, err := handshake.Initiate(conn, remoteAddr, codec)
	if err != nil {
		return fmt.Errorf("presentation: handshake: %w", err)
	}
	logger.Printf("session established with token %d, assigned IP 10.10.10.%d, dns %s", sessionToken, id, dns)

	logger.Printf("bringing up TUN device")
	dev, err := tun.CreateAvailable()
	if err != nil {
		return fmt.Errorf("presentation: create TUN device: %w", err)
	}
	defer func() { _ = dev.Close() }()
	if err := tun.BringUp(dev.Name(), id); err != nil {
		return fmt.Errorf("presentation: bring up TUN device: %w", err)
	}
	logger.Printf("TUN device %s initialized, internal IP 10.10.10.%d/24", dev.Name(), id)

	logger.Printf("setting DNS to %s", dns)
	if err := netutil.SetDNS(dns); err != nil {
		return fmt.Errorf("presentation: set DNS: %w", err)
	}

	gw, err := netutil.NewDefaultGateway("10.10.10.1", remoteAddr.IP.String(), replaceDefaultRoute)
	if err != nil {
		return fmt.Errorf("presentation: take over default route: %w", err)
	}
	defer func() { _ = gw.Close() }()

	mux, err := newMultiplexer()
	if err != nil {
		return fmt.Errorf("presentation: create readiness multiplexer: %w", err)
	}
	defer func() { _ = mux.close() }()

	sockFd, err := udpFd(conn)
	if err != nil {
		return fmt.Errorf("presentation: extract socket fd: %w", err)
	}
	if err := mux.registerRead(sockFd, sockToken); err != nil {
		return fmt.Errorf("presentation: register socket: %w", err)
	}
	if err := mux.registerReadWrite(dev.Fd(), tunToken); err != nil {
		return fmt.Errorf("presentation: register TUN device: %w", err)
	}

	buf := make([]byte, bufSize)
	flags.SetConnected(true)
	logger.Printf("ready for transmission")

	for {
		if flags.Interrupted() {
			return nil
		}

		toks, err := mux.wait()
		if err != nil {
			return fmt.Errorf("presentation: wait for readiness: %w", err)
		}

		for _, tok := range toks {
			var dispatchErr error
			switch tok {
			case sockToken:
				dispatchErr = clientHandleSock(conn, codec, dev, logger, id, sessionToken, buf)
			case tunToken:
				dispatchErr = clientHandleTun(conn, codec, dev, remoteAddr, id, sessionToken, buf)
			}
			if dispatchErr != nil {
				return dispatchErr
			}
		}
	}
}

func clientHandleSock(
	conn *net.UDPConn,
	codec *wire.Codec,
	dev tun.Device,
	logger application.Logger,
	selfID application.Id,
	sessionToken application.Token,
	buf []byte,
) error {
	n, from, err := conn.ReadFromUDP(buf)
	if err != nil {
		return fmt.Errorf("presentation: read from socket: %w", err)
	}
	msg, err := codec.Open(buf[:n])
	if err != nil {
		logger.Printf("dropping undecodable datagram from %s: %v", from, err)
		return nil
	}

	if msg.Kind != wire.KindData {
		logger.Printf("dropping unexpected message from %s", from)
		return nil
	}
	if msg.DataToken != sessionToken {
		logger.Printf("token mismatch: got %d, want %d", msg.DataToken, sessionToken)
		return nil
	}

	frame, err := wire.Decompress(msg.Data)
	if err != nil {
		logger.Printf("decompress failed: %v", err)
		return nil
	}
	if err := writeAllTun(dev, frame); err != nil {
		return fmt.Errorf("presentation: write to TUN: %w", err)
	}
	return nil
}

func clientHandleTun(
	conn *net.UDPConn,
	codec *wire.Codec,
	dev tun.Device,
	remoteAddr *net.UDPAddr,
	selfID application.Id,
	sessionToken application.Token,
	buf []byte,
) error {
	n, err := dev.Read(buf)
	if err != nil {
		return fmt.Errorf("presentation: read from TUN: %w", err)
	}
	frame := buf[:n]
	sealed := codec.Seal(wire.Data(selfID, sessionToken, wire.Compress(frame)))
	if err := sendAllUDP(conn, sealed, remoteAddr); err != nil {
		return fmt.Errorf("presentation: send to %s: %w", remoteAddr, err)
	}
	return nil
}
