package presentation

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"strconv"

	"gonet-tunnel/application"
	"gonet-tunnel/infrastructure/handshake"
	"gonet-tunnel/infrastructure/iphdr"
	"gonet-tunnel/infrastructure/netutil"
	"gonet-tunnel/infrastructure/session"
	"gonet-tunnel/infrastructure/tun"
	"gonet-tunnel/infrastructure/wire"
)

// bufSize is the scratch buffer size for every recv/read in the loop:
// MTU (1380) plus wire-format and AEAD-tag overhead.
const bufSize = 1600

// serverIfaceID is the server's own address within the tunnel's /24.
const serverIfaceID = 1

// errPoolExhausted is fatal per spec §7 "Pool exhaustion on the server is
// a fatal condition in this revision" — the loop stops rather than
// dropping the request.
var errPoolExhausted = errors.New("presentation: session id pool exhausted")

// StartServer runs the server role's event loop until flags.Interrupted()
// is observed, implementing original_source/src/network.rs's serve() and
// spec §4.E's server-side dispatch rules.
func StartServer(flags *application.Flags, logger application.Logger, port, secret, dns string) error {
	logger.Printf("working in server mode")

	if publicIP, err := netutil.GetPublicIP(context.Background()); err != nil {
		logger.Printf("could not determine public IP: %v", err)
	} else {
		logger.Printf("public IP: %s", publicIP)
	}

	logger.Printf("enabling kernel IPv4 forwarding")
	if err := netutil.EnableIPv4Forwarding(); err != nil {
		return fmt.Errorf("presentation: enable IPv4 forwarding: %w", err)
	}

	logger.Printf("bringing up TUN device")
	dev, err := tun.CreateAvailable()
	if err != nil {
		return fmt.Errorf("presentation: create TUN device: %w", err)
	}
	defer func() { _ = dev.Close() }()
	if err := tun.BringUp(dev.Name(), serverIfaceID); err != nil {
		return fmt.Errorf("presentation: bring up TUN device: %w", err)
	}
	logger.Printf("TUN device %s initialized, internal IP 10.10.10.%d/24", dev.Name(), serverIfaceID)

	portNum, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("presentation: invalid port %q: %w", port, err)
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: portNum})
	if err != nil {
		return fmt.Errorf("presentation: listen on port %s: %w", port, err)
	}
	defer func() { _ = conn.Close() }()
	logger.Printf("listening on 0.0.0.0:%s", port)

	codec, err := wire.NewCodec(secret)
	if err != nil {
		return fmt.Errorf("presentation: build codec: %w", err)
	}
	table := session.NewTable()

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
	if err := mux.registerRead(dev.Fd(), tunToken); err != nil {
		return fmt.Errorf("presentation: register TUN device: %w", err)
	}

	buf := make([]byte, bufSize)
	flags.SetListening(true)
	logger.Printf("ready for transmission")

	for {
		if flags.Interrupted() {
			return nil
		}
		table.Prune()

		toks, err := mux.wait()
		if err != nil {
			return fmt.Errorf("presentation: wait for readiness: %w", err)
		}

		for _, tok := range toks {
			var dispatchErr error
			switch tok {
			case sockToken:
				dispatchErr = serverHandleSock(conn, codec, table, dev, logger, dns, buf)
			case tunToken:
				dispatchErr = serverHandleTun(conn, codec, table, dev, logger, buf)
			}
			if dispatchErr != nil {
				return dispatchErr
			}
		}
	}
}

func serverHandleSock(
	conn *net.UDPConn,
	codec *wire.Codec,
	table application.SessionTable,
	dev tun.Device,
	logger application.Logger,
	dns string,
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

	switch msg.Kind {
	case wire.KindRequest:
		id, ok, acceptErr := handshake.Accept(conn, from, codec, table, randomToken, dns)
		if acceptErr != nil {
			logger.Printf("handshake reply to %s failed: %v", from, acceptErr)
			return nil
		}
		if !ok {
			return errPoolExhausted
		}
		logger.Printf("request from %s: assigned 10.10.10.%d", from, id)
	case wire.KindResponse:
		logger.Printf("dropping unexpected response from %s", from)
	case wire.KindData:
		token, _, known := table.Lookup(msg.DataId)
		if !known {
			logger.Printf("unknown client id %d from %s", msg.DataId, from)
			return nil
		}
		if token != msg.DataToken {
			logger.Printf("token mismatch for id %d: got %d, want %d", msg.DataId, msg.DataToken, token)
			return nil
		}
		frame, decompressErr := wire.Decompress(msg.Data)
		if decompressErr != nil {
			logger.Printf("decompress failed for id %d: %v", msg.DataId, decompressErr)
			return nil
		}
		if writeErr := writeAllTun(dev, frame); writeErr != nil {
			return fmt.Errorf("presentation: write to TUN: %w", writeErr)
		}
	}
	return nil
}

func serverHandleTun(
	conn *net.UDPConn,
	codec *wire.Codec,
	table application.SessionTable,
	dev tun.Device,
	logger application.Logger,
	buf []byte,
) error {
	n, err := dev.Read(buf)
	if err != nil {
		return fmt.Errorf("presentation: read from TUN: %w", err)
	}
	frame := buf[:n]
	destID, err := iphdr.DestinationID(frame)
	if err != nil {
		logger.Printf("dropping malformed IP frame from TUN: %v", err)
		return nil
	}

	token, addr, known := table.Lookup(destID)
	if !known {
		logger.Printf("unknown IP packet from TUN for client %d", destID)
		return nil
	}

	sealed := codec.Seal(wire.Data(destID, token, wire.Compress(frame)))
	if err := sendAllUDP(conn, sealed, net.UDPAddrFromAddrPort(addr)); err != nil {
		return fmt.Errorf("presentation: send to %s: %w", addr, err)
	}
	return nil
}

func randomToken() application.Token {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("presentation: read random token: %v", err))
	}
	return binary.LittleEndian.Uint64(b[:])
}
