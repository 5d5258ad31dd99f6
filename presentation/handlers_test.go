package presentation

import (
	"net"
	"sync"
	"testing"

	"gonet-tunnel/application"
	"gonet-tunnel/infrastructure/session"
	"gonet-tunnel/infrastructure/wire"
)

// fakeTun implements tun.Device for tests that don't want a real,
// privileged TUN device — the same role routerTestFakeTun plays in the
// teacher's udp_chacha20/router_test.go.
type fakeTun struct {
	mu       sync.Mutex
	readData []byte
	written  [][]byte
	closed   bool
}

func (f *fakeTun) Name() string { return "faketun0" }

// Read hands back readData once, then reports no more data — enough to
// drive a single TUN-event dispatch per test.
func (f *fakeTun) Read(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.readData) == 0 {
		return 0, nil
	}
	n := copy(p, f.readData)
	f.readData = nil
	return n, nil
}

func (f *fakeTun) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]byte(nil), p...)
	f.written = append(f.written, cp)
	return len(p), nil
}

func (f *fakeTun) Close() error {
	f.closed = true
	return nil
}

func (f *fakeTun) Fd() int { return -1 }

func newLoopbackPair(t *testing.T) (a, b *net.UDPConn) {
	t.Helper()
	a, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen a: %v", err)
	}
	b, err = net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen b: %v", err)
	}
	t.Cleanup(func() {
		_ = a.Close()
		_ = b.Close()
	})
	return a, b
}

func TestClientHandleSockWritesDecompressedFrameOnMatchingToken(t *testing.T) {
	server, client := newLoopbackPair(t)
	codec, err := wire.NewCodec("password")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	clientAddr := client.LocalAddr().(*net.UDPAddr)

	frame := []byte("hello from tun")
	sealed := codec.Seal(wire.Data(253, 7, wire.Compress(frame)))
	if err := sendAllUDP(server, sealed, clientAddr); err != nil {
		t.Fatalf("send: %v", err)
	}

	tun := &fakeTun{}
	buf := make([]byte, bufSize)
	logger := noopLogger{}
	if err := clientHandleSock(client, codec, tun, logger, 253, 7, buf); err != nil {
		t.Fatalf("clientHandleSock: %v", err)
	}

	if len(tun.written) != 1 || string(tun.written[0]) != string(frame) {
		t.Fatalf("got %v, want one write of %q", tun.written, frame)
	}
}

func TestClientHandleSockDropsMismatchedToken(t *testing.T) {
	server, client := newLoopbackPair(t)
	codec, err := wire.NewCodec("password")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	clientAddr := client.LocalAddr().(*net.UDPAddr)

	sealed := codec.Seal(wire.Data(253, 99, wire.Compress([]byte("ignored"))))
	if err := sendAllUDP(server, sealed, clientAddr); err != nil {
		t.Fatalf("send: %v", err)
	}

	tun := &fakeTun{}
	buf := make([]byte, bufSize)
	logger := noopLogger{}
	if err := clientHandleSock(client, codec, tun, logger, 253, 7, buf); err != nil {
		t.Fatalf("clientHandleSock: %v", err)
	}

	if len(tun.written) != 0 {
		t.Fatalf("expected no writes on token mismatch, got %v", tun.written)
	}
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

var _ application.Logger = noopLogger{}

func TestServerHandleTunForwardsToKnownClient(t *testing.T) {
	serverSock, clientSock := newLoopbackPair(t)
	codec, err := wire.NewCodec("password")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	table := session.NewTable()
	clientAddr := clientSock.LocalAddr().(*net.UDPAddr)
	id, token, _ := table.Allocate(clientAddr.AddrPort(), func() application.Token { return 42 })

	frame := make([]byte, 20)
	frame[0] = 0x45 // version 4, IHL 5 (20-byte header)
	frame[19] = id

	tunDev := &fakeTun{readData: frame}
	buf := make([]byte, bufSize)
	if err := serverHandleTun(serverSock, codec, table, tunDev, noopLogger{}, buf); err != nil {
		t.Fatalf("serverHandleTun: %v", err)
	}

	n, _, err := clientSock.ReadFromUDP(buf)
	if err != nil {
		t.Fatalf("client read: %v", err)
	}
	msg, err := codec.Open(buf[:n])
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if msg.DataId != id || msg.DataToken != token {
		t.Fatalf("got id=%d token=%d, want id=%d token=%d", msg.DataId, msg.DataToken, id, token)
	}
}

func TestServerHandleSockAssignsSessionOnRequest(t *testing.T) {
	serverSock, clientSock := newLoopbackPair(t)
	codec, err := wire.NewCodec("password")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	table := session.NewTable()
	clientAddr := clientSock.LocalAddr().(*net.UDPAddr)

	sealed := codec.Seal(wire.Request())
	if err := sendAllUDP(clientSock, sealed, serverSock.LocalAddr().(*net.UDPAddr)); err != nil {
		t.Fatalf("send request: %v", err)
	}

	buf := make([]byte, bufSize)
	if err := serverHandleSock(serverSock, codec, table, &fakeTun{}, noopLogger{}, "8.8.8.8", buf); err != nil {
		t.Fatalf("serverHandleSock: %v", err)
	}

	id, ok := table.ByAddr(clientAddr.AddrPort())
	if !ok {
		t.Fatal("expected a session to be allocated for the requesting client")
	}
	if id != 253 {
		t.Fatalf("got id %d, want 253", id)
	}
}
