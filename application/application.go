// Package application declares the small, role-agnostic interfaces the
// rest of the module programs against. Keeping them here (rather than next
// to their single implementation) lets infrastructure and presentation
// depend on behavior instead of concrete types.
package application

import "net/netip"

// Logger is the narrowest surface the engine needs from a logging backend.
type Logger interface {
	Printf(format string, v ...any)
}

// TunDevice is a layer-3, packet-oriented byte stream: one Read returns
// exactly one IP frame, one Write transmits exactly one IP frame.
type TunDevice interface {
	Name() string
	Read(buf []byte) (int, error)
	Write(buf []byte) (int, error)
	Close() error
	Fd() int
}

// Id identifies a client within the tunnel's private /24.
type Id = uint8

// Token is the per-session authenticator handed out at handshake time.
type Token = uint64

// SessionTable is the server's live id -> (token, address) map.
type SessionTable interface {
	// Allocate pops an id from the pool, binds a fresh token to addr and
	// returns both. Reports ok=false when the pool is exhausted.
	Allocate(addr netip.AddrPort, newToken func() Token) (id Id, token Token, ok bool)
	// Lookup returns the session bound to id without refreshing its timer.
	Lookup(id Id) (token Token, addr netip.AddrPort, ok bool)
	// ByAddr finds the id bound to addr, if any, without mutating it.
	ByAddr(addr netip.AddrPort) (id Id, ok bool)
	// Prune evicts entries inserted longer ago than the table's TTL and
	// returns their ids to the pool. Must run before every poll.
	Prune() []Id
}
