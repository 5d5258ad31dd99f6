// Package session implements the server's session table: a flat map from
// Id to (Token, external address), pruned by insertion age rather than a
// background goroutine.
//
// The teacher's own session table (infrastructure/routing/server_routing/
// session_management/ttl_manager.go) runs its sweep on a time.Ticker in a
// dedicated goroutine. This engine's event loop is single-threaded by
// design (spec §5: "no cross-thread sharing of mutable state inside the
// loop"), so Prune is instead called synchronously at the top of every
// iteration, before polling — mirroring original_source/src/network.rs's
// `available_ids.append(&mut client_info.prune())` line, which runs the
// same way.
package session

import (
	"net/netip"
	"time"

	"gonet-tunnel/application"
)

// firstId and lastId bound the assignable client id range. 0 is the
// network address, 1 is the server/gateway, 255 is the broadcast address;
// 254 is deliberately excluded — see spec §9 "ID 254 missing from pool".
const (
	firstId = 2
	lastId  = 253
	// TTL is how long after its insertion a session is kept before Prune
	// evicts it; Lookup does not extend it.
	TTL = 60 * time.Second
)

type entry struct {
	token      application.Token
	addr       netip.AddrPort
	insertedAt time.Time
}

// Table is the server's live session map plus its id pool. It is owned
// exclusively by the event-loop goroutine that calls it and is not safe
// for concurrent use, matching the single-threaded ownership model of §5.
type Table struct {
	now     func() time.Time
	ttl     time.Duration
	entries map[application.Id]entry
	pool    []application.Id // stack: pop to allocate, push to release
}

// NewTable builds a session table with the pool initialized to {2..=253}.
func NewTable() *Table {
	return newTable(time.Now, TTL)
}

// newTable is the test seam: it lets tests substitute a deterministic clock.
func newTable(now func() time.Time, ttl time.Duration) *Table {
	pool := make([]application.Id, 0, lastId-firstId+1)
	// Push in ascending order so Allocate (which pops from the end) hands
	// out the highest id first, matching (2..254).collect() + Vec::pop()
	// in the Rust original: the first allocation is always 253.
	for id := firstId; id <= lastId; id++ {
		pool = append(pool, application.Id(id))
	}
	return &Table{
		now:     now,
		ttl:     ttl,
		entries: make(map[application.Id]entry),
		pool:    pool,
	}
}

// Allocate pops an id from the pool, binds a fresh token generated by
// newToken to addr, and returns it. ok is false when the pool is empty.
func (t *Table) Allocate(addr netip.AddrPort, newToken func() application.Token) (application.Id, application.Token, bool) {
	if len(t.pool) == 0 {
		return 0, 0, false
	}
	id := t.pool[len(t.pool)-1]
	t.pool = t.pool[:len(t.pool)-1]
	token := newToken()
	t.entries[id] = entry{token: token, addr: addr, insertedAt: t.now()}
	return id, token, true
}

// Lookup returns the session bound to id without refreshing it — staleness
// is only ever updated on Allocate, mirroring TransientHashMap's semantics
// in the original (inserts, not reads, reset the timer).
func (t *Table) Lookup(id application.Id) (application.Token, netip.AddrPort, bool) {
	e, ok := t.entries[id]
	if !ok {
		return 0, netip.AddrPort{}, false
	}
	return e.token, e.addr, true
}

// ByAddr finds the id bound to addr, if any.
func (t *Table) ByAddr(addr netip.AddrPort) (application.Id, bool) {
	for id, e := range t.entries {
		if e.addr == addr {
			return id, true
		}
	}
	return 0, false
}

// Prune evicts entries whose insertion is older than the table's TTL and
// returns their ids to the pool, reporting which ids were evicted.
func (t *Table) Prune() []application.Id {
	now := t.now()
	var expired []application.Id
	for id, e := range t.entries {
		if now.Sub(e.insertedAt) > t.ttl {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(t.entries, id)
		t.pool = append(t.pool, id)
	}
	return expired
}

// Len reports the number of live sessions, for tests and diagnostics.
func (t *Table) Len() int { return len(t.entries) }

// PoolSize reports the number of ids still available for allocation.
func (t *Table) PoolSize() int { return len(t.pool) }
