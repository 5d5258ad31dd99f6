package session

import (
	"net/netip"
	"testing"
	"time"

	"gonet-tunnel/application"
)

func addr(port int) netip.AddrPort {
	return netip.MustParseAddrPort("127.0.0.1:" + itoa(port))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func fixedToken() application.Token { return 42 }

func TestFirstAllocationIs253(t *testing.T) {
	table := NewTable()
	id, token, ok := table.Allocate(addr(1), fixedToken)
	if !ok {
		t.Fatal("expected allocation to succeed")
	}
	if id != 253 {
		t.Fatalf("got id %d, want 253", id)
	}
	if token != 42 {
		t.Fatalf("got token %d, want 42", token)
	}
}

func TestSecondAllocationIs252(t *testing.T) {
	table := NewTable()
	table.Allocate(addr(1), fixedToken)
	id, _, ok := table.Allocate(addr(2), fixedToken)
	if !ok || id != 252 {
		t.Fatalf("got id %d ok=%v, want 252 true", id, ok)
	}
}

func TestPoolPlusLiveSessionsInvariant(t *testing.T) {
	table := NewTable()
	if table.PoolSize()+table.Len() != 252 {
		t.Fatalf("pool+live = %d, want 252", table.PoolSize()+table.Len())
	}
	table.Allocate(addr(1), fixedToken)
	if table.PoolSize()+table.Len() != 252 {
		t.Fatalf("pool+live = %d, want 252 after one allocation", table.PoolSize()+table.Len())
	}
}

func TestLookupUnknownId(t *testing.T) {
	table := NewTable()
	if _, _, ok := table.Lookup(99); ok {
		t.Fatal("expected lookup of unknown id to fail")
	}
}

func TestPruneAgedExactly60sEvictsOnNextCheck(t *testing.T) {
	clock := time.Now()
	table := newTable(func() time.Time { return clock }, TTL)
	id, _, _ := table.Allocate(addr(1), fixedToken)

	clock = clock.Add(60 * time.Second)
	if expired := table.Prune(); len(expired) != 0 {
		t.Fatalf("expected no eviction at exactly 60s, evicted %v", expired)
	}

	clock = clock.Add(1 * time.Nanosecond)
	expired := table.Prune()
	if len(expired) != 1 || expired[0] != id {
		t.Fatalf("expected id %d evicted just past 60s, got %v", id, expired)
	}
	if _, _, ok := table.Lookup(id); ok {
		t.Fatal("expected pruned id to be gone")
	}
	if table.PoolSize() != 252 {
		t.Fatalf("expected pruned id returned to pool, pool size %d", table.PoolSize())
	}
}

func TestPruneReturnsIdForReallocation(t *testing.T) {
	clock := time.Now()
	table := newTable(func() time.Time { return clock }, TTL)
	firstId, _, _ := table.Allocate(addr(1), fixedToken)

	clock = clock.Add(61 * time.Second)
	table.Prune()

	secondId, _, ok := table.Allocate(addr(2), fixedToken)
	if !ok || secondId != firstId {
		t.Fatalf("expected pruned id %d to be reallocated, got %d", firstId, secondId)
	}
}

func TestAllocateFailsWhenPoolExhausted(t *testing.T) {
	table := NewTable()
	for i := 0; i < 252; i++ {
		if _, _, ok := table.Allocate(addr(i+1), fixedToken); !ok {
			t.Fatalf("allocation %d unexpectedly failed", i)
		}
	}
	if _, _, ok := table.Allocate(addr(9999), fixedToken); ok {
		t.Fatal("expected allocation to fail once the pool is exhausted")
	}
}

func TestByAddr(t *testing.T) {
	table := NewTable()
	id, _, _ := table.Allocate(addr(1), fixedToken)
	got, ok := table.ByAddr(addr(1))
	if !ok || got != id {
		t.Fatalf("ByAddr = %d, %v; want %d, true", got, ok, id)
	}
	if _, ok := table.ByAddr(addr(2)); ok {
		t.Fatal("expected ByAddr to miss for an unbound address")
	}
}
