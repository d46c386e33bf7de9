// Package table implements the Pending Interest Table and Forwarding
// Information Base (spec.md §3, §4.2, §4.3): the two pieces of per-shard
// forwarding state the single-threaded router event loop owns and mutates
// without locking (spec.md §5).
package table

import (
	"container/list"
	"time"

	"github.com/ndn-tools/nrd/internal/wire"
)

// Face is the minimal surface the PIT and FIB need from a face: a stable
// identity, a liveness check, and the ability to deliver an encoded packet.
// internal/face.Face satisfies this interface structurally; table
// deliberately does not import internal/face to keep the forwarding tables
// independent of any transport.
type Face interface {
	FaceID() uint64
	Closed() bool
	Send(pkt []byte) error
}

// DefaultInterestLifetime is the PIT entry lifetime used when an Interest
// carries none (spec.md §3: "default 250 ms if the Interest carries no
// lifetime").
const DefaultInterestLifetime = 250 * time.Millisecond

// DefaultPitCapacity is the default PIT entry cap (spec.md §3).
const DefaultPitCapacity = 250

type pitKey struct {
	name  string
	nonce [4]byte
}

func keyFor(n wire.Name, nonce [4]byte) pitKey {
	return pitKey{name: string(n.Bytes()), nonce: nonce}
}

// pitEntry aggregates the ingress faces of every Interest seen with a given
// (Name, Nonce). Ingress faces are held by reference, not by value, so a
// face that closes after being added is simply skipped when the entry is
// matched (spec.md §3, §9 "PIT ingress set").
type pitEntry struct {
	name      wire.Name
	nonce     [4]byte
	ingress   map[uint64]Face
	expiresAt time.Time
	elem      *list.Element // position in PIT.order, for O(1) eviction
}

// PIT is the Pending Interest Table.
type PIT struct {
	capacity int
	entries  map[pitKey]*pitEntry
	order    *list.List // oldest-first; list.Element.Value is *pitEntry
}

// NewPIT constructs a PIT with the given capacity. A capacity <= 0 uses
// DefaultPitCapacity.
func NewPIT(capacity int) *PIT {
	if capacity <= 0 {
		capacity = DefaultPitCapacity
	}
	return &PIT{
		capacity: capacity,
		entries:  make(map[pitKey]*pitEntry),
		order:    list.New(),
	}
}

// Insert records that ingress is awaiting Data for interest. It returns
// true if this is the first Interest seen for (Name, Nonce) — the caller
// should then forward it — or false if it aggregates into an existing,
// unexpired entry (spec.md §4.2).
func (p *PIT) Insert(interest *wire.Interest, ingress Face) bool {
	now := time.Now()
	key := keyFor(interest.NameV, interest.Nonce)

	if e, ok := p.entries[key]; ok && e.expiresAt.After(now) {
		e.ingress[ingress.FaceID()] = ingress
		return false
	} else if ok {
		// Expired entry still indexed; drop it before inserting fresh.
		p.removeEntry(e)
	}

	lifetime := interest.LifetimeV
	if lifetime <= 0 {
		lifetime = DefaultInterestLifetime
	}

	e := &pitEntry{
		name:      interest.NameV,
		nonce:     interest.Nonce,
		ingress:   map[uint64]Face{ingress.FaceID(): ingress},
		expiresAt: now.Add(lifetime),
	}
	e.elem = p.order.PushBack(e)
	p.entries[key] = e

	p.evictExpired(now)
	for len(p.entries) > p.capacity {
		p.evictOldest()
	}

	return true
}

// Get returns the deduplicated union of live ingress faces across every PIT
// entry whose Name is a prefix of data's Name, removing those entries
// (spec.md §4.2). Closed faces are skipped (spec.md §4.2, §9).
func (p *PIT) Get(data *wire.Data) []Face {
	now := time.Now()
	seen := make(map[uint64]struct{})
	var out []Face

	var matched []*pitEntry
	for _, e := range p.entries {
		if e.expiresAt.Before(now) {
			continue
		}
		if e.name.IsPrefixOf(data.NameV) {
			matched = append(matched, e)
		}
	}

	for _, e := range matched {
		for id, f := range e.ingress {
			if f.Closed() {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, f)
		}
		p.removeEntry(e)
	}

	p.evictExpired(now)
	return out
}

// Len returns the number of live (unexpired) entries currently tracked.
func (p *PIT) Len() int {
	p.evictExpired(time.Now())
	return len(p.entries)
}

func (p *PIT) removeEntry(e *pitEntry) {
	key := keyFor(e.name, e.nonce)
	if cur, ok := p.entries[key]; ok && cur == e {
		delete(p.entries, key)
	}
	p.order.Remove(e.elem)
}

func (p *PIT) evictOldest() {
	front := p.order.Front()
	if front == nil {
		return
	}
	p.removeEntry(front.Value.(*pitEntry))
}

func (p *PIT) evictExpired(now time.Time) {
	for el := p.order.Front(); el != nil; {
		e := el.Value.(*pitEntry)
		next := el.Next()
		if e.expiresAt.Before(now) {
			p.removeEntry(e)
		}
		el = next
	}
}
