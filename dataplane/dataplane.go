// Package dataplane implements §4.5: the write/read fan-out between engines.
// It is grounded on the teacher's core/port.go defaultPort, which guards a
// small piece of shared per-id state (incoming/outgoing buffers) behind a
// sync.Mutex and notifies registered listeners on change; Dataplane applies
// the same lock-guarded-registry shape to bit-vector values instead of
// akita messages, since §5 calls out the dataplane as shared mutable state
// that "writers post messages rather than directly mutating engine state"
// into.
package dataplane

import (
	"sync"

	"github.com/sarchlab/cascade/bv"
)

// Reader is anything that can receive a delivered value; engine.Core
// satisfies this with its Read method.
type Reader interface {
	Read(id uint32, bits bv.Value)
}

// Dataplane fans each id's writes out to every reader registered on that
// id, deduplicating equal consecutive writes (§4.5, §8 invariant 3).
type Dataplane struct {
	mu      sync.Mutex
	buffers map[uint32]bv.Value
	readers map[uint32][]Reader
}

// New builds an empty dataplane.
func New() *Dataplane {
	return &Dataplane{
		buffers: map[uint32]bv.Value{},
		readers: map[uint32][]Reader{},
	}
}

// Register adds r as a reader of id. Idempotent: registering the same
// reader twice for the same id has no additional effect.
func (d *Dataplane) Register(id uint32, r Reader) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, existing := range d.readers[id] {
		if existing == r {
			return
		}
	}
	d.readers[id] = append(d.readers[id], r)
}

// Deregister removes r from id's reader list. Tolerates r not being
// registered, or id never having had any readers.
func (d *Dataplane) Deregister(id uint32, r Reader) {
	d.mu.Lock()
	defer d.mu.Unlock()

	list := d.readers[id]
	for i, existing := range list {
		if existing == r {
			d.readers[id] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// DeregisterAll drops r from every id it was registered on, used during
// engine teardown before the engine itself is destroyed (§5 "the dataplane
// holds weak references... engine teardown deregisters from all variable
// ids before the engine is destroyed").
func (d *Dataplane) DeregisterAll(r Reader) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, list := range d.readers {
		for i, existing := range list {
			if existing == r {
				d.readers[id] = append(list[:i], list[i+1:]...)
				break
			}
		}
	}
}

// Write compares value against id's buffer; if different, updates the
// buffer and calls Read on every reader registered on id, in registration
// order. Equal writes are dropped without reaching any reader (§4.5,
// dedup).
func (d *Dataplane) Write(id uint32, value bv.Value) {
	d.mu.Lock()
	old, had := d.buffers[id]
	if had && old.Equal(value) {
		d.mu.Unlock()
		return
	}
	d.buffers[id] = value
	readers := append([]Reader(nil), d.readers[id]...)
	d.mu.Unlock()

	for _, r := range readers {
		r.Read(id, value)
	}
}

// WriteBool is the single-bit fast path (§4.5): it flips the low bit of
// id's buffer to reflect bit and broadcasts exactly like Write, without
// requiring the caller to construct a full bv.Value.
func (d *Dataplane) WriteBool(id uint32, bit bool) {
	d.mu.Lock()
	old, had := d.buffers[id]
	width, kind := uint32(1), bv.Unsigned
	if had {
		width, kind = old.Width(), old.Kind()
	}
	raw := uint64(0)
	if had {
		raw = old.ToUint64()
	}
	raw &^= 1
	if bit {
		raw |= 1
	}
	next := bv.New(width, kind, raw)
	if had && old.Equal(next) {
		d.mu.Unlock()
		return
	}
	d.buffers[id] = next
	readers := append([]Reader(nil), d.readers[id]...)
	d.mu.Unlock()

	for _, r := range readers {
		r.Read(id, next)
	}
}

// Value returns id's current buffered value and whether anything has
// written to id yet.
func (d *Dataplane) Value(id uint32) (bv.Value, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.buffers[id]
	return v, ok
}
