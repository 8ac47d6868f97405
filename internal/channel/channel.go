// Package channel implements the fixed-size circular buffer backing every
// HORUS topic: single-writer, multi-reader, lock-free on the hot path.
// Slot commit uses an atomic release/acquire pair in the style of the
// seqlock ring buffers used elsewhere in the retrieved corpus — the writer
// never blocks and never fails; an overrun reader is fast-forwarded to the
// oldest still-available message (drop-oldest). A reader re-checks the
// slot's sequence after copying the payload out and retries if the writer
// wrapped the ring mid-copy, so a multi-word payload is never returned torn.
package channel

import "sync/atomic"

// uncommitted marks a slot that has never been published into, or whose
// payload Publish is rewriting right now. It is distinguishable from any
// real sequence number because Publish's sequence counter never reaches it
// in practice.
const uncommitted = ^uint64(0)

type slot[T any] struct {
	committed atomic.Uint64
	payload   T
}

// Channel is the ring buffer for one topic's messages of type T. N (the
// slot count) is always a power of two so index masking replaces modulo.
type Channel[T any] struct {
	slots    []slot[T]
	mask     uint64
	writeSeq atomic.Uint64
}

// New returns a Channel with at least minSlots capacity, rounded up to the
// next power of two.
func New[T any](minSlots int) *Channel[T] {
	n := nextPow2(minSlots)
	ch := &Channel[T]{
		slots: make([]slot[T], n),
		mask:  uint64(n - 1),
	}
	for i := range ch.slots {
		ch.slots[i].committed.Store(uncommitted)
	}
	return ch
}

// Slots returns the ring's slot count.
func (ch *Channel[T]) Slots() int { return len(ch.slots) }

// WriteSeq returns the next sequence number Publish will assign. Intended
// for introspection/metrics, not for synchronization.
func (ch *Channel[T]) WriteSeq() uint64 { return ch.writeSeq.Load() }

// Publish copies payload into the ring at the current write position and
// advances the sequence. It never blocks and never fails: an unread slot
// at that position is simply overwritten, and the next Receive from a
// lagging cursor will observe a drop.
func (ch *Channel[T]) Publish(payload T) {
	s := ch.writeSeq.Load()
	k := s & ch.mask
	ch.slots[k].committed.Store(uncommitted) // a reader copying this slot now fails its re-check
	ch.slots[k].payload = payload
	ch.slots[k].committed.Store(s) // release: payload write happens-before this store
	ch.writeSeq.Store(s + 1)
}

// Receive attempts to read the message at cursor. ok is false if no new
// message is available yet at that position. dropped counts messages
// skipped because the writer lapped this cursor by more than the ring's
// capacity; next is the cursor value to pass to the following call.
func (ch *Channel[T]) Receive(cursor uint64) (value T, next uint64, dropped uint64, ok bool) {
	c := cursor
	for {
		k := c & ch.mask
		s := ch.slots[k].committed.Load() // acquire: pairs with Publish's release
		if s == uncommitted || s < c {
			return value, cursor, dropped, false
		}
		if s > c {
			n := uint64(len(ch.slots))
			var oldest uint64
			if ws := ch.writeSeq.Load(); ws > n {
				oldest = ws - n
			}
			if oldest > c {
				dropped += oldest - c
				c = oldest
				continue
			}
		}
		candidate := ch.slots[k].payload
		if ch.slots[k].committed.Load() != s {
			// The writer wrapped the ring and republished over slot k while
			// we were copying payload out of it — candidate may be a torn
			// mix of the old and new message. Retry from scratch rather
			// than return it; the oldest-available check above will catch
			// us up correctly on the next pass.
			continue
		}
		value = candidate
		next = s + 1
		return value, next, dropped, true
	}
}

func nextPow2(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
