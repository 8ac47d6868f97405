// Package handle implements publisher/subscriber handles (spec component
// C4): typed, move-only views over a topic's channel. send/recv call
// directly into the channel with no registry lock on the hot path; when a
// handle was created through a NodeContext, send/recv additionally emit a
// timed record to the logging sink.
package handle

import (
	"errors"

	"github.com/horus-rt/horus/internal/channel"
	"github.com/horus-rt/horus/internal/clock"
)

// ErrMoved is returned by any operation on a handle after it has been
// moved; per spec §9, handles are move-only and double-use after move must
// fail cleanly rather than silently succeed on stale state.
var ErrMoved = errors.New("handle: use after move")

// Recorder receives a (topic, durationNs) observation from a handle's
// send call, or from a recv call that returned a message. A node's context installs one so C7 gets
// a timed log record per spec §4.4; standalone use leaves it nil.
type Recorder func(topic string, durationNs int64)

// Publisher is a move-only handle for publishing values of type T onto one
// topic.
type Publisher[T any] struct {
	ch     *channel.Channel[T]
	topic  string
	onSend Recorder
	moved  bool
}

// NewPublisher returns a Publisher bound to ch. onSend may be nil.
func NewPublisher[T any](topic string, ch *channel.Channel[T], onSend Recorder) *Publisher[T] {
	return &Publisher[T]{ch: ch, topic: topic, onSend: onSend}
}

// Send copies value into the channel. It never blocks and never fails
// except when the handle has been moved.
func (p *Publisher[T]) Send(value T) error {
	if p == nil || p.moved {
		return ErrMoved
	}
	start := clock.NowNanos()
	p.ch.Publish(value)
	if p.onSend != nil {
		p.onSend(p.topic, clock.NowNanos()-start)
	}
	return nil
}

// Topic returns the bound topic name.
func (p *Publisher[T]) Topic() string { return p.topic }

// Move returns a new handle holding this Publisher's channel reference and
// invalidates the receiver; any further call on p returns ErrMoved.
func (p *Publisher[T]) Move() *Publisher[T] {
	if p == nil || p.moved {
		return &Publisher[T]{moved: true}
	}
	moved := &Publisher[T]{ch: p.ch, topic: p.topic, onSend: p.onSend}
	p.moved = true
	p.ch = nil
	return moved
}

// Subscriber is a move-only handle for receiving values of type T from one
// topic. It owns the reading cursor; each Subscriber sees its own view of
// the channel independent of any other subscriber on the same topic.
type Subscriber[T any] struct {
	ch      *channel.Channel[T]
	topic   string
	cursor  uint64
	dropped uint64
	onRecv  Recorder
	moved   bool
}

// NewSubscriber returns a Subscriber bound to ch, starting from the
// beginning of its currently buffered history. onRecv may be nil.
func NewSubscriber[T any](topic string, ch *channel.Channel[T], onRecv Recorder) *Subscriber[T] {
	return &Subscriber[T]{ch: ch, topic: topic, onRecv: onRecv}
}

// Recv copies the next available message into out and reports whether one
// was available. It never blocks.
func (s *Subscriber[T]) Recv(out *T) (bool, error) {
	if s == nil || s.moved {
		return false, ErrMoved
	}
	start := clock.NowNanos()
	v, next, dropped, ok := s.ch.Receive(s.cursor)
	if !ok {
		return false, nil
	}
	s.cursor = next
	s.dropped += dropped
	*out = v
	if s.onRecv != nil {
		s.onRecv(s.topic, clock.NowNanos()-start)
	}
	return true, nil
}

// Dropped returns the cumulative count of messages this subscriber has
// missed to overflow since it was created.
func (s *Subscriber[T]) Dropped() uint64 { return s.dropped }

// Cursor returns this subscriber's current read position, for computing
// lag against the channel's write sequence.
func (s *Subscriber[T]) Cursor() uint64 { return s.cursor }

// Topic returns the bound topic name.
func (s *Subscriber[T]) Topic() string { return s.topic }

// Move returns a new handle holding this Subscriber's channel reference
// and cursor, and invalidates the receiver.
func (s *Subscriber[T]) Move() *Subscriber[T] {
	if s == nil || s.moved {
		return &Subscriber[T]{moved: true}
	}
	moved := &Subscriber[T]{ch: s.ch, topic: s.topic, cursor: s.cursor, dropped: s.dropped, onRecv: s.onRecv}
	s.moved = true
	s.ch = nil
	return moved
}
