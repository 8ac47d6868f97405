// Package logsink implements the bounded lock-free log buffer (spec
// component C7). Log records carry timestamp, level, node name, tick
// number, and topic, and are appended from inside a node's tick() — a path
// that must never block or allocate a lock. The sink is built directly on
// top of internal/channel's ring buffer: a log record is just another
// fixed-size payload, and "overflow drops oldest" is exactly the channel's
// existing drop-oldest semantics, so C7 reuses C3 rather than
// reimplementing it.
package logsink

import (
	"github.com/google/uuid"

	"github.com/horus-rt/horus/internal/channel"
	"github.com/horus-rt/horus/internal/clock"
	"github.com/horus-rt/horus/internal/handle"
)

// Level is a log record's severity.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// recordNodeMax and recordTopicMax bound the inline fixed-length fields of
// Record so it stays a fixed-size payload, consistent with every other
// type that travels through a channel.
const (
	recordNodeMax  = 64
	recordTopicMax = 64
	recordMsgMax   = 256
)

// Record is a single log entry.
type Record struct {
	TimestampNs int64
	Tick        uint64
	RunID       [16]byte
	Level       Level
	_pad0       [4]byte
	Node        [recordNodeMax]byte
	Topic       [recordTopicMax]byte
	Message     [recordMsgMax]byte
}

// Run returns the scheduler run this record was appended during.
func (r Record) Run() uuid.UUID { return uuid.UUID(r.RunID) }

func putStr(buf []byte, s string) {
	for i := range buf {
		buf[i] = 0
	}
	n := len(s)
	if n > len(buf)-1 {
		n = len(buf) - 1
	}
	copy(buf, s[:n])
}

func getStr(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// NodeName returns the originating node's identity.
func (r Record) NodeName() string { return getStr(r.Node[:]) }

// TopicName returns the topic a publish/recv log record pertains to, or
// the empty string for records unrelated to a specific topic.
func (r Record) TopicName() string { return getStr(r.Topic[:]) }

// Text returns the log message.
func (r Record) Text() string { return getStr(r.Message[:]) }

// Sink is the process-wide bounded log ring.
type Sink struct {
	ch       *channel.Channel[Record]
	onAppend func()
	runID    [16]byte
}

// NewSink returns a Sink with at least capacity slots (rounded to the next
// power of two internally).
func NewSink(capacity int) *Sink {
	return &Sink{ch: channel.New[Record](capacity)}
}

// SetCounter installs a callback invoked once per Append, letting
// internal/metrics track total log volume without this package depending
// on it directly.
func (s *Sink) SetCounter(onAppend func()) { s.onAppend = onAppend }

// SetRunID tags every record appended from this point on with runID,
// letting an operator correlate a log record with the scheduler run (and
// its heartbeat/safety publications) that produced it.
func (s *Sink) SetRunID(runID uuid.UUID) { s.runID = runID }

// Append records one log entry. It never blocks and never fails; an
// overfull sink silently drops its oldest unread entry.
func (s *Sink) Append(level Level, node string, tick uint64, topic, message string) {
	var rec Record
	rec.TimestampNs = clock.WallNanos()
	rec.Tick = tick
	rec.RunID = s.runID
	rec.Level = level
	putStr(rec.Node[:], node)
	putStr(rec.Topic[:], topic)
	putStr(rec.Message[:], message)
	s.ch.Publish(rec)
	if s.onAppend != nil {
		s.onAppend()
	}
}

// Subscribe returns a reader over the sink with its own cursor, letting
// the introspection server (or any consumer) drain records independently
// of any other reader.
func (s *Sink) Subscribe() *handle.Subscriber[Record] {
	return handle.NewSubscriber[Record]("__horus/log", s.ch, nil)
}
