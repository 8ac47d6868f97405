// Package node defines the HORUS node contract and its per-callback
// context (spec component C5): three methods over a context parameter,
// no inheritance chain — polymorphism is over the {Init, Tick, Shutdown}
// method set only, in place of the virtual-method node base class the
// source uses.
package node

import (
	"fmt"

	"github.com/horus-rt/horus/internal/catalog"
	"github.com/horus-rt/horus/internal/clock"
	"github.com/horus-rt/horus/internal/handle"
	"github.com/horus-rt/horus/internal/logsink"
	"github.com/horus-rt/horus/internal/topic"
)

// Node is any value the scheduler can run. Init failure removes the node
// from the run set before Tick is ever called; Shutdown runs exactly once,
// iff Init returned true.
type Node interface {
	Name() string
	Init(ctx *Context) bool
	Tick(ctx *Context)
	Shutdown(ctx *Context) bool
}

// MetricsRecorder receives topic-level activity from handles created
// through a Context: publish volume, drop volume, and subscriber lag. The
// scheduler wires this to internal/metrics when its Metrics implementation
// also satisfies this interface; nil leaves topic-level metrics unrecorded.
type MetricsRecorder interface {
	RecordPublish(topic string)
	RecordDrop(topic string, n uint64)
	SetSubscriberLag(topic, node string, lag uint64)
}

// Context is the per-callback handle a node uses to create publishers and
// subscribers, log, and read its own identity and timing. Handles created
// through a Context have that Context's logging attached (spec §4.5).
type Context struct {
	nodeName   string
	startNs    int64
	tick       uint64
	registry   *topic.Registry
	sink       *logsink.Sink
	metrics    MetricsRecorder
	published  []string
	subscribed []string
}

// NewContext returns a fresh Context for nodeName, bound to the given
// topic registry and log sink. The scheduler owns the Context's lifetime
// and advances its tick counter between calls.
func NewContext(nodeName string, registry *topic.Registry, sink *logsink.Sink) *Context {
	return &Context{nodeName: nodeName, startNs: clock.NowNanos(), registry: registry, sink: sink}
}

// Name returns the owning node's identity.
func (c *Context) Name() string { return c.nodeName }

// Tick returns the current tick number, valid for the duration of one
// Tick() call.
func (c *Context) Tick() uint64 { return c.tick }

// UptimeNs returns nanoseconds elapsed since this node's Context was
// created (approximately since Init was first called).
func (c *Context) UptimeNs() int64 { return clock.NowNanos() - c.startNs }

// PublishedTopics returns the topic names this node has bound a publisher
// to, in bind order.
func (c *Context) PublishedTopics() []string { return append([]string(nil), c.published...) }

// SubscribedTopics returns the topic names this node has bound a
// subscriber to, in bind order.
func (c *Context) SubscribedTopics() []string { return append([]string(nil), c.subscribed...) }

// AdvanceTick is called by the scheduler immediately before Tick(ctx); it
// is not meant for node code to call.
func (c *Context) AdvanceTick(tick uint64) { c.tick = tick }

// SetMetrics attaches a MetricsRecorder; publishers and subscribers created
// after this call report topic activity to it. Called by the scheduler
// immediately after NewContext, never by node code.
func (c *Context) SetMetrics(m MetricsRecorder) { c.metrics = m }

func (c *Context) recorder() handle.Recorder {
	return func(topicName string, durationNs int64) {
		c.sink.Append(logsink.LevelDebug, c.nodeName, c.tick, topicName, fmt.Sprintf("%d ns", durationNs))
	}
}

// LogInfo appends an info-level record to the logging sink.
func (c *Context) LogInfo(msg string) { c.sink.Append(logsink.LevelInfo, c.nodeName, c.tick, "", msg) }

// LogWarn appends a warn-level record to the logging sink.
func (c *Context) LogWarn(msg string) { c.sink.Append(logsink.LevelWarn, c.nodeName, c.tick, "", msg) }

// LogError appends an error-level record to the logging sink.
func (c *Context) LogError(msg string) { c.sink.Append(logsink.LevelError, c.nodeName, c.tick, "", msg) }

// LogDebug appends a debug-level record to the logging sink.
func (c *Context) LogDebug(msg string) { c.sink.Append(logsink.LevelDebug, c.nodeName, c.tick, "", msg) }

// CreatePublisher binds a publisher of type T on topicName through ctx,
// recording the bind for introspection and attaching ctx's logging (and, if
// set, metrics) to the returned handle.
func CreatePublisher[T any](ctx *Context, topicName string, typeID catalog.TypeID) (*handle.Publisher[T], error) {
	ch, err := topic.BindPublisher[T](ctx.registry, topicName, typeID)
	if err != nil {
		return nil, err
	}
	ctx.published = append(ctx.published, topicName)
	log := ctx.recorder()
	metrics := ctx.metrics
	rec := handle.Recorder(func(topic string, durationNs int64) {
		log(topic, durationNs)
		if metrics != nil {
			metrics.RecordPublish(topic)
		}
	})
	return handle.NewPublisher[T](topicName, ch, rec), nil
}

// CreateSubscriber binds a subscriber of type T on topicName through ctx,
// recording the bind for introspection and attaching ctx's logging (and, if
// set, per-topic drop/lag metrics) to the returned handle.
func CreateSubscriber[T any](ctx *Context, topicName string, typeID catalog.TypeID) (*handle.Subscriber[T], error) {
	ch, err := topic.BindSubscriber[T](ctx.registry, topicName, typeID)
	if err != nil {
		return nil, err
	}
	ctx.subscribed = append(ctx.subscribed, topicName)

	log := ctx.recorder()
	metrics := ctx.metrics
	nodeName := ctx.nodeName
	var sub *handle.Subscriber[T]
	var lastDropped uint64
	rec := handle.Recorder(func(topic string, durationNs int64) {
		log(topic, durationNs)
		if metrics != nil {
			if d := sub.Dropped(); d > lastDropped {
				metrics.RecordDrop(topic, d-lastDropped)
				lastDropped = d
			}
			metrics.SetSubscriberLag(topic, nodeName, ch.WriteSeq()-sub.Cursor())
		}
	})
	sub = handle.NewSubscriber[T](topicName, ch, rec)
	return sub, nil
}
