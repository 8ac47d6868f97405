package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horus-rt/horus/internal/catalog"
	"github.com/horus-rt/horus/internal/logsink"
	"github.com/horus-rt/horus/internal/topic"
)

func TestCreatePublisherTracksTopic(t *testing.T) {
	reg := topic.NewRegistry(8, 16)
	sink := logsink.NewSink(8)
	ctx := NewContext("planner", reg, sink)

	pub, err := CreatePublisher[catalog.Twist](ctx, "cmd_vel", catalog.TypeTwist)
	require.NoError(t, err)
	require.NoError(t, pub.Send(catalog.Twist{}.Stop()))

	assert.Equal(t, []string{"cmd_vel"}, ctx.PublishedTopics())
}

func TestCreateSubscriberTracksTopicAndLogsOnRecv(t *testing.T) {
	reg := topic.NewRegistry(8, 16)
	sink := logsink.NewSink(8)
	pubCtx := NewContext("driver", reg, sink)
	subCtx := NewContext("planner", reg, sink)

	pub, err := CreatePublisher[catalog.Twist](pubCtx, "cmd_vel", catalog.TypeTwist)
	require.NoError(t, err)
	sub, err := CreateSubscriber[catalog.Twist](subCtx, "cmd_vel", catalog.TypeTwist)
	require.NoError(t, err)

	require.NoError(t, pub.Send(catalog.Twist{}.Stop()))

	var out catalog.Twist
	ok, err := sub.Recv(&out)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []string{"cmd_vel"}, subCtx.SubscribedTopics())

	// The recv should have emitted a debug record tagged with the node name.
	reader := sink.Subscribe()
	var rec logsink.Record
	found := false
	for {
		ok, err := reader.Recv(&rec)
		require.NoError(t, err)
		if !ok {
			break
		}
		if rec.NodeName() == "planner" {
			found = true
		}
	}
	assert.True(t, found)
}

type recordingMetrics struct {
	published int
	dropped   uint64
	lastLag   uint64
}

func (r *recordingMetrics) RecordPublish(topic string)                 { r.published++ }
func (r *recordingMetrics) RecordDrop(topic string, n uint64)          { r.dropped += n }
func (r *recordingMetrics) SetSubscriberLag(topic, node string, lag uint64) { r.lastLag = lag }

func TestMetricsRecorderReceivesPublishAndLagActivity(t *testing.T) {
	reg := topic.NewRegistry(1, 16)
	sink := logsink.NewSink(8)
	rm := &recordingMetrics{}

	pubCtx := NewContext("driver", reg, sink)
	pubCtx.SetMetrics(rm)
	subCtx := NewContext("planner", reg, sink)
	subCtx.SetMetrics(rm)

	pub, err := CreatePublisher[catalog.Twist](pubCtx, "cmd_vel", catalog.TypeTwist)
	require.NoError(t, err)
	sub, err := CreateSubscriber[catalog.Twist](subCtx, "cmd_vel", catalog.TypeTwist)
	require.NoError(t, err)

	require.NoError(t, pub.Send(catalog.Twist{}.Stop()))
	require.NoError(t, pub.Send(catalog.Twist{}.Stop()))

	var out catalog.Twist
	ok, err := sub.Recv(&out)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, 2, rm.published)
	// One-slot ring, two sends: the recv skips the first and reads the
	// second, leaving the subscriber caught up with the writer.
	assert.Equal(t, uint64(1), rm.dropped)
	assert.Equal(t, uint64(0), rm.lastLag)
}

func TestAdvanceTickUpdatesContext(t *testing.T) {
	reg := topic.NewRegistry(8, 16)
	sink := logsink.NewSink(8)
	ctx := NewContext("n", reg, sink)
	ctx.AdvanceTick(7)
	assert.Equal(t, uint64(7), ctx.Tick())
}
