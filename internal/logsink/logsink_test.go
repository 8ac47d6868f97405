package logsink

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndSubscribe(t *testing.T) {
	s := NewSink(8)
	s.Append(LevelInfo, "planner", 3, "cmd_vel", "publishing stop")

	sub := s.Subscribe()
	var rec Record
	ok, err := sub.Recv(&rec)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "planner", rec.NodeName())
	assert.Equal(t, "cmd_vel", rec.TopicName())
	assert.Equal(t, "publishing stop", rec.Text())
	assert.Equal(t, LevelInfo, rec.Level)
	assert.Equal(t, uint64(3), rec.Tick)
}

func TestSinkDropsOldestOnOverflow(t *testing.T) {
	s := NewSink(2)
	for i := 0; i < 5; i++ {
		s.Append(LevelDebug, "n", uint64(i), "", "msg")
	}
	sub := s.Subscribe()
	var rec Record
	_, err := sub.Recv(&rec)
	require.NoError(t, err)
	assert.True(t, sub.Dropped() > 0)
}

func TestSetRunIDTagsSubsequentRecords(t *testing.T) {
	s := NewSink(8)
	runID := uuid.New()
	s.SetRunID(runID)
	s.Append(LevelInfo, "planner", 0, "", "tagged")

	sub := s.Subscribe()
	var rec Record
	ok, err := sub.Recv(&rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, runID, rec.Run())
}

func TestIndependentSubscribersDoNotInterfere(t *testing.T) {
	s := NewSink(8)
	s.Append(LevelInfo, "n", 0, "", "first")

	subA := s.Subscribe()
	subB := s.Subscribe()

	var a, b Record
	okA, _ := subA.Recv(&a)
	okB, _ := subB.Recv(&b)
	require.True(t, okA)
	require.True(t, okB)
	assert.Equal(t, a.Text(), b.Text())
}
