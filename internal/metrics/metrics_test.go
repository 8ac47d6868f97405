package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveTickRecordsHistogram(t *testing.T) {
	m := New()
	m.ObserveTick(1_500_000)
	assert.Equal(t, 1, int(testutil.CollectAndCount(m.TickDuration)))
}

func TestObserveNodeTickLabelsByName(t *testing.T) {
	m := New()
	m.ObserveNodeTick("planner", 500_000)
	m.ObserveNodeTick("driver", 250_000)
	assert.Equal(t, 2, int(testutil.CollectAndCount(m.NodeTickDuration)))
}

func TestIncOverrunAccumulatesPerNode(t *testing.T) {
	m := New()
	m.IncOverrun("planner")
	m.IncOverrun("planner")
	assert.Equal(t, float64(2), testutil.ToFloat64(m.NodeOverruns.WithLabelValues("planner")))
}

func TestRecordDropIgnoresZero(t *testing.T) {
	m := New()
	m.RecordDrop("scan", 0)
	assert.Equal(t, 0, int(testutil.CollectAndCount(m.TopicDrops)))
	m.RecordDrop("scan", 3)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.TopicDrops.WithLabelValues("scan")))
}

func TestSetNodeCounts(t *testing.T) {
	m := New()
	m.SetNodeCounts(5, 1)
	assert.Equal(t, float64(5), testutil.ToFloat64(m.NodesRunning))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.NodesCrashed))
}
