package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horus-rt/horus/internal/catalog"
	"github.com/horus-rt/horus/internal/config"
	"github.com/horus-rt/horus/internal/handle"
	"github.com/horus-rt/horus/internal/logging"
	"github.com/horus-rt/horus/internal/metrics"
	"github.com/horus-rt/horus/internal/node"
	"github.com/horus-rt/horus/internal/topic"
)

func noopLogger(t *testing.T) *logging.Logger {
	t.Helper()
	return &logging.Logger{Logger: zap.NewNop()}
}

func newTestScheduler(t *testing.T) *Scheduler {
	t.Helper()
	return New(config.SchedulerConfig{TickHz: 60}, config.ChannelConfig{DefaultSlots: 8, DefaultMaxSubs: 16}, noopLogger(t), nil)
}

type recordingNode struct {
	mu          sync.Mutex
	name        string
	initOK      bool
	tickCount   int
	shutdownN   int
	onTick      func(*node.Context)
}

func (r *recordingNode) Name() string { return r.name }
func (r *recordingNode) Init(ctx *node.Context) bool { return r.initOK }
func (r *recordingNode) Tick(ctx *node.Context) {
	r.mu.Lock()
	r.tickCount++
	r.mu.Unlock()
	if r.onTick != nil {
		r.onTick(ctx)
	}
}
func (r *recordingNode) Shutdown(ctx *node.Context) bool {
	r.mu.Lock()
	r.shutdownN++
	r.mu.Unlock()
	return true
}

func (r *recordingNode) ticks() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tickCount
}

func TestPriorityOrderingWithinFirstTick(t *testing.T) {
	s := newTestScheduler(t)

	var mu sync.Mutex
	var order []string
	record := func(name string) func(*node.Context) {
		return func(ctx *node.Context) {
			mu.Lock()
			order = append(order, name)
			n := len(order)
			mu.Unlock()
			if n == 3 {
				s.Stop()
			}
		}
	}

	a := &recordingNode{name: "A", initOK: true}
	b := &recordingNode{name: "B", initOK: true}
	c := &recordingNode{name: "C", initOK: true}
	a.onTick = record("A")
	b.onTick = record("B")
	c.onTick = record("C")

	s.Add(a, 2, true)
	s.Add(b, 0, true)
	s.Add(c, 1, true)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"B", "C", "A"}, order)
}

func TestInitFailureIsolatesNode(t *testing.T) {
	s := newTestScheduler(t)

	x := &recordingNode{name: "X", initOK: false}
	y := &recordingNode{name: "Y", initOK: true}
	z := &recordingNode{name: "Z", initOK: true}

	stopAfter := 3
	y.onTick = func(ctx *node.Context) {
		if ctx.Tick() == uint64(stopAfter) {
			s.Stop()
		}
	}

	s.Add(x, 0, true)
	s.Add(y, 1, true)
	s.Add(z, 2, true)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}

	assert.Equal(t, 0, x.ticks())
	assert.Equal(t, 0, x.shutdownN)
	assert.True(t, y.ticks() > 0)
	assert.True(t, z.ticks() > 0)
	assert.Equal(t, 1, y.shutdownN)
	assert.Equal(t, 1, z.shutdownN)
}

func TestEmptySchedulerTickRate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping real-time tick-rate measurement in short mode")
	}
	s := newTestScheduler(t)

	counter := &recordingNode{name: "counter", initOK: true}
	s.Add(counter, 0, true)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	time.Sleep(1 * time.Second)
	s.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}

	ticks := counter.ticks()
	assert.InDelta(t, 60, ticks, 5)
}

func TestRunPublishesResourceUsageEachTick(t *testing.T) {
	s := newTestScheduler(t)
	a := &recordingNode{name: "A", initOK: true}
	a.onTick = func(ctx *node.Context) {
		if ctx.Tick() == 1 {
			s.Stop()
		}
	}
	s.Add(a, 0, true)

	resourceCh, err := topic.BindSubscriber[catalog.ResourceUsage](s.Registry(), reservedResourceTopic, catalog.TypeCustom)
	require.NoError(t, err)
	sub := handle.NewSubscriber[catalog.ResourceUsage](reservedResourceTopic, resourceCh, nil)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()
	require.NoError(t, <-done)

	var rec catalog.ResourceUsage
	ok, err := sub.Recv(&rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, rec.Valid())
}

func TestMetricsObserveTickAndNodeCounts(t *testing.T) {
	m := metrics.New()
	s := New(config.SchedulerConfig{TickHz: 60}, config.ChannelConfig{DefaultSlots: 8, DefaultMaxSubs: 16}, noopLogger(t), m)

	a := &recordingNode{name: "A", initOK: true}
	a.onTick = func(ctx *node.Context) {
		if ctx.Tick() == 2 {
			s.Stop()
		}
	}
	s.Add(a, 0, true)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}

	assert.True(t, testutil.CollectAndCount(m.TickDuration) > 0)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.NodesRunning))
}

func TestResourceSmoothingEasesTowardLatestReading(t *testing.T) {
	var r resourceSmoothing
	r.alpha = 0.5
	first := r.smooth(10)
	assert.Equal(t, 10.0, first)
	second := r.smooth(20)
	assert.Equal(t, 15.0, second)
	third := r.smooth(20)
	assert.Equal(t, 17.5, third)
}

func TestNodesReportsState(t *testing.T) {
	s := newTestScheduler(t)
	a := &recordingNode{name: "A", initOK: true}
	a.onTick = func(ctx *node.Context) { s.Stop() }
	s.Add(a, 0, true)

	done := make(chan error, 1)
	go func() { done <- s.Run() }()
	require.NoError(t, <-done)

	statuses := s.Nodes()
	require.Len(t, statuses, 1)
	assert.Equal(t, "A", statuses[0].Name)
	assert.Equal(t, StateShutdown, statuses[0].State)
}
