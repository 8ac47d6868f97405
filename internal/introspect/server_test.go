package introspect

import (
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/horus-rt/horus/internal/catalog"
	"github.com/horus-rt/horus/internal/config"
	"github.com/horus-rt/horus/internal/logging"
	"github.com/horus-rt/horus/internal/metrics"
	"github.com/horus-rt/horus/internal/scheduler"
	"github.com/horus-rt/horus/internal/topic"
)

type fakeScheduler struct {
	runID    uuid.UUID
	statuses []scheduler.NodeStatus
}

func (f *fakeScheduler) Nodes() []scheduler.NodeStatus { return f.statuses }
func (f *fakeScheduler) RunID() uuid.UUID              { return f.runID }

func testLogger() *logging.Logger {
	return &logging.Logger{Logger: zap.NewNop()}
}

func TestHealthzReportsRunID(t *testing.T) {
	id := uuid.New()
	fake := &fakeScheduler{runID: id}
	reg := topic.NewRegistry(8, 16)
	srv := New(config.IntrospectConfig{Addr: "127.0.0.1:0"}, testLogger(), fake, reg, metrics.New())

	req := httptest.NewRequest("GET", "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), id.String())
}

func TestNodesReflectsSchedulerSnapshot(t *testing.T) {
	id := uuid.New()
	fake := &fakeScheduler{
		runID: id,
		statuses: []scheduler.NodeStatus{
			{Name: "planner", Priority: 1, State: scheduler.StateRunning, PublishedTopics: []string{"cmd_vel"}},
		},
	}
	reg := topic.NewRegistry(8, 16)
	srv := New(config.IntrospectConfig{Addr: "127.0.0.1:0"}, testLogger(), fake, reg, metrics.New())

	req := httptest.NewRequest("GET", "/nodes", nil)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "planner")
	assert.Contains(t, rec.Body.String(), "cmd_vel")
	assert.Contains(t, rec.Body.String(), id.String())
}

func TestTopicsListsBoundChannels(t *testing.T) {
	reg := topic.NewRegistry(8, 16)
	_, err := topic.BindPublisher[catalog.Twist](reg, "cmd_vel", catalog.TypeTwist)
	require.NoError(t, err)

	id := uuid.New()
	fake := &fakeScheduler{runID: id}
	srv := New(config.IntrospectConfig{Addr: "127.0.0.1:0"}, testLogger(), fake, reg, metrics.New())

	req := httptest.NewRequest("GET", "/topics", nil)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "cmd_vel")
	assert.Contains(t, rec.Body.String(), id.String())
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	reg := topic.NewRegistry(8, 16)
	fake := &fakeScheduler{}
	srv := New(config.IntrospectConfig{Addr: "127.0.0.1:0"}, testLogger(), fake, reg, metrics.New())

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "horus_uptime_seconds")
}
