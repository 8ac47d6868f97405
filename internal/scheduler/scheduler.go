// Package scheduler implements the HORUS fixed-rate priority scheduler
// (spec component C6): a single OS thread drives every registered node's
// tick cooperatively at a nominal 60 Hz, advancing the deadline rather
// than accumulating catch-up after an overrun, and installing its own
// interrupt handler in the style the teacher codebase uses for graceful
// process shutdown.
package scheduler

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/horus-rt/horus/internal/catalog"
	"github.com/horus-rt/horus/internal/clock"
	"github.com/horus-rt/horus/internal/config"
	"github.com/horus-rt/horus/internal/handle"
	"github.com/horus-rt/horus/internal/logging"
	"github.com/horus-rt/horus/internal/logsink"
	"github.com/horus-rt/horus/internal/node"
	"github.com/horus-rt/horus/internal/topic"
)

// State is a node's position in the scheduler's lifecycle state machine:
// Unregistered -> Registered -> Initialized -> Running -> Stopping ->
// Shutdown -> Gone. Init failure jumps Registered straight to Gone.
type State int32

const (
	StateUnregistered State = iota
	StateRegistered
	StateInitialized
	StateRunning
	StateStopping
	StateShutdown
	StateGone
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateRegistered:
		return "registered"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateShutdown:
		return "shutdown"
	case StateGone:
		return "gone"
	default:
		return "unregistered"
	}
}

// reservedHeartbeatTopic and reservedSafetyTopic are published once per tick
// independent of any node's own publications, per SPEC_FULL's diagnostics
// supplement.
const (
	reservedHeartbeatTopic = "__horus/heartbeat"
	reservedSafetyTopic    = "__horus/safety"
	reservedResourceTopic  = "__horus/resource"
)

// resourceSmoothing is the EWMA decay applied to the per-tick load reading:
// higher weighs the latest tick more heavily, lower rides out single-tick
// spikes at the cost of lag. catalog.ResourceUsage is a fixed-size POD
// record and cannot carry this state itself, so the scheduler, the only
// producer, holds it.
type resourceSmoothing struct {
	alpha   float64
	has     bool
	loadPct float64
}

// smooth folds a new instantaneous load reading into the running average.
func (r *resourceSmoothing) smooth(instantPct float64) float64 {
	if !r.has {
		r.loadPct = instantPct
		r.has = true
		return r.loadPct
	}
	r.loadPct = r.alpha*instantPct + (1-r.alpha)*r.loadPct
	return r.loadPct
}

// Metrics receives scheduler observations. internal/metrics implements
// this with Prometheus collectors; tests may supply a no-op or recording
// stub instead.
type Metrics interface {
	ObserveTick(durationNs int64)
	ObserveNodeTick(node string, durationNs int64)
	IncOverrun(node string)
	SetNodeCounts(running, crashed int)
}

type nodeEntry struct {
	n            node.Node
	name         string
	priority     int
	logEnabled   bool
	regIndex     int
	state        State
	ctx          *node.Context
	crashed      bool
	overrunLimit *rate.Limiter
}

// Scheduler owns the registered nodes, the topic registry backing their
// channels, and the log sink they write to.
type Scheduler struct {
	entries  []*nodeEntry
	registry *topic.Registry
	sink     *logsink.Sink
	log      *logging.Logger
	metrics  Metrics

	period  time.Duration
	runID   uuid.UUID
	running atomic.Bool
	load    resourceSmoothing

	mu sync.Mutex
}

// New returns an idle Scheduler. metrics may be nil.
func New(schedCfg config.SchedulerConfig, chanCfg config.ChannelConfig, log *logging.Logger, metrics Metrics) *Scheduler {
	hz := schedCfg.TickHz
	if hz <= 0 {
		hz = 60
	}
	runID := uuid.New()
	sink := logsink.NewSink(1024)
	sink.SetRunID(runID)
	if lc, ok := metrics.(interface{ IncLogRecord() }); ok {
		sink.SetCounter(lc.IncLogRecord)
	}
	return &Scheduler{
		registry: topic.NewRegistry(chanCfg.DefaultSlots, chanCfg.DefaultMaxSubs),
		sink:     sink,
		log:      log,
		metrics:  metrics,
		period:   time.Second / time.Duration(hz),
		runID:    runID,
		load:     resourceSmoothing{alpha: 0.2},
	}
}

// Registry returns the topic registry nodes bind publishers/subscribers
// through.
func (s *Scheduler) Registry() *topic.Registry { return s.registry }

// Sink returns the scheduler's bounded log ring.
func (s *Scheduler) Sink() *logsink.Sink { return s.sink }

// RunID returns the identifier tagging every log-sink record, heartbeat and
// safety status this scheduler run produces, letting an operator correlate one process
// lifetime's output even if the process restarts under the same name.
func (s *Scheduler) RunID() uuid.UUID { return s.runID }

// Add registers a node at the given priority (lower runs earlier within a
// tick). Registration order breaks ties between equal priorities.
func (s *Scheduler) Add(n node.Node, priority int, logEnabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &nodeEntry{
		n:            n,
		name:         n.Name(),
		priority:     priority,
		logEnabled:   logEnabled,
		regIndex:     len(s.entries),
		state:        StateRegistered,
		overrunLimit: rate.NewLimiter(rate.Every(time.Second), 1),
	})
}

// Nodes returns a snapshot of every registered node's name and state, for
// introspection.
func (s *Scheduler) Nodes() []NodeStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]NodeStatus, len(s.entries))
	for i, e := range s.entries {
		out[i] = NodeStatus{
			Name:     e.name,
			Priority: e.priority,
			State:    e.state,
			Crashed:  e.crashed,
		}
		if e.ctx != nil {
			out[i].UptimeNs = e.ctx.UptimeNs()
			out[i].PublishedTopics = e.ctx.PublishedTopics()
			out[i].SubscribedTopics = e.ctx.SubscribedTopics()
		}
	}
	return out
}

// NodeStatus is a point-in-time snapshot of one registered node.
type NodeStatus struct {
	Name             string
	Priority         int
	State            State
	Crashed          bool
	UptimeNs         int64
	PublishedTopics  []string
	SubscribedTopics []string
}

// Stop requests cooperative shutdown: the scheduler finishes the tick in
// progress, then proceeds to node shutdown. Safe to call from any
// goroutine, including a signal handler.
func (s *Scheduler) Stop() { s.running.Store(false) }

// Run executes the full scheduler lifecycle: init every node, sort by
// priority, tick at the configured rate until stopped (by Stop or by an
// interrupt/SIGTERM), then shut every initialized node down in reverse
// priority order.
func (s *Scheduler) Run() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		s.log.Info("received interrupt, stopping after current tick")
		s.Stop()
	}()

	s.initNodes()
	s.sortByPriority()

	hbCh, err := topic.BindPublisher[catalog.Heartbeat](s.registry, reservedHeartbeatTopic, catalog.TypeCustom)
	if err != nil {
		return fmt.Errorf("scheduler: bind heartbeat topic: %w", err)
	}
	heartbeat := handle.NewPublisher[catalog.Heartbeat](reservedHeartbeatTopic, hbCh, nil)

	safetyCh, err := topic.BindPublisher[catalog.SafetyStatus](s.registry, reservedSafetyTopic, catalog.TypeCustom)
	if err != nil {
		return fmt.Errorf("scheduler: bind safety topic: %w", err)
	}
	safety := handle.NewPublisher[catalog.SafetyStatus](reservedSafetyTopic, safetyCh, nil)

	resourceCh, err := topic.BindPublisher[catalog.ResourceUsage](s.registry, reservedResourceTopic, catalog.TypeCustom)
	if err != nil {
		return fmt.Errorf("scheduler: bind resource topic: %w", err)
	}
	resource := handle.NewPublisher[catalog.ResourceUsage](reservedResourceTopic, resourceCh, nil)

	nextDeadline := clock.Deadline(time.Now(), s.period)
	s.running.Store(true)

	var tickNum uint64
	for s.running.Load() {
		tickStart := time.Now()
		s.runOneTick(tickNum)
		tickDur := time.Since(tickStart)
		running, crashed := s.countRunning(), s.countCrashed()
		if s.metrics != nil {
			s.metrics.ObserveTick(tickDur.Nanoseconds())
			s.metrics.SetNodeCounts(running, crashed)
		}

		_ = heartbeat.Send(catalog.NewHeartbeat("scheduler", s.runID, tickNum))
		_ = safety.Send(s.safetyStatus(tickNum, crashed))
		_ = resource.Send(s.resourceUsage(tickDur))

		now := time.Now()
		if now.Before(nextDeadline) {
			clock.SleepUntil(nextDeadline)
			nextDeadline = clock.Deadline(nextDeadline, s.period)
		} else {
			// Frame overrun: don't accumulate catch-up.
			nextDeadline = clock.Deadline(now, s.period)
		}
		tickNum++
	}

	s.shutdownNodes()
	s.registry.Teardown()
	return nil
}

func (s *Scheduler) initNodes() {
	for _, e := range s.entries {
		e.ctx = node.NewContext(e.name, s.registry, s.sink)
		if mr, ok := s.metrics.(node.MetricsRecorder); ok {
			e.ctx.SetMetrics(mr)
		}
		ok := s.callInit(e)
		if !ok {
			e.state = StateGone
			s.log.Error("node init failed", zap.String("node", e.name))
			continue
		}
		e.state = StateInitialized
	}
}

func (s *Scheduler) countRunning() int {
	n := 0
	for _, e := range s.entries {
		if e.state == StateRunning {
			n++
		}
	}
	return n
}

func (s *Scheduler) countCrashed() int {
	n := 0
	for _, e := range s.entries {
		if e.crashed {
			n++
		}
	}
	return n
}

// safetyStatus derives this tick's system-wide safety summary from each
// node's crashed flag: any crashed node makes the worst observed severity
// SeverityError, since a crashed node is a node no longer ticking.
func (s *Scheduler) safetyStatus(tickNum uint64, crashed int) catalog.SafetyStatus {
	status := catalog.NewSafetyStatus(s.runID, tickNum)
	status.CrashedNodes = int32(crashed)
	if crashed > 0 {
		status.WorstSeverity = catalog.SeverityError
	}
	return status
}

// resourceUsage samples this tick's load (tick duration as a fraction of the
// configured period, a cheap proxy for how saturated the tick budget is) and
// the process's current heap allocation, EWMA-smooths the load, and returns
// a ResourceUsage record. Not a true per-core CPU percentage — just the
// ratio the scheduler itself already measures every tick.
func (s *Scheduler) resourceUsage(tickDur time.Duration) catalog.ResourceUsage {
	instantPct := 100 * tickDur.Seconds() / s.period.Seconds()
	smoothed := s.load.smooth(instantPct)

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	u := catalog.NewResourceUsage()
	u.CpuPercent = smoothed
	u.MemoryBytes = mem.Alloc
	u.TickDurationNs = tickDur.Nanoseconds()
	return u
}

func (s *Scheduler) callInit(e *nodeEntry) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("node init panicked", zap.String("node", e.name), zap.Any("panic", r))
			ok = false
		}
	}()
	return e.n.Init(e.ctx)
}

// sortByPriority performs the stable priority sort spec §4.6 step 2
// describes, computed exactly once after init.
func (s *Scheduler) sortByPriority() {
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].priority < s.entries[j].priority
	})
}

func (s *Scheduler) runOneTick(tickNum uint64) {
	for _, e := range s.entries {
		if e.state != StateInitialized && e.state != StateRunning {
			continue
		}
		e.state = StateRunning
		e.ctx.AdvanceTick(tickNum)

		start := time.Now()
		s.callTick(e)
		dur := time.Since(start)

		if s.metrics != nil {
			s.metrics.ObserveNodeTick(e.name, dur.Nanoseconds())
		}
		if dur > s.period {
			if s.metrics != nil {
				s.metrics.IncOverrun(e.name)
			}
			if e.overrunLimit.Allow() {
				s.log.Warn("node tick exceeded period",
					zap.String("node", e.name), zap.Duration("duration", dur), zap.Duration("period", s.period))
			}
		}
	}
}

// callTick invokes one node's Tick, converting a panic into a TickFault
// (spec §7): logged, the node moves to Stopping and never ticks again,
// every other node continues unaffected.
func (s *Scheduler) callTick(e *nodeEntry) {
	defer func() {
		if r := recover(); r != nil {
			e.crashed = true
			s.log.Error("node tick panicked, node stopped",
				zap.String("node", e.name), zap.Any("panic", r))
			e.state = StateStopping
		}
	}()
	e.n.Tick(e.ctx)
}

// shutdownNodes calls Shutdown on every node that successfully initialized,
// in reverse priority order, exactly once each.
func (s *Scheduler) shutdownNodes() {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.state == StateGone || e.state == StateShutdown {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.log.Error("node shutdown panicked", zap.String("node", e.name), zap.Any("panic", r))
				}
			}()
			e.n.Shutdown(e.ctx)
		}()
		e.state = StateShutdown
	}
}
