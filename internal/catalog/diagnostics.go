package catalog

import (
	"math"

	"github.com/google/uuid"
)

// Heartbeat is published once per tick by the scheduler on the reserved
// topic "__horus/heartbeat" to signal liveness independent of any node's own
// publications. RunID ties every heartbeat (and, transitively, every log
// record and introspection response an operator cross-references against
// it) back to one scheduler process lifetime.
type Heartbeat struct {
	TickNumber  uint64
	RunID       [16]byte
	NodeID      [32]byte
	TimestampNs int64
}

// NewHeartbeat returns a heartbeat for the given node, run, and tick.
func NewHeartbeat(nodeID string, runID uuid.UUID, tick uint64) Heartbeat {
	h := Heartbeat{TickNumber: tick, RunID: runID, TimestampNs: nowWall()}
	putFixedString(h.NodeID[:], nodeID)
	return h
}

// NodeName returns the originating node's identity.
func (h Heartbeat) NodeName() string { return getFixedString(h.NodeID[:]) }

// Run returns the scheduler run this heartbeat was emitted by.
func (h Heartbeat) Run() uuid.UUID { return uuid.UUID(h.RunID) }

// Valid reports whether the heartbeat carries a well-formed timestamp.
func (h Heartbeat) Valid() bool { return h.TimestampNs >= 0 }

// Severity enumerates the four levels a Status may report.
type Severity int32

const (
	SeverityOK Severity = iota
	SeverityWarn
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "OK"
	case SeverityWarn:
		return "WARN"
	case SeverityError:
		return "ERROR"
	case SeverityFatal:
		return "FATAL"
	default:
		return "OK"
	}
}

// Status is a node-reported health summary with a free-text message.
type Status struct {
	Level       Severity
	_pad0       [4]byte
	Message     [128]byte
	TimestampNs int64
}

// Ok returns a Status at SeverityOK with the given message.
func (Status) Ok(message string) Status { return newStatus(SeverityOK, message) }

// Warn returns a Status at SeverityWarn with the given message.
func (Status) Warn(message string) Status { return newStatus(SeverityWarn, message) }

// Error returns a Status at SeverityError with the given message.
func (Status) Error(message string) Status { return newStatus(SeverityError, message) }

// Fatal returns a Status at SeverityFatal with the given message.
func (Status) Fatal(message string) Status { return newStatus(SeverityFatal, message) }

func newStatus(level Severity, message string) Status {
	s := Status{Level: level, TimestampNs: nowWall()}
	putFixedString(s.Message[:], message)
	return s
}

// Text returns the status message.
func (s Status) Text() string { return getFixedString(s.Message[:]) }

// Valid reports whether the severity is one of the enumerated values.
func (s Status) Valid() bool { return s.Level >= SeverityOK && s.Level <= SeverityFatal }

// EmergencyStop is the catalog's sole safety-interlock message: once
// engaged, every node observing it is expected to halt actuation until a
// new EmergencyStop with Engaged=false is published.
type EmergencyStop struct {
	Engaged     bool
	_pad0       [7]byte
	Reason      [64]byte
	TimestampNs int64
}

// NewEmergencyStop returns a disengaged stop with no reason recorded.
func NewEmergencyStop() EmergencyStop {
	return EmergencyStop{TimestampNs: nowWall()}
}

// Engage returns an engaged EmergencyStop carrying the given reason.
func (EmergencyStop) Engage(reason string) EmergencyStop {
	e := EmergencyStop{Engaged: true, TimestampNs: nowWall()}
	putFixedString(e.Reason[:], reason)
	return e
}

// ReasonText returns the recorded engagement reason.
func (e EmergencyStop) ReasonText() string { return getFixedString(e.Reason[:]) }

// Valid reports whether the stop carries a well-formed timestamp.
func (e EmergencyStop) Valid() bool { return e.TimestampNs >= 0 }

// ResourceUsage reports a node's or process's resource consumption over the
// most recent sampling window.
type ResourceUsage struct {
	CpuPercent    float64
	MemoryBytes   uint64
	TickDurationNs int64
	TimestampNs   int64
}

// NewResourceUsage returns a zero-usage sample.
func NewResourceUsage() ResourceUsage {
	return ResourceUsage{TimestampNs: nowWall()}
}

// Valid reports whether CPU percentage is finite and non-negative.
func (r ResourceUsage) Valid() bool {
	return !math.IsNaN(r.CpuPercent) && !math.IsInf(r.CpuPercent, 0) && r.CpuPercent >= 0
}

// SafetyStatus aggregates the scheduler's view of overall system safety:
// whether the estop is engaged, how many nodes have crashed, and the
// worst severity status observed this tick. Published alongside Heartbeat
// once per tick on the reserved diagnostics topic.
type SafetyStatus struct {
	RunID         [16]byte
	TickNumber    uint64
	EstopEngaged  bool
	_pad0         [7]byte
	CrashedNodes  int32
	WorstSeverity Severity
	TimestampNs   int64
}

// NewSafetyStatus returns an all-clear safety status for the given run and
// tick, to be overridden by the caller once crashed-node counts are known.
func NewSafetyStatus(runID uuid.UUID, tick uint64) SafetyStatus {
	return SafetyStatus{RunID: runID, TickNumber: tick, WorstSeverity: SeverityOK, TimestampNs: nowWall()}
}

// Run returns the scheduler run this safety status was emitted by.
func (s SafetyStatus) Run() uuid.UUID { return uuid.UUID(s.RunID) }

// Valid reports whether crashed-node count is non-negative and the worst
// severity is one of the enumerated values.
func (s SafetyStatus) Valid() bool {
	if s.CrashedNodes < 0 {
		return false
	}
	return s.WorstSeverity >= SeverityOK && s.WorstSeverity <= SeverityFatal
}
