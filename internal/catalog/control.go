package catalog

import "math"

// MotorCommand is a single actuator velocity or effort setpoint.
type MotorCommand struct {
	VelocityRadS float64
	EffortNm     float64
	TimestampNs  int64
}

// NewMotorCommand returns a zero-velocity, zero-effort command.
func NewMotorCommand() MotorCommand {
	return MotorCommand{TimestampNs: nowWall()}
}

// Velocity returns a velocity-only motor command, effort left at zero.
func (MotorCommand) Velocity(radPerSec float64) MotorCommand {
	return MotorCommand{VelocityRadS: radPerSec, TimestampNs: nowWall()}
}

// Valid reports whether velocity and effort are finite.
func (m MotorCommand) Valid() bool {
	return !math.IsNaN(m.VelocityRadS) && !math.IsInf(m.VelocityRadS, 0) &&
		!math.IsNaN(m.EffortNm) && !math.IsInf(m.EffortNm, 0)
}

// DifferentialDriveCommand is a pair of per-wheel angular velocity
// setpoints derived from a commanded linear/angular twist.
type DifferentialDriveCommand struct {
	LeftRadS, RightRadS float64
	TimestampNs         int64
}

// NewDifferentialDriveCommand returns a stopped drive command.
func NewDifferentialDriveCommand() DifferentialDriveCommand {
	return DifferentialDriveCommand{TimestampNs: nowWall()}
}

// FromTwist derives per-wheel angular velocities from a commanded linear
// and angular velocity, given the wheel separation (wheelBase) and wheel
// radius, per the catalog's frozen inverse-kinematics formula:
//
//	left  = (linear − angular·wheelBase/2) / wheelRadius
//	right = (linear + angular·wheelBase/2) / wheelRadius
func (DifferentialDriveCommand) FromTwist(linear, angular, wheelBase, wheelRadius float64) DifferentialDriveCommand {
	return DifferentialDriveCommand{
		LeftRadS:    (linear - angular*wheelBase/2) / wheelRadius,
		RightRadS:   (linear + angular*wheelBase/2) / wheelRadius,
		TimestampNs: nowWall(),
	}
}

// Valid reports whether both wheel velocities are finite.
func (d DifferentialDriveCommand) Valid() bool {
	return !math.IsNaN(d.LeftRadS) && !math.IsInf(d.LeftRadS, 0) &&
		!math.IsNaN(d.RightRadS) && !math.IsInf(d.RightRadS, 0)
}

// ServoCommand is a single servo's target angle, in radians, clamped to the
// servo's travel at write time by the caller.
type ServoCommand struct {
	AngleRad    float64
	TimestampNs int64
}

// NewServoCommand returns a zero-angle servo command.
func NewServoCommand() ServoCommand {
	return ServoCommand{TimestampNs: nowWall()}
}

// Valid reports whether the angle is finite.
func (s ServoCommand) Valid() bool {
	return !math.IsNaN(s.AngleRad) && !math.IsInf(s.AngleRad, 0)
}

// PidConfig is a set of PID gains plus output clamp limits for a single
// control loop.
type PidConfig struct {
	Kp, Ki, Kd   float64
	OutputMin    float64
	OutputMax    float64
}

// NewPidConfig returns a proportional-only config with unclamped output.
func NewPidConfig(kp float64) PidConfig {
	return PidConfig{Kp: kp, OutputMin: math.Inf(-1), OutputMax: math.Inf(1)}
}

// Clamp bounds value to [OutputMin, OutputMax].
func (p PidConfig) Clamp(value float64) float64 {
	if value < p.OutputMin {
		return p.OutputMin
	}
	if value > p.OutputMax {
		return p.OutputMax
	}
	return value
}

// Valid reports whether gains are finite and the output bounds are ordered.
func (p PidConfig) Valid() bool {
	if math.IsNaN(p.Kp) || math.IsNaN(p.Ki) || math.IsNaN(p.Kd) {
		return false
	}
	if math.IsInf(p.Kp, 0) || math.IsInf(p.Ki, 0) || math.IsInf(p.Kd, 0) {
		return false
	}
	return p.OutputMax >= p.OutputMin
}

// TrajectoryPoint is a single timestamped waypoint in joint or Cartesian
// space along a planned trajectory.
type TrajectoryPoint struct {
	Position     float64
	Velocity     float64
	Acceleration float64
	TimeFromStartNs int64
}

// NewTrajectoryPoint returns a point at rest at time zero.
func NewTrajectoryPoint() TrajectoryPoint { return TrajectoryPoint{} }

// Valid reports whether all fields are finite and the time offset is
// non-negative.
func (t TrajectoryPoint) Valid() bool {
	if math.IsNaN(t.Position) || math.IsNaN(t.Velocity) || math.IsNaN(t.Acceleration) {
		return false
	}
	if math.IsInf(t.Position, 0) || math.IsInf(t.Velocity, 0) || math.IsInf(t.Acceleration, 0) {
		return false
	}
	return t.TimeFromStartNs >= 0
}

// JointCommandMaxJoints is the inline capacity of JointCommand's joint
// arrays (spec §4.1 normative table): 16 joints, 32-byte names.
const JointCommandMaxJoints = 16

// JointCommand is a synchronized multi-joint position/velocity/effort
// setpoint, addressed by name.
type JointCommand struct {
	Names       [JointCommandMaxJoints][32]byte
	Positions   [JointCommandMaxJoints]float64
	Velocities  [JointCommandMaxJoints]float64
	Efforts     [JointCommandMaxJoints]float64
	Count       int32
	_pad0       [4]byte
	TimestampNs int64
}

// NewJointCommand returns an empty joint command.
func NewJointCommand() JointCommand {
	return JointCommand{TimestampNs: nowWall()}
}

// JointName returns the name of the joint at index i.
func (j JointCommand) JointName(i int) string { return getFixedString(j.Names[i][:]) }

// SetJoint appends a joint setpoint. It is a no-op once Count reaches
// JointCommandMaxJoints.
func (j *JointCommand) SetJoint(name string, position, velocity, effort float64) {
	if int(j.Count) >= JointCommandMaxJoints {
		return
	}
	i := j.Count
	putFixedString(j.Names[i][:], name)
	j.Positions[i] = position
	j.Velocities[i] = velocity
	j.Efforts[i] = effort
	j.Count++
}

// Valid reports whether Count is within capacity and every setpoint in use
// is finite.
func (j JointCommand) Valid() bool {
	if j.Count < 0 || int(j.Count) > JointCommandMaxJoints {
		return false
	}
	for i := int32(0); i < j.Count; i++ {
		if math.IsNaN(j.Positions[i]) || math.IsNaN(j.Velocities[i]) || math.IsNaN(j.Efforts[i]) {
			return false
		}
		if math.IsInf(j.Positions[i], 0) || math.IsInf(j.Velocities[i], 0) || math.IsInf(j.Efforts[i], 0) {
			return false
		}
	}
	return true
}
