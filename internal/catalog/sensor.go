package catalog

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// LaserScanMaxRanges is the inline capacity of LaserScan.Ranges (spec §4.1).
const LaserScanMaxRanges = 360

// LaserScan is a single planar range-finder sweep.
type LaserScan struct {
	AngleMin, AngleMax   float64
	AngleIncrement       float64
	RangeMin, RangeMax   float64
	Ranges               [LaserScanMaxRanges]float64
	Count                int32
	_pad0                [4]byte
	TimestampNs          int64
}

// NewLaserScan returns an empty scan stamped with the current time.
func NewLaserScan() LaserScan {
	return LaserScan{TimestampNs: nowWall()}
}

// Valid reports whether the configured count is in range, the angle/range
// bounds are ordered and finite, and every reading in use is finite.
func (l LaserScan) Valid() bool {
	if l.Count < 0 || int(l.Count) > LaserScanMaxRanges {
		return false
	}
	if math.IsNaN(l.AngleMin) || math.IsNaN(l.AngleMax) || math.IsInf(l.AngleMin, 0) || math.IsInf(l.AngleMax, 0) || l.AngleMax < l.AngleMin {
		return false
	}
	if math.IsNaN(l.RangeMin) || math.IsNaN(l.RangeMax) || math.IsInf(l.RangeMin, 0) || math.IsInf(l.RangeMax, 0) || l.RangeMax < l.RangeMin {
		return false
	}
	for i := int32(0); i < l.Count; i++ {
		if math.IsNaN(l.Ranges[i]) || math.IsInf(l.Ranges[i], 0) {
			return false
		}
	}
	return true
}

// validRanges returns the readings within [RangeMin, RangeMax], matching the
// "ignoring readings outside range" rule spec §4.1 prescribes for MinRange.
func (l LaserScan) validRanges() []float64 {
	out := make([]float64, 0, l.Count)
	for i := int32(0); i < l.Count; i++ {
		r := l.Ranges[i]
		if r >= l.RangeMin && r <= l.RangeMax {
			out = append(out, r)
		}
	}
	return out
}

// MinRange returns the smallest in-range reading, or RangeMax if none exist.
func (l LaserScan) MinRange() float64 {
	vs := l.validRanges()
	if len(vs) == 0 {
		return l.RangeMax
	}
	min := vs[0]
	for _, v := range vs[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// MeanRange returns the mean of the in-range readings, or 0 if none exist.
func (l LaserScan) MeanRange() float64 {
	vs := l.validRanges()
	if len(vs) == 0 {
		return 0
	}
	return stat.Mean(vs, nil)
}

// Imu is an inertial measurement: orientation, angular velocity, and linear
// acceleration, each with an optional 3x3 row-major covariance.
//
// Per spec §9, the covariance sentinel convention is frozen as found in the
// original: OrientationCovariance[0] < 0 means "orientation not available",
// matching the wider ROS-family convention this catalog follows.
type Imu struct {
	Orientation                Quaternion
	OrientationCovariance      [9]float64
	AngularVelocity             Vector3
	AngularVelocityCovariance   [9]float64
	LinearAcceleration          Vector3
	LinearAccelerationCovariance [9]float64
	TimestampNs                 int64
}

// NewImu returns an Imu with no orientation data (covariance[0] = -1) and
// zero velocity/acceleration, stamped with the current time.
func NewImu() Imu {
	im := Imu{Orientation: NewQuaternion(), TimestampNs: nowWall()}
	im.OrientationCovariance[0] = -1
	return im
}

// HasOrientation reports whether orientation data is present.
func (i Imu) HasOrientation() bool { return i.OrientationCovariance[0] >= 0 }

// Valid reports whether all vector/quaternion fields are finite.
func (i Imu) Valid() bool {
	if !i.Orientation.Valid() || !i.AngularVelocity.Valid() || !i.LinearAcceleration.Valid() {
		return false
	}
	for _, c := range i.OrientationCovariance {
		if math.IsNaN(c) {
			return false
		}
	}
	return true
}

// Odometry is an estimated pose and velocity in a named frame.
type Odometry struct {
	Position     Vector3
	Orientation  Quaternion
	LinearVel    Vector3
	AngularVel   Vector3
	Frame        [32]byte
	ChildFrame   [32]byte
	TimestampNs  int64
}

// NewOdometry returns a zero odometry estimate in the given frames.
func NewOdometry(frame, childFrame string) Odometry {
	o := Odometry{Orientation: NewQuaternion(), TimestampNs: nowWall()}
	putFixedString(o.Frame[:], frame)
	putFixedString(o.ChildFrame[:], childFrame)
	return o
}

// FrameID returns the parent frame name.
func (o Odometry) FrameID() string { return getFixedString(o.Frame[:]) }

// ChildFrameID returns the child frame name.
func (o Odometry) ChildFrameID() string { return getFixedString(o.ChildFrame[:]) }

// Valid reports whether all vector/quaternion fields are finite.
func (o Odometry) Valid() bool {
	return o.Position.Valid() && o.Orientation.Valid() && o.LinearVel.Valid() && o.AngularVel.Valid()
}

// Range is a single-beam range reading (ultrasonic, IR, ToF).
type Range struct {
	MinRange, MaxRange float64
	FieldOfView        float64
	Reading            float64
	TimestampNs        int64
}

// NewRange returns a zero-reading range sensor sample.
func NewRange() Range { return Range{TimestampNs: nowWall()} }

// Valid reports whether bounds are ordered and the reading is finite.
func (r Range) Valid() bool {
	return r.MaxRange >= r.MinRange && !math.IsNaN(r.Reading) && !math.IsInf(r.Reading, 0)
}

// BatteryState reports power-system telemetry.
type BatteryState struct {
	Voltage     float64
	Current     float64
	Charge      float64 // fraction in [0, 1], NaN if unknown
	Temperature float64
	TimestampNs int64
}

// NewBatteryState returns a BatteryState with unknown charge.
func NewBatteryState() BatteryState {
	return BatteryState{Charge: math.NaN(), TimestampNs: nowWall()}
}

// Valid reports whether voltage/current/temperature are finite and charge is
// either NaN (unknown) or within [0, 1].
func (b BatteryState) Valid() bool {
	if math.IsNaN(b.Voltage) || math.IsInf(b.Voltage, 0) {
		return false
	}
	if math.IsNaN(b.Current) || math.IsInf(b.Current, 0) {
		return false
	}
	if math.IsNaN(b.Temperature) || math.IsInf(b.Temperature, 0) {
		return false
	}
	if !math.IsNaN(b.Charge) && (b.Charge < 0 || b.Charge > 1) {
		return false
	}
	return true
}
