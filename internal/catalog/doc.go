// Package catalog defines the closed set of HORUS message types: fixed-size,
// pointer-free records whose Go memory layout is the wire format exchanged
// over shared-memory channels (internal/channel) and topics (internal/topic).
//
// Every type in this package is a plain struct of fixed-size fields only —
// no slices, maps, interfaces, or pointers — so that a byte-for-byte copy of
// a value is a complete, self-contained message. Inline arrays carry a
// companion count field recording how many elements are in use; callers
// must never read past that count.
//
// Each type provides:
//   - a zero-value constructor (New<Type>) producing a valid instance,
//     stamped with the current wall-clock timestamp when the type has a
//     TimestampNs field,
//   - a Valid() bool predicate checking finite floats, in-range enums, and
//     counts within capacity,
//   - any named constructors or domain helpers the type calls for.
//
// Message type identifiers (spec-normative, never renumber):
//
//	0 = Custom, 1 = Twist, 2 = Pose, 3 = LaserScan,
//	4 = Image, 5 = Imu, 6 = JointState, 7 = PointCloud
package catalog

// TypeID identifies a message's wire type across language bindings.
// Only the eight values below are normative; all other catalog types are
// identified by name within a single process and carry TypeCustom when
// crossing the ABI boundary described in spec §6.
type TypeID uint32

const (
	TypeCustom TypeID = iota
	TypeTwist
	TypePose
	TypeLaserScan
	TypeImage
	TypeImu
	TypeJointState
	TypePointCloud
)

func (t TypeID) String() string {
	switch t {
	case TypeCustom:
		return "CUSTOM"
	case TypeTwist:
		return "TWIST"
	case TypePose:
		return "POSE"
	case TypeLaserScan:
		return "LASER_SCAN"
	case TypeImage:
		return "IMAGE"
	case TypeImu:
		return "IMU"
	case TypeJointState:
		return "JOINT_STATE"
	case TypePointCloud:
		return "POINT_CLOUD"
	default:
		return "CUSTOM"
	}
}
