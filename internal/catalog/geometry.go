package catalog

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vector3 is a free 3-vector, laid out identically to gonum's r3.Vec so the
// geometry helpers below can delegate to it without a copy.
type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) vec() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

func fromR3(v r3.Vec) Vector3 { return Vector3{X: v.X, Y: v.Y, Z: v.Z} }

// NewVector3 returns the zero vector.
func NewVector3() Vector3 { return Vector3{} }

// Valid reports whether all components are finite.
func (v Vector3) Valid() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// Norm returns the Euclidean length of v.
func (v Vector3) Norm() float64 { return r3.Norm(v.vec()) }

// Dot returns the dot product of v and o.
func (v Vector3) Dot(o Vector3) float64 { return r3.Dot(v.vec(), o.vec()) }

// Cross returns the cross product v x o.
func (v Vector3) Cross(o Vector3) Vector3 { return fromR3(r3.Cross(v.vec(), o.vec())) }

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 { return fromR3(r3.Add(v.vec(), o.vec())) }

// Sub returns v - o.
func (v Vector3) Sub(o Vector3) Vector3 { return fromR3(r3.Sub(v.vec(), o.vec())) }

// Point3 is a point in 3-space, distinct from Vector3 to keep "position" and
// "displacement" from being interchanged by accident at call sites.
type Point3 struct {
	X, Y, Z float64
}

// NewPoint3 returns the origin.
func NewPoint3() Point3 { return Point3{} }

// Valid reports whether all components are finite.
func (p Point3) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// Quaternion is a unit-norm orientation in Hamilton (w, x, y, z) convention.
type Quaternion struct {
	X, Y, Z, W float64
}

func (q Quaternion) num() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func quaternionFromNum(n quat.Number) Quaternion {
	return Quaternion{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// NewQuaternion returns the identity orientation (0, 0, 0, 1).
func NewQuaternion() Quaternion { return Quaternion{W: 1} }

// Valid reports whether all components are finite. Unlike most catalog
// types, a Quaternion's unit-norm invariant is enforced by Normalize, not by
// Valid — a non-unit but finite quaternion is still a well-formed value.
func (q Quaternion) Valid() bool {
	return !math.IsNaN(q.X) && !math.IsInf(q.X, 0) &&
		!math.IsNaN(q.Y) && !math.IsInf(q.Y, 0) &&
		!math.IsNaN(q.Z) && !math.IsInf(q.Z, 0) &&
		!math.IsNaN(q.W) && !math.IsInf(q.W, 0)
}

// Normalize returns q scaled to unit norm. The identity quaternion is
// returned if q has zero norm.
func (q Quaternion) Normalize() Quaternion {
	n := quat.Abs(q.num())
	if n == 0 {
		return NewQuaternion()
	}
	return quaternionFromNum(quat.Scale(1/n, q.num()))
}

// Mul returns the Hamilton product q * o, representing the composition of
// two rotations (apply o, then q).
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return quaternionFromNum(quat.Mul(q.num(), o.num()))
}

// Twist is an instantaneous linear/angular velocity command.
type Twist struct {
	Linear      Vector3
	Angular     Vector3
	TimestampNs int64
}

// NewTwist returns a zero twist stamped with the current time.
func NewTwist() Twist {
	return Twist{TimestampNs: nowWall()}
}

// Stop returns the twist idiom used to command an immediate halt.
func (Twist) Stop() Twist {
	return NewTwist()
}

// Valid reports whether both vectors are finite.
func (t Twist) Valid() bool {
	return t.Linear.Valid() && t.Angular.Valid()
}

// Pose2D is a planar position and heading.
type Pose2D struct {
	X, Y, Theta float64
	TimestampNs int64
}

// NewPose2D returns the origin pose stamped with the current time.
func NewPose2D() Pose2D {
	return Pose2D{TimestampNs: nowWall()}
}

// Valid reports whether all fields are finite.
func (p Pose2D) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Theta) && !math.IsInf(p.Theta, 0)
}

// Transform is a rigid-body translation plus orientation between two named
// coordinate frames.
type Transform struct {
	Translation Vector3
	Rotation    Quaternion
	Frame       [32]byte
	ChildFrame  [32]byte
	TimestampNs int64
}

// NewTransform returns the identity transform between the given frames.
func NewTransform(frame, childFrame string) Transform {
	t := Transform{Rotation: NewQuaternion(), TimestampNs: nowWall()}
	putFixedString(t.Frame[:], frame)
	putFixedString(t.ChildFrame[:], childFrame)
	return t
}

// FrameID returns the parent frame name.
func (t Transform) FrameID() string { return getFixedString(t.Frame[:]) }

// ChildFrameID returns the child frame name.
func (t Transform) ChildFrameID() string { return getFixedString(t.ChildFrame[:]) }

// Valid reports whether the translation and rotation are both finite.
func (t Transform) Valid() bool {
	return t.Translation.Valid() && t.Rotation.Valid()
}

// Compose returns the transform equivalent to applying t then o: translation
// and rotation compose so that (t.Compose(o)) maps points expressed in o's
// child frame into t's parent frame.
func (t Transform) Compose(o Transform) Transform {
	rotated := rotateVector(t.Rotation, o.Translation)
	out := Transform{
		Translation: t.Translation.Add(rotated),
		Rotation:    t.Rotation.Mul(o.Rotation).Normalize(),
		Frame:       t.Frame,
		ChildFrame:  o.ChildFrame,
		TimestampNs: nowWall(),
	}
	return out
}

// rotateVector applies q's rotation to v.
func rotateVector(q Quaternion, v Vector3) Vector3 {
	p := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	qn := q.Normalize().num()
	r := quat.Mul(quat.Mul(qn, p), quat.Conj(qn))
	return Vector3{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}
