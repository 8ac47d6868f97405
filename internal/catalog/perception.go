package catalog

import "math"

// PointCloudMaxPoints is the inline capacity of PointCloud.Points, sized so
// Points+Intensity together approximate the 2 MiB budget spec §4.1's
// normative table gives PointCloud.data.
const PointCloudMaxPoints = 65536

// PointCloud is a bounded set of points in a named frame, optionally carrying
// per-point intensity.
type PointCloud struct {
	Points      [PointCloudMaxPoints]Point3
	Intensity   [PointCloudMaxPoints]float32
	Count       int32
	Frame       [32]byte
	_pad0       [4]byte
	TimestampNs int64
}

// NewPointCloud returns an empty cloud in the given frame.
func NewPointCloud(frame string) PointCloud {
	p := PointCloud{TimestampNs: nowWall()}
	putFixedString(p.Frame[:], frame)
	return p
}

// FrameID returns the cloud's coordinate frame name.
func (p PointCloud) FrameID() string { return getFixedString(p.Frame[:]) }

// Valid reports whether Count is within capacity and every point in use is
// finite.
func (p PointCloud) Valid() bool {
	if p.Count < 0 || int(p.Count) > PointCloudMaxPoints {
		return false
	}
	for i := int32(0); i < p.Count; i++ {
		if !p.Points[i].Valid() {
			return false
		}
	}
	return true
}

// BoundingBox3D is an axis-aligned or oriented 3D detection volume.
type BoundingBox3D struct {
	Center     Point3
	Size       Vector3 // width, depth, height
	Rotation   Quaternion
	ClassID    int32
	Confidence float64
	_pad0      [4]byte
}

// NewBoundingBox3D returns a zero-size box at the origin with identity
// rotation and the given class.
func NewBoundingBox3D(classID int32) BoundingBox3D {
	return BoundingBox3D{Rotation: NewQuaternion(), ClassID: classID}
}

// Valid reports whether geometry is finite and confidence is within [0, 1].
func (b BoundingBox3D) Valid() bool {
	if !b.Center.Valid() || !b.Size.Valid() || !b.Rotation.Valid() {
		return false
	}
	return !math.IsNaN(b.Confidence) && b.Confidence >= 0 && b.Confidence <= 1
}

// BoundingBoxArray3DMaxEntries is the inline capacity of
// BoundingBoxArray3D.Items (spec §4.1 normative table).
const BoundingBoxArray3DMaxEntries = 32

// BoundingBoxArray3D is a bounded batch of BoundingBox3D results for one
// perception cycle.
type BoundingBoxArray3D struct {
	Items       [BoundingBoxArray3DMaxEntries]BoundingBox3D
	Count       int32
	_pad0       [4]byte
	TimestampNs int64
}

// NewBoundingBoxArray3D returns an empty box batch.
func NewBoundingBoxArray3D() BoundingBoxArray3D {
	return BoundingBoxArray3D{TimestampNs: nowWall()}
}

// Valid reports whether Count is within capacity and every entry in use is
// itself valid.
func (b BoundingBoxArray3D) Valid() bool {
	if b.Count < 0 || int(b.Count) > BoundingBoxArray3DMaxEntries {
		return false
	}
	for i := int32(0); i < b.Count; i++ {
		if !b.Items[i].Valid() {
			return false
		}
	}
	return true
}

// DepthImageMaxPixels is the inline capacity of DepthImage.Depths (spec
// §4.1 normative table): 1280x960.
const DepthImageMaxPixels = 1280 * 960

// DepthImage is a per-pixel depth map in meters, 0 meaning "no return".
type DepthImage struct {
	Width, Height int32
	Depths        [DepthImageMaxPixels]float32
	TimestampNs   int64
}

// NewDepthImage returns a depth map of the given dimensions with every pixel
// set to "no return".
func NewDepthImage(width, height int32) DepthImage {
	return DepthImage{Width: width, Height: height, TimestampNs: nowWall()}
}

// Valid reports whether dimensions are non-negative, fit inline capacity,
// and every depth value is finite and non-negative.
func (d DepthImage) Valid() bool {
	if d.Width < 0 || d.Height < 0 {
		return false
	}
	if int(d.Width)*int(d.Height) > DepthImageMaxPixels {
		return false
	}
	n := int(d.Width) * int(d.Height)
	for i := 0; i < n; i++ {
		v := d.Depths[i]
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) || v < 0 {
			return false
		}
	}
	return true
}

// ToPointCloud back-projects this depth map's valid (non-zero) pixels into a
// point cloud using the pinhole intrinsics fx, fy, cx, cy, per spec §4.1:
// x = (u − cx)·z / fx, with y and z following the analogous relations.
// Points are emitted in row-major pixel order until PointCloudMaxPoints is
// reached; any remainder is dropped.
func (d DepthImage) ToPointCloud(fx, fy, cx, cy float64, frame string) PointCloud {
	pc := NewPointCloud(frame)
	n := int(d.Width) * int(d.Height)
	for idx := 0; idx < n && int(pc.Count) < PointCloudMaxPoints; idx++ {
		z := float64(d.Depths[idx])
		if z <= 0 {
			continue
		}
		u := float64(idx % int(d.Width))
		v := float64(idx / int(d.Width))
		x := (u - cx) * z / fx
		y := (v - cy) * z / fy
		pc.Points[pc.Count] = Point3{X: x, Y: y, Z: z}
		pc.Count++
	}
	return pc
}

// PlaneDetection is a fitted planar surface: ax + by + cz + d = 0, with an
// inlier point count from the fit.
type PlaneDetection struct {
	A, B, C, D float64
	InlierCount int32
	_pad0       [4]byte
}

// NewPlaneDetection returns the ground-plane default z = 0.
func NewPlaneDetection() PlaneDetection {
	return PlaneDetection{C: 1}
}

// Valid reports whether the coefficients are finite and the normal
// (a, b, c) is non-zero.
func (p PlaneDetection) Valid() bool {
	if math.IsNaN(p.A) || math.IsNaN(p.B) || math.IsNaN(p.C) || math.IsNaN(p.D) {
		return false
	}
	if math.IsInf(p.A, 0) || math.IsInf(p.B, 0) || math.IsInf(p.C, 0) || math.IsInf(p.D, 0) {
		return false
	}
	return p.A != 0 || p.B != 0 || p.C != 0
}

// PlaneArrayMaxEntries is the inline capacity of PlaneArray.Items (spec
// §4.1 normative table).
const PlaneArrayMaxEntries = 16

// PlaneArray is a bounded batch of PlaneDetection results.
type PlaneArray struct {
	Items       [PlaneArrayMaxEntries]PlaneDetection
	Count       int32
	_pad0       [4]byte
	TimestampNs int64
}

// NewPlaneArray returns an empty plane batch.
func NewPlaneArray() PlaneArray { return PlaneArray{TimestampNs: nowWall()} }

// Valid reports whether Count is within capacity and every entry in use is
// itself valid.
func (p PlaneArray) Valid() bool {
	if p.Count < 0 || int(p.Count) > PlaneArrayMaxEntries {
		return false
	}
	for i := int32(0); i < p.Count; i++ {
		if !p.Items[i].Valid() {
			return false
		}
	}
	return true
}
