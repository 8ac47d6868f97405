package catalog

import "math"

// ImageMaxBytes is the inline capacity of Image.Data (spec §4.1 normative
// table): 2 MiB, shared across whatever width/height/channel combination the
// producer chooses as long as it fits.
const ImageMaxBytes = 2 * 1024 * 1024

// Image is an uncompressed raster frame in a fixed-capacity inline buffer.
// Encoding determines how Width*Height*Channels relates to len used.
type Image struct {
	Width, Height int32
	Channels      int32
	Encoding      [16]byte
	Data          [ImageMaxBytes]byte
	Len           int32
	_pad0         [4]byte
	TimestampNs   int64
}

// NewImage returns an empty image with the given encoding tag.
func NewImage(encoding string) Image {
	im := Image{TimestampNs: nowWall()}
	putFixedString(im.Encoding[:], encoding)
	return im
}

// EncodingName returns the pixel encoding tag (e.g. "rgb8", "mono8").
func (i Image) EncodingName() string { return getFixedString(i.Encoding[:]) }

// Valid reports whether dimensions and the used length are non-negative and
// within inline capacity.
func (i Image) Valid() bool {
	if i.Width < 0 || i.Height < 0 || i.Channels < 0 {
		return false
	}
	if i.Len < 0 || int(i.Len) > ImageMaxBytes {
		return false
	}
	return true
}

// CompressedImageMaxBytes is the inline capacity of CompressedImage.Data
// (spec §4.1 normative table): 512 KiB.
const CompressedImageMaxBytes = 512 * 1024

// CompressedImage is an encoded image frame (e.g. JPEG, PNG) in a
// fixed-capacity inline buffer.
type CompressedImage struct {
	Format      [8]byte
	Data        [CompressedImageMaxBytes]byte
	Len         int32
	_pad0       [4]byte
	TimestampNs int64
}

// NewCompressedImage returns an empty compressed image of the given format.
func NewCompressedImage(format string) CompressedImage {
	c := CompressedImage{TimestampNs: nowWall()}
	putFixedString(c.Format[:], format)
	return c
}

// FormatName returns the compression format tag (e.g. "jpeg").
func (c CompressedImage) FormatName() string { return getFixedString(c.Format[:]) }

// Valid reports whether the used length is within inline capacity.
func (c CompressedImage) Valid() bool {
	return c.Len >= 0 && int(c.Len) <= CompressedImageMaxBytes
}

// RegionOfInterest bounds a rectangular sub-window of an image.
type RegionOfInterest struct {
	XOffset, YOffset int32
	Width, Height    int32
}

// NewRegionOfInterest returns the zero-size region at the origin.
func NewRegionOfInterest() RegionOfInterest { return RegionOfInterest{} }

// Valid reports whether all fields are non-negative.
func (r RegionOfInterest) Valid() bool {
	return r.XOffset >= 0 && r.YOffset >= 0 && r.Width >= 0 && r.Height >= 0
}

// CameraInfo carries the pinhole intrinsics and distortion coefficients for
// the image stream it is paired with.
type CameraInfo struct {
	Width, Height int32
	K             [9]float64 // 3x3 intrinsic matrix, row-major
	D             [5]float64 // plumb-bob distortion coefficients
	Roi           RegionOfInterest
	TimestampNs   int64
}

// NewCameraInfo returns a CameraInfo with identity intrinsics.
func NewCameraInfo(width, height int32) CameraInfo {
	c := CameraInfo{Width: width, Height: height, TimestampNs: nowWall()}
	c.K[0], c.K[4], c.K[8] = 1, 1, 1
	return c
}

// Valid reports whether dimensions are non-negative and all intrinsic and
// distortion values are finite.
func (c CameraInfo) Valid() bool {
	if c.Width < 0 || c.Height < 0 {
		return false
	}
	for _, v := range c.K {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	for _, v := range c.D {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return c.Roi.Valid()
}

// Detection is a single classified object observation with an image-space
// bounding box and a confidence score in [0, 1].
type Detection struct {
	ClassID    int32
	Confidence float64
	Box        RegionOfInterest
	Label      [32]byte
}

// NewDetection returns a zero-confidence detection with the given label.
func NewDetection(classID int32, label string) Detection {
	d := Detection{ClassID: classID}
	putFixedString(d.Label[:], label)
	return d
}

// LabelName returns the human-readable class label.
func (d Detection) LabelName() string { return getFixedString(d.Label[:]) }

// Valid reports whether confidence is within [0, 1] and the box is valid.
func (d Detection) Valid() bool {
	if math.IsNaN(d.Confidence) || d.Confidence < 0 || d.Confidence > 1 {
		return false
	}
	return d.Box.Valid()
}

// DetectionArrayMaxEntries is the inline capacity of DetectionArray.Items
// (spec §4.1 normative table).
const DetectionArrayMaxEntries = 32

// DetectionArray is a bounded batch of Detection results for one frame.
type DetectionArray struct {
	Items       [DetectionArrayMaxEntries]Detection
	Count       int32
	_pad0       [4]byte
	TimestampNs int64
}

// NewDetectionArray returns an empty detection batch.
func NewDetectionArray() DetectionArray {
	return DetectionArray{TimestampNs: nowWall()}
}

// Valid reports whether Count is within capacity and every entry in use is
// itself valid.
func (d DetectionArray) Valid() bool {
	if d.Count < 0 || int(d.Count) > DetectionArrayMaxEntries {
		return false
	}
	for i := int32(0); i < d.Count; i++ {
		if !d.Items[i].Valid() {
			return false
		}
	}
	return true
}

// StereoInfo pairs left/right camera intrinsics with the baseline distance
// used to recover depth from disparity.
type StereoInfo struct {
	Left, Right CameraInfo
	BaselineM   float64
	TimestampNs int64
}

// NewStereoInfo returns a StereoInfo with identity intrinsics on both eyes.
func NewStereoInfo(width, height int32, baselineM float64) StereoInfo {
	return StereoInfo{
		Left:        NewCameraInfo(width, height),
		Right:       NewCameraInfo(width, height),
		BaselineM:   baselineM,
		TimestampNs: nowWall(),
	}
}

// DepthAtDisparity converts a disparity (in pixels) to depth (in meters)
// using the standard stereo relation depth = f * baseline / disparity,
// taking the focal length from the left camera's K[0]. Returns +Inf for
// zero or non-positive disparity.
func (s StereoInfo) DepthAtDisparity(disparityPx float64) float64 {
	if disparityPx <= 0 {
		return math.Inf(1)
	}
	return s.Left.K[0] * s.BaselineM / disparityPx
}

// Valid reports whether both camera infos and the baseline are valid/finite.
func (s StereoInfo) Valid() bool {
	if !s.Left.Valid() || !s.Right.Valid() {
		return false
	}
	return !math.IsNaN(s.BaselineM) && !math.IsInf(s.BaselineM, 0)
}
