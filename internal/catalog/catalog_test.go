package catalog

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// podTypes lists every exported record type in the catalog. A reflection
// walk over each confirms none carries a pointer, slice, map, or interface
// field anywhere in its transitive layout — the POD invariant spec §3/§9
// requires for anything crossing a channel.
var podTypes = []interface{}{
	Vector3{}, Point3{}, Quaternion{}, Twist{}, Pose2D{}, Transform{},
	LaserScan{}, Imu{}, Odometry{}, Range{}, BatteryState{},
	Image{}, CompressedImage{}, CameraInfo{}, RegionOfInterest{}, Detection{}, DetectionArray{}, StereoInfo{},
	PointCloud{}, BoundingBox3D{}, BoundingBoxArray3D{}, DepthImage{}, PlaneDetection{}, PlaneArray{},
	Goal{}, GoalResult{}, Waypoint{}, Path{}, OccupancyGrid{}, CostMap{}, VelocityObstacle{}, VelocityObstacles{}, PathPlan{},
	MotorCommand{}, DifferentialDriveCommand{}, ServoCommand{}, PidConfig{}, TrajectoryPoint{}, JointCommand{},
	Heartbeat{}, Status{}, EmergencyStop{}, ResourceUsage{}, SafetyStatus{},
}

func assertNoPointers(t *testing.T, typ reflect.Type, path string) {
	t.Helper()
	switch typ.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		t.Errorf("%s: forbidden kind %s in a catalog record", path, typ.Kind())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			f := typ.Field(i)
			assertNoPointers(t, f.Type, path+"."+f.Name)
		}
	case reflect.Array:
		assertNoPointers(t, typ.Elem(), path+"[]")
	}
}

func TestCatalogIsPOD(t *testing.T) {
	for _, v := range podTypes {
		typ := reflect.TypeOf(v)
		assertNoPointers(t, typ, typ.Name())
	}
}

func TestCatalogSizeIsFixed(t *testing.T) {
	// A POD type's in-memory size must not depend on its contents: two
	// zero-valued and two populated instances of the same type report the
	// same Sizeof.
	a := NewLaserScan()
	b := NewLaserScan()
	b.Ranges[0] = 1.23
	b.Count = 5
	assert.Equal(t, reflect.TypeOf(a).Size(), reflect.TypeOf(b).Size())
}

func TestTwistStop(t *testing.T) {
	tw := Twist{}.Stop()
	assert.True(t, tw.Valid())
	assert.Equal(t, Vector3{}, tw.Linear)
	assert.Equal(t, Vector3{}, tw.Angular)
}

func TestQuaternionNormalize(t *testing.T) {
	q := Quaternion{X: 2, Y: 0, Z: 0, W: 0}
	n := q.Normalize()
	assert.InDelta(t, 1.0, n.X*n.X+n.Y*n.Y+n.Z*n.Z+n.W*n.W, 1e-9)

	zero := Quaternion{}.Normalize()
	assert.Equal(t, NewQuaternion(), zero)
}

func TestTransformCompose(t *testing.T) {
	parentToChild := NewTransform("world", "base")
	parentToChild.Translation = Vector3{X: 1}

	childToGrandchild := NewTransform("base", "sensor")
	childToGrandchild.Translation = Vector3{X: 0, Y: 1}

	composed := parentToChild.Compose(childToGrandchild)
	assert.Equal(t, "world", composed.FrameID())
	assert.Equal(t, "sensor", composed.ChildFrameID())
	assert.InDelta(t, 1.0, composed.Translation.X, 1e-9)
	assert.InDelta(t, 1.0, composed.Translation.Y, 1e-9)
}

func TestLaserScanMinRangeIgnoresOutOfBounds(t *testing.T) {
	l := NewLaserScan()
	l.RangeMin, l.RangeMax = 0.1, 10
	l.Ranges[0] = 0.05 // below range_min, ignored
	l.Ranges[1] = 3.0
	l.Ranges[2] = 20.0 // above range_max, ignored
	l.Count = 3

	assert.Equal(t, 3.0, l.MinRange())
}

func TestImuOrientationSentinel(t *testing.T) {
	im := NewImu()
	assert.False(t, im.HasOrientation())
	im.OrientationCovariance[0] = 0
	assert.True(t, im.HasOrientation())
}

func TestDifferentialDriveFromTwist(t *testing.T) {
	// Linear 1.0 m/s, angular 0.5 rad/s, wheel base 0.3 m, wheel radius 0.05 m.
	cmd := DifferentialDriveCommand{}.FromTwist(1.0, 0.5, 0.3, 0.05)
	assert.InDelta(t, 18.5, cmd.LeftRadS, 1e-9)
	assert.InDelta(t, 21.5, cmd.RightRadS, 1e-9)
}

func TestOccupancyGridWorldGridIdentity(t *testing.T) {
	g := NewOccupancyGrid(0.05, -1.0, -1.0)
	row, col, ok := g.WorldToGrid(0.0, 0.0)
	require.True(t, ok)

	wx, wy := g.GridToWorld(row, col)
	row2, col2, ok2 := g.WorldToGrid(wx, wy)
	require.True(t, ok2)
	assert.Equal(t, row, row2)
	assert.Equal(t, col, col2)
}

func TestOccupancyGridOutOfBounds(t *testing.T) {
	g := NewOccupancyGrid(1.0, 0, 0)
	_, _, ok := g.WorldToGrid(-100, -100)
	assert.False(t, ok)
}

func TestJointCommandSetJointCapsAtMax(t *testing.T) {
	jc := NewJointCommand()
	for i := 0; i < JointCommandMaxJoints+4; i++ {
		jc.SetJoint("joint", float64(i), 0, 0)
	}
	assert.Equal(t, int32(JointCommandMaxJoints), jc.Count)
	assert.True(t, jc.Valid())
}

func TestStatusConstructors(t *testing.T) {
	s := Status{}.Error("actuator fault")
	assert.Equal(t, SeverityError, s.Level)
	assert.Equal(t, "actuator fault", s.Text())
	assert.True(t, s.Valid())
}

func TestHeartbeatCarriesRunID(t *testing.T) {
	runID := uuid.New()
	h := NewHeartbeat("scheduler", runID, 42)
	assert.Equal(t, "scheduler", h.NodeName())
	assert.Equal(t, uint64(42), h.TickNumber)
	assert.Equal(t, runID, h.Run())
}

func TestSafetyStatusAllClearByDefault(t *testing.T) {
	runID := uuid.New()
	s := NewSafetyStatus(runID, 7)
	assert.Equal(t, runID, s.Run())
	assert.Equal(t, uint64(7), s.TickNumber)
	assert.Equal(t, int32(0), s.CrashedNodes)
	assert.Equal(t, SeverityOK, s.WorstSeverity)
	assert.True(t, s.Valid())
}

func TestEmergencyStopEngage(t *testing.T) {
	e := EmergencyStop{}.Engage("operator button")
	assert.True(t, e.Engaged)
	assert.Equal(t, "operator button", e.ReasonText())
}

func TestDepthImageToPointCloud(t *testing.T) {
	d := NewDepthImage(2, 1)
	d.Depths[0] = 1.0
	d.Depths[1] = 0 // no return, excluded

	pc := d.ToPointCloud(1, 1, 0, 0, "camera")
	assert.Equal(t, int32(1), pc.Count)
	assert.Equal(t, "camera", pc.FrameID())
}
