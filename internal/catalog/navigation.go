package catalog

import "math"

// Goal is a navigation target pose in a named frame.
type Goal struct {
	Target      Pose2D
	Frame       [32]byte
	TimestampNs int64
}

// NewGoal returns a goal at the origin in the given frame.
func NewGoal(frame string) Goal {
	g := Goal{Target: NewPose2D(), TimestampNs: nowWall()}
	putFixedString(g.Frame[:], frame)
	return g
}

// FrameID returns the goal's coordinate frame name.
func (g Goal) FrameID() string { return getFixedString(g.Frame[:]) }

// Valid reports whether the target pose is finite.
func (g Goal) Valid() bool { return g.Target.Valid() }

// GoalStatus enumerates the outcome of a navigation attempt.
type GoalStatus int32

const (
	GoalPending GoalStatus = iota
	GoalActive
	GoalSucceeded
	GoalAborted
	GoalRejected
)

func (s GoalStatus) String() string {
	switch s {
	case GoalPending:
		return "PENDING"
	case GoalActive:
		return "ACTIVE"
	case GoalSucceeded:
		return "SUCCEEDED"
	case GoalAborted:
		return "ABORTED"
	case GoalRejected:
		return "REJECTED"
	default:
		return "PENDING"
	}
}

// GoalResult reports the terminal status of a navigation goal.
type GoalResult struct {
	Status      GoalStatus
	FinalPose   Pose2D
	TimestampNs int64
}

// NewGoalResult returns a pending result.
func NewGoalResult() GoalResult {
	return GoalResult{Status: GoalPending, FinalPose: NewPose2D(), TimestampNs: nowWall()}
}

// Valid reports whether the status is one of the enumerated values and the
// final pose is finite.
func (r GoalResult) Valid() bool {
	if r.Status < GoalPending || r.Status > GoalRejected {
		return false
	}
	return r.FinalPose.Valid()
}

// Waypoint is a single point along a planned path, with an optional desired
// heading and speed.
type Waypoint struct {
	X, Y, Theta float64
	Speed       float64
}

// NewWaypoint returns a waypoint at the origin with zero desired speed.
func NewWaypoint() Waypoint { return Waypoint{} }

// Valid reports whether all fields are finite.
func (w Waypoint) Valid() bool {
	return !math.IsNaN(w.X) && !math.IsNaN(w.Y) && !math.IsNaN(w.Theta) && !math.IsNaN(w.Speed) &&
		!math.IsInf(w.X, 0) && !math.IsInf(w.Y, 0) && !math.IsInf(w.Theta, 0) && !math.IsInf(w.Speed, 0)
}

// PathMaxWaypoints is the inline capacity of Path.Waypoints.
const PathMaxWaypoints = 256

// Path is a bounded, ordered sequence of waypoints.
type Path struct {
	Waypoints   [PathMaxWaypoints]Waypoint
	Count       int32
	_pad0       [4]byte
	TimestampNs int64
}

// NewPath returns an empty path.
func NewPath() Path { return Path{TimestampNs: nowWall()} }

// Valid reports whether Count is within capacity and every waypoint in use
// is valid.
func (p Path) Valid() bool {
	if p.Count < 0 || int(p.Count) > PathMaxWaypoints {
		return false
	}
	for i := int32(0); i < p.Count; i++ {
		if !p.Waypoints[i].Valid() {
			return false
		}
	}
	return true
}

// Length returns the cumulative Euclidean length of the path's segments.
func (p Path) Length() float64 {
	var total float64
	for i := int32(1); i < p.Count; i++ {
		dx := p.Waypoints[i].X - p.Waypoints[i-1].X
		dy := p.Waypoints[i].Y - p.Waypoints[i-1].Y
		total += math.Hypot(dx, dy)
	}
	return total
}

// OccupancyGridMaxCells is the inline capacity of OccupancyGrid.Cells (spec
// §4.1 normative table): a 2000x2000 grid.
const OccupancyGridMaxCells = 2000 * 2000

// OccupancyGridSide is the side length of the square grid backing
// OccupancyGrid and CostMap.
const OccupancyGridSide = 2000

// gridEpsilon guards WorldToGrid against floating-point cells landing just
// under an integer boundary, per spec §4.1's world_to_grid formula.
const gridEpsilon = 1e-9

// OccupancyGrid is a square 2D occupancy map: -1 unknown, 0 free, 100
// occupied, anchored at OriginX/OriginY with square cells of ResolutionM.
type OccupancyGrid struct {
	ResolutionM      float64
	OriginX, OriginY float64
	Cells            [OccupancyGridMaxCells]int8
	TimestampNs      int64
}

// NewOccupancyGrid returns a fully-unknown grid anchored at the given
// origin with the given cell resolution.
func NewOccupancyGrid(resolutionM, originX, originY float64) OccupancyGrid {
	g := OccupancyGrid{ResolutionM: resolutionM, OriginX: originX, OriginY: originY, TimestampNs: nowWall()}
	for i := range g.Cells {
		g.Cells[i] = -1
	}
	return g
}

// Valid reports whether the resolution is positive and the origin finite.
func (g OccupancyGrid) Valid() bool {
	if math.IsNaN(g.ResolutionM) || g.ResolutionM <= 0 {
		return false
	}
	return !math.IsNaN(g.OriginX) && !math.IsNaN(g.OriginY) && !math.IsInf(g.OriginX, 0) && !math.IsInf(g.OriginY, 0)
}

// WorldToGrid converts a world-frame coordinate to grid row/column indices,
// per spec §4.1: floor((x−origin.x)/resolution + ε). Returns ok=false if
// the coordinate falls outside the grid.
func (g OccupancyGrid) WorldToGrid(x, y float64) (row, col int, ok bool) {
	col = int(math.Floor((x-g.OriginX)/g.ResolutionM + gridEpsilon))
	row = int(math.Floor((y-g.OriginY)/g.ResolutionM + gridEpsilon))
	if row < 0 || row >= OccupancyGridSide || col < 0 || col >= OccupancyGridSide {
		return 0, 0, false
	}
	return row, col, true
}

// GridToWorld converts grid row/column indices to the world-frame
// coordinate of that cell's center.
func (g OccupancyGrid) GridToWorld(row, col int) (x, y float64) {
	x = g.OriginX + (float64(col)+0.5)*g.ResolutionM
	y = g.OriginY + (float64(row)+0.5)*g.ResolutionM
	return x, y
}

// At returns the occupancy value at the given row/column.
func (g OccupancyGrid) At(row, col int) int8 { return g.Cells[row*OccupancyGridSide+col] }

// SetAt sets the occupancy value at the given row/column.
func (g *OccupancyGrid) SetAt(row, col int, v int8) { g.Cells[row*OccupancyGridSide+col] = v }

// CostMap is a square grid of traversal costs, 0 meaning free and 255
// meaning lethal, sharing OccupancyGrid's indexing scheme.
type CostMap struct {
	ResolutionM      float64
	OriginX, OriginY float64
	Costs            [OccupancyGridMaxCells]uint8
	TimestampNs      int64
}

// NewCostMap returns an all-free cost map anchored at the given origin.
func NewCostMap(resolutionM, originX, originY float64) CostMap {
	return CostMap{ResolutionM: resolutionM, OriginX: originX, OriginY: originY, TimestampNs: nowWall()}
}

// WorldToGrid converts a world-frame coordinate to grid row/column indices,
// identical in convention to OccupancyGrid.WorldToGrid.
func (c CostMap) WorldToGrid(x, y float64) (row, col int, ok bool) {
	col = int(math.Floor((x-c.OriginX)/c.ResolutionM + gridEpsilon))
	row = int(math.Floor((y-c.OriginY)/c.ResolutionM + gridEpsilon))
	if row < 0 || row >= OccupancyGridSide || col < 0 || col >= OccupancyGridSide {
		return 0, 0, false
	}
	return row, col, true
}

// At returns the cost at the given row/column.
func (c CostMap) At(row, col int) uint8 { return c.Costs[row*OccupancyGridSide+col] }

// Valid reports whether the resolution is positive and the origin finite.
func (c CostMap) Valid() bool {
	if math.IsNaN(c.ResolutionM) || c.ResolutionM <= 0 {
		return false
	}
	return !math.IsNaN(c.OriginX) && !math.IsNaN(c.OriginY) && !math.IsInf(c.OriginX, 0) && !math.IsInf(c.OriginY, 0)
}

// VelocityObstacle is a single predicted collision cone in velocity space
// for one tracked obstacle.
type VelocityObstacle struct {
	ApexX, ApexY     float64
	LeftX, LeftY     float64
	RightX, RightY   float64
	TrackID          int32
	_pad0            [4]byte
}

// NewVelocityObstacle returns a zero-size obstacle cone apexed at the
// origin for the given track.
func NewVelocityObstacle(trackID int32) VelocityObstacle {
	return VelocityObstacle{TrackID: trackID}
}

// Valid reports whether all geometry fields are finite.
func (v VelocityObstacle) Valid() bool {
	vals := []float64{v.ApexX, v.ApexY, v.LeftX, v.LeftY, v.RightX, v.RightY}
	for _, f := range vals {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// VelocityObstaclesMaxEntries is the inline capacity of
// VelocityObstacles.Items (spec §4.1 normative table).
const VelocityObstaclesMaxEntries = 32

// VelocityObstacles is a bounded batch of VelocityObstacle cones for one
// planning cycle.
type VelocityObstacles struct {
	Items       [VelocityObstaclesMaxEntries]VelocityObstacle
	Count       int32
	_pad0       [4]byte
	TimestampNs int64
}

// NewVelocityObstacles returns an empty obstacle batch.
func NewVelocityObstacles() VelocityObstacles {
	return VelocityObstacles{TimestampNs: nowWall()}
}

// Valid reports whether Count is within capacity and every entry in use is
// itself valid.
func (v VelocityObstacles) Valid() bool {
	if v.Count < 0 || int(v.Count) > VelocityObstaclesMaxEntries {
		return false
	}
	for i := int32(0); i < v.Count; i++ {
		if !v.Items[i].Valid() {
			return false
		}
	}
	return true
}

// PathPlan pairs a committed Path with the goal it satisfies and the
// planner's reported status.
type PathPlan struct {
	Plan        Path
	Goal        Goal
	Status      GoalStatus
	_pad0       [4]byte
	TimestampNs int64
}

// NewPathPlan returns an empty, pending path plan toward the given goal.
func NewPathPlan(goal Goal) PathPlan {
	return PathPlan{Plan: NewPath(), Goal: goal, Status: GoalPending, TimestampNs: nowWall()}
}

// Valid reports whether the plan, goal, and status are all valid.
func (p PathPlan) Valid() bool {
	if p.Status < GoalPending || p.Status > GoalRejected {
		return false
	}
	return p.Plan.Valid() && p.Goal.Valid()
}
