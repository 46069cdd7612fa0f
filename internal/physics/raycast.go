package physics

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"titan/internal/profiling"
	"titan/internal/voxel"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 64.0
)

// BlockQuery is the read side of a voxel world. Cell (x,y,z) occupies
// [x,x+1] x [y,y+1] x [z,z+1].
type BlockQuery interface {
	BlockAt(x, y, z int) voxel.Type
}

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int // last empty cell before the hit
	Face             voxel.Face
	Distance         float32
	Block            voxel.Type
	Hit              bool
}

// Raycast walks the cells pierced by the ray and reports the first solid one
// whose entry distance lies in [minDist, maxDist]. Liquids are passed through.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, q BlockQuery) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	result := RaycastResult{}
	if direction.Len() == 0 {
		return result
	}
	dir := direction.Normalize()

	cell := [3]int{}
	step := [3]int{}
	tMax := [3]float32{}
	tDelta := [3]float32{}
	for i := 0; i < 3; i++ {
		cell[i] = int(math32.Floor(start[i]))
		switch {
		case dir[i] > 0:
			step[i] = 1
			tDelta[i] = 1 / dir[i]
			tMax[i] = (float32(cell[i]+1) - start[i]) / dir[i]
		case dir[i] < 0:
			step[i] = -1
			tDelta[i] = -1 / dir[i]
			tMax[i] = (float32(cell[i]) - start[i]) / dir[i]
		default:
			tDelta[i] = math32.Inf(1)
			tMax[i] = math32.Inf(1)
		}
	}

	prev := cell
	var dist float32
	entered := voxel.Face(-1)
	for dist <= maxDist {
		if dist >= minDist {
			if t := q.BlockAt(cell[0], cell[1], cell[2]); t.Solid() && !t.Liquid() {
				result.HitPosition = cell
				result.AdjacentPosition = prev
				result.Face = entered
				result.Distance = dist
				result.Block = t
				result.Hit = true
				return result
			}
		}
		prev = cell

		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}
		dist = tMax[axis]
		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]
		entered = entryFace(axis, step[axis])
	}
	return result
}

// entryFace is the face of the new cell the ray crossed into.
func entryFace(axis, step int) voxel.Face {
	switch axis {
	case 0:
		if step > 0 {
			return voxel.FaceWest
		}
		return voxel.FaceEast
	case 1:
		if step > 0 {
			return voxel.FaceBottom
		}
		return voxel.FaceTop
	}
	if step > 0 {
		return voxel.FaceSouth
	}
	return voxel.FaceNorth
}
