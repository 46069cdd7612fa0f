package world

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"titan/internal/voxel"
)

// ChunkCoord identifies a chunk. The chunk's origin cell sits at
// (X*dims.X, Y*dims.Y, Z*dims.Z) in world space.
type ChunkCoord struct {
	X, Y, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Add returns c offset by the given amounts.
func (c ChunkCoord) Add(dx, dy, dz int) ChunkCoord {
	return ChunkCoord{c.X + dx, c.Y + dy, c.Z + dz}
}

// HorizontalDistance is the Chebyshev distance between c and o on the XZ
// plane.
func (c ChunkCoord) HorizontalDistance(o ChunkCoord) int {
	return max(abs(c.X-o.X), abs(c.Z-o.Z))
}

// Origin returns the world position of the chunk's first cell.
func (c ChunkCoord) Origin(d voxel.Dims) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X * d.X), float32(c.Y * d.Y), float32(c.Z * d.Z)}
}

// ChunkAt returns the coordinate of the chunk containing world position p.
func ChunkAt(p mgl32.Vec3, d voxel.Dims) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(int(math32.Floor(p.X())), d.X),
		Y: floorDiv(int(math32.Floor(p.Y())), d.Y),
		Z: floorDiv(int(math32.Floor(p.Z())), d.Z),
	}
}

// splitCell maps a world cell to its chunk and the chunk-local cell.
func splitCell(x, y, z int, d voxel.Dims) (ChunkCoord, int, int, int) {
	c := ChunkCoord{floorDiv(x, d.X), floorDiv(y, d.Y), floorDiv(z, d.Z)}
	return c, mod(x, d.X), mod(y, d.Y), mod(z, d.Z)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ringOffsets lists every (dx, dz) with max(|dx|,|dz|) <= radius, ring by
// ring from the centre outwards.
func ringOffsets(radius int) [][2]int {
	out := make([][2]int, 0, (2*radius+1)*(2*radius+1))
	out = append(out, [2]int{0, 0})
	for r := 1; r <= radius; r++ {
		for x := -r; x <= r; x++ {
			out = append(out, [2]int{x, -r})
		}
		for z := -r + 1; z <= r-1; z++ {
			out = append(out, [2]int{r, z})
		}
		for x := r; x >= -r; x-- {
			out = append(out, [2]int{x, r})
		}
		for z := r - 1; z >= -r+1; z-- {
			out = append(out, [2]int{-r, z})
		}
	}
	return out
}
