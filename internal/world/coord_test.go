package world

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"

	"titan/internal/voxel"
)

func TestFloorDivMod(t *testing.T) {
	cases := []struct{ a, b, q, m int }{
		{0, 16, 0, 0},
		{15, 16, 0, 15},
		{16, 16, 1, 0},
		{-1, 16, -1, 15},
		{-16, 16, -1, 0},
		{-17, 16, -2, 15},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.q, floorDiv(tc.a, tc.b), "floorDiv(%d,%d)", tc.a, tc.b)
		assert.Equal(t, tc.m, mod(tc.a, tc.b), "mod(%d,%d)", tc.a, tc.b)
	}
}

func TestChunkAt(t *testing.T) {
	d := voxel.Dims{X: 16, Y: 64, Z: 16}
	assert.Equal(t, ChunkCoord{0, 0, 0}, ChunkAt(mgl32.Vec3{0.5, 10, 15.9}, d))
	assert.Equal(t, ChunkCoord{-1, 0, -1}, ChunkAt(mgl32.Vec3{-0.1, 63.9, -16}, d))
	assert.Equal(t, ChunkCoord{2, 1, -2}, ChunkAt(mgl32.Vec3{32, 64, -16.5}, d))

	c, x, y, z := splitCell(-1, 70, 33, d)
	assert.Equal(t, ChunkCoord{-1, 1, 2}, c)
	assert.Equal(t, [3]int{15, 6, 1}, [3]int{x, y, z})
	assert.Equal(t, mgl32.Vec3{-16, 64, 32}, c.Origin(d))
}

func TestRingOffsets(t *testing.T) {
	offs := ringOffsets(2)
	assert.Len(t, offs, 25)
	assert.Equal(t, [2]int{0, 0}, offs[0])

	seen := make(map[[2]int]bool)
	prev := 0
	for _, o := range offs {
		assert.False(t, seen[o], "duplicate %v", o)
		seen[o] = true
		r := max(abs(o[0]), abs(o[1]))
		assert.LessOrEqual(t, r, 2)
		assert.GreaterOrEqual(t, r, prev, "rings must not shrink")
		prev = r
	}
	assert.Len(t, ringOffsets(0), 1)
}

func TestHorizontalDistance(t *testing.T) {
	a := ChunkCoord{1, 5, -2}
	assert.Equal(t, 3, a.HorizontalDistance(ChunkCoord{-2, 0, 0}))
	assert.Equal(t, 0, a.HorizontalDistance(ChunkCoord{1, -7, -2}))
	assert.Equal(t, "(1,5,-2)", a.String())
}
