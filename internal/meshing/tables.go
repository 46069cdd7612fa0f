package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"titan/internal/voxel"
)

// faceCorners lists the four corners of each face of the unit cell in
// counter-clockwise order as seen from outside the cell.
var faceCorners = [6][4]mgl32.Vec3{
	voxel.FaceNorth:  {{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1}},
	voxel.FaceSouth:  {{1, 0, 0}, {0, 0, 0}, {0, 1, 0}, {1, 1, 0}},
	voxel.FaceEast:   {{1, 0, 1}, {1, 0, 0}, {1, 1, 0}, {1, 1, 1}},
	voxel.FaceWest:   {{0, 0, 0}, {0, 0, 1}, {0, 1, 1}, {0, 1, 0}},
	voxel.FaceTop:    {{0, 1, 1}, {1, 1, 1}, {1, 1, 0}, {0, 1, 0}},
	voxel.FaceBottom: {{0, 0, 0}, {1, 0, 0}, {1, 0, 1}, {0, 0, 1}},
}

// cornerUV maps each corner to its position inside a tile, in tile units.
var cornerUV = [4]mgl32.Vec2{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

// quadIndices splits a quad into two counter-clockwise triangles.
var quadIndices = [6]uint32{0, 1, 3, 1, 2, 3}

var faceNormals = func() (n [6]mgl32.Vec3) {
	for _, f := range voxel.Faces {
		n[f] = f.Normal()
	}
	return
}()
