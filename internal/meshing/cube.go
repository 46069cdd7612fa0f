package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"titan/internal/voxel"
)

// Resolver answers the voxel at chunk-local coordinates that may lie outside
// the grid being meshed.
type Resolver func(x, y, z int) voxel.Type

// CubeMesher turns a voxel grid into one textured quad per exposed cell face.
type CubeMesher struct{}

// Build emits a quad for every face of a non-Air cell whose neighbour exposes
// it. Neighbours outside the grid come from resolve; a nil resolve treats
// them as Air. Build returns nil when the grid has no visible faces.
func (CubeMesher) Build(grid *voxel.Grid, resolve Resolver) *Mesh {
	d := grid.Dims()
	var m *Mesh

	for x := range d.X {
		for y := range d.Y {
			for z := range d.Z {
				t := grid.Get(x, y, z)
				if t == voxel.Air {
					continue
				}
				for _, f := range voxel.Faces {
					dx, dy, dz := f.Offset()
					nx, ny, nz := x+dx, y+dy, z+dz
					var n voxel.Type
					switch {
					case grid.InBounds(nx, ny, nz):
						n = grid.Get(nx, ny, nz)
					case resolve != nil:
						n = resolve(nx, ny, nz)
					}
					if !t.Exposes(n) {
						continue
					}
					if m == nil {
						m = &Mesh{}
					}
					m.appendQuad(mgl32.Vec3{float32(x), float32(y), float32(z)}, t, f)
				}
			}
		}
	}
	return m
}

func (m *Mesh) appendQuad(origin mgl32.Vec3, t voxel.Type, f voxel.Face) {
	base := uint32(len(m.Vertices))
	tex := t.TextureOffset(f)
	layer := t.Tile(f)
	for i, c := range faceCorners[f] {
		uv := cornerUV[i]
		m.Vertices = append(m.Vertices, Vertex{
			Position: origin.Add(c),
			Normal:   faceNormals[f],
			UV:       mgl32.Vec2{tex.X() + uv.X()*voxel.TileStep, tex.Y() + uv.Y()},
			Layer:    layer,
		})
	}
	for _, i := range quadIndices {
		m.Indices = append(m.Indices, base+i)
	}
}
