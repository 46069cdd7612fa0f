package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"titan/internal/config"
	"titan/internal/voxel"
)

// HeightFunc returns the elevation, relative to the radius, of a point on
// the surface of the unit cube. The vertex itself lands on the sphere above
// that point.
type HeightFunc func(cube mgl32.Vec3) float32

// Patch is a node of a cube-face quadtree. Only leaves carry a mesh.
type Patch struct {
	Up, AxisA, AxisB mgl32.Vec3
	Offset           mgl32.Vec2 // lower corner in face percent space
	Depth            int
	Children         []*Patch
	Mesh             *Mesh
}

// Scale is the edge length of the patch in face percent space.
func (p *Patch) Scale() float32 {
	return 1 / float32(int(1)<<p.Depth)
}

// Leaf reports whether the patch has no children.
func (p *Patch) Leaf() bool {
	return len(p.Children) == 0
}

func newRootPatch(up mgl32.Vec3) *Patch {
	a := mgl32.Vec3{up.Y(), up.Z(), up.X()}
	return &Patch{Up: up, AxisA: a, AxisB: up.Cross(a)}
}

func (p *Patch) subdivide(maxDepth int) {
	if p.Depth >= maxDepth {
		return
	}
	half := p.Scale() / 2
	p.Children = make([]*Patch, 0, 4)
	for qy := range 2 {
		for qx := range 2 {
			c := &Patch{
				Up:     p.Up,
				AxisA:  p.AxisA,
				AxisB:  p.AxisB,
				Offset: p.Offset.Add(mgl32.Vec2{float32(qx) * half, float32(qy) * half}),
				Depth:  p.Depth + 1,
			}
			c.subdivide(maxDepth)
			p.Children = append(p.Children, c)
		}
	}
}

// pointOnCube maps face percent coordinates to a point on the unit cube.
func (p *Patch) pointOnCube(percent mgl32.Vec2) mgl32.Vec3 {
	return p.Up.
		Add(p.AxisA.Mul((percent.X() - 0.5) * 2)).
		Add(p.AxisB.Mul((percent.Y() - 0.5) * 2))
}

// build meshes a leaf as a res x res vertex grid.
func (p *Patch) build(res int, radius float32, height HeightFunc) {
	step := p.Scale() / float32(res-1)
	m := &Mesh{
		Vertices: make([]Vertex, 0, res*res),
		Indices:  make([]uint32, 0, (res-1)*(res-1)*6),
	}
	r := uint32(res)
	for y := range res {
		for x := range res {
			percent := p.Offset.Add(mgl32.Vec2{float32(x) * step, float32(y) * step})
			cube := p.pointOnCube(percent)
			elevation := float32(0)
			if height != nil {
				elevation = height(cube)
			}
			m.Vertices = append(m.Vertices, Vertex{
				Position: cube.Normalize().Mul(radius * (1 + elevation)),
				UV:       percent,
			})
			if x == res-1 || y == res-1 {
				continue
			}
			i := uint32(y*res + x)
			m.Indices = append(m.Indices,
				i, i+r+1, i+r,
				i, i+1, i+r+1,
			)
		}
	}
	ComputeSmoothNormals(m)
	p.Mesh = m
}

func (p *Patch) walk(fn func(*Patch)) {
	if p.Leaf() {
		fn(p)
		return
	}
	for _, c := range p.Children {
		c.walk(fn)
	}
}

// Body is a sphere built from six cube-face quadtrees.
type Body struct {
	Radius float32
	Faces  [6]*Patch
}

// NewBody builds and meshes every leaf patch of a body. cfg.Resolution must
// be at least 2.
func NewBody(cfg config.Body, height HeightFunc) *Body {
	b := &Body{Radius: cfg.Radius}
	for _, f := range voxel.Faces {
		root := newRootPatch(f.Normal())
		root.subdivide(cfg.MaxDepth)
		root.walk(func(p *Patch) { p.build(cfg.Resolution, cfg.Radius, height) })
		b.Faces[f] = root
	}
	return b
}

// Leaves returns every leaf patch, face by face.
func (b *Body) Leaves() []*Patch {
	var out []*Patch
	for _, root := range b.Faces {
		root.walk(func(p *Patch) { out = append(out, p) })
	}
	return out
}

// Stats returns the total vertex and triangle counts over all leaves.
func (b *Body) Stats() (vertices, triangles int) {
	for _, p := range b.Leaves() {
		vertices += len(p.Mesh.Vertices)
		triangles += p.Mesh.TriangleCount()
	}
	return
}
