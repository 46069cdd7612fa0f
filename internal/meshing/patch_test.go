package meshing

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titan/internal/config"
	"titan/internal/terrain"
)

func bodyConfig(res, depth int) config.Body {
	cfg := config.DefaultBody()
	cfg.Radius = 10
	cfg.Resolution = res
	cfg.MaxDepth = depth
	return cfg
}

func TestBodyStructure(t *testing.T) {
	b := NewBody(bodyConfig(8, 2), nil)
	leaves := b.Leaves()
	require.Len(t, leaves, 6*16)
	for _, p := range leaves {
		assert.Equal(t, 2, p.Depth)
		assert.Equal(t, float32(0.25), p.Scale())
		assert.Len(t, p.Mesh.Vertices, 64)
		assert.Equal(t, 7*7*2, p.Mesh.TriangleCount())
	}
	for _, root := range b.Faces {
		assert.Nil(t, root.Mesh, "only leaves carry meshes")
		assert.Len(t, root.Children, 4)
	}
	v, tris := b.Stats()
	assert.Equal(t, 96*64, v)
	assert.Equal(t, 96*98, tris)

	flat := NewBody(bodyConfig(4, 0), nil)
	assert.Len(t, flat.Leaves(), 6)
}

func TestRootAxes(t *testing.T) {
	b := NewBody(bodyConfig(2, 0), nil)
	for _, root := range b.Faces {
		assert.Zero(t, root.Up.Dot(root.AxisA))
		assert.Zero(t, root.Up.Dot(root.AxisB))
		assert.Equal(t, root.Up, root.AxisA.Cross(root.AxisB))
	}
}

func TestBodyVerticesOnSphere(t *testing.T) {
	b := NewBody(bodyConfig(6, 1), nil)
	for _, p := range b.Leaves() {
		for _, v := range p.Mesh.Vertices {
			assert.InDelta(t, 10, v.Position.Len(), 1e-4)
			assert.Greater(t, v.Normal.Dot(v.Position.Normalize()), float32(0.9))
		}
		m := p.Mesh
		for i := 0; i < len(m.Indices); i += 3 {
			a := m.Vertices[m.Indices[i]].Position
			bb := m.Vertices[m.Indices[i+1]].Position
			c := m.Vertices[m.Indices[i+2]].Position
			centroid := a.Add(bb).Add(c).Mul(1.0 / 3)
			assert.Positive(t, bb.Sub(a).Cross(c.Sub(a)).Dot(centroid), "triangle must face outwards")
		}
	}
}

func TestBodyHeightApplied(t *testing.T) {
	b := NewBody(bodyConfig(3, 0), func(mgl32.Vec3) float32 { return 0.5 })
	for _, p := range b.Leaves() {
		for _, v := range p.Mesh.Vertices {
			assert.InDelta(t, 15, v.Position.Len(), 1e-4)
		}
	}

	cfg := bodyConfig(5, 1)
	ht := terrain.NewBodyTerrain(cfg)
	hb := NewBody(cfg, ht.Evaluate)
	for _, p := range hb.Leaves() {
		for _, v := range p.Mesh.Vertices {
			assert.GreaterOrEqual(t, v.Position.Len(), float32(10)-1e-4)
		}
	}
}

func TestBodyHeightSampledOnCube(t *testing.T) {
	var samples []mgl32.Vec3
	NewBody(bodyConfig(3, 1), func(p mgl32.Vec3) float32 {
		samples = append(samples, p)
		return 0
	})
	require.Len(t, samples, 6*4*3*3)
	for _, p := range samples {
		m := max(abs32(p.X()), abs32(p.Y()), abs32(p.Z()))
		assert.InDelta(t, 1, m, 1e-5, "sample %v is not on the unit cube", p)
	}
	// corners of the cube are sampled, not their projection onto the sphere
	assert.Contains(t, samples, mgl32.Vec3{1, 1, 1})
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func TestSiblingPatchesShareEdges(t *testing.T) {
	const res = 5
	b := NewBody(bodyConfig(res, 1), nil)
	for _, root := range b.Faces {
		left, right := root.Children[0], root.Children[1] // qx = 0, 1
		bottom, top := root.Children[0], root.Children[2] // qy = 0, 1
		for i := range res {
			l := left.Mesh.Vertices[i*res+res-1].Position
			r := right.Mesh.Vertices[i*res].Position
			assert.Equal(t, l, r)

			bt := bottom.Mesh.Vertices[(res-1)*res+i].Position
			tp := top.Mesh.Vertices[i].Position
			assert.Equal(t, bt, tp)
		}
	}
}
