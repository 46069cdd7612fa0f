package meshing

import "github.com/go-gl/mathgl/mgl32"

// VertexStride is the number of float32 per interleaved vertex
// (pos.xyz + normal.xyz + uv + layer).
const VertexStride = 9

// Vertex is a single mesh vertex. Positions are local to the owning chunk
// or patch.
type Vertex struct {
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
	Layer    uint32 // texture array layer
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// TriangleCount returns the number of triangles described by Indices.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Indices) / 3
}

// Bounds returns the axis-aligned box enclosing every vertex.
func (m *Mesh) Bounds() (minV, maxV mgl32.Vec3) {
	if m == nil || len(m.Vertices) == 0 {
		return
	}
	minV, maxV = m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := range 3 {
			minV[i] = min(minV[i], v.Position[i])
			maxV[i] = max(maxV[i], v.Position[i])
		}
	}
	return
}

// Interleave packs the vertices into a flat float32 slice, VertexStride
// floats per vertex, ready for a GPU buffer upload.
func (m *Mesh) Interleave() []float32 {
	if m == nil {
		return nil
	}
	out := make([]float32, 0, len(m.Vertices)*VertexStride)
	for _, v := range m.Vertices {
		out = append(out,
			v.Position[0], v.Position[1], v.Position[2],
			v.Normal[0], v.Normal[1], v.Normal[2],
			v.UV[0], v.UV[1],
			float32(v.Layer),
		)
	}
	return out
}

// ComputeSmoothNormals replaces every vertex normal with the normalised sum
// of the unnormalised face normals of the triangles sharing it, so larger
// triangles weigh more. Vertices no triangle touches keep a zero normal.
func ComputeSmoothNormals(m *Mesh) {
	if m == nil {
		return
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = mgl32.Vec3{}
	}
	for t := 0; t+2 < len(m.Indices); t += 3 {
		ia, ib, ic := m.Indices[t], m.Indices[t+1], m.Indices[t+2]
		a := m.Vertices[ia].Position
		b := m.Vertices[ib].Position
		c := m.Vertices[ic].Position
		n := b.Sub(a).Cross(c.Sub(a))
		m.Vertices[ia].Normal = m.Vertices[ia].Normal.Add(n)
		m.Vertices[ib].Normal = m.Vertices[ib].Normal.Add(n)
		m.Vertices[ic].Normal = m.Vertices[ic].Normal.Add(n)
	}
	for i := range m.Vertices {
		if n := m.Vertices[i].Normal; n.Len() > 0 {
			m.Vertices[i].Normal = n.Normalize()
		}
	}
}
