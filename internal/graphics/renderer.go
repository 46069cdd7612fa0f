package graphics

import (
	"errors"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"titan/internal/meshing"
)

// ErrEmptyMesh is returned when asked to upload a mesh with no triangles.
var ErrEmptyMesh = errors.New("graphics: empty mesh")

// MeshHandle is a renderer-owned drawable built from a mesh.
type MeshHandle interface {
	Release()
}

// MeshUploader turns CPU meshes into drawable handles. origin is the world
// position the mesh's local coordinates are relative to.
type MeshUploader interface {
	Upload(origin mgl32.Vec3, m *meshing.Mesh) (MeshHandle, error)
}

// Drawer issues a draw for a handle previously returned by Upload.
type Drawer interface {
	Draw(h MeshHandle)
}

// Headless is an in-memory MeshUploader and Drawer. It keeps counters
// instead of talking to a GPU and is safe for concurrent use.
type Headless struct {
	mu       sync.Mutex
	nextID   uint64
	live     map[uint64]*HeadlessHandle
	uploads  int
	releases int
	draws    int
}

// NewHeadless returns an empty headless renderer.
func NewHeadless() *Headless {
	return &Headless{live: make(map[uint64]*HeadlessHandle)}
}

// HeadlessHandle is the handle type produced by Headless.
type HeadlessHandle struct {
	ID        uint64
	Origin    mgl32.Vec3
	Vertices  int
	Triangles int
	Buffer    []float32 // interleaved vertex data, meshing.VertexStride per vertex
	Indices   []uint32

	owner    *Headless
	released bool
}

func (h *HeadlessHandle) Release() {
	o := h.owner
	o.mu.Lock()
	defer o.mu.Unlock()
	if h.released {
		return
	}
	h.released = true
	delete(o.live, h.ID)
	o.releases++
}

func (r *Headless) Upload(origin mgl32.Vec3, m *meshing.Mesh) (MeshHandle, error) {
	if m.TriangleCount() == 0 {
		return nil, ErrEmptyMesh
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	h := &HeadlessHandle{
		ID:        r.nextID,
		Origin:    origin,
		Vertices:  len(m.Vertices),
		Triangles: m.TriangleCount(),
		Buffer:    m.Interleave(),
		Indices:   append([]uint32(nil), m.Indices...),
		owner:     r,
	}
	r.live[h.ID] = h
	r.uploads++
	return h, nil
}

func (r *Headless) Draw(h MeshHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hh, ok := h.(*HeadlessHandle); ok && !hh.released {
		r.draws++
	}
}

// HeadlessStats is a snapshot of Headless counters.
type HeadlessStats struct {
	Live      int
	Uploads   int
	Releases  int
	Draws     int
	Triangles int // over live handles
	Bytes     int // vertex and index bytes held by live handles
}

// Stats returns the current counters.
func (r *Headless) Stats() HeadlessStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := HeadlessStats{
		Live:     len(r.live),
		Uploads:  r.uploads,
		Releases: r.releases,
		Draws:    r.draws,
	}
	for _, h := range r.live {
		s.Triangles += h.Triangles
		s.Bytes += 4 * (len(h.Buffer) + len(h.Indices))
	}
	return s
}

// ResetDraws zeroes the draw counter, typically once per frame.
func (r *Headless) ResetDraws() {
	r.mu.Lock()
	r.draws = 0
	r.mu.Unlock()
}
