package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"titan/internal/graphics"
	"titan/internal/meshing"
	"titan/internal/terrain"
	"titan/internal/voxel"
)

// ErrNotReady is returned when reading a chunk that holds no voxel data.
var ErrNotReady = errors.New("chunk has no voxel data")

// GenerationError wraps a failed or cancelled generation of a chunk.
type GenerationError struct {
	Coord ChunkCoord
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate chunk %s: %v", e.Coord, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Mesher builds a mesh for a chunk grid. Cells outside the grid are looked
// up through resolve.
type Mesher interface {
	Build(grid *voxel.Grid, resolve meshing.Resolver) *meshing.Mesh
}

// Chunk is a fixed-size block of the world together with its lifecycle
// state and current mesh. A Chunk is not safe for concurrent use; World
// drives every chunk from its tick goroutine.
type Chunk struct {
	Coord ChunkCoord

	dims   voxel.Dims
	state  ChunkState
	grid   *voxel.Grid
	mesh   *meshing.Mesh
	handle graphics.MeshHandle
	log    *slog.Logger
}

// NewChunk creates an Empty chunk. A nil logger uses slog.Default().
func NewChunk(coord ChunkCoord, dims voxel.Dims, log *slog.Logger) *Chunk {
	if log == nil {
		log = slog.Default()
	}
	return &Chunk{Coord: coord, dims: dims, log: log}
}

func (c *Chunk) State() ChunkState { return c.state }

// Mesh returns the last built mesh, nil if none or if it had no faces.
func (c *Chunk) Mesh() *meshing.Mesh { return c.mesh }

// Handle returns the renderer handle of the current mesh, if uploaded.
func (c *Chunk) Handle() graphics.MeshHandle { return c.handle }

// Origin returns the world position of the chunk's first cell.
func (c *Chunk) Origin() mgl32.Vec3 { return c.Coord.Origin(c.dims) }

// Bounds returns the world-space box covered by the chunk.
func (c *Chunk) Bounds() (minV, maxV mgl32.Vec3) {
	minV = c.Origin()
	maxV = minV.Add(mgl32.Vec3{float32(c.dims.X), float32(c.dims.Y), float32(c.dims.Z)})
	return
}

func (c *Chunk) apply(e Event) error {
	next, err := c.state.Next(e)
	if err != nil {
		c.log.Warn("chunk transition rejected", "coord", c.Coord, "state", c.state, "event", e)
		return err
	}
	c.state = next
	return nil
}

// Load generates the chunk's voxel data synchronously, leaving it Dirty.
func (c *Chunk) Load(ctx context.Context, gen terrain.Generator) error {
	if err := c.beginGenerating(); err != nil {
		return err
	}
	grid := voxel.NewGrid(c.dims)
	if err := terrain.FillGrid(ctx, gen, grid, c.Origin()); err != nil {
		_ = c.abortGenerating()
		return &GenerationError{Coord: c.Coord, Err: err}
	}
	return c.applyGenerated(grid)
}

func (c *Chunk) beginGenerating() error {
	return c.apply(EventDispatch)
}

func (c *Chunk) applyGenerated(grid *voxel.Grid) error {
	if err := c.apply(EventGenerated); err != nil {
		return err
	}
	c.grid = grid
	return nil
}

func (c *Chunk) abortGenerating() error {
	return c.apply(EventGenerationFailed)
}

// Rebuild replaces the chunk mesh. It is only legal while Dirty. The
// renderer handle of the previous mesh stays drawable until the caller
// swaps in a new one.
func (c *Chunk) Rebuild(m Mesher, resolve meshing.Resolver) error {
	if c.state != StateDirty {
		return c.apply(EventMeshed)
	}
	c.mesh = m.Build(c.grid, resolve)
	return c.apply(EventMeshed)
}

// SetBlock writes a cell and marks the chunk Dirty. Out of range
// coordinates panic with *voxel.OutOfBoundsError.
func (c *Chunk) SetBlock(x, y, z int, t voxel.Type) error {
	if !c.state.HasData() {
		return c.apply(EventModified)
	}
	c.grid.Set(x, y, z, t)
	return c.apply(EventModified)
}

// GetBlock reads a cell. Chunks without data answer Air and ErrNotReady.
func (c *Chunk) GetBlock(x, y, z int) (voxel.Type, error) {
	if !c.state.HasData() {
		return voxel.Air, ErrNotReady
	}
	return c.grid.Get(x, y, z), nil
}

// MarkDirty schedules a rebuild without writing a cell, e.g. after an edit
// on a neighbour's border. Chunks already Dirty are left alone.
func (c *Chunk) MarkDirty() error {
	if c.state == StateDirty {
		return nil
	}
	return c.apply(EventModified)
}

// Render draws the chunk's mesh and reports whether a draw was issued.
func (c *Chunk) Render(d graphics.Drawer) bool {
	if !c.state.HasData() || c.handle == nil {
		return false
	}
	d.Draw(c.handle)
	return true
}

func (c *Chunk) setHandle(h graphics.MeshHandle) {
	c.releaseHandle()
	c.handle = h
}

func (c *Chunk) releaseHandle() {
	if c.handle != nil {
		c.handle.Release()
		c.handle = nil
	}
}

// release drops everything the chunk owns and returns it to Empty.
func (c *Chunk) release() {
	c.releaseHandle()
	c.grid = nil
	c.mesh = nil
	c.state = StateEmpty
}
