package world

import (
	"context"
	"log/slog"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"titan/internal/config"
	"titan/internal/graphics"
	"titan/internal/meshing"
	"titan/internal/profiling"
	"titan/internal/terrain"
	"titan/internal/voxel"
)

// Option configures a World.
type Option func(*World)

// WithLogger sets the logger used by the world and its chunks.
func WithLogger(l *slog.Logger) Option {
	return func(w *World) { w.log = l }
}

// WithMeshReady registers fn to be called on the tick goroutine whenever a
// chunk finishes rebuilding. h is nil when the chunk has no visible faces.
func WithMeshReady(fn func(coord ChunkCoord, h graphics.MeshHandle)) Option {
	return func(w *World) { w.onMeshReady = fn }
}

// World owns the resident chunks and streams them around an observer.
// Tick, Paint, Render and Close must be called from a single goroutine;
// the query methods may be called from any goroutine between ticks.
type World struct {
	stream   config.Stream
	dims     voxel.Dims
	gen      terrain.Generator
	mesher   Mesher
	uploader graphics.MeshUploader

	store    *ChunkStore
	streamer *ChunkStreamer
	window   [][2]int

	onMeshReady func(ChunkCoord, graphics.MeshHandle)
	log         *slog.Logger
	closed      bool

	// render list, rebuilt when the store's mod count moves
	drawList    []*Chunk
	drawListMod uint64
	drawListOK  bool
}

// New creates a world. cfg is validated first.
func New(cfg config.Config, gen terrain.Generator, mesher Mesher, uploader graphics.MeshUploader, opts ...Option) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{
		stream:   cfg.Stream,
		dims:     voxel.Dims{X: cfg.Chunk.SizeX, Y: cfg.Chunk.SizeY, Z: cfg.Chunk.SizeZ},
		gen:      gen,
		mesher:   mesher,
		uploader: uploader,
		store:    NewChunkStore(),
		window:   ringOffsets(cfg.Stream.RenderDistance),
		log:      slog.Default(),
	}
	for _, o := range opts {
		o(w)
	}
	w.streamer = NewChunkStreamer(gen, w.dims, cfg.Stream.Workers, cfg.Stream.QueueSize, w.log)
	return w, nil
}

// Dims returns the chunk dimensions.
func (w *World) Dims() voxel.Dims { return w.dims }

// TickStats reports what a Tick did.
type TickStats struct {
	Center     ChunkCoord
	Created    int
	Dispatched int
	Applied    int
	Failed     int
	Discarded  int
	Rebuilt    int
	Evicted    int
}

// Tick advances streaming around observer: it creates chunks entering the
// view window, dispatches generation, applies finished generation, rebuilds
// dirty meshes and evicts chunks beyond the eviction distance.
func (w *World) Tick(ctx context.Context, observer mgl32.Vec3) TickStats {
	defer profiling.Track("world.Tick")()
	center := ChunkAt(observer, w.dims)
	st := TickStats{Center: center}
	if w.closed || ctx.Err() != nil {
		return st
	}

	for _, off := range w.window {
		for y := range w.stream.VerticalChunks {
			coord := ChunkCoord{X: center.X + off[0], Y: y, Z: center.Z + off[1]}
			c := w.store.Get(coord)
			if c == nil {
				c = NewChunk(coord, w.dims, w.log)
				w.store.Insert(c)
				st.Created++
			}
			if c.State() == StateEmpty {
				w.streamer.Enqueue(coord)
			}
		}
	}

	st.Dispatched = w.streamer.Dispatch(w.store, w.stream.GeneratePerTick)

	ds := w.streamer.Drain(w.store)
	st.Applied, st.Failed, st.Discarded = ds.Applied, ds.Failed, ds.Discarded

	if ctx.Err() == nil {
		st.Rebuilt = w.rebuildDirty(center)
	}
	st.Evicted = w.evict(center)
	return st
}

func (w *World) rebuildDirty(center ChunkCoord) int {
	defer profiling.Track("world.Rebuild")()
	var dirty []*Chunk
	for _, c := range w.store.AppendChunksInRadiusXZ(center.X, center.Z, w.stream.EvictDistance(), nil) {
		if c.State() == StateDirty {
			dirty = append(dirty, c)
		}
	}
	sort.SliceStable(dirty, func(i, j int) bool {
		return dirty[i].Coord.HorizontalDistance(center) < dirty[j].Coord.HorizontalDistance(center)
	})
	n := 0
	for _, c := range dirty {
		if n >= w.stream.RebuildPerTick {
			break
		}
		if w.rebuild(c) {
			n++
		}
	}
	return n
}

func (w *World) rebuild(c *Chunk) bool {
	if err := c.Rebuild(w.mesher, w.resolverFor(c)); err != nil {
		return false
	}
	var h graphics.MeshHandle
	if m := c.Mesh(); m != nil {
		var err error
		h, err = w.uploader.Upload(c.Origin(), m)
		if err != nil {
			// the previous handle keeps drawing until a retry succeeds
			w.log.Warn("mesh upload failed", "coord", c.Coord, "err", err)
			_ = c.MarkDirty()
			return false
		}
		c.setHandle(h)
	} else {
		c.releaseHandle()
	}
	if w.onMeshReady != nil {
		w.onMeshReady(c.Coord, h)
	}
	return true
}

// resolverFor answers cells outside c from resident neighbours with data,
// falling back to the generator. Everything below the world floor is solid
// so the bottom of the world is never meshed.
func (w *World) resolverFor(c *Chunk) meshing.Resolver {
	ox, oy, oz := c.Coord.X*w.dims.X, c.Coord.Y*w.dims.Y, c.Coord.Z*w.dims.Z
	return func(lx, ly, lz int) voxel.Type {
		x, y, z := ox+lx, oy+ly, oz+lz
		if y < 0 {
			return voxel.Stone
		}
		return w.BlockAt(x, y, z)
	}
}

func (w *World) evict(center ChunkCoord) int {
	removed := w.store.EvictFarChunks(center, w.stream.EvictDistance())
	for _, c := range removed {
		w.streamer.Cancel(c.Coord)
		c.release()
	}
	if len(removed) > 0 {
		w.log.Debug("evicted chunks", "chunks", len(removed), "center", center)
	}
	return len(removed)
}

// BlockAt returns the voxel at a world cell. Cells of chunks that are not
// resident or hold no data are answered by the generator.
func (w *World) BlockAt(x, y, z int) voxel.Type {
	coord, lx, ly, lz := splitCell(x, y, z, w.dims)
	if c := w.store.Get(coord); c != nil {
		if t, err := c.GetBlock(lx, ly, lz); err == nil {
			return t
		}
	}
	return w.gen.Generate(mgl32.Vec3{float32(x), float32(y), float32(z)})
}

// Chunk returns the resident chunk at coord, or nil.
func (w *World) Chunk(coord ChunkCoord) *Chunk {
	return w.store.Get(coord)
}

// ChunkCount returns the number of resident chunks.
func (w *World) ChunkCount() int {
	return w.store.Len()
}

// StateCounts returns the number of resident chunks in each state.
func (w *World) StateCounts() map[ChunkState]int {
	out := make(map[ChunkState]int)
	for _, c := range w.store.All() {
		out[c.State()]++
	}
	return out
}

// Render draws every chunk whose bounds intersect the view volume of
// viewProj and returns the number of draws issued.
func (w *World) Render(d graphics.Drawer, viewProj mgl32.Mat4) int {
	defer profiling.Track("world.Render")()
	f := graphics.NewFrustum(viewProj)
	if mod := w.store.ModCount(); !w.drawListOK || mod != w.drawListMod {
		w.drawList = w.store.All()
		w.drawListMod, w.drawListOK = mod, true
	}
	n := 0
	for _, c := range w.drawList {
		minV, maxV := c.Bounds()
		center := minV.Add(maxV).Mul(0.5)
		if !f.SphereVisible(center, maxV.Sub(minV).Len()*0.5) || !f.IsBoxVisible(minV, maxV) {
			continue
		}
		if c.Render(d) {
			n++
		}
	}
	return n
}

// Close stops generation and releases every chunk. Calling it again is a
// no-op.
func (w *World) Close() {
	if w.closed {
		return
	}
	w.closed = true
	w.drawList, w.drawListOK = nil, false
	w.streamer.Close()
	for _, c := range w.store.All() {
		w.store.Remove(c.Coord)
		c.release()
	}
}
