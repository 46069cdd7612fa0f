package world

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"titan/internal/config"
	"titan/internal/graphics"
	"titan/internal/meshing"
	"titan/internal/terrain"
	"titan/internal/voxel"
)

func testConfig(renderDistance int) config.Config {
	cfg := config.Default()
	cfg.Chunk = config.Chunk{SizeX: 16, SizeY: 16, SizeZ: 16}
	cfg.Stream.RenderDistance = renderDistance
	cfg.Stream.EvictMargin = 1
	cfg.Stream.Workers = 2
	cfg.Stream.GeneratePerTick = 64
	cfg.Stream.RebuildPerTick = 64
	cfg.Stream.QueueSize = 256
	return cfg
}

func newTestWorld(t *testing.T, cfg config.Config, gen terrain.Generator, opts ...Option) (*World, *graphics.Headless) {
	t.Helper()
	r := graphics.NewHeadless()
	w, err := New(cfg, gen, meshing.CubeMesher{}, r, opts...)
	require.NoError(t, err)
	t.Cleanup(w.Close)
	return w, r
}

// settle ticks until every resident chunk is Loaded and returns the summed
// stats of all ticks.
func settle(t *testing.T, w *World, observer mgl32.Vec3) TickStats {
	t.Helper()
	var sum TickStats
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		st := w.Tick(context.Background(), observer)
		sum.Created += st.Created
		sum.Dispatched += st.Dispatched
		sum.Applied += st.Applied
		sum.Failed += st.Failed
		sum.Discarded += st.Discarded
		sum.Rebuilt += st.Rebuilt
		sum.Evicted += st.Evicted
		if w.StateCounts()[StateLoaded] == w.ChunkCount() && w.streamer.InFlight() == 0 {
			return sum
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("world did not settle: %v", w.StateCounts())
	return sum
}

// gatedGen blocks every Generate call until gate is closed.
type gatedGen struct {
	terrain.Generator
	gate chan struct{}
}

func (g *gatedGen) Generate(p mgl32.Vec3) voxel.Type {
	<-g.gate
	return g.Generator.Generate(p)
}

func newGatedGen() *gatedGen {
	return &gatedGen{Generator: terrain.NewFlatGenerator(4), gate: make(chan struct{})}
}

// flakyGen panics on its first call.
type flakyGen struct {
	terrain.Generator
	tripped atomic.Bool
}

func (g *flakyGen) Generate(p mgl32.Vec3) voxel.Type {
	if g.tripped.CompareAndSwap(false, true) {
		panic("boom")
	}
	return g.Generator.Generate(p)
}

// switchUploader fails every upload while fail is set.
type switchUploader struct {
	*graphics.Headless
	fail atomic.Bool
}

func (u *switchUploader) Upload(origin mgl32.Vec3, m *meshing.Mesh) (graphics.MeshHandle, error) {
	if u.fail.Load() {
		return nil, errors.New("device lost")
	}
	return u.Headless.Upload(origin, m)
}

var originObserver = mgl32.Vec3{8.5, 6, 8.5}

func TestTickCreatesWindow(t *testing.T) {
	gen := newGatedGen()
	w, _ := newTestWorld(t, testConfig(2), gen)
	t.Cleanup(func() { close(gen.gate) })

	st := w.Tick(context.Background(), originObserver)
	assert.Equal(t, ChunkCoord{}, st.Center)
	assert.Equal(t, 25, st.Created)
	assert.Equal(t, 25, st.Dispatched)
	assert.Equal(t, 25, w.ChunkCount())
	for dx := -2; dx <= 2; dx++ {
		for dz := -2; dz <= 2; dz++ {
			c := w.Chunk(ChunkCoord{dx, 0, dz})
			require.NotNil(t, c, "chunk %d,%d", dx, dz)
			assert.Equal(t, StateGenerating, c.State())
		}
	}
	assert.Nil(t, w.Chunk(ChunkCoord{3, 0, 0}))
	assert.Nil(t, w.Chunk(ChunkCoord{0, 1, 0}))

	st = w.Tick(context.Background(), originObserver)
	assert.Zero(t, st.Created)
	assert.Zero(t, st.Dispatched, "generating chunks are not dispatched twice")
}

func TestGeneratePerTickBudget(t *testing.T) {
	gen := newGatedGen()
	cfg := testConfig(1)
	cfg.Stream.GeneratePerTick = 4
	cfg.Stream.VerticalChunks = 2
	w, _ := newTestWorld(t, cfg, gen)
	t.Cleanup(func() { close(gen.gate) })

	st := w.Tick(context.Background(), originObserver)
	assert.Equal(t, 18, st.Created)
	assert.Equal(t, 4, st.Dispatched)
	assert.Equal(t, 4, w.StateCounts()[StateGenerating])
	assert.Equal(t, 14, w.StateCounts()[StateEmpty])

	st = w.Tick(context.Background(), originObserver)
	assert.Equal(t, 4, st.Dispatched)
	// The nearest column goes first.
	assert.Equal(t, StateGenerating, w.Chunk(ChunkCoord{0, 0, 0}).State())
	assert.Equal(t, StateGenerating, w.Chunk(ChunkCoord{0, 1, 0}).State())
}

func TestFlatWorldMeshes(t *testing.T) {
	var ready []ChunkCoord
	var handles int
	w, r := newTestWorld(t, testConfig(1), terrain.NewFlatGenerator(4),
		WithMeshReady(func(c ChunkCoord, h graphics.MeshHandle) {
			ready = append(ready, c)
			if h != nil {
				handles++
			}
		}))

	sum := settle(t, w, originObserver)
	assert.Equal(t, 9, w.ChunkCount())
	assert.Equal(t, 9, sum.Applied)
	assert.Equal(t, 9, sum.Rebuilt)
	assert.Len(t, ready, 9)
	assert.Equal(t, 9, handles)
	assert.Equal(t, 9, r.Stats().Live)

	for _, c := range w.store.All() {
		m := c.Mesh()
		require.NotNil(t, m)
		// Borders are culled against neighbours and the world floor, so
		// only the grass surface remains.
		assert.Len(t, m.Vertices, 16*16*4, "chunk %s", c.Coord)
		for _, v := range m.Vertices {
			assert.Equal(t, mgl32.Vec3{0, 1, 0}, v.Normal)
		}
	}
}

func TestEmptyChunksHaveNoHandle(t *testing.T) {
	var fired, nilHandles int
	w, r := newTestWorld(t, testConfig(1), terrain.NewFlatGenerator(-10),
		WithMeshReady(func(_ ChunkCoord, h graphics.MeshHandle) {
			fired++
			if h == nil {
				nilHandles++
			}
		}))
	settle(t, w, originObserver)
	assert.Equal(t, 9, fired)
	assert.Equal(t, 9, nilHandles)
	assert.Zero(t, r.Stats().Live)
	assert.Nil(t, w.Chunk(ChunkCoord{}).Mesh())
}

func TestPaintDiscMarksOneChunk(t *testing.T) {
	w, _ := newTestWorld(t, testConfig(1), terrain.NewFlatGenerator(4))
	settle(t, w, originObserver)

	n := w.PaintDisc(mgl32.Vec3{8.5, 4.5, 8.5}, voxel.Brick, 3)
	assert.Equal(t, 29, n)
	for _, c := range w.store.All() {
		if c.Coord == (ChunkCoord{}) {
			assert.Equal(t, StateDirty, c.State())
		} else {
			assert.Equal(t, StateLoaded, c.State(), "chunk %s", c.Coord)
		}
	}
	assert.Equal(t, voxel.Brick, w.BlockAt(8, 4, 8))
	assert.Equal(t, voxel.Brick, w.BlockAt(11, 4, 8))
	assert.Equal(t, voxel.Brick, w.BlockAt(10, 4, 10))
	assert.Equal(t, voxel.Grass, w.BlockAt(11, 4, 9))
	assert.Equal(t, voxel.Air, w.BlockAt(8, 5, 8))

	st := w.Tick(context.Background(), originObserver)
	assert.Equal(t, 1, st.Rebuilt)
	assert.Equal(t, StateLoaded, w.Chunk(ChunkCoord{}).State())
}

func TestPaintSphere(t *testing.T) {
	w, _ := newTestWorld(t, testConfig(1), terrain.NewFlatGenerator(4))
	settle(t, w, originObserver)

	assert.Equal(t, 1, w.Paint(mgl32.Vec3{8, 8, 8}, voxel.Glass, 0))
	assert.Equal(t, 7, w.Paint(mgl32.Vec3{8, 10, 8}, voxel.Glass, 1))
	assert.Equal(t, 0, w.Paint(mgl32.Vec3{500, 4, 500}, voxel.Glass, 2), "nothing resident there")
	assert.Equal(t, 0, w.Paint(mgl32.Vec3{8, 4, 8}, voxel.Glass, -1))
	assert.Equal(t, voxel.Glass, w.BlockAt(8, 11, 8))
	assert.Equal(t, voxel.Air, w.BlockAt(9, 11, 8))
}

func TestBorderEditMarksNeighbour(t *testing.T) {
	w, _ := newTestWorld(t, testConfig(1), terrain.NewFlatGenerator(4))
	settle(t, w, originObserver)

	require.True(t, w.SetBlock(15, 4, 8, voxel.Air))
	assert.Equal(t, StateDirty, w.Chunk(ChunkCoord{0, 0, 0}).State())
	assert.Equal(t, StateDirty, w.Chunk(ChunkCoord{1, 0, 0}).State())
	assert.Equal(t, StateLoaded, w.Chunk(ChunkCoord{-1, 0, 0}).State())
	assert.Equal(t, StateLoaded, w.Chunk(ChunkCoord{0, 0, 1}).State())

	// The hole exposes a face of the neighbour across the border.
	before := len(w.Chunk(ChunkCoord{1, 0, 0}).Mesh().Vertices)
	w.Tick(context.Background(), originObserver)
	after := len(w.Chunk(ChunkCoord{1, 0, 0}).Mesh().Vertices)
	assert.Equal(t, before+4, after)
}

func TestBlockAtFallsBackToGenerator(t *testing.T) {
	w, _ := newTestWorld(t, testConfig(1), terrain.NewFlatGenerator(4))
	assert.Equal(t, voxel.Grass, w.BlockAt(3, 4, -40))
	assert.Equal(t, voxel.Air, w.BlockAt(3, 5, -40))
	assert.Zero(t, w.ChunkCount(), "queries never materialise chunks")
}

func TestEvictionHysteresis(t *testing.T) {
	w, r := newTestWorld(t, testConfig(1), terrain.NewFlatGenerator(4))
	settle(t, w, originObserver)

	// One chunk over: everything stays within render distance + margin.
	st := w.Tick(context.Background(), originObserver.Add(mgl32.Vec3{16, 0, 0}))
	assert.Zero(t, st.Evicted)

	st = w.Tick(context.Background(), originObserver.Add(mgl32.Vec3{32, 0, 0}))
	assert.Equal(t, 3, st.Evicted)
	assert.Nil(t, w.Chunk(ChunkCoord{-1, 0, 0}))
	assert.NotNil(t, w.Chunk(ChunkCoord{0, 0, 0}))
	assert.Equal(t, 3, r.Stats().Releases)
}

func TestEvictionCancelsInFlight(t *testing.T) {
	gen := newGatedGen()
	cfg := testConfig(1)
	cfg.Stream.EvictMargin = 0
	w, _ := newTestWorld(t, cfg, gen)

	st := w.Tick(context.Background(), originObserver)
	require.Equal(t, 9, st.Dispatched)

	far := mgl32.Vec3{16*100 + 8, 6, 8}
	st = w.Tick(context.Background(), far)
	assert.Equal(t, 9, st.Evicted)
	assert.Zero(t, w.streamer.Queued())
	assert.Equal(t, 9, w.streamer.InFlight(), "only the new window is in flight")

	close(gen.gate)
	sum := settle(t, w, far)
	sum.Discarded += st.Discarded
	// Results of the evicted chunks may trail the new window.
	deadline := time.Now().Add(5 * time.Second)
	for sum.Discarded < 9 && time.Now().Before(deadline) {
		sum.Discarded += w.Tick(context.Background(), far).Discarded
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, 9, sum.Discarded)
	assert.Equal(t, 9, w.ChunkCount())
	assert.Nil(t, w.Chunk(ChunkCoord{}))
	assert.Equal(t, 9, w.StateCounts()[StateLoaded])
}

func TestGenerationPanicRetries(t *testing.T) {
	gen := &flakyGen{Generator: terrain.NewFlatGenerator(4)}
	w, _ := newTestWorld(t, testConfig(1), gen)
	sum := settle(t, w, originObserver)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 9, w.StateCounts()[StateLoaded])
	assert.Equal(t, 10, sum.Dispatched)
}

func TestRenderCullsAgainstView(t *testing.T) {
	w, r := newTestWorld(t, testConfig(1), terrain.NewFlatGenerator(4))
	settle(t, w, originObserver)

	cam := graphics.NewCamera(800, 600)
	cam.Position = mgl32.Vec3{8, 10, 80}
	assert.Equal(t, 9, w.Render(r, cam.ViewProjection()))
	assert.Equal(t, 9, r.Stats().Draws)

	cam.Yaw = 180
	assert.Equal(t, 0, w.Render(r, cam.ViewProjection()))
}

func TestCloseReleasesEverything(t *testing.T) {
	w, r := newTestWorld(t, testConfig(1), terrain.NewFlatGenerator(4))
	settle(t, w, originObserver)
	w.Close()
	assert.Zero(t, r.Stats().Live)
	assert.Zero(t, w.ChunkCount())
	w.Close()
}

func TestUploadFailureKeepsPreviousMesh(t *testing.T) {
	up := &switchUploader{Headless: graphics.NewHeadless()}
	w, err := New(testConfig(1), terrain.NewFlatGenerator(4), meshing.CubeMesher{}, up)
	require.NoError(t, err)
	t.Cleanup(w.Close)
	settle(t, w, originObserver)

	c := w.Chunk(ChunkCoord{})
	old := c.Handle()
	require.NotNil(t, old)

	require.True(t, w.SetBlock(8, 4, 8, voxel.Brick))
	up.fail.Store(true)
	st := w.Tick(context.Background(), originObserver)
	assert.Zero(t, st.Rebuilt)
	assert.Equal(t, StateDirty, c.State())
	assert.Same(t, old, c.Handle(), "old mesh stays drawable")
	assert.True(t, c.Render(up))
	assert.Equal(t, 9, up.Stats().Live)
	assert.Zero(t, up.Stats().Releases)

	up.fail.Store(false)
	st = w.Tick(context.Background(), originObserver)
	assert.Equal(t, 1, st.Rebuilt)
	assert.Equal(t, StateLoaded, c.State())
	assert.NotSame(t, old, c.Handle())
	assert.Equal(t, 9, up.Stats().Live)
	assert.Equal(t, 1, up.Stats().Releases)
}

func TestEmptiedChunkReleasesHandle(t *testing.T) {
	w, r := newTestWorld(t, testConfig(1), terrain.NewFlatGenerator(0))
	settle(t, w, originObserver)
	require.NotNil(t, w.Chunk(ChunkCoord{}).Handle())

	for x := range 16 {
		for z := range 16 {
			w.SetBlock(x, 0, z, voxel.Air)
		}
	}
	w.Tick(context.Background(), originObserver)
	c := w.Chunk(ChunkCoord{})
	assert.Equal(t, StateLoaded, c.State())
	assert.Nil(t, c.Mesh())
	assert.Nil(t, c.Handle())
	assert.Equal(t, 8, r.Stats().Live)
}

func TestTickAfterCloseIsNoop(t *testing.T) {
	w, r := newTestWorld(t, testConfig(1), terrain.NewFlatGenerator(4))
	settle(t, w, originObserver)
	w.Close()

	st := w.Tick(context.Background(), originObserver)
	assert.Zero(t, st.Created)
	assert.Zero(t, st.Dispatched)
	assert.Zero(t, w.ChunkCount())

	cam := graphics.NewCamera(800, 600)
	cam.Position = mgl32.Vec3{8, 10, 80}
	assert.Zero(t, w.Render(r, cam.ViewProjection()))
}

func TestTickSkipsWhenCancelled(t *testing.T) {
	w, _ := newTestWorld(t, testConfig(1), terrain.NewFlatGenerator(4))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := w.Tick(ctx, originObserver)
	assert.Zero(t, st.Created)
	assert.Zero(t, w.ChunkCount())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(1)
	cfg.Stream.RenderDistance = 0
	_, err := New(cfg, terrain.NewFlatGenerator(1), meshing.CubeMesher{}, graphics.NewHeadless())
	assert.Error(t, err)
}
