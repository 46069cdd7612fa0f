package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alitto/pond/v2"
	"github.com/go-gl/mathgl/mgl32"

	"titan/internal/profiling"
	"titan/internal/terrain"
	"titan/internal/voxel"
)

// genResult carries a finished generation task back to the tick goroutine.
type genResult struct {
	coord ChunkCoord
	id    uint64
	grid  *voxel.Grid
	err   error
}

// ChunkStreamer queues chunks for generation and runs the generation on a
// worker pool. Everything except the pool tasks themselves runs on the tick
// goroutine.
type ChunkStreamer struct {
	gen  terrain.Generator
	dims voxel.Dims
	log  *slog.Logger

	pool    pond.Pool
	ctx     context.Context
	cancel  context.CancelFunc
	results chan genResult

	queue    []ChunkCoord
	queued   map[ChunkCoord]struct{}
	maxQueue int

	// In-flight tasks by coordinate. A result whose task is missing here
	// belongs to a cancelled task and is dropped.
	inFlight map[ChunkCoord]task
	nextID   uint64
}

type task struct {
	id     uint64
	cancel context.CancelFunc
}

// NewChunkStreamer starts a pool of workers generating chunks of the given
// dimensions.
func NewChunkStreamer(gen terrain.Generator, dims voxel.Dims, workers, queueSize int, log *slog.Logger) *ChunkStreamer {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ChunkStreamer{
		gen:      gen,
		dims:     dims,
		log:      log,
		pool:     pond.NewPool(max(workers, 1)),
		ctx:      ctx,
		cancel:   cancel,
		results:  make(chan genResult, queueSize),
		queued:   make(map[ChunkCoord]struct{}),
		maxQueue: queueSize,
		inFlight: make(map[ChunkCoord]task),
	}
}

// Enqueue schedules coord for generation. It returns false when coord is
// already queued or in flight, or the queue is full.
func (s *ChunkStreamer) Enqueue(coord ChunkCoord) bool {
	if _, ok := s.queued[coord]; ok {
		return false
	}
	if _, ok := s.inFlight[coord]; ok {
		return false
	}
	if len(s.queued) >= s.maxQueue {
		return false
	}
	s.queued[coord] = struct{}{}
	s.queue = append(s.queue, coord)
	return true
}

// Dispatch hands up to budget queued chunks to the pool, moving each from
// Empty to Generating. Queued coordinates whose chunk is gone or no longer
// Empty are skipped. A closed streamer dispatches nothing.
func (s *ChunkStreamer) Dispatch(store *ChunkStore, budget int) int {
	defer profiling.Track("world.Dispatch")()
	if s.ctx.Err() != nil {
		return 0
	}
	n := 0
	i := 0
	for ; i < len(s.queue) && n < budget; i++ {
		coord := s.queue[i]
		if _, ok := s.queued[coord]; !ok {
			continue
		}
		delete(s.queued, coord)
		c := store.Get(coord)
		if c == nil || c.State() != StateEmpty {
			continue
		}
		if err := c.beginGenerating(); err != nil {
			continue
		}
		ctx, cancel := context.WithCancel(s.ctx)
		s.nextID++
		id := s.nextID
		s.inFlight[coord] = task{id: id, cancel: cancel}
		origin := c.Origin()
		s.pool.Submit(func() {
			s.generate(ctx, coord, id, origin)
		})
		n++
	}
	s.queue = append(s.queue[:0], s.queue[i:]...)
	return n
}

func (s *ChunkStreamer) generate(ctx context.Context, coord ChunkCoord, id uint64, origin mgl32.Vec3) {
	res := genResult{coord: coord, id: id}
	defer func() {
		if r := recover(); r != nil {
			res.grid = nil
			res.err = fmt.Errorf("generator panic: %v", r)
		}
		select {
		case s.results <- res:
		case <-s.ctx.Done():
		}
	}()
	grid := voxel.NewGrid(s.dims)
	if err := terrain.FillGrid(ctx, s.gen, grid, origin); err != nil {
		res.err = err
		return
	}
	res.grid = grid
}

// DrainStats counts what a Drain call did.
type DrainStats struct {
	Applied, Failed, Discarded int
}

// Drain applies every finished result without blocking. Failed chunks go
// back to Empty so a later tick queues them again.
func (s *ChunkStreamer) Drain(store *ChunkStore) DrainStats {
	var st DrainStats
	for {
		select {
		case r := <-s.results:
			s.apply(store, r, &st)
		default:
			return st
		}
	}
}

func (s *ChunkStreamer) apply(store *ChunkStore, r genResult, st *DrainStats) {
	t, ok := s.inFlight[r.coord]
	if !ok || t.id != r.id {
		st.Discarded++
		return
	}
	delete(s.inFlight, r.coord)
	t.cancel()

	c := store.Get(r.coord)
	if c == nil {
		st.Discarded++
		return
	}
	if r.err != nil {
		err := &GenerationError{Coord: r.coord, Err: r.err}
		if errors.Is(err, context.Canceled) {
			s.log.Debug("chunk generation cancelled", "coord", r.coord)
		} else {
			s.log.Warn("chunk generation failed", "coord", r.coord, "err", err)
		}
		_ = c.abortGenerating()
		st.Failed++
		return
	}
	if err := c.applyGenerated(r.grid); err != nil {
		st.Discarded++
		return
	}
	st.Applied++
}

// Cancel forgets coord: a queued entry is dropped and an in-flight task is
// cancelled so its result will be discarded.
func (s *ChunkStreamer) Cancel(coord ChunkCoord) {
	delete(s.queued, coord)
	if t, ok := s.inFlight[coord]; ok {
		t.cancel()
		delete(s.inFlight, coord)
	}
}

// Queued returns the number of chunks waiting for dispatch.
func (s *ChunkStreamer) Queued() int { return len(s.queued) }

// InFlight returns the number of dispatched, unfinished tasks.
func (s *ChunkStreamer) InFlight() int { return len(s.inFlight) }

// Close cancels every task and waits for the workers to stop.
func (s *ChunkStreamer) Close() {
	s.cancel()
	s.pool.StopAndWait()
	for coord, t := range s.inFlight {
		t.cancel()
		delete(s.inFlight, coord)
	}
}
