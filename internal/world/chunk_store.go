package world

import (
	"sort"
	"sync"

	"titan/internal/profiling"
)

// ChunkStore holds the resident chunks, at most one per coordinate. It is
// safe for concurrent use.
type ChunkStore struct {
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // increases on any add/remove

	// Per-column index for XZ radius queries: (chunkX,chunkZ) -> slice indexed by chunkY
	colIndex map[[2]int][]*Chunk
}

// NewChunkStore creates an empty store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks:   make(map[ChunkCoord]*Chunk),
		colIndex: make(map[[2]int][]*Chunk),
	}
}

// Get returns the chunk at coord, or nil.
func (cs *ChunkStore) Get(coord ChunkCoord) *Chunk {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.chunks[coord]
}

// Insert adds c unless a chunk already occupies its coordinate. It reports
// whether c was added.
func (cs *ChunkStore) Insert(c *Chunk) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[c.Coord]; ok {
		return false
	}
	cs.chunks[c.Coord] = c
	cs.modCount++
	if c.Coord.Y >= 0 {
		key := [2]int{c.Coord.X, c.Coord.Z}
		col := cs.colIndex[key]
		if len(col) <= c.Coord.Y {
			n := make([]*Chunk, c.Coord.Y+1)
			copy(n, col)
			col = n
		}
		col[c.Coord.Y] = c
		cs.colIndex[key] = col
	}
	return true
}

// Remove deletes and returns the chunk at coord, or nil.
func (cs *ChunkStore) Remove(coord ChunkCoord) *Chunk {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	c, ok := cs.chunks[coord]
	if !ok {
		return nil
	}
	cs.removeLocked(coord)
	return c
}

func (cs *ChunkStore) removeLocked(coord ChunkCoord) {
	delete(cs.chunks, coord)
	cs.modCount++
	key := [2]int{coord.X, coord.Z}
	col, ok := cs.colIndex[key]
	if !ok || coord.Y < 0 || coord.Y >= len(col) {
		return
	}
	col[coord.Y] = nil
	end := len(col)
	for end > 0 && col[end-1] == nil {
		end--
	}
	if end == 0 {
		delete(cs.colIndex, key)
	} else {
		cs.colIndex[key] = col[:end]
	}
}

// Len returns the number of resident chunks.
func (cs *ChunkStore) Len() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.chunks)
}

// ModCount returns the modification counter of the chunk map.
func (cs *ChunkStore) ModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// All returns every resident chunk ordered by coordinate.
func (cs *ChunkStore) All() []*Chunk {
	cs.mu.RLock()
	out := make([]*Chunk, 0, len(cs.chunks))
	for _, c := range cs.chunks {
		out = append(out, c)
	}
	cs.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return coordLess(out[i].Coord, out[j].Coord) })
	return out
}

// AppendChunksInRadiusXZ appends the chunks whose column lies within
// Chebyshev distance radius of (cx, cz) to dst.
func (cs *ChunkStore) AppendChunksInRadiusXZ(cx, cz, radius int, dst []*Chunk) []*Chunk {
	defer profiling.Track("world.AppendChunksInRadiusXZ")()
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	for dx := -radius; dx <= radius; dx++ {
		for dz := -radius; dz <= radius; dz++ {
			for _, ch := range cs.colIndex[[2]int{cx + dx, cz + dz}] {
				if ch != nil {
					dst = append(dst, ch)
				}
			}
		}
	}
	return dst
}

// EvictFarChunks removes the chunks farther than radius (Chebyshev, XZ)
// from center and returns them.
func (cs *ChunkStore) EvictFarChunks(center ChunkCoord, radius int) []*Chunk {
	defer profiling.Track("world.EvictFarChunks")()
	var removed []*Chunk
	cs.mu.Lock()
	for coord, c := range cs.chunks {
		if coord.HorizontalDistance(center) > radius {
			cs.removeLocked(coord)
			removed = append(removed, c)
		}
	}
	cs.mu.Unlock()
	return removed
}

func coordLess(a, b ChunkCoord) bool {
	if a.X != b.X {
		return a.X < b.X
	}
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	return a.Z < b.Z
}
