package terrain

import (
	"context"

	"github.com/go-gl/mathgl/mgl32"

	"titan/internal/config"
	"titan/internal/voxel"
)

// Generator answers the theoretical voxel at any world position.
// Implementations must be deterministic and safe for concurrent use.
type Generator interface {
	Generate(pos mgl32.Vec3) voxel.Type
	Seed() int64
}

// NoiseGenerator classifies cells against a fractal density field.
type NoiseGenerator struct {
	cfg     config.Terrain
	fractal Fractal
}

// NewNoiseGenerator builds a generator from the given settings. The result
// is immutable.
func NewNoiseGenerator(cfg config.Terrain) *NoiseGenerator {
	return &NoiseGenerator{
		cfg: cfg,
		fractal: Fractal{
			Seed:        cfg.Seed,
			Octaves:     cfg.Octaves,
			Persistence: cfg.Gain,
			Lacunarity:  cfg.Lacunarity,
		},
	}
}

func (g *NoiseGenerator) Seed() int64 { return g.cfg.Seed }

// Density returns the ground level the field implies at pos. The cell is
// solid when Density(pos) >= pos.Y().
func (g *NoiseGenerator) Density(pos mgl32.Vec3) float32 {
	p := pos.Mul(g.cfg.Frequency)
	return g.fractal.Sample3D(p.X(), p.Y(), p.Z())*g.cfg.Amplitude + g.cfg.HeightOffset
}

func (g *NoiseGenerator) solid(pos mgl32.Vec3) (float32, bool) {
	v := g.Density(pos)
	return v, v >= pos.Y()
}

func (g *NoiseGenerator) Generate(pos mgl32.Vec3) voxel.Type {
	y := pos.Y()
	if y == 0 {
		return voxel.Grass
	}
	v, solid := g.solid(pos)
	sea := float32(g.cfg.SeaLevel)
	if !solid {
		if g.cfg.SeaLevel > 0 && y > 0 && y <= sea {
			return voxel.Water
		}
		return voxel.Air
	}
	switch {
	case y < v-g.cfg.StoneDepth:
		return voxel.Stone
	case g.cfg.SeaLevel > 0 && y <= sea+1:
		return voxel.Sand
	}
	if _, above := g.solid(pos.Add(mgl32.Vec3{0, 1, 0})); !above {
		return voxel.Grass
	}
	return voxel.Dirt
}

// HeightAt returns the highest solid y in [0, maxY) at column (x, z), or -1
// when the column is empty.
func (g *NoiseGenerator) HeightAt(x, z, maxY int) int {
	for y := maxY - 1; y >= 0; y-- {
		t := g.Generate(mgl32.Vec3{float32(x), float32(y), float32(z)})
		if t.Solid() && !t.Liquid() {
			return y
		}
	}
	return -1
}

// FlatGenerator produces a flat world: stone, three layers of dirt and a
// grass surface at Height.
type FlatGenerator struct {
	Height int
}

// NewFlatGenerator creates a generator with a flat surface at height.
func NewFlatGenerator(height int) *FlatGenerator {
	return &FlatGenerator{Height: height}
}

func (g *FlatGenerator) Seed() int64 { return 0 }

func (g *FlatGenerator) Generate(pos mgl32.Vec3) voxel.Type {
	y := int(pos.Y())
	switch {
	case y > g.Height:
		return voxel.Air
	case y == g.Height:
		return voxel.Grass
	case y >= g.Height-3:
		return voxel.Dirt
	}
	return voxel.Stone
}

// FillGrid writes gen's classification of every cell of grid, whose cell
// (0,0,0) sits at world position origin. Cells are visited in z, y, x order
// to match the grid layout. It returns ctx.Err() if ctx is cancelled midway,
// leaving grid partially filled.
func FillGrid(ctx context.Context, gen Generator, grid *voxel.Grid, origin mgl32.Vec3) error {
	d := grid.Dims()
	for z := range d.Z {
		if err := ctx.Err(); err != nil {
			return err
		}
		for y := range d.Y {
			for x := range d.X {
				p := origin.Add(mgl32.Vec3{float32(x), float32(y), float32(z)})
				grid.Set(x, y, z, gen.Generate(p))
			}
		}
	}
	return nil
}
