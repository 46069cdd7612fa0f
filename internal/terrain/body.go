package terrain

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"titan/internal/config"
)

// BodyTerrain is the height function of a celestial body. Evaluate returns a
// non-negative elevation relative to the body radius for a point on the
// surface of the unit cube.
type BodyTerrain struct {
	cfg config.Body
}

// NewBodyTerrain returns a height function for the given body settings.
func NewBodyTerrain(cfg config.Body) *BodyTerrain {
	return &BodyTerrain{cfg: cfg}
}

// Evaluate layers noise at increasing roughness. Values below MinValue are
// flattened to sea level.
func (b *BodyTerrain) Evaluate(point mgl32.Vec3) float32 {
	c := b.cfg
	center := mgl32.Vec3(c.Center)
	freq := c.BaseRoughness
	amp := float32(1)
	var v float32
	for i := range c.Layers {
		p := point.Mul(freq).Add(center)
		n := valueNoise3D(p.X(), p.Y(), p.Z(), c.Seed+int64(i*131))
		v += (n + 1) * 0.5 * amp
		freq *= c.Roughness
		amp *= c.Persistence
	}
	return math32.Max(0, v-c.MinValue) * c.Strength
}
