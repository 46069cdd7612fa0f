package terrain

import "github.com/chewxy/math32"

// Deterministic lattice value noise. Lattice values come from an integer
// hash so the same seed yields the same field on every run and machine.

func fade(t float32) float32 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

func hash3(x, y, z, seed int64) uint64 {
	v := uint64(x)*0x9E3779B97F4A7C15 + uint64(y)*0x517CC1B727220A95 + uint64(z)*0x6C62272E07BB0142 + uint64(seed)
	return mix(v)
}

// mix is the SplitMix64 finaliser.
func mix(v uint64) uint64 {
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	return v ^ (v >> 31)
}

// lattice maps a hash to [-1,1].
func lattice(h uint64) float32 {
	return float32(h&0xFFFFFF)/float32(0xFFFFFF)*2 - 1
}

func valueNoise3D(x, y, z float32, seed int64) float32 {
	x0 := math32.Floor(x)
	y0 := math32.Floor(y)
	z0 := math32.Floor(z)
	fx := fade(x - x0)
	fy := fade(y - y0)
	fz := fade(z - z0)
	ix, iy, iz := int64(x0), int64(y0), int64(z0)

	v000 := lattice(hash3(ix, iy, iz, seed))
	v100 := lattice(hash3(ix+1, iy, iz, seed))
	v010 := lattice(hash3(ix, iy+1, iz, seed))
	v110 := lattice(hash3(ix+1, iy+1, iz, seed))
	v001 := lattice(hash3(ix, iy, iz+1, seed))
	v101 := lattice(hash3(ix+1, iy, iz+1, seed))
	v011 := lattice(hash3(ix, iy+1, iz+1, seed))
	v111 := lattice(hash3(ix+1, iy+1, iz+1, seed))

	i00 := lerp(v000, v100, fx)
	i10 := lerp(v010, v110, fx)
	i01 := lerp(v001, v101, fx)
	i11 := lerp(v011, v111, fx)
	return lerp(lerp(i00, i10, fy), lerp(i01, i11, fy), fz)
}

// Fractal sums octaves of value noise. The result is normalised back to
// roughly [-1,1].
type Fractal struct {
	Seed        int64
	Octaves     int
	Persistence float32 // amplitude multiplier per octave (gain)
	Lacunarity  float32 // frequency multiplier per octave
}

// Sample3D evaluates the fractal at (x, y, z).
func (f Fractal) Sample3D(x, y, z float32) float32 {
	amp, freq := float32(1), float32(1)
	var sum, norm float32
	for i := range f.Octaves {
		sum += valueNoise3D(x*freq, y*freq, z*freq, f.Seed+int64(i*131)) * amp
		norm += amp
		amp *= f.Persistence
		freq *= f.Lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}
