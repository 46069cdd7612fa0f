package config

import "fmt"

// Terrain holds block-world generation settings.
type Terrain struct {
	Seed         int64   `toml:"seed" yaml:"seed"`
	Octaves      int     `toml:"octaves" yaml:"octaves"`
	Gain         float32 `toml:"gain" yaml:"gain"`
	Lacunarity   float32 `toml:"lacunarity" yaml:"lacunarity"`
	Frequency    float32 `toml:"frequency" yaml:"frequency"`
	Amplitude    float32 `toml:"amplitude" yaml:"amplitude"`
	HeightOffset float32 `toml:"height_offset" yaml:"height_offset"` // vertical bias of the ground curve
	SeaLevel     int     `toml:"sea_level" yaml:"sea_level"`         // 0 disables water
	StoneDepth   float32 `toml:"stone_depth" yaml:"stone_depth"`
}

// DefaultTerrain mirrors the values the block demos shipped with.
func DefaultTerrain() Terrain {
	return Terrain{
		Seed:         456456456345634,
		Octaves:      6,
		Gain:         0.4,
		Lacunarity:   2.0,
		Frequency:    0.008,
		Amplitude:    32,
		HeightOffset: 6,
		SeaLevel:     0,
		StoneDepth:   4,
	}
}

func (t Terrain) validate() []error {
	var errs []error
	if t.Octaves < 1 {
		errs = append(errs, fmt.Errorf("terrain octaves must be >= 1, got %d", t.Octaves))
	}
	if t.Frequency <= 0 {
		errs = append(errs, fmt.Errorf("terrain frequency must be > 0, got %g", t.Frequency))
	}
	if t.Lacunarity <= 0 {
		errs = append(errs, fmt.Errorf("terrain lacunarity must be > 0, got %g", t.Lacunarity))
	}
	if t.SeaLevel < 0 {
		errs = append(errs, fmt.Errorf("terrain sea_level must be >= 0, got %d", t.SeaLevel))
	}
	return errs
}

// Body holds celestial body (smooth terrain) settings.
type Body struct {
	Radius        float32    `toml:"radius" yaml:"radius"`
	Resolution    int        `toml:"resolution" yaml:"resolution"` // vertices per patch edge
	MaxDepth      int        `toml:"max_depth" yaml:"max_depth"`
	Seed          int64      `toml:"seed" yaml:"seed"`
	Strength      float32    `toml:"strength" yaml:"strength"`
	Layers        int        `toml:"layers" yaml:"layers"`
	BaseRoughness float32    `toml:"base_roughness" yaml:"base_roughness"`
	Roughness     float32    `toml:"roughness" yaml:"roughness"`
	Persistence   float32    `toml:"persistence" yaml:"persistence"`
	MinValue      float32    `toml:"min_value" yaml:"min_value"`
	Center        [3]float32 `toml:"center" yaml:"center"`
}

// DefaultBody returns the planet settings used by the solar system demo.
func DefaultBody() Body {
	return Body{
		Radius:        100,
		Resolution:    8,
		MaxDepth:      2,
		Strength:      0.1,
		Layers:        4,
		BaseRoughness: 1,
		Roughness:     2,
		Persistence:   0.5,
		MinValue:      0.9,
	}
}

func (b Body) validate() []error {
	var errs []error
	if b.Radius <= 0 {
		errs = append(errs, fmt.Errorf("body radius must be > 0, got %g", b.Radius))
	}
	if b.Resolution < 2 {
		errs = append(errs, fmt.Errorf("body resolution must be >= 2, got %d", b.Resolution))
	}
	if b.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("body max_depth must be >= 0, got %d", b.MaxDepth))
	}
	if b.Layers < 0 {
		errs = append(errs, fmt.Errorf("body layers must be >= 0, got %d", b.Layers))
	}
	return errs
}
