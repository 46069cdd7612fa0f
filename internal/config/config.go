package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is the full set of recognised options.
type Config struct {
	Chunk   Chunk   `toml:"chunk" yaml:"chunk"`
	Stream  Stream  `toml:"stream" yaml:"stream"`
	Terrain Terrain `toml:"terrain" yaml:"terrain"`
	Body    Body    `toml:"body" yaml:"body"`
	Brush   Brush   `toml:"brush" yaml:"brush"`
	Log     Log     `toml:"log" yaml:"log"`
}

// Chunk holds the chunk dimensions in cells.
type Chunk struct {
	SizeX int `toml:"size_x" yaml:"size_x"`
	SizeY int `toml:"size_y" yaml:"size_y"`
	SizeZ int `toml:"size_z" yaml:"size_z"`
}

// Stream holds chunk streaming settings.
type Stream struct {
	RenderDistance  int `toml:"render_distance" yaml:"render_distance"` // in chunks
	VerticalChunks  int `toml:"vertical_chunks" yaml:"vertical_chunks"`
	EvictMargin     int `toml:"evict_margin" yaml:"evict_margin"`
	GeneratePerTick int `toml:"generate_per_tick" yaml:"generate_per_tick"`
	RebuildPerTick  int `toml:"rebuild_per_tick" yaml:"rebuild_per_tick"`
	Workers         int `toml:"workers" yaml:"workers"`
	QueueSize       int `toml:"queue_size" yaml:"queue_size"`
}

// Brush holds block painting defaults.
type Brush struct {
	Radius float32 `toml:"radius" yaml:"radius"`
	Shape  string  `toml:"shape" yaml:"shape"` // "sphere" or "disc"
	Type   string  `toml:"type" yaml:"type"`
}

// Log holds logging settings.
type Log struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Chunk: Chunk{SizeX: 16, SizeY: 64, SizeZ: 16},
		Stream: Stream{
			RenderDistance:  8,
			VerticalChunks:  1,
			EvictMargin:     2,
			GeneratePerTick: 25,
			RebuildPerTick:  15,
			Workers:         max(runtime.NumCPU()-1, 1),
			QueueSize:       4096,
		},
		Terrain: DefaultTerrain(),
		Body:    DefaultBody(),
		Brush:   Brush{Radius: 3, Shape: "sphere", Type: "brick"},
		Log:     Log{Level: "info"},
	}
}

// Load reads a TOML or YAML file (chosen by extension) over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Decode(&cfg, filepath.Ext(path), data); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Decode unmarshals data into cfg using the format implied by ext.
// Fields missing from data keep their current values.
func Decode(cfg *Config, ext string, data []byte) error {
	switch strings.ToLower(ext) {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
	return fmt.Errorf("unsupported config format %q", ext)
}

// Encode marshals cfg in the format implied by ext.
func Encode(cfg Config, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".toml":
		return toml.Marshal(cfg)
	case ".yaml", ".yml":
		return yaml.Marshal(cfg)
	}
	return nil, fmt.Errorf("unsupported config format %q", ext)
}

// Validate rejects settings the world cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Chunk.SizeX <= 0 || c.Chunk.SizeY <= 0 || c.Chunk.SizeZ <= 0 {
		errs = append(errs, fmt.Errorf("chunk size must be positive, got %dx%dx%d",
			c.Chunk.SizeX, c.Chunk.SizeY, c.Chunk.SizeZ))
	}
	if c.Stream.RenderDistance < 1 {
		errs = append(errs, fmt.Errorf("render_distance must be >= 1, got %d", c.Stream.RenderDistance))
	}
	if c.Stream.VerticalChunks < 1 {
		errs = append(errs, fmt.Errorf("vertical_chunks must be >= 1, got %d", c.Stream.VerticalChunks))
	}
	if c.Stream.EvictMargin < 0 {
		errs = append(errs, fmt.Errorf("evict_margin must be >= 0, got %d", c.Stream.EvictMargin))
	}
	if c.Stream.GeneratePerTick < 1 || c.Stream.RebuildPerTick < 1 {
		errs = append(errs, errors.New("per-tick budgets must be >= 1"))
	}
	if c.Stream.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Stream.Workers))
	}
	if c.Stream.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("queue_size must be >= 1, got %d", c.Stream.QueueSize))
	}
	if c.Brush.Radius < 0 {
		errs = append(errs, fmt.Errorf("brush radius must be >= 0, got %g", c.Brush.Radius))
	}
	switch c.Brush.Shape {
	case "sphere", "disc":
	default:
		errs = append(errs, fmt.Errorf("brush shape must be sphere or disc, got %q", c.Brush.Shape))
	}
	errs = append(errs, c.Terrain.validate()...)
	errs = append(errs, c.Body.validate()...)
	return errors.Join(errs...)
}

// EvictDistance returns the chunk distance beyond which resident chunks are
// dropped.
func (s Stream) EvictDistance() int {
	return s.RenderDistance + s.EvictMargin
}
