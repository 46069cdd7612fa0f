package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/draw"

	"titan/internal/config"
	"titan/internal/terrain"
)

// heightmapScale is the on-screen size of one sampled column.
const heightmapScale = 4

// renderHeightmap samples the surface height of the streamed square around
// center and returns it as a grayscale image, one pixel per column, scaled up
// with nearest-neighbour filtering.
func renderHeightmap(gen *terrain.NoiseGenerator, center mgl32.Vec3, cfg config.Config) *image.Gray {
	half := (cfg.Stream.RenderDistance*2 + 1) * cfg.Chunk.SizeX / 2
	maxY := cfg.Chunk.SizeY * cfg.Stream.VerticalChunks
	src := image.NewGray(image.Rect(0, 0, half*2, half*2))
	cx, cz := int(center.X()), int(center.Z())
	for z := 0; z < half*2; z++ {
		for x := 0; x < half*2; x++ {
			h := gen.HeightAt(cx-half+x, cz-half+z, maxY)
			v := 0
			if h >= 0 {
				v = h * 255 / max(maxY-1, 1)
			}
			src.SetGray(x, z, color.Gray{Y: uint8(v)})
		}
	}
	dst := image.NewGray(image.Rect(0, 0, src.Bounds().Dx()*heightmapScale, src.Bounds().Dy()*heightmapScale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

func writeHeightmap(path string, gen *terrain.NoiseGenerator, center mgl32.Vec3, cfg config.Config) error {
	img := renderHeightmap(gen, center, cfg)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heightmap: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("heightmap: %w", err)
	}
	return f.Close()
}
