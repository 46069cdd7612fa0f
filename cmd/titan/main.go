// Command titan streams a procedurally generated voxel world around a moving
// observer without a window, paints into it, and reports what the core did.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/xlab/closer"

	"titan/internal/config"
	"titan/internal/graphics"
	"titan/internal/meshing"
	"titan/internal/physics"
	"titan/internal/profiling"
	"titan/internal/terrain"
	"titan/internal/voxel"
	"titan/internal/world"
)

const observerHeight = 1.8

type options struct {
	configPath string
	ticks      int
	speed      float64
	paintEvery int
	heightmap  string
	planet     bool
}

func main() {
	cfg := config.Default()
	var opts options

	flag.StringVar(&opts.configPath, "config", "", "TOML or YAML config file")
	flag.IntVar(&opts.ticks, "ticks", 200, "number of ticks to run")
	flag.Float64Var(&opts.speed, "speed", 0.5, "observer speed in blocks per tick along +X")
	flag.IntVar(&opts.paintEvery, "paint-every", 50, "paint with the brush every N ticks (0 disables)")
	flag.StringVar(&opts.heightmap, "heightmap", "", "write a PNG heightmap preview of the streamed area")
	flag.BoolVar(&opts.planet, "planet", false, "also build a celestial body mesh")
	flag.IntVar(&cfg.Stream.RenderDistance, "render-distance", cfg.Stream.RenderDistance, "render distance in chunks")
	flag.IntVar(&cfg.Stream.Workers, "workers", cfg.Stream.Workers, "generation workers")
	flag.Int64Var(&cfg.Terrain.Seed, "seed", cfg.Terrain.Seed, "terrain seed")
	flag.IntVar(&cfg.Terrain.SeaLevel, "sea-level", cfg.Terrain.SeaLevel, "sea level (0 disables water)")
	flag.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "debug, info, warn or error")
	flag.Parse()

	if opts.configPath != "" {
		var err error
		if cfg, err = loadWithOverrides(opts.configPath, cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))
	slog.SetDefault(log)

	if err := run(cfg, opts, log); err != nil {
		closer.Fatalln(err)
	}
	closer.Close()
}

// loadWithOverrides reads path and re-applies every flag set on the command
// line on top of it.
func loadWithOverrides(path string, flagged config.Config) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "render-distance":
			cfg.Stream.RenderDistance = flagged.Stream.RenderDistance
		case "workers":
			cfg.Stream.Workers = flagged.Stream.Workers
		case "seed":
			cfg.Terrain.Seed = flagged.Terrain.Seed
		case "sea-level":
			cfg.Terrain.SeaLevel = flagged.Terrain.SeaLevel
		case "log-level":
			cfg.Log.Level = flagged.Log.Level
		}
	})
	return cfg, cfg.Validate()
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func run(cfg config.Config, opts options, log *slog.Logger) error {
	brush, err := voxel.ParseType(cfg.Brush.Type)
	if err != nil {
		return err
	}

	gen := terrain.NewNoiseGenerator(cfg.Terrain)
	renderer := graphics.NewHeadless()
	meshed := 0
	w, err := world.New(cfg, gen, meshing.CubeMesher{}, renderer,
		world.WithLogger(log),
		world.WithMeshReady(func(world.ChunkCoord, graphics.MeshHandle) { meshed++ }),
	)
	if err != nil {
		return err
	}

	// The world is only touched from this goroutine. The shutdown hook
	// cancels the loop and waits for run to close the world.
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	closer.Bind(func() {
		cancel()
		<-finished
	})
	defer func() {
		w.Close()
		st := renderer.Stats()
		log.Info("world closed", "uploads", st.Uploads, "releases", st.Releases, "live", st.Live)
		close(finished)
	}()

	cam := graphics.NewCamera(1280, 720)
	cam.Yaw = 90 // look along the path
	cam.FarPlane = float32((cfg.Stream.RenderDistance + 1) * cfg.Chunk.SizeX)

	start := mgl32.Vec3{0.5, 0, 0.5}
	observer := start
	painted := 0
	drawn := 0
	for i := 0; i < opts.ticks && ctx.Err() == nil; i++ {
		stop := profiling.Track("titan.frame")
		observer = start.Add(mgl32.Vec3{float32(opts.speed * float64(i)), 0, 0})
		ground := gen.HeightAt(int(observer.X()), int(observer.Z()), cfg.Chunk.SizeY*cfg.Stream.VerticalChunks)
		observer[1] = float32(ground + 2)
		for physics.Collides(observer, observerHeight, w) {
			observer[1]++
		}

		st := w.Tick(ctx, observer)
		if st.Created > 0 || st.Evicted > 0 || st.Failed > 0 {
			log.Debug("tick", "n", i, "center", st.Center, "created", st.Created,
				"applied", st.Applied, "rebuilt", st.Rebuilt, "evicted", st.Evicted, "failed", st.Failed)
		}

		if opts.paintEvery > 0 && i > 0 && i%opts.paintEvery == 0 {
			hit := physics.Raycast(observer.Add(mgl32.Vec3{0, observerHeight, 0}), mgl32.Vec3{0, -1, 0},
				physics.MinReachDistance, physics.MaxReachDistance, w)
			if hit.Hit {
				p := hit.HitPosition
				at := mgl32.Vec3{float32(p[0]), float32(p[1]), float32(p[2])}
				if cfg.Brush.Shape == "disc" {
					painted += w.PaintDisc(at, brush, cfg.Brush.Radius)
				} else {
					painted += w.Paint(at, brush, cfg.Brush.Radius)
				}
			}
		}

		cam.Position = observer
		renderer.ResetDraws()
		drawn = w.Render(renderer, cam.ViewProjection())
		stop()
	}

	counts := w.StateCounts()
	log.Info("streaming finished",
		"chunks", w.ChunkCount(),
		"loaded", counts[world.StateLoaded],
		"dirty", counts[world.StateDirty],
		"generating", counts[world.StateGenerating],
		"meshed", meshed,
		"painted", painted,
		"drawn", drawn,
		"triangles", renderer.Stats().Triangles,
		"bytes", renderer.Stats().Bytes,
	)
	if ctx.Err() != nil {
		return nil
	}

	if opts.heightmap != "" {
		if err := writeHeightmap(opts.heightmap, gen, observer, cfg); err != nil {
			return err
		}
		log.Info("heightmap written", "path", opts.heightmap)
	}

	if opts.planet {
		buildPlanet(cfg.Body, renderer, log)
	}

	log.Info("profile", "top", profiling.TopN(5))
	return nil
}

func buildPlanet(cfg config.Body, renderer *graphics.Headless, log *slog.Logger) {
	defer profiling.Track("titan.planet")()
	height := terrain.NewBodyTerrain(cfg)
	body := meshing.NewBody(cfg, height.Evaluate)
	for _, p := range body.Leaves() {
		if _, err := renderer.Upload(mgl32.Vec3{}, p.Mesh); err != nil {
			log.Warn("patch upload failed", "depth", p.Depth, "err", err)
		}
	}
	v, t := body.Stats()
	log.Info("planet built", "radius", cfg.Radius, "patches", len(body.Leaves()), "vertices", v, "triangles", t)
}
