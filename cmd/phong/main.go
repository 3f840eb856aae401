// phong - Terminal Phong shading demo
// A row of cubes and spheres lit by a fixed directional light and an
// orbiting point light, rendered in your terminal.
//
// Controls:
//
//	W/S, Up/Down     - Move forward/back
//	A/D, Left/Right  - Pan left/right
//	Q/E              - Strafe left/right
//	R/F              - Tilt up/down
//	+/-, Scroll      - Zoom slider
//	?                - Toggle HUD overlay
//	Esc, Ctrl+C      - Quit
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"syscall"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/taigrr/phong/internal/config"
	"github.com/taigrr/phong/pkg/render"
	"github.com/taigrr/phong/pkg/scene"
)

type options struct {
	configPath string
	watch      bool
	logPath    string

	fps        int
	columns    int
	seed       int64
	background string

	snapshot    string
	export      string
	width       int
	height      int
	supersample int
	frames      int
}

func main() {
	var opts options
	root := &cobra.Command{
		Use:   "phong",
		Short: "Terminal Phong shading demo",
		Long: `Renders cubes and spheres under a directional light and an orbiting point
light with per-fragment Phong shading, in the terminal or to an image.`,
		Example: `  phong
  phong --config scene.toml --watch
  phong --snapshot frame.png --width 640 --height 480 --supersample 2
  phong --export scene.glb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	f := root.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "phong.toml", "Scene configuration (TOML); missing file means defaults")
	f.BoolVar(&opts.watch, "watch", false, "Reload shading intensities and background when the config file changes")
	f.StringVar(&opts.logPath, "log", "", "Write logs to this file (interactive mode logs nowhere otherwise)")
	f.IntVar(&opts.fps, "fps", 60, "Target FPS")
	f.IntVar(&opts.columns, "columns", 3, "Number of cube/sphere columns")
	f.Int64Var(&opts.seed, "seed", 0, "Color seed (0 picks one from the clock)")
	f.StringVar(&opts.background, "bg", "#000000", "Background color (hex)")
	f.StringVar(&opts.snapshot, "snapshot", "", "Render headless to this .png or .webp file and exit")
	f.StringVar(&opts.export, "export", "", "Write the scene as glTF binary (.glb) and exit")
	f.IntVar(&opts.width, "width", 320, "Snapshot width in pixels")
	f.IntVar(&opts.height, "height", 240, "Snapshot height in pixels")
	f.IntVar(&opts.supersample, "supersample", 1, "Snapshot supersampling factor")
	f.IntVar(&opts.frames, "frames", 1, "Frames to advance before the snapshot or export")

	if err := fang.Execute(context.Background(), root,
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, opts options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	headless := opts.snapshot != "" || opts.export != ""
	logger, closeLog, err := newLogger(cfg, opts.logPath, headless)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	switch {
	case opts.export != "":
		return exportScene(cfg, opts, logger)
	case opts.snapshot != "":
		return snapshot(ctx, cfg, opts, logger)
	default:
		return runViewer(ctx, cfg, opts, cmd.Flags().Changed, logger)
	}
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	opts.override(cfg, cmd.Flags().Changed)
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if opts.snapshot != "" {
		if opts.width < 1 || opts.height < 1 || opts.supersample < 1 || opts.frames < 0 {
			return nil, fmt.Errorf("%w: snapshot size %dx%d x%d, %d frames",
				config.ErrInitialization, opts.width, opts.height, opts.supersample, opts.frames)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// override copies the flags the user set over cfg. changed reports whether
// a flag was given on the command line.
func (o options) override(cfg *config.Config, changed func(name string) bool) {
	if changed("fps") {
		cfg.FPS = o.fps
	}
	if changed("columns") {
		cfg.Columns = o.columns
	}
	if changed("seed") {
		cfg.Seed = o.seed
	}
	if changed("bg") {
		cfg.Background = o.background
	}
}

// newLogger builds the text logger. The interactive viewer owns the
// terminal, so without --log it discards everything.
func newLogger(cfg *config.Config, path string, headless bool) (*slog.Logger, func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", config.ErrInitialization, err)
	}

	var w io.Writer = io.Discard
	closeFn := func() {}
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: open log: %w", config.ErrInitialization, err)
		}
		w = f
		closeFn = func() { f.Close() }
	case headless:
		w = os.Stderr
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closeFn, nil
}

// buildScene creates the camera, lights and models described by cfg.
func buildScene(cfg *config.Config, aspect float64) (*scene.Scene, error) {
	cam, err := render.NewCamera(cfg.CameraConfig(aspect))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInitialization, err)
	}
	s := scene.New(cam, scene.NewLightState(cfg.LightConfig()))
	s.Intensities = cfg.PhongIntensities()

	rng := rand.New(rand.NewSource(cfg.Seed))
	if err := s.Populate(cfg.Columns, rng); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInitialization, err)
	}
	if err := cfg.AddModels(s); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInitialization, err)
	}
	return s, nil
}
