package main

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/taigrr/phong/internal/config"
	"github.com/taigrr/phong/pkg/geometry"
	"github.com/taigrr/phong/pkg/render"
)

// snapshot renders opts.frames frames offscreen and saves the last one.
func snapshot(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) error {
	w, h := opts.width*opts.supersample, opts.height*opts.supersample
	s, err := buildScene(cfg, float64(w)/float64(h))
	if err != nil {
		return err
	}

	fb := render.NewFramebuffer(w, h)
	rast := render.NewRasterizer(fb)
	rast.Background = cfg.BackgroundColor()

	start := time.Now()
	for range max(opts.frames, 1) {
		if err := s.Frame(ctx, rast); err != nil {
			return fmt.Errorf("frame %d: %w", s.Frames(), err)
		}
	}
	logger.Debug("rendered",
		"frames", s.Frames(),
		"size", fmt.Sprintf("%dx%d", w, h),
		"fragments", rast.Stats.Fragments,
		"culled", rast.Stats.Culled,
		"elapsed", time.Since(start))

	var img image.Image
	if opts.supersample > 1 {
		img = fb.Downsample(opts.width, opts.height)
	} else {
		img = fb.ToImage()
	}
	if err := render.SaveImage(opts.snapshot, img); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	logger.Info("snapshot written", "path", opts.snapshot, "width", opts.width, "height", opts.height)
	return nil
}

// exportScene writes the scene after opts.frames light steps as glTF.
func exportScene(cfg *config.Config, opts options, logger *slog.Logger) error {
	s, err := buildScene(cfg, 1)
	if err != nil {
		return err
	}
	for range opts.frames {
		s.Light.Advance()
	}
	if m := s.Marker(); m != nil {
		p := s.Light.Position
		m.SetTranslate(p.X, p.Y, p.Z)
	}

	instances, err := s.Instances()
	if err != nil {
		return err
	}
	if err := geometry.ExportGLB(opts.export, instances); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logger.Info("scene exported", "path", opts.export, "models", len(instances))
	return nil
}
