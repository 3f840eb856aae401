package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/phong/internal/config"
	"github.com/taigrr/phong/pkg/render"
	"github.com/taigrr/phong/pkg/scene"
)

// viewport is the framebuffer and backend for the current terminal size.
type viewport struct {
	fb   *render.Framebuffer
	rast *render.Rasterizer
}

// newViewport sizes a framebuffer for a width x height cell terminal. Each
// cell holds two vertically stacked pixels.
func newViewport(width, height int, bg render.Color) viewport {
	fb := render.NewFramebuffer(max(width, 1), max(height, 1)*2)
	rast := render.NewRasterizer(fb)
	rast.Background = bg
	return viewport{fb: fb, rast: rast}
}

func (v viewport) aspect() float64 {
	return float64(v.fb.Width) / float64(v.fb.Height)
}

// runViewer drives the interactive terminal loop. Input arrives on the
// event goroutine and is applied here between frames; this goroutine is the
// only one that touches the scene.
// Reloaded configs get the same flag overrides as the initial one.
func runViewer(ctx context.Context, cfg *config.Config, opts options, changed func(string) bool, logger *slog.Logger) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("%w: get terminal size: %w", config.ErrInitialization, err)
	}

	view := newViewport(width, height, cfg.BackgroundColor())
	s, err := buildScene(cfg, view.aspect())
	if err != nil {
		return err
	}

	if err := term.Start(); err != nil {
		return fmt.Errorf("%w: start terminal: %w", config.ErrInitialization, err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	_ = term.Resize(width, height)

	// Enable mouse button tracking (wheel) with SGR extended coordinates
	fmt.Fprint(os.Stdout, "\x1b[?1000h")
	fmt.Fprint(os.Stdout, "\x1b[?1006h")

	defer func() {
		fmt.Fprint(os.Stdout, "\x1b[?1000l")
		fmt.Fprint(os.Stdout, "\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		_ = term.Shutdown(context.Background())
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cmds := make(chan command, 64)
	sizes := make(chan uv.WindowSizeEvent, 1)
	go readEvents(ctx, term, cmds, sizes, cancel)

	reloads := make(chan *config.Config, 1)
	if opts.watch {
		go func() {
			err := config.Watch(ctx, opts.configPath, logger, func(c *config.Config) {
				opts.override(c, changed)
				select {
				case reloads <- c:
				case <-ctx.Done():
				}
			})
			if err != nil {
				logger.Warn("config watch stopped", "error", err)
			}
		}()
	}

	logger.Info("viewer started",
		"cells", fmt.Sprintf("%dx%d", width, height),
		"models", len(s.Models()),
		"seed", cfg.Seed,
		"fps", cfg.FPS)

	slider := newZoomSlider(cfg.FPS)
	hud := NewHUD()
	targetDuration := time.Second / time.Duration(cfg.FPS)

	for {
		select {
		case <-ctx.Done():
			logger.Info("viewer stopped", "frames", s.Frames())
			return nil
		default:
		}

		now := time.Now()

	pending:
		for {
			select {
			case c := <-cmds:
				if c.kind == cmdHUD {
					hud.Visible = !hud.Visible
					continue
				}
				if err := c.apply(s.Camera, slider); err != nil {
					logger.Warn("camera command rejected", "command", c.kind, "amount", c.amount, "error", err)
				}
			case ev := <-sizes:
				view = newViewport(ev.Width, ev.Height, view.rast.Background)
				term.Erase()
				_ = term.Resize(ev.Width, ev.Height)
				if err := s.Camera.SetAspect(view.aspect()); err != nil {
					logger.Warn("resize rejected", "error", err)
				}
			case c := <-reloads:
				applyReload(s, view.rast, c)
			default:
				break pending
			}
		}

		if !slider.Settled() {
			if err := s.Camera.Zoom(slider.Update()); err != nil {
				logger.Warn("zoom rejected", "error", err)
			}
		}

		if err := s.Frame(ctx, view.rast); err != nil {
			if ctx.Err() != nil {
				continue
			}
			logger.Error("frame failed", "frame", s.Frames(), "error", err)
		}

		area := term.Bounds()
		view.fb.Draw(term, area)
		hud.UpdateFPS()
		hud.Draw(term, area, hud.Line(s.Camera, view.rast.Stats))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// readEvents turns terminal events into commands until ctx is done.
func readEvents(ctx context.Context, term *uv.Terminal, cmds chan<- command, sizes chan uv.WindowSizeEvent, quit context.CancelFunc) {
	send := func(c command) {
		select {
		case cmds <- c:
		case <-ctx.Done():
		}
	}

	for {
		var ev uv.Event
		select {
		case <-ctx.Done():
			return
		case e, ok := <-term.Events():
			if !ok {
				return
			}
			ev = e
		}

		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			// Only the latest size matters.
			select {
			case <-sizes:
			default:
			}
			sizes <- ev
		case uv.KeyPressEvent:
			c, ok := keyCommand(ev)
			if !ok {
				continue
			}
			if c.kind == cmdQuit {
				quit()
				return
			}
			send(c)
		case uv.MouseWheelEvent:
			if c, ok := wheelCommand(ev); ok {
				send(c)
			}
		}
	}
}

// applyReload swaps in the intensities and background of a reloaded config.
// Geometry, lights and camera stay as they are.
func applyReload(s *scene.Scene, rast *render.Rasterizer, cfg *config.Config) {
	s.Intensities = cfg.PhongIntensities()
	rast.Background = cfg.BackgroundColor()
}
