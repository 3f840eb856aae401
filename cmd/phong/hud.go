package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/phong/pkg/render"
)

var (
	hudFg = color.RGBA{230, 230, 230, 255}
	hudBg = color.RGBA{20, 20, 28, 255}
)

// HUD draws a one-line overlay with the frame rate and camera state.
type HUD struct {
	Visible bool

	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a hidden HUD.
func NewHUD() *HUD {
	return &HUD{fpsTime: time.Now()}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Line formats the overlay text.
func (h *HUD) Line(cam *render.Camera, stats render.FrameStats) string {
	eye := cam.Eye()
	return fmt.Sprintf(" %.0f FPS  eye (%.1f, %.1f, %.1f)  fov %.0f x%.2f  %d/%d drawn  %d tris ",
		h.fps, eye.X, eye.Y, eye.Z, cam.FOV(), cam.ZoomFactor(),
		stats.Draws-stats.Culled, stats.Draws, stats.Triangles)
}

// Draw writes the overlay on the top row of area.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle, line string) {
	if !h.Visible {
		return
	}
	x := area.Min.X
	for _, r := range line {
		if x >= area.Max.X {
			break
		}
		scr.SetCell(x, area.Min.Y, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: hudFg, Bg: hudBg},
		})
		x++
	}
}
