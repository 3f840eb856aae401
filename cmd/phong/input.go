package main

import (
	"fmt"
	"math"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/phong/pkg/render"
)

// Navigation step sizes.
const (
	moveStep  = 1.0 // World units per key press
	turnStep  = 5.0 // Degrees per key press
	sliderMax = 10  // Zoom slider runs 0..sliderMax
)

type commandKind int

const (
	cmdForward commandKind = iota
	cmdSideways
	cmdPan
	cmdTilt
	cmdZoom // Amount is a slider step
	cmdHUD
	cmdQuit
)

func (k commandKind) String() string {
	switch k {
	case cmdForward:
		return "forward"
	case cmdSideways:
		return "sideways"
	case cmdPan:
		return "pan"
	case cmdTilt:
		return "tilt"
	case cmdZoom:
		return "zoom"
	case cmdHUD:
		return "hud"
	case cmdQuit:
		return "quit"
	}
	return fmt.Sprintf("commandKind(%d)", int(k))
}

// command is one navigation request from the input goroutine, applied by
// the frame loop between frames.
type command struct {
	kind   commandKind
	amount float64
}

// keyCommand maps a key press to a command.
func keyCommand(ev uv.KeyPressEvent) (command, bool) {
	switch {
	case ev.MatchString("escape", "ctrl+c"):
		return command{kind: cmdQuit}, true
	case ev.MatchString("w", "up"):
		return command{cmdForward, moveStep}, true
	case ev.MatchString("s", "down"):
		return command{cmdForward, -moveStep}, true
	case ev.MatchString("a", "left"):
		return command{cmdPan, turnStep}, true
	case ev.MatchString("d", "right"):
		return command{cmdPan, -turnStep}, true
	case ev.MatchString("q"):
		return command{cmdSideways, -moveStep}, true
	case ev.MatchString("e"):
		return command{cmdSideways, moveStep}, true
	case ev.MatchString("r"):
		return command{cmdTilt, turnStep}, true
	case ev.MatchString("f"):
		return command{cmdTilt, -turnStep}, true
	case ev.Text == "+" || ev.MatchString("="): // "+" is the match separator
		return command{cmdZoom, -1}, true
	case ev.MatchString("-", "_"):
		return command{cmdZoom, 1}, true
	case ev.MatchString("?"):
		return command{kind: cmdHUD}, true
	}
	return command{}, false
}

// wheelCommand maps the mouse wheel to the zoom slider.
func wheelCommand(ev uv.MouseWheelEvent) (command, bool) {
	switch ev.Button {
	case uv.MouseWheelUp:
		return command{cmdZoom, -1}, true
	case uv.MouseWheelDown:
		return command{cmdZoom, 1}, true
	}
	return command{}, false
}

// apply runs a camera command. Zoom commands only move the slider; the
// slider eases the camera zoom from the frame loop.
func (c command) apply(cam *render.Camera, slider *zoomSlider) error {
	switch c.kind {
	case cmdForward:
		return cam.MoveForward(c.amount)
	case cmdSideways:
		return cam.MoveSideways(c.amount)
	case cmdPan:
		return cam.Pan(c.amount)
	case cmdTilt:
		return cam.Tilt(c.amount)
	case cmdZoom:
		slider.Step(int(c.amount))
	}
	return nil
}

// zoomSlider is a 0..10 slider whose displayed value follows its target
// through a critically damped spring. The camera zoom factor is
// 1 + value/10.
type zoomSlider struct {
	target   float64
	value    float64
	velocity float64
	spring   harmonica.Spring
}

func newZoomSlider(fps int) *zoomSlider {
	return &zoomSlider{
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 1.0),
	}
}

// Step moves the target by delta notches, clamped to the slider range.
func (z *zoomSlider) Step(delta int) {
	z.target = math.Max(0, math.Min(sliderMax, z.target+float64(delta)))
}

// Update advances the spring one frame and returns the zoom factor.
func (z *zoomSlider) Update() float64 {
	z.value, z.velocity = z.spring.Update(z.value, z.velocity, z.target)
	if math.Abs(z.value-z.target) < 1e-4 && math.Abs(z.velocity) < 1e-4 {
		z.value, z.velocity = z.target, 0
	}
	return z.Factor()
}

// Factor returns the zoom factor for the current value.
func (z *zoomSlider) Factor() float64 {
	return 1 + z.value/sliderMax
}

// Settled reports whether the value has reached the target.
func (z *zoomSlider) Settled() bool {
	return z.value == z.target && z.velocity == 0
}
