package main

import (
	"testing"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/phong/pkg/render"
)

func key(text string) uv.KeyPressEvent {
	r := []rune(text)
	return uv.KeyPressEvent{Code: r[0], Text: text}
}

func TestKeyCommand(t *testing.T) {
	tests := []struct {
		name string
		ev   uv.KeyPressEvent
		want command
	}{
		{"w", key("w"), command{cmdForward, moveStep}},
		{"up", uv.KeyPressEvent{Code: uv.KeyUp}, command{cmdForward, moveStep}},
		{"s", key("s"), command{cmdForward, -moveStep}},
		{"down", uv.KeyPressEvent{Code: uv.KeyDown}, command{cmdForward, -moveStep}},
		{"a", key("a"), command{cmdPan, turnStep}},
		{"left", uv.KeyPressEvent{Code: uv.KeyLeft}, command{cmdPan, turnStep}},
		{"d", key("d"), command{cmdPan, -turnStep}},
		{"right", uv.KeyPressEvent{Code: uv.KeyRight}, command{cmdPan, -turnStep}},
		{"q", key("q"), command{cmdSideways, -moveStep}},
		{"e", key("e"), command{cmdSideways, moveStep}},
		{"r", key("r"), command{cmdTilt, turnStep}},
		{"f", key("f"), command{cmdTilt, -turnStep}},
		{"plus", key("+"), command{cmdZoom, -1}},
		{"equals", key("="), command{cmdZoom, -1}},
		{"minus", key("-"), command{cmdZoom, 1}},
		{"question", key("?"), command{kind: cmdHUD}},
		{"escape", uv.KeyPressEvent{Code: uv.KeyEscape}, command{kind: cmdQuit}},
		{"ctrl+c", uv.KeyPressEvent{Code: 'c', Mod: uv.ModCtrl}, command{kind: cmdQuit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := keyCommand(tt.ev)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := keyCommand(key("x"))
	assert.False(t, ok, "unbound key")
}

func TestWheelCommand(t *testing.T) {
	c, ok := wheelCommand(uv.MouseWheelEvent{Button: uv.MouseWheelUp})
	require.True(t, ok)
	assert.Equal(t, command{cmdZoom, -1}, c)

	c, ok = wheelCommand(uv.MouseWheelEvent{Button: uv.MouseWheelDown})
	require.True(t, ok)
	assert.Equal(t, command{cmdZoom, 1}, c)

	_, ok = wheelCommand(uv.MouseWheelEvent{Button: uv.MouseLeft})
	assert.False(t, ok)
}

func TestZoomSliderClamps(t *testing.T) {
	z := newZoomSlider(60)
	z.Step(-3)
	assert.Equal(t, 0.0, z.target)

	for range 25 {
		z.Step(1)
	}
	assert.Equal(t, float64(sliderMax), z.target)
	assert.Equal(t, 1.0, z.Factor(), "value has not moved yet")
}

func TestZoomSliderSettles(t *testing.T) {
	z := newZoomSlider(60)
	z.Step(5)
	require.False(t, z.Settled())

	var factor float64
	for i := 0; i < 600 && !z.Settled(); i++ {
		factor = z.Update()
		assert.LessOrEqual(t, factor, 1.5+1e-3, "critically damped spring overshot")
	}
	assert.True(t, z.Settled())
	assert.Equal(t, 1.5, factor)
}

func TestCommandApply(t *testing.T) {
	cam, err := render.NewCamera(render.DefaultCameraConfig())
	require.NoError(t, err)
	slider := newZoomSlider(60)

	require.NoError(t, command{cmdForward, moveStep}.apply(cam, slider))
	assert.InDelta(t, 4.0, cam.Eye().Z, 1e-9)

	require.NoError(t, command{cmdZoom, 2}.apply(cam, slider))
	assert.Equal(t, 2.0, slider.target)
	assert.Equal(t, 1.0, cam.ZoomFactor(), "zoom goes through the slider")

	require.NoError(t, command{kind: cmdHUD}.apply(cam, slider))
}
