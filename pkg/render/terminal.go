package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/phong/pkg/math3d"
)

// Draw paints the framebuffer into area as upper half blocks: each cell
// shows pixel row 2k in the foreground and 2k+1 in the background.
// Framebuffer pixels outside area are not drawn.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	rows := min(area.Dy(), (fb.Height+1)/2)
	cols := min(area.Dx(), fb.Width)
	for y := range rows {
		for x := range cols {
			scr.SetCell(area.Min.X+x, area.Min.Y+y, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, 2*y)),
					Bg: rgbaToColor(fb.GetPixel(x, 2*y+1)),
				},
			})
		}
	}
}

// rgbaToColor leaves fully transparent pixels uncolored.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// ColorFromVec3 converts a linear [0,1] RGB triple to an opaque pixel,
// clamping out-of-range components.
func ColorFromVec3(v math3d.Vec3) Color {
	r, g, b := colorful.Color{R: v.X, G: v.Y, B: v.Z}.Clamped().RGB255()
	return RGB(r, g, b)
}

// ParseHexColor parses "#rrggbb" (or "#rgb") into an opaque pixel.
func ParseHexColor(s string) (Color, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, err
	}
	r, g, b := c.RGB255()
	return RGB(r, g, b), nil
}
