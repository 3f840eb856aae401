package render

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramebufferBounds(t *testing.T) {
	fb := NewFramebuffer(4, 2)
	fb.SetPixel(-1, 0, ColorWhite)
	fb.SetPixel(4, 1, ColorWhite)
	fb.SetPixel(3, 1, ColorWhite)

	assert.Equal(t, ColorWhite, fb.GetPixel(3, 1))
	assert.Equal(t, Color{}, fb.GetPixel(0, 5))
	for i, p := range fb.Pixels[:7] {
		assert.Equal(t, Color{}, p, "pixel %d", i)
	}
}

func TestDownsample(t *testing.T) {
	fb := NewFramebuffer(8, 6)
	fb.Clear(RGB(40, 80, 120))

	img := fb.Downsample(4, 3)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 3, img.Bounds().Dy())
	got := img.RGBAAt(1, 1)
	assert.InDelta(t, 40, int(got.R), 1, "uniform input stays uniform")
	assert.InDelta(t, 80, int(got.G), 1)
	assert.InDelta(t, 120, int(got.B), 1)

	same := fb.Downsample(8, 6)
	assert.Equal(t, 8, same.Bounds().Dx())
}

func TestSaveImage(t *testing.T) {
	dir := t.TempDir()
	fb := NewFramebuffer(3, 2)
	fb.Clear(RGB(200, 10, 10))

	pngPath := filepath.Join(dir, "frame.png")
	require.NoError(t, fb.SavePNG(pngPath))
	f, err := os.Open(pngPath)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	r, g, b, _ := img.At(2, 1).RGBA()
	assert.Equal(t, []uint32{200, 10, 10}, []uint32{r >> 8, g >> 8, b >> 8})

	webpPath := filepath.Join(dir, "frame.WEBP")
	require.NoError(t, SaveImage(webpPath, fb.ToImage()))
	data, err := os.ReadFile(webpPath)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))

	err = SaveImage(filepath.Join(dir, "frame.jpg"), fb.ToImage())
	assert.ErrorContains(t, err, "unsupported image format")
	assert.NoFileExists(t, filepath.Join(dir, "frame.jpg"))
}
