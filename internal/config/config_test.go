package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/phong/pkg/math3d"
	"github.com/taigrr/phong/pkg/render"
	"github.com/taigrr/phong/pkg/scene"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "phong.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, render.DefaultCameraConfig(), cfg.CameraConfig(1))
	assert.Equal(t, scene.DefaultLightConfig(), cfg.LightConfig())
	assert.Equal(t, render.DefaultIntensities(), cfg.PhongIntensities())
	assert.Equal(t, render.ColorBlack, cfg.BackgroundColor())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
columns = 5
seed = 42
background = "#1e1e28"
log_level = "debug"

[camera]
eye = [0, 2, 8]
fov = 45

[light]
orbit_degrees = 2.5

[intensities]
shininess = 8

[[models]]
shape = "cube"
color = "#ff0000"
translate = [0, -2, 0]
scale = [4, 0.1, 4]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Columns)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, render.RGB(0x1e, 0x1e, 0x28), cfg.BackgroundColor())
	assert.Equal(t, math3d.V3(0, 2, 8), cfg.CameraConfig(1).Eye)
	assert.Equal(t, 45.0, cfg.Camera.FOV)
	assert.Equal(t, 0.1, cfg.Camera.Near, "unset keys keep defaults")
	assert.Equal(t, 2.5, cfg.LightConfig().OrbitAngle)
	assert.Equal(t, 8.0, cfg.PhongIntensities().Shininess)
	require.Len(t, cfg.Models, 1)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", `columns = [`},
		{"unknown key", `colums = 3`},
		{"too many columns", `columns = 99`},
		{"zero fps", `fps = 0`},
		{"bad level", `log_level = "loud"`},
		{"bad background", `background = "blue"`},
		{"eye at center", "[camera]\neye = [0, 0, 0]"},
		{"up along view", "[camera]\nup = [0, 0, 1]"},
		{"fov", "[camera]\nfov = 180"},
		{"far before near", "[camera]\nfar = 0.01"},
		{"zero orbit axis", "[light]\norbit_axis = [0, 0, 0]"},
		{"shininess", "[intensities]\nshininess = 0"},
		{"unknown shape", "[[models]]\nshape = \"torus\"\ncolor = \"#ffffff\""},
		{"model color", "[[models]]\nshape = \"cube\"\ncolor = \"white\""},
		{"extra light marker", "[[models]]\nshape = \"light\"\ncolor = \"#ffffff\""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tc.body))
			assert.ErrorIs(t, err, ErrInitialization)
		})
	}
}

func TestUnknownShapeKeepsCause(t *testing.T) {
	_, err := Load(writeConfig(t, t.TempDir(), "[[models]]\nshape = \"cone\"\ncolor = \"#ffffff\""))
	assert.ErrorIs(t, err, ErrInitialization)
	assert.ErrorIs(t, err, scene.ErrUnknownShape)

	_, err = Load(writeConfig(t, t.TempDir(), "[[models]]\nshape = \"light\"\ncolor = \"#ffffff\""))
	assert.ErrorIs(t, err, scene.ErrDuplicateMarker)
}

func TestAddModels(t *testing.T) {
	cfg := Default()
	cfg.Models = []Model{
		{Shape: "sphere", Color: "#ff8000", Translate: Vec{1, 2, 3}, Rotate: Vec{0, 90, 0}},
		{Shape: "cube", Color: "#00ff00", Scale: Vec{2, 1, 1}},
	}
	require.NoError(t, cfg.Validate())

	cam, err := render.NewCamera(cfg.CameraConfig(1))
	require.NoError(t, err)
	s := scene.New(cam, scene.NewLightState(cfg.LightConfig()))
	require.NoError(t, cfg.AddModels(s))

	models := s.Models()
	require.Len(t, models, 2)
	assert.Equal(t, scene.ShapeSphere, models[0].Kind)
	assert.InDelta(t, 128.0/255, models[0].Color.Y, 1e-12)
	assert.Equal(t, math3d.V3(1, 2, 3), models[0].Translate())
	assert.Equal(t, math3d.Splat(1), models[0].Scale(), "unset scale is 1")
	assert.Equal(t, math3d.V3(2, 1, 1), models[1].Scale())
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "columns = 1\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan *Config, 4)
	done := make(chan error, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		done <- Watch(ctx, path, logger, func(c *Config) {
			select {
			case got <- c:
			default:
			}
		})
	}()

	// Keep rewriting until the watcher, which registers asynchronously,
	// reports the new value.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-got:
			if c.Columns == 4 {
				cancel()
				require.NoError(t, <-done)
				return
			}
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("columns = 4\n"), 0o644))
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}
