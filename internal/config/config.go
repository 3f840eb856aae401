// Package config loads the viewer settings from a TOML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/taigrr/phong/pkg/math3d"
	"github.com/taigrr/phong/pkg/render"
	"github.com/taigrr/phong/pkg/scene"
)

// ErrInitialization marks a failure to start the viewer: an unreadable or
// invalid configuration, or a terminal that cannot be set up.
var ErrInitialization = errors.New("initialization failed")

// Limits accepted by Validate.
const (
	MaxColumns = 16
	MaxFPS     = 240
)

// Vec is a TOML triple such as [0, 0.5, 1].
type Vec [3]float64

// Vec3 converts v.
func (v Vec) Vec3() math3d.Vec3 { return math3d.V3(v[0], v[1], v[2]) }

// Config is the full viewer configuration.
type Config struct {
	LogLevel   string `toml:"log_level"`
	Columns    int    `toml:"columns"`
	Seed       int64  `toml:"seed"` // 0 picks a seed from the clock
	FPS        int    `toml:"fps"`
	Background string `toml:"background"`

	Camera      Camera      `toml:"camera"`
	Light       Light       `toml:"light"`
	Intensities Intensities `toml:"intensities"`
	Models      []Model     `toml:"models"`
}

// Camera holds the initial camera pose and projection.
type Camera struct {
	Eye    Vec     `toml:"eye"`
	Center Vec     `toml:"center"`
	Up     Vec     `toml:"up"`
	FOV    float64 `toml:"fov"` // Degrees
	Near   float64 `toml:"near"`
	Far    float64 `toml:"far"`
}

// Light holds the directional light and the orbiting point light.
type Light struct {
	Direction    Vec     `toml:"direction"`
	Position     Vec     `toml:"position"`
	OrbitAxis    Vec     `toml:"orbit_axis"`
	OrbitDegrees float64 `toml:"orbit_degrees"`
}

// Intensities are the Phong term weights.
type Intensities struct {
	Ambient   Vec     `toml:"ambient"`
	Diffuse   Vec     `toml:"diffuse"`
	Specular  Vec     `toml:"specular"`
	Shininess float64 `toml:"shininess"`
}

// Model is an extra shape placed after the default scene.
type Model struct {
	Shape     string `toml:"shape"`
	Color     string `toml:"color"`
	Translate Vec    `toml:"translate"`
	Rotate    Vec    `toml:"rotate"` // Degrees
	Scale     Vec    `toml:"scale"`
}

// Default returns the built-in configuration.
func Default() *Config {
	cam := render.DefaultCameraConfig()
	light := scene.DefaultLightConfig()
	k := render.DefaultIntensities()
	return &Config{
		LogLevel:   "info",
		Columns:    3,
		FPS:        60,
		Background: "#000000",
		Camera: Camera{
			Eye:    vec(cam.Eye),
			Center: vec(cam.Center),
			Up:     vec(cam.Up),
			FOV:    cam.FOV,
			Near:   cam.Near,
			Far:    cam.Far,
		},
		Light: Light{
			Direction:    vec(light.Direction),
			Position:     vec(light.Position),
			OrbitAxis:    vec(light.OrbitAxis),
			OrbitDegrees: light.OrbitAngle,
		},
		Intensities: Intensities{
			Ambient:   vec(k.Ambient),
			Diffuse:   vec(k.Diffuse),
			Specular:  vec(k.Specular),
			Shininess: k.Shininess,
		},
	}
}

func vec(v math3d.Vec3) Vec { return Vec{v.X, v.Y, v.Z} }

// Load reads path over the defaults. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read config: %w", ErrInitialization, err)
	}
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInitialization, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(c)
}

// Validate checks every field, returning an ErrInitialization error for
// the first problem found.
func (c *Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInitialization, fmt.Sprintf(format, args...))
	}

	if c.Columns < 0 || c.Columns > MaxColumns {
		return fail("columns must be in [0, %d], got %d", MaxColumns, c.Columns)
	}
	if c.FPS < 1 || c.FPS > MaxFPS {
		return fail("fps must be in [1, %d], got %d", MaxFPS, c.FPS)
	}
	if _, err := c.Level(); err != nil {
		return fail("log_level: %v", err)
	}
	if _, err := render.ParseHexColor(c.Background); err != nil {
		return fail("background: %v", err)
	}
	if _, err := render.NewCamera(c.CameraConfig(1)); err != nil {
		return fmt.Errorf("%w: camera: %w", ErrInitialization, err)
	}
	if c.Light.OrbitAxis.Vec3().Len() == 0 {
		return fail("light.orbit_axis must be non-zero")
	}
	if c.Intensities.Shininess <= 0 {
		return fail("intensities.shininess must be positive, got %g", c.Intensities.Shininess)
	}
	for i, m := range c.Models {
		kind, err := scene.ParseShapeKind(m.Shape)
		if err != nil {
			return fmt.Errorf("%w: models[%d]: %w", ErrInitialization, i, err)
		}
		if kind == scene.ShapeLightMarker {
			// Populate always places the marker.
			return fmt.Errorf("%w: models[%d]: %w", ErrInitialization, i, scene.ErrDuplicateMarker)
		}
		if _, err := render.ParseHexColor(m.Color); err != nil {
			return fail("models[%d].color: %v", i, err)
		}
	}
	return nil
}

// Level parses the log level.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(c.LogLevel))
	return l, err
}

// CameraConfig returns the camera settings for a viewport of the given
// aspect ratio.
func (c *Config) CameraConfig(aspect float64) render.CameraConfig {
	return render.CameraConfig{
		Eye:    c.Camera.Eye.Vec3(),
		Center: c.Camera.Center.Vec3(),
		Up:     c.Camera.Up.Vec3(),
		FOV:    c.Camera.FOV,
		Aspect: aspect,
		Near:   c.Camera.Near,
		Far:    c.Camera.Far,
	}
}

// LightConfig returns the light settings.
func (c *Config) LightConfig() scene.LightConfig {
	return scene.LightConfig{
		Direction:  c.Light.Direction.Vec3(),
		Position:   c.Light.Position.Vec3(),
		OrbitAxis:  c.Light.OrbitAxis.Vec3(),
		OrbitAngle: c.Light.OrbitDegrees,
	}
}

// PhongIntensities returns the shading weights.
func (c *Config) PhongIntensities() render.Intensities {
	return render.Intensities{
		Ambient:   c.Intensities.Ambient.Vec3(),
		Diffuse:   c.Intensities.Diffuse.Vec3(),
		Specular:  c.Intensities.Specular.Vec3(),
		Shininess: c.Intensities.Shininess,
	}
}

// BackgroundColor returns the parsed background. Call after Validate.
func (c *Config) BackgroundColor() render.Color {
	bg, err := render.ParseHexColor(c.Background)
	if err != nil {
		return render.ColorBlack
	}
	return bg
}

// AddModels places the extra models in s. Unset scale means 1.
func (c *Config) AddModels(s *scene.Scene) error {
	for i, m := range c.Models {
		kind, err := scene.ParseShapeKind(m.Shape)
		if err != nil {
			return fmt.Errorf("models[%d]: %w", i, err)
		}
		rgb, err := render.ParseHexColor(m.Color)
		if err != nil {
			return fmt.Errorf("models[%d]: %w", i, err)
		}
		color := math3d.V3(float64(rgb.R), float64(rgb.G), float64(rgb.B)).Scale(1.0 / 255)

		model, err := s.AddModel(color, kind)
		if err != nil {
			return fmt.Errorf("models[%d]: %w", i, err)
		}
		model.SetTranslate(m.Translate[0], m.Translate[1], m.Translate[2])
		model.SetRotate(m.Rotate[0], m.Rotate[1], m.Rotate[2])
		scale := m.Scale
		if scale == (Vec{}) {
			scale = Vec{1, 1, 1}
		}
		model.SetScale(scale[0], scale[1], scale[2])
	}
	return nil
}
