// Package scene owns the models, lights and camera of a frame and drives
// one frame at a time through a render.Backend.
package scene

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/phong/pkg/geometry"
	"github.com/taigrr/phong/pkg/math3d"
	"github.com/taigrr/phong/pkg/render"
)

// Layout of the default scene.
const (
	shapeScale  = 0.5
	markerScale = 0.1
	cubeY       = -0.5
	sphereY     = 0.5
)

// Scene is the state a frame is rendered from. It is not safe for
// concurrent use: mutate it only between calls to Frame.
type Scene struct {
	Camera      *render.Camera
	Light       *LightState
	Intensities render.Intensities

	models []*Model
	marker *Model
	frames uint64
}

// New creates an empty scene.
func New(cam *render.Camera, light *LightState) *Scene {
	return &Scene{
		Camera:      cam,
		Light:       light,
		Intensities: render.DefaultIntensities(),
	}
}

// AddModel appends a model with an identity transform and returns it for
// further setup. A ShapeLightMarker model becomes the marker that follows
// the point light; a scene holds at most one.
func (s *Scene) AddModel(color math3d.Vec3, kind ShapeKind) (*Model, error) {
	if kind == ShapeLightMarker && s.marker != nil {
		return nil, fmt.Errorf("%w: model %d", ErrDuplicateMarker, len(s.models))
	}
	m, err := newModel(color, kind)
	if err != nil {
		return nil, err
	}
	s.models = append(s.models, m)
	if kind == ShapeLightMarker {
		s.marker = m
	}
	return m, nil
}

// Models returns the models in draw order.
func (s *Scene) Models() []*Model {
	return s.models
}

// Marker returns the light marker, or nil when the scene has none.
func (s *Scene) Marker() *Model {
	return s.marker
}

// Frames returns the number of frames started so far.
func (s *Scene) Frames() uint64 {
	return s.frames
}

// Uniforms returns the snapshot of per-frame state handed to the backend.
func (s *Scene) Uniforms() render.Uniforms {
	return render.Uniforms{
		Eye:            s.Camera.Eye(),
		View:           s.Camera.ViewMatrix(),
		Proj:           s.Camera.ProjectionMatrix(),
		LightDirection: s.Light.Direction,
		LightPosition:  s.Light.Position,
		Intensities:    s.Intensities,
	}
}

// Frame renders one frame: the point light advances, the marker follows it,
// then every model is drawn in insertion order and the backend resolves.
// An invalid model transform aborts the frame before Resolve.
func (s *Scene) Frame(ctx context.Context, backend render.Backend) error {
	s.frames++
	s.Light.Advance()
	if s.marker != nil {
		p := s.Light.Position
		s.marker.SetTranslate(p.X, p.Y, p.Z)
	}

	backend.BeginFrame(s.Uniforms())
	for i, m := range s.models {
		tr, err := m.Transform()
		if err != nil {
			return fmt.Errorf("model %d (%v): %w", i, m.Kind, err)
		}
		err = backend.Draw(render.DrawCall{
			Mesh:   m.Mesh,
			Model:  tr.Model,
			Normal: tr.Normal,
			Color:  m.Color,
		})
		if err != nil {
			return fmt.Errorf("model %d (%v): %w", i, m.Kind, err)
		}
	}
	return backend.Resolve(ctx)
}

// Populate adds the default scene: for each of columns columns a cube below
// a sphere sharing one random color, centered on the origin, then a small
// white marker for the point light.
func (s *Scene) Populate(columns int, rng *rand.Rand) error {
	for k := range columns {
		c := colorful.FastHappyColorWithRand(rng)
		color := math3d.V3(c.R, c.G, c.B)
		x := float64(2*k - columns + 1) // Columns two units apart, centered on x=0

		for _, shape := range []struct {
			kind ShapeKind
			y    float64
		}{{ShapeCube, cubeY}, {ShapeSphere, sphereY}} {
			m, err := s.AddModel(color, shape.kind)
			if err != nil {
				return err
			}
			m.SetTranslate(x, shape.y, 0)
			m.SetScale(shapeScale, shapeScale, shapeScale)
		}
	}

	marker, err := s.AddModel(math3d.Splat(1), ShapeLightMarker)
	if err != nil {
		return err
	}
	p := s.Light.Position
	marker.SetTranslate(p.X, p.Y, p.Z)
	marker.SetScale(markerScale, markerScale, markerScale)
	return nil
}

// Instances returns every model with its composed matrices, for export.
func (s *Scene) Instances() ([]geometry.Instance, error) {
	out := make([]geometry.Instance, 0, len(s.models))
	for i, m := range s.models {
		tr, err := m.Transform()
		if err != nil {
			return nil, fmt.Errorf("model %d (%v): %w", i, m.Kind, err)
		}
		out = append(out, geometry.Instance{
			Name:   fmt.Sprintf("%s.%d", m.Kind, i),
			Mesh:   m.Mesh,
			Model:  tr.Model,
			Normal: tr.Normal,
			Color:  m.Color,
		})
	}
	return out, nil
}
