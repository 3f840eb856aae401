package scene

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/taigrr/phong/pkg/geometry"
	"github.com/taigrr/phong/pkg/math3d"
)

// ErrUnknownShape is returned for a shape name with no mesh.
var ErrUnknownShape = errors.New("unknown shape")

// ErrDuplicateMarker is returned when a scene already has a light marker.
var ErrDuplicateMarker = errors.New("scene already has a light marker")

// ShapeKind selects the mesh a model draws.
type ShapeKind int

const (
	ShapeCube ShapeKind = iota
	ShapeSphere
	ShapeLightMarker // Small sphere drawn at the point light
)

// Tessellation of the sphere and light-marker meshes.
const (
	sphereBands = 24
	markerBands = 8
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeCube:
		return "cube"
	case ShapeSphere:
		return "sphere"
	case ShapeLightMarker:
		return "light"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// ParseShapeKind maps "cube", "sphere" or "light" to a ShapeKind.
func ParseShapeKind(s string) (ShapeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cube":
		return ShapeCube, nil
	case "sphere":
		return ShapeSphere, nil
	case "light":
		return ShapeLightMarker, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownShape, s)
}

var meshes = sync.OnceValue(func() map[ShapeKind]*geometry.Mesh {
	return map[ShapeKind]*geometry.Mesh{
		ShapeCube:        geometry.Cube(),
		ShapeSphere:      geometry.Sphere(sphereBands, sphereBands),
		ShapeLightMarker: geometry.Sphere(markerBands, markerBands),
	}
})

// Mesh returns the shared mesh for k. Every model of the same kind gets the
// same pointer.
func (k ShapeKind) Mesh() (*geometry.Mesh, error) {
	m, ok := meshes()[k]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnknownShape, k)
	}
	return m, nil
}

// Model is one placed shape. Its transform is stored as components and
// composed into matrices each frame.
type Model struct {
	Kind  ShapeKind
	Mesh  *geometry.Mesh
	Color math3d.Vec3 // [0,1] per channel

	translate math3d.Vec3
	rotate    math3d.Vec3 // Degrees about X, then Y, then Z
	scale     math3d.Vec3
}

func newModel(color math3d.Vec3, kind ShapeKind) (*Model, error) {
	mesh, err := kind.Mesh()
	if err != nil {
		return nil, err
	}
	return &Model{
		Kind:  kind,
		Mesh:  mesh,
		Color: color,
		scale: math3d.Splat(1),
	}, nil
}

// SetTranslate sets the model position.
func (m *Model) SetTranslate(x, y, z float64) { m.translate = math3d.V3(x, y, z) }

// SetRotate sets rotation angles in degrees about X, Y and Z.
func (m *Model) SetRotate(x, y, z float64) { m.rotate = math3d.V3(x, y, z) }

// SetScale sets the per-axis scale.
func (m *Model) SetScale(x, y, z float64) { m.scale = math3d.V3(x, y, z) }

// SetColor sets the base color.
func (m *Model) SetColor(r, g, b float64) { m.Color = math3d.V3(r, g, b) }

// Translate returns the model position.
func (m *Model) Translate() math3d.Vec3 { return m.translate }

// Rotate returns the rotation angles in degrees.
func (m *Model) Rotate() math3d.Vec3 { return m.rotate }

// Scale returns the per-axis scale.
func (m *Model) Scale() math3d.Vec3 { return m.scale }

// Transform composes the model and normal matrices.
func (m *Model) Transform() (Transform, error) {
	return Compose(m.translate, m.rotate, m.scale)
}
