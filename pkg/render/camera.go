package render

import (
	"errors"
	"fmt"

	"github.com/taigrr/phong/pkg/math3d"
)

// ErrInvalidCameraState is returned when a camera operation would leave the
// eye on top of the center, the up vector parallel to the view direction,
// or the projection undefined. The camera is left unchanged.
var ErrInvalidCameraState = errors.New("invalid camera state")

// degenerateEpsilon bounds the vector lengths treated as zero when
// validating the camera frame.
const degenerateEpsilon = 1e-9

// Camera is a look-at camera. View and projection matrices are caches of the
// other fields; every mutating method recomputes them before returning, so
// they are never stale.
type Camera struct {
	eye    math3d.Vec3
	center math3d.Vec3
	up     math3d.Vec3

	// Projection parameters
	fov    float64 // Base vertical field of view in degrees
	zoom   float64 // Multiplier on fov applied by Zoom
	aspect float64 // Width / Height
	near   float64
	far    float64

	viewMatrix math3d.Mat4
	projMatrix math3d.Mat4
}

// CameraConfig holds the initial pose and projection of a camera.
type CameraConfig struct {
	Eye    math3d.Vec3
	Center math3d.Vec3
	Up     math3d.Vec3
	FOV    float64 // Degrees
	Aspect float64
	Near   float64
	Far    float64
}

// DefaultCameraConfig returns the camera five units back on +Z looking at
// the origin with a 60 degree field of view.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Eye:    math3d.V3(0, 0, 5),
		Center: math3d.Zero3(),
		Up:     math3d.Up(),
		FOV:    60,
		Aspect: 1,
		Near:   0.1,
		Far:    1000,
	}
}

// NewCamera creates a camera from cfg.
func NewCamera(cfg CameraConfig) (*Camera, error) {
	if cfg.Near <= 0 || cfg.Far <= cfg.Near {
		return nil, fmt.Errorf("%w: clip planes near=%g far=%g", ErrInvalidCameraState, cfg.Near, cfg.Far)
	}
	if err := validProjection(cfg.FOV, cfg.Aspect); err != nil {
		return nil, err
	}
	if _, err := frame(cfg.Eye, cfg.Center, cfg.Up); err != nil {
		return nil, err
	}

	c := &Camera{
		eye:    cfg.Eye,
		center: cfg.Center,
		up:     cfg.Up.Normalize(),
		fov:    cfg.FOV,
		zoom:   1,
		aspect: cfg.Aspect,
		near:   cfg.Near,
		far:    cfg.Far,
	}
	c.UpdateView()
	c.updateProjection()
	return c, nil
}

// Eye returns the camera position.
func (c *Camera) Eye() math3d.Vec3 { return c.eye }

// Center returns the point the camera looks at.
func (c *Camera) Center() math3d.Vec3 { return c.center }

// Up returns the camera up vector.
func (c *Camera) Up() math3d.Vec3 { return c.up }

// FOV returns the base vertical field of view in degrees.
func (c *Camera) FOV() float64 { return c.fov }

// ZoomFactor returns the multiplier last applied by Zoom.
func (c *Camera) ZoomFactor() float64 { return c.zoom }

// ViewMatrix returns the view matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 { return c.viewMatrix }

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 { return c.projMatrix }

// ViewProjectionMatrix returns proj * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	return c.projMatrix.Mul(c.viewMatrix)
}

// UpdateView recomputes the view matrix from eye, center and up.
func (c *Camera) UpdateView() {
	c.viewMatrix = math3d.LookAt(c.eye, c.center, c.up)
}

func (c *Camera) updateProjection() {
	c.projMatrix = math3d.PerspectiveDeg(c.fov*c.zoom, c.aspect, c.near, c.far)
}

// LookAt replaces the camera pose.
func (c *Camera) LookAt(eye, center, up math3d.Vec3) error {
	if _, err := frame(eye, center, up); err != nil {
		return err
	}
	c.eye, c.center, c.up = eye, center, up.Normalize()
	c.UpdateView()
	return nil
}

// MoveForward dollies eye and center together along the view direction.
// Negative distances move backward.
func (c *Camera) MoveForward(distance float64) error {
	f, err := frame(c.eye, c.center, c.up)
	if err != nil {
		return err
	}
	step := f.forward.Scale(distance)
	c.eye = c.eye.Add(step)
	c.center = c.center.Add(step)
	c.UpdateView()
	return nil
}

// MoveSideways strafes eye and center together along the right vector.
// Negative distances move left.
func (c *Camera) MoveSideways(distance float64) error {
	f, err := frame(c.eye, c.center, c.up)
	if err != nil {
		return err
	}
	step := f.right.Scale(distance)
	c.eye = c.eye.Add(step)
	c.center = c.center.Add(step)
	c.UpdateView()
	return nil
}

// Pan turns the view direction about the up vector by angle degrees,
// keeping the eye fixed and the eye-to-center distance unchanged.
func (c *Camera) Pan(angle float64) error {
	if _, err := frame(c.eye, c.center, c.up); err != nil {
		return err
	}
	rot := math3d.Rotate(c.up, math3d.Radians(angle))
	rel := rot.MulVec3Dir(c.center.Sub(c.eye))
	c.center = c.eye.Add(rel)
	c.UpdateView()
	return nil
}

// Tilt pitches the view direction and the up vector about the right vector
// by angle degrees. Up is re-orthonormalized against the new view direction.
func (c *Camera) Tilt(angle float64) error {
	f, err := frame(c.eye, c.center, c.up)
	if err != nil {
		return err
	}
	rot := math3d.Rotate(f.right, math3d.Radians(angle))
	rel := rot.MulVec3Dir(c.center.Sub(c.eye))
	forward := rel.Normalize()
	up := f.right.Cross(forward).Normalize()

	c.center = c.eye.Add(rel)
	c.up = up
	c.UpdateView()
	return nil
}

// Zoom sets the effective field of view to the base FOV times scale.
// Eye and center are not touched; Zoom(1) restores the base projection.
func (c *Camera) Zoom(scale float64) error {
	if scale <= 0 {
		return fmt.Errorf("%w: zoom factor %g", ErrInvalidCameraState, scale)
	}
	if err := validProjection(c.fov*scale, c.aspect); err != nil {
		return err
	}
	c.zoom = scale
	c.updateProjection()
	return nil
}

// SetAspect updates the aspect ratio (width / height), keeping the zoom.
func (c *Camera) SetAspect(aspect float64) error {
	if err := validProjection(c.fov*c.zoom, aspect); err != nil {
		return err
	}
	c.aspect = aspect
	c.updateProjection()
	return nil
}

// cameraFrame is the orthonormal basis derived from eye, center and up.
type cameraFrame struct {
	forward math3d.Vec3
	right   math3d.Vec3
}

// frame validates the pose and returns its basis.
func frame(eye, center, up math3d.Vec3) (cameraFrame, error) {
	if !eye.IsFinite() || !center.IsFinite() || !up.IsFinite() {
		return cameraFrame{}, fmt.Errorf("%w: non-finite pose", ErrInvalidCameraState)
	}
	dir := center.Sub(eye)
	if dir.Len() < degenerateEpsilon {
		return cameraFrame{}, fmt.Errorf("%w: eye %v coincides with center", ErrInvalidCameraState, eye)
	}
	if up.Len() < degenerateEpsilon {
		return cameraFrame{}, fmt.Errorf("%w: zero up vector", ErrInvalidCameraState)
	}
	forward := dir.Normalize()
	right := forward.Cross(up.Normalize())
	if right.Len() < degenerateEpsilon {
		return cameraFrame{}, fmt.Errorf("%w: up %v parallel to view direction", ErrInvalidCameraState, up)
	}
	return cameraFrame{forward: forward, right: right.Normalize()}, nil
}

func validProjection(fov, aspect float64) error {
	if fov <= 0 || fov >= 180 {
		return fmt.Errorf("%w: field of view %g degrees", ErrInvalidCameraState, fov)
	}
	if aspect <= 0 {
		return fmt.Errorf("%w: aspect ratio %g", ErrInvalidCameraState, aspect)
	}
	return nil
}
