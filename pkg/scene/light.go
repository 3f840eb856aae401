package scene

import "github.com/taigrr/phong/pkg/math3d"

// LightState holds the two lights of the scene: a fixed directional light
// and a point light that orbits once per frame.
type LightState struct {
	Direction math3d.Vec3 // Toward the directional light; never changes
	Position  math3d.Vec3 // Point light position
	Orbit     math3d.Mat4 // Applied to Position by every Advance
}

// LightConfig describes the initial lights and the orbit step.
type LightConfig struct {
	Direction  math3d.Vec3
	Position   math3d.Vec3
	OrbitAxis  math3d.Vec3
	OrbitAngle float64 // Degrees per frame
}

// DefaultLightConfig returns a light from (1,1,1), a point light starting
// at (0,0.5,1) and an orbit of one degree per frame about +Y.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		Direction:  math3d.V3(1, 1, 1),
		Position:   math3d.V3(0, 0.5, 1),
		OrbitAxis:  math3d.Up(),
		OrbitAngle: 1,
	}
}

// NewLightState creates the light state described by cfg.
func NewLightState(cfg LightConfig) *LightState {
	return &LightState{
		Direction: cfg.Direction,
		Position:  cfg.Position,
		Orbit:     math3d.Rotate(cfg.OrbitAxis, math3d.Radians(cfg.OrbitAngle)),
	}
}

// Advance moves the point light one orbit step.
func (l *LightState) Advance() {
	l.Position = l.Orbit.MulVec3(l.Position)
}
