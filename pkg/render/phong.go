package render

import (
	"math"

	"github.com/taigrr/phong/pkg/math3d"
)

// Intensities are the RGB weights of the three Phong terms.
type Intensities struct {
	Ambient   math3d.Vec3
	Diffuse   math3d.Vec3
	Specular  math3d.Vec3
	Shininess float64
}

// DefaultIntensities returns ambient 0.2, diffuse 0.8, white specular and a
// shininess exponent of 32.
func DefaultIntensities() Intensities {
	return Intensities{
		Ambient:   math3d.Splat(0.2),
		Diffuse:   math3d.Splat(0.8),
		Specular:  math3d.Splat(1),
		Shininess: 32,
	}
}

// Uniforms is the per-frame state shared by every fragment. It is passed by
// value so the shading stage holds its own copy for the whole frame.
type Uniforms struct {
	Eye  math3d.Vec3
	View math3d.Mat4
	Proj math3d.Mat4

	// LightDirection points from surfaces toward the directional light.
	LightDirection math3d.Vec3
	LightPosition  math3d.Vec3

	Intensities Intensities
}

// Fragment is the interpolated surface sample being shaded.
type Fragment struct {
	Position math3d.Vec3 // World space
	Normal   math3d.Vec3 // World space, need not be unit length
}

// Phong evaluates the two-light Phong model for one fragment with base
// color c. The result is not clamped.
func Phong(frag Fragment, c math3d.Vec3, u Uniforms) math3d.Vec3 {
	k := u.Intensities
	n := frag.Normal.Normalize()
	v := u.Eye.Sub(frag.Position).Normalize()

	color := k.Ambient.Mul(c)

	lights := [2]math3d.Vec3{
		u.LightDirection.Normalize(),
		u.LightPosition.Sub(frag.Position).Normalize(),
	}
	for _, l := range lights {
		ndl := l.Dot(n)
		if ndl <= 0 {
			continue
		}
		color = color.Add(k.Diffuse.Mul(c).Scale(ndl))

		r := l.Negate().Reflect(n)
		if rdv := r.Dot(v); rdv > 0 {
			color = color.Add(k.Specular.Mul(c).Scale(math.Pow(rdv, k.Shininess)))
		}
	}
	return color
}
