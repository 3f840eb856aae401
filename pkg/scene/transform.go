package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/taigrr/phong/pkg/math3d"
)

// ErrInvalidTransform is returned when a model transform cannot be inverted,
// which happens for a zero scale component or non-finite input.
var ErrInvalidTransform = errors.New("invalid transform")

// Transform is the pair of matrices a draw needs for one model.
type Transform struct {
	Model  math3d.Mat4
	Normal math3d.Mat4 // transpose(inverse(Model)) on the upper 3x3
}

// Compose builds Model = T * Rx * Ry * Rz * S from a translation, rotation
// angles in degrees and per-axis scale, plus the matching normal matrix.
func Compose(translate, rotate, scale math3d.Vec3) (Transform, error) {
	if !translate.IsFinite() || !rotate.IsFinite() || !scale.IsFinite() {
		return Transform{}, fmt.Errorf("%w: non-finite component (t=%v r=%v s=%v)",
			ErrInvalidTransform, translate, rotate, scale)
	}

	model := math3d.Translate(translate).
		Mul(math3d.RotateX(math3d.Radians(rotate.X))).
		Mul(math3d.RotateY(math3d.Radians(rotate.Y))).
		Mul(math3d.RotateZ(math3d.Radians(rotate.Z))).
		Mul(math3d.Scale(scale))

	normal, ok := model.NormalMatrix()
	if !ok || hasNonFinite(normal) {
		return Transform{}, fmt.Errorf("%w: singular scale %v", ErrInvalidTransform, scale)
	}
	return Transform{Model: model, Normal: normal}, nil
}

func hasNonFinite(m math3d.Mat4) bool {
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return false
}
