package math3d

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

const tol = 1e-9

func TestLookAtMatchesReference(t *testing.T) {
	tests := []struct {
		name            string
		eye, center, up Vec3
	}{
		{"default camera", V3(0, 0, 5), V3(0, 0, 0), V3(0, 1, 0)},
		{"offset target", V3(3, 2, 7), V3(1, -1, 0), V3(0, 1, 0)},
		{"tilted up", V3(-4, 1, 2), V3(0, 0, 0), V3(0.2, 1, 0.1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := LookAt(tc.eye, tc.center, tc.up)
			want := Mat4(mgl64.LookAtV(
				mgl64.Vec3{tc.eye.X, tc.eye.Y, tc.eye.Z},
				mgl64.Vec3{tc.center.X, tc.center.Y, tc.center.Z},
				mgl64.Vec3{tc.up.X, tc.up.Y, tc.up.Z},
			))
			if !got.ApproxEqual(want, tol) {
				t.Errorf("LookAt = %v, want %v", got, want)
			}
		})
	}
}

func TestPerspectiveDegMatchesReference(t *testing.T) {
	got := PerspectiveDeg(60, 1, 0.1, 1000)
	want := Mat4(mgl64.Perspective(mgl64.DegToRad(60), 1, 0.1, 1000))
	if !got.ApproxEqual(want, tol) {
		t.Errorf("PerspectiveDeg = %v, want %v", got, want)
	}
}

func TestRotationsMatchReference(t *testing.T) {
	angle := Radians(37)
	cases := []struct {
		name string
		got  Mat4
		want mgl64.Mat4
	}{
		{"x", RotateX(angle), mgl64.HomogRotate3DX(angle)},
		{"y", RotateY(angle), mgl64.HomogRotate3DY(angle)},
		{"z", RotateZ(angle), mgl64.HomogRotate3DZ(angle)},
		{"axis", Rotate(V3(1, 2, 3), angle), mgl64.HomogRotate3D(angle, mgl64.Vec3{1, 2, 3}.Normalize())},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.got.ApproxEqual(Mat4(tc.want), tol) {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestInverse(t *testing.T) {
	m := Translate(V3(1, -2, 3)).Mul(RotateY(0.7)).Mul(Scale(V3(2, 0.5, 3)))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse reported singular for an invertible matrix")
	}
	if got := m.Mul(inv); !got.ApproxEqual(Identity(), tol) {
		t.Errorf("m * inverse(m) = %v, want identity", got)
	}

	want := Mat4(mgl64.Mat4(m).Inv())
	if !inv.ApproxEqual(want, 1e-6) {
		t.Errorf("Inverse = %v, want %v", inv, want)
	}
}

func TestInverseSingular(t *testing.T) {
	tests := []struct {
		name string
		m    Mat4
	}{
		{"zero scale x", Scale(V3(0, 1, 1))},
		{"zero matrix", Mat4{}},
		{"nan", Scale(V3(math.NaN(), 1, 1))},
		{"nearly parallel columns", Mat4{1, 0, 0, 0, 1, 1e-14, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}},
		{"repeated column", Mat4{1, 2, 3, 0, 1, 2, 3, 0, 0, 0, 1, 0, 0, 0, 0, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := tc.m.Inverse(); ok {
				t.Error("Inverse reported ok for a singular matrix")
			}
			if _, ok := tc.m.NormalMatrix(); ok {
				t.Error("NormalMatrix reported ok for a singular matrix")
			}
		})
	}
}

func TestInverseTinyUniformScale(t *testing.T) {
	for _, s := range []float64{5e-5, 1e-6} {
		m := Translate(V3(1, 2, 3)).Mul(Scale(Splat(s)))
		inv, ok := m.Inverse()
		if !ok {
			t.Fatalf("Inverse rejected uniform scale %g", s)
		}
		if got := inv.MulVec3(m.MulVec3(V3(1, -2, 3))); !got.ApproxEqual(V3(1, -2, 3), 1e-6) {
			t.Errorf("scale %g: round trip = %v", s, got)
		}
	}
}

func TestNormalMatrixDropsTranslation(t *testing.T) {
	m := Translate(V3(10, 20, 30)).Mul(Scale(V3(2, 4, 8)))
	n, ok := m.NormalMatrix()
	if !ok {
		t.Fatal("NormalMatrix reported singular")
	}
	want := Scale(V3(0.5, 0.25, 0.125))
	if !n.ApproxEqual(want, tol) {
		t.Errorf("NormalMatrix = %v, want %v", n, want)
	}
}

func TestReflect(t *testing.T) {
	// 45 degrees onto a floor bounces back up.
	in := V3(1, -1, 0)
	got := in.Reflect(V3(0, 1, 0))
	if !got.ApproxEqual(V3(1, 1, 0), tol) {
		t.Errorf("Reflect = %v, want (1, 1, 0)", got)
	}
}

func TestVec3IsFinite(t *testing.T) {
	if !V3(1, 2, 3).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	if V3(math.Inf(1), 0, 0).IsFinite() {
		t.Error("infinite vector reported finite")
	}
	if V3(0, math.NaN(), 0).IsFinite() {
		t.Error("NaN vector reported finite")
	}
}

func TestVec3Clamp(t *testing.T) {
	got := V3(-0.5, 0.5, 1.5).Clamp(0, 1)
	if got != V3(0, 0.5, 1) {
		t.Errorf("Clamp = %v, want (0, 0.5, 1)", got)
	}
}
