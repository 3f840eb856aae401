package render

import (
	"math"

	"github.com/taigrr/phong/pkg/math3d"
)

// Frustum plane indices.
const (
	planeLeft = iota
	planeRight
	planeBottom
	planeTop
	planeNear
	planeFar
)

// Plane is the set of points p with Normal·p + D = 0.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane so Normal has unit length. A zero normal is
// left alone.
func (p *Plane) Normalize() {
	if l := p.Normal.Len(); l > 0 {
		p.Normal = p.Normal.Scale(1 / l)
		p.D /= l
	}
}

// DistanceToPoint returns the signed distance of point from the plane,
// positive on the side the normal points to.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six clip planes of a view-projection, normals facing
// inward, indexed by planeLeft..planeFar.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustumFromMatrix extracts the planes of a proj*view matrix
// (Gribb/Hartmann). Row i of the column-major m is m[i], m[i+4], m[i+8], m[i+12].
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	row := func(i int) Plane {
		return Plane{Normal: math3d.V3(m[i], m[i+4], m[i+8]), D: m[i+12]}
	}
	w := row(3)
	combine := func(axis int, sign float64) Plane {
		r := row(axis)
		return Plane{Normal: w.Normal.Add(r.Normal.Scale(sign)), D: w.D + sign*r.D}
	}

	f := Frustum{Planes: [6]Plane{
		planeLeft:   combine(0, 1),
		planeRight:  combine(0, -1),
		planeBottom: combine(1, 1),
		planeTop:    combine(1, -1),
		planeNear:   combine(2, 1),
		planeFar:    combine(2, -1),
	}}
	for i := range f.Planes {
		f.Planes[i].Normalize()
	}
	return f
}

// AABB is an axis-aligned box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// Transform returns the smallest AABB holding b after the affine transform m.
// The center moves with m; the half extent is summed through |m|.
func (b AABB) Transform(m math3d.Mat4) AABB {
	center := m.MulVec3(b.Min.Add(b.Max).Scale(0.5))
	half := b.Max.Sub(b.Min).Scale(0.5)
	ext := math3d.V3(
		math.Abs(m[0])*half.X+math.Abs(m[4])*half.Y+math.Abs(m[8])*half.Z,
		math.Abs(m[1])*half.X+math.Abs(m[5])*half.Y+math.Abs(m[9])*half.Z,
		math.Abs(m[2])*half.X+math.Abs(m[6])*half.Y+math.Abs(m[10])*half.Z,
	)
	return AABB{Min: center.Sub(ext), Max: center.Add(ext)}
}

// ContainsPoint reports whether p is inside every plane.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, pl := range f.Planes {
		if pl.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectAABB reports whether box may be visible. A box is rejected only
// when its corner furthest along some plane normal is still behind that
// plane, so boxes near frustum corners can pass conservatively.
func (f Frustum) IntersectAABB(box AABB) bool {
	for _, pl := range f.Planes {
		far := box.Min
		if pl.Normal.X >= 0 {
			far.X = box.Max.X
		}
		if pl.Normal.Y >= 0 {
			far.Y = box.Max.Y
		}
		if pl.Normal.Z >= 0 {
			far.Z = box.Max.Z
		}
		if pl.DistanceToPoint(far) < 0 {
			return false
		}
	}
	return true
}

// Visible reports whether a mesh with object-space bounds [lo, hi] drawn
// with model may land inside the frustum.
func (f Frustum) Visible(lo, hi math3d.Vec3, model math3d.Mat4) bool {
	return f.IntersectAABB(AABB{Min: lo, Max: hi}.Transform(model))
}
