// Package render provides the camera, the Phong illumination model and a
// software backend that rasterizes indexed meshes and shades every covered
// fragment.
package render

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/taigrr/phong/pkg/math3d"
	"golang.org/x/sync/errgroup"
)

// IndexedMesh is the geometry a draw call reads. It keeps this package free
// of the geometry package.
type IndexedMesh interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3)
	GetFace(i int) [3]int
}

// BoundedMesh is an IndexedMesh that reports its object-space bounds, which
// lets Draw skip models entirely outside the view frustum.
type BoundedMesh interface {
	IndexedMesh
	Bounds() (min, max math3d.Vec3)
}

var errNilMesh = errors.New("draw: nil mesh")

// DrawCall is everything one draw of one model needs.
type DrawCall struct {
	Mesh   IndexedMesh
	Model  math3d.Mat4 // Object to world
	Normal math3d.Mat4 // transpose(inverse(Model)), upper 3x3
	Color  math3d.Vec3 // Base color in [0,1]
}

// Backend receives a frame: the uniform snapshot, then one draw per model,
// then a resolve that runs the shading stage.
type Backend interface {
	BeginFrame(u Uniforms)
	Draw(call DrawCall) error
	Resolve(ctx context.Context) error
}

// FrameStats counts the work done for the current frame.
type FrameStats struct {
	Draws     int // Draw calls issued
	Culled    int // Draw calls rejected by the frustum test
	Triangles int // Triangles submitted
	Fragments int // Fragments written to the G-buffer (before occlusion)
}

// surfel is one G-buffer entry: the nearest surface seen through a pixel.
type surfel struct {
	position math3d.Vec3
	normal   math3d.Vec3
	color    math3d.Vec3
	covered  bool
}

// Rasterizer is a software Backend. Draw rasterizes triangles into a
// depth-tested G-buffer; Resolve evaluates Phong for every covered pixel
// in parallel and writes the framebuffer.
type Rasterizer struct {
	fb       *Framebuffer
	zbuffer  []float64 // Depth buffer (1D array, row-major)
	gbuffer  []surfel
	uniforms Uniforms
	viewProj math3d.Mat4
	frustum  Frustum

	Background Color      // Color of pixels no triangle covers
	Workers    int        // Shading goroutines; 0 means GOMAXPROCS
	Stats      FrameStats // Reset by BeginFrame
}

var _ Backend = (*Rasterizer)(nil)

// NewRasterizer creates a rasterizer drawing into fb.
func NewRasterizer(fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		fb:         fb,
		Background: ColorBlack,
	}
	r.Resize()
	return r
}

// Resize resizes the rasterizer's buffers to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		r.gbuffer = nil
		return
	}
	n := r.fb.Width * r.fb.Height
	r.zbuffer = make([]float64, n)
	r.gbuffer = make([]surfel, n)
}

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// BeginFrame stores the uniform snapshot and clears every buffer.
func (r *Rasterizer) BeginFrame(u Uniforms) {
	r.uniforms = u
	r.viewProj = u.Proj.Mul(u.View)
	r.frustum = NewFrustumFromMatrix(r.viewProj)
	r.Stats = FrameStats{}
	r.ClearDepth()
	clear(r.gbuffer)
	if r.fb != nil {
		r.fb.Clear(r.Background)
	}
}

// ClearDepth clears the Z-buffer.
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// clipVertex is a vertex after the model transform and projection.
type clipVertex struct {
	X, Y   float64 // Screen coordinates
	Z      float64 // NDC depth
	InvW   float64 // 1/w for perspective-correct interpolation
	World  math3d.Vec3
	Normal math3d.Vec3
}

// Draw rasterizes every triangle of call.Mesh into the G-buffer.
func (r *Rasterizer) Draw(call DrawCall) error {
	if call.Mesh == nil {
		return errNilMesh
	}
	r.Stats.Draws++

	if bm, ok := call.Mesh.(BoundedMesh); ok {
		if lo, hi := bm.Bounds(); !r.frustum.Visible(lo, hi, call.Model) {
			r.Stats.Culled++
			return nil
		}
	}

	nverts := call.Mesh.VertexCount()
	for i := range call.Mesh.TriangleCount() {
		face := call.Mesh.GetFace(i)
		var tri [3]clipVertex
		visible := true
		for k, idx := range face {
			if idx < 0 || idx >= nverts {
				return fmt.Errorf("draw: triangle %d references vertex %d of %d", i, idx, nverts)
			}
			pos, normal := call.Mesh.GetVertex(idx)
			var ok bool
			tri[k], ok = r.project(call.Model.MulVec3(pos), call.Normal.MulVec3Dir(normal))
			if !ok {
				visible = false
			}
		}
		r.Stats.Triangles++

		// Triangles crossing the eye plane are dropped rather than clipped.
		if visible {
			r.rasterize(tri, call.Color)
		}
	}
	return nil
}

// project takes a world-space vertex to screen space.
func (r *Rasterizer) project(world, normal math3d.Vec3) (clipVertex, bool) {
	clip := r.viewProj.MulVec4(math3d.Point(world))
	if clip.W <= 0 {
		return clipVertex{}, false
	}
	ndc := clip.PerspectiveDivide()
	return clipVertex{
		X:      (ndc.X + 1) * 0.5 * float64(r.Width()),
		Y:      (1 - ndc.Y) * 0.5 * float64(r.Height()), // Y flipped
		Z:      ndc.Z,
		InvW:   1 / clip.W,
		World:  world,
		Normal: normal,
	}, true
}

// rasterize fills one screen-space triangle. No back-face culling is done;
// occlusion comes from the depth test alone.
func (r *Rasterizer) rasterize(sv [3]clipVertex, color math3d.Vec3) {
	area := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if math.Abs(area) < 1e-12 {
		return
	}

	// Find bounding box
	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))

	width := r.Width()
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z < -1 || z > 1 {
				continue // Outside the near/far planes
			}
			i := y*width + x
			if z >= r.zbuffer[i] {
				continue
			}

			// Perspective-correct attribute interpolation
			w0, w1, w2 := bc.X*sv[0].InvW, bc.Y*sv[1].InvW, bc.Z*sv[2].InvW
			oneOverW := w0 + w1 + w2
			if oneOverW == 0 {
				continue
			}
			inv := 1 / oneOverW

			r.zbuffer[i] = z
			r.gbuffer[i] = surfel{
				position: sv[0].World.Scale(w0).Add(sv[1].World.Scale(w1)).Add(sv[2].World.Scale(w2)).Scale(inv),
				normal:   sv[0].Normal.Scale(w0).Add(sv[1].Normal.Scale(w1)).Add(sv[2].Normal.Scale(w2)),
				color:    color,
				covered:  true,
			}
			r.Stats.Fragments++
		}
	}
}

// shadeBandRows is the number of framebuffer rows each shading task owns.
const shadeBandRows = 16

// Resolve runs the shading stage: Phong for every covered pixel, written to
// the framebuffer clamped to [0,1]. Bands of rows are shaded concurrently;
// each task reads only the uniform snapshot and its own G-buffer rows.
func (r *Rasterizer) Resolve(ctx context.Context) error {
	if r.fb == nil {
		return nil
	}

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	u := r.uniforms
	for y0 := 0; y0 < r.fb.Height; y0 += shadeBandRows {
		y1 := min(y0+shadeBandRows, r.fb.Height)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r.shadeRows(y0, y1, u)
			return nil
		})
	}
	return g.Wait()
}

func (r *Rasterizer) shadeRows(y0, y1 int, u Uniforms) {
	width := r.fb.Width
	for y := y0; y < y1; y++ {
		for x := range width {
			s := &r.gbuffer[y*width+x]
			if !s.covered {
				continue
			}
			c := Phong(Fragment{Position: s.position, Normal: s.normal}, s.color, u)
			r.fb.Pixels[y*width+x] = ColorFromVec3(c)
		}
	}
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
