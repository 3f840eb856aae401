package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/phong/pkg/geometry"
	"github.com/taigrr/phong/pkg/math3d"
)

const testSize = 32

// triMesh is an IndexedMesh without bounds, so Draw cannot cull it.
type triMesh struct {
	pos   []math3d.Vec3
	faces [][3]int
}

func (m triMesh) VertexCount() int   { return len(m.pos) }
func (m triMesh) TriangleCount() int { return len(m.faces) }
func (m triMesh) GetFace(i int) [3]int {
	return m.faces[i]
}

func (m triMesh) GetVertex(i int) (math3d.Vec3, math3d.Vec3) {
	return m.pos[i], math3d.V3(0, 0, 1)
}

func newTestRasterizer(t *testing.T) (*Rasterizer, *Camera) {
	t.Helper()
	cam, err := NewCamera(DefaultCameraConfig())
	require.NoError(t, err)
	r := NewRasterizer(NewFramebuffer(testSize, testSize))
	r.Background = RGB(10, 20, 30)
	return r, cam
}

// flatUniforms lights everything with ambient only, so a pixel shows the
// base color of the surface in front.
func flatUniforms(cam *Camera) Uniforms {
	return Uniforms{
		Eye:            cam.Eye(),
		View:           cam.ViewMatrix(),
		Proj:           cam.ProjectionMatrix(),
		LightDirection: math3d.V3(1, 1, 1),
		LightPosition:  math3d.V3(0, 0.5, 1),
		Intensities:    Intensities{Ambient: math3d.Splat(1), Shininess: 32},
	}
}

func cubeAt(t *testing.T, p math3d.Vec3, scale float64, color math3d.Vec3) DrawCall {
	t.Helper()
	model := math3d.Translate(p).Mul(math3d.Scale(math3d.Splat(scale)))
	normal, ok := model.NormalMatrix()
	require.True(t, ok)
	return DrawCall{Mesh: geometry.Cube(), Model: model, Normal: normal, Color: color}
}

func TestRasterizerShadesCoveredPixelsOnly(t *testing.T) {
	r, cam := newTestRasterizer(t)
	u := flatUniforms(cam)
	u.Intensities = DefaultIntensities()

	r.BeginFrame(u)
	require.NoError(t, r.Draw(cubeAt(t, math3d.Zero3(), 0.5, math3d.Splat(1))))
	require.NoError(t, r.Resolve(context.Background()))

	fb := r.Framebuffer()
	assert.NotEqual(t, r.Background, fb.GetPixel(testSize/2, testSize/2))
	assert.Equal(t, r.Background, fb.GetPixel(0, 0))
	assert.Equal(t, r.Background, fb.GetPixel(testSize-1, testSize-1))
	assert.Equal(t, 1, r.Stats.Draws)
	assert.Equal(t, 12, r.Stats.Triangles)
	assert.Positive(t, r.Stats.Fragments)
}

func TestRasterizerDepthTest(t *testing.T) {
	red := math3d.V3(1, 0, 0)
	green := math3d.V3(0, 1, 0)

	for _, frontFirst := range []bool{true, false} {
		r, cam := newTestRasterizer(t)
		r.BeginFrame(flatUniforms(cam))

		front := cubeAt(t, math3d.Zero3(), 0.5, red)
		back := cubeAt(t, math3d.V3(0, 0, -3), 0.5, green)
		calls := []DrawCall{front, back}
		if !frontFirst {
			calls = []DrawCall{back, front}
		}
		for _, c := range calls {
			require.NoError(t, r.Draw(c))
		}
		require.NoError(t, r.Resolve(context.Background()))

		assert.Equal(t, RGB(255, 0, 0), r.Framebuffer().GetPixel(testSize/2, testSize/2), "front first: %v", frontFirst)
	}
}

func TestRasterizerCullsOutsideFrustum(t *testing.T) {
	r, cam := newTestRasterizer(t)
	r.BeginFrame(flatUniforms(cam))

	require.NoError(t, r.Draw(cubeAt(t, math3d.V3(100, 0, 0), 0.5, math3d.Splat(1))))
	require.NoError(t, r.Draw(cubeAt(t, math3d.V3(0, 0, 10), 0.5, math3d.Splat(1))))
	require.NoError(t, r.Resolve(context.Background()))

	assert.Equal(t, 2, r.Stats.Culled)
	assert.Zero(t, r.Stats.Fragments)
	assert.Equal(t, r.Background, r.Framebuffer().GetPixel(testSize/2, testSize/2))
}

func TestRasterizerDropsTrianglesBehindEye(t *testing.T) {
	r, cam := newTestRasterizer(t)
	r.BeginFrame(flatUniforms(cam))

	mesh := triMesh{
		pos:   []math3d.Vec3{{X: -1, Y: -1, Z: 0}, {X: 1, Y: -1, Z: 0}, {X: 0, Y: 1, Z: 8}},
		faces: [][3]int{{0, 1, 2}},
	}
	call := DrawCall{Mesh: mesh, Model: math3d.Identity(), Normal: math3d.Identity(), Color: math3d.Splat(1)}
	require.NoError(t, r.Draw(call))
	assert.Equal(t, 1, r.Stats.Triangles)
	assert.Zero(t, r.Stats.Fragments)
}

func TestRasterizerRejectsBadIndices(t *testing.T) {
	r, cam := newTestRasterizer(t)
	r.BeginFrame(flatUniforms(cam))

	mesh := triMesh{
		pos:   []math3d.Vec3{{X: -1}, {X: 1}, {Y: 1}},
		faces: [][3]int{{0, 1, 3}},
	}
	err := r.Draw(DrawCall{Mesh: mesh, Model: math3d.Identity(), Normal: math3d.Identity()})
	assert.ErrorContains(t, err, "references vertex 3")

	assert.ErrorIs(t, r.Draw(DrawCall{}), errNilMesh)
}

func TestRasterizerResolveCancelled(t *testing.T) {
	r, cam := newTestRasterizer(t)
	r.BeginFrame(flatUniforms(cam))
	require.NoError(t, r.Draw(cubeAt(t, math3d.Zero3(), 0.5, math3d.Splat(1))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Resolve(ctx), context.Canceled)
}

func TestRasterizerWorkerCountIsInvisible(t *testing.T) {
	draw := func(workers int) []Color {
		r, cam := newTestRasterizer(t)
		r.Workers = workers
		u := flatUniforms(cam)
		u.Intensities = DefaultIntensities()
		r.BeginFrame(u)
		require.NoError(t, r.Draw(cubeAt(t, math3d.V3(-0.5, 0, 0), 0.5, math3d.V3(0.2, 0.4, 0.9))))
		require.NoError(t, r.Draw(cubeAt(t, math3d.V3(0.5, 0.3, -1), 0.7, math3d.V3(0.9, 0.1, 0.1))))
		require.NoError(t, r.Resolve(context.Background()))
		return append([]Color(nil), r.Framebuffer().Pixels...)
	}

	assert.Equal(t, draw(1), draw(0))
}

func TestBeginFrameClears(t *testing.T) {
	r, cam := newTestRasterizer(t)
	r.BeginFrame(flatUniforms(cam))
	require.NoError(t, r.Draw(cubeAt(t, math3d.Zero3(), 0.5, math3d.Splat(1))))
	require.NoError(t, r.Resolve(context.Background()))

	r.BeginFrame(flatUniforms(cam))
	require.NoError(t, r.Resolve(context.Background()))
	assert.Equal(t, r.Background, r.Framebuffer().GetPixel(testSize/2, testSize/2))
	assert.Zero(t, r.Stats)
}
