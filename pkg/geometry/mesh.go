// Package geometry provides the indexed triangle meshes drawn by the scene:
// a cube, a UV sphere and the small sphere used as the point-light marker.
package geometry

import (
	"math"

	"github.com/taigrr/phong/pkg/math3d"
)

// Mesh is an indexed triangle mesh with per-vertex normals.
// Meshes are built once per shape and shared by every model of that shape;
// they are never mutated after construction.
type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint16 // Three per triangle

	// Bounding box (calculated on construction)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// Vertex holds the attributes uploaded for each mesh vertex.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Bounds returns the axis-aligned bounding box.
// Implements render.BoundedMesh.
func (m *Mesh) Bounds() (min, max math3d.Vec3) {
	return m.BoundsMin, m.BoundsMax
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// GetVertex returns the position and normal for vertex i.
// Implements render.IndexedMesh.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3) {
	v := m.Vertices[i]
	return v.Position, v.Normal
}

// GetFace returns the vertex indices for triangle i.
// Implements render.IndexedMesh.
func (m *Mesh) GetFace(i int) [3]int {
	return [3]int{
		int(m.Indices[i*3]),
		int(m.Indices[i*3+1]),
		int(m.Indices[i*3+2]),
	}
}

// Cube returns an axis-aligned cube spanning [-1, 1] on every axis.
// Each face has its own four vertices so normals stay flat per face.
func Cube() *Mesh {
	// Face normal plus the two in-plane axes (u, v) such that u x v = normal,
	// which gives counter-clockwise winding seen from outside.
	faces := []struct{ n, u, v math3d.Vec3 }{
		{math3d.V3(0, 0, 1), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0)},   // Front
		{math3d.V3(0, 0, -1), math3d.V3(-1, 0, 0), math3d.V3(0, 1, 0)}, // Back
		{math3d.V3(1, 0, 0), math3d.V3(0, 0, -1), math3d.V3(0, 1, 0)},  // Right
		{math3d.V3(-1, 0, 0), math3d.V3(0, 0, 1), math3d.V3(0, 1, 0)},  // Left
		{math3d.V3(0, 1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, -1)},  // Top
		{math3d.V3(0, -1, 0), math3d.V3(1, 0, 0), math3d.V3(0, 0, 1)},  // Bottom
	}

	m := &Mesh{
		Name:     "cube",
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint16, 0, 36),
	}
	for _, f := range faces {
		base := uint16(len(m.Vertices))
		corners := [4]math3d.Vec3{
			f.n.Sub(f.u).Sub(f.v),
			f.n.Add(f.u).Sub(f.v),
			f.n.Add(f.u).Add(f.v),
			f.n.Sub(f.u).Add(f.v),
		}
		for _, c := range corners {
			m.Vertices = append(m.Vertices, Vertex{Position: c, Normal: f.n})
		}
		m.Indices = append(m.Indices,
			base, base+1, base+2,
			base, base+2, base+3,
		)
	}
	m.CalculateBounds()
	return m
}

// Sphere returns a unit UV sphere with the given number of latitude and
// longitude bands. Normals equal positions.
func Sphere(latBands, lonBands int) *Mesh {
	latBands = max(latBands, 2)
	lonBands = max(lonBands, 3)

	m := &Mesh{
		Name:     "sphere",
		Vertices: make([]Vertex, 0, (latBands+1)*(lonBands+1)),
		Indices:  make([]uint16, 0, latBands*lonBands*6),
	}

	for lat := 0; lat <= latBands; lat++ {
		theta := float64(lat) * math.Pi / float64(latBands)
		sinT, cosT := math.Sin(theta), math.Cos(theta)
		for lon := 0; lon <= lonBands; lon++ {
			phi := float64(lon) * 2 * math.Pi / float64(lonBands)
			p := math3d.V3(math.Cos(phi)*sinT, cosT, math.Sin(phi)*sinT)
			m.Vertices = append(m.Vertices, Vertex{Position: p, Normal: p})
		}
	}

	stride := lonBands + 1
	for lat := range latBands {
		for lon := range lonBands {
			first := uint16(lat*stride + lon)
			second := first + uint16(stride)
			m.Indices = append(m.Indices,
				first, first+1, second,
				second, first+1, second+1,
			)
		}
	}
	m.CalculateBounds()
	return m
}
