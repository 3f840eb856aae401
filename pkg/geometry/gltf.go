package geometry

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/phong/pkg/math3d"
)

// Instance is one placed mesh: the shared geometry plus the matrices and
// color a frame would draw it with.
type Instance struct {
	Name   string
	Mesh   *Mesh
	Model  math3d.Mat4
	Normal math3d.Mat4
	Color  math3d.Vec3
}

// BuildDocument bakes every instance into world space and returns a glTF
// document with one node, mesh and material per instance.
func BuildDocument(instances []Instance) (*gltf.Document, error) {
	doc := gltf.NewDocument()

	for i, inst := range instances {
		if inst.Mesh == nil || len(inst.Mesh.Indices) == 0 {
			return nil, fmt.Errorf("instance %d (%s): empty mesh", i, inst.Name)
		}

		positions := make([][3]float32, len(inst.Mesh.Vertices))
		normals := make([][3]float32, len(inst.Mesh.Vertices))
		for vi, v := range inst.Mesh.Vertices {
			p := inst.Model.MulVec3(v.Position)
			n := inst.Normal.MulVec3Dir(v.Normal).Normalize()
			positions[vi] = [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
			normals[vi] = [3]float32{float32(n.X), float32(n.Y), float32(n.Z)}
		}

		posAccessor := modeler.WritePosition(doc, positions)
		normalAccessor := modeler.WriteNormal(doc, normals)
		indexAccessor := modeler.WriteIndices(doc, inst.Mesh.Indices)

		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: inst.Name,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{inst.Color.X, inst.Color.Y, inst.Color.Z, 1},
				MetallicFactor:  gltf.Float(0),
			},
		})

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: inst.Name,
			Primitives: []*gltf.Primitive{{
				Indices: gltf.Index(indexAccessor),
				Attributes: gltf.PrimitiveAttributes{
					gltf.POSITION: posAccessor,
					gltf.NORMAL:   normalAccessor,
				},
				Material: gltf.Index(len(doc.Materials) - 1),
				Mode:     gltf.PrimitiveTriangles,
			}},
		})

		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name: inst.Name,
			Mesh: gltf.Index(len(doc.Meshes) - 1),
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}

	return doc, nil
}

// ExportGLB writes the instances to a binary glTF file.
func ExportGLB(path string, instances []Instance) error {
	doc, err := BuildDocument(instances)
	if err != nil {
		return fmt.Errorf("build gltf: %w", err)
	}
	if err := gltf.SaveBinary(doc, path); err != nil {
		return fmt.Errorf("save glb: %w", err)
	}
	return nil
}
