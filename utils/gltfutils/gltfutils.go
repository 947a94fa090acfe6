package gltfutils

import (
	"io"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

// AddMesh appends a triangle mesh and a node referencing it. Returns the
// node index.
func AddMesh(doc *gltf.Document, name string, positions, normals []mgl32.Vec3, indices []uint32) uint32 {
	attributes := make(map[string]uint32)
	if len(positions) != 0 {
		p := make([][3]float32, len(positions))
		for i := range positions {
			p[i] = positions[i]
		}
		attributes["POSITION"] = modeler.WritePosition(doc, p)
	}
	if len(normals) == len(positions) && len(normals) != 0 {
		n := make([][3]float32, len(normals))
		for i, normal := range normals {
			if normal.Len() > 0.5 {
				normal = normal.Normalize()
			}
			n[i] = normal
		}
		attributes["NORMAL"] = modeler.WriteNormal(doc, n)
	}

	primitive := &gltf.Primitive{Attributes: attributes}
	if len(indices) != 0 {
		indicesAccessor := modeler.WriteIndices(doc, indices)
		primitive.Indices = &indicesAccessor
	}

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name:       name,
		Primitives: []*gltf.Primitive{primitive},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name: name,
		Mesh: gltf.Index(uint32(len(doc.Meshes) - 1)),
	})
	return uint32(len(doc.Nodes) - 1)
}

// AddJoint appends a node with a local transform and returns its index.
func AddJoint(doc *gltf.Document, name string, pos mgl32.Vec3, q mgl32.Quat, scale float32) uint32 {
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:        name,
		Translation: pos,
		Rotation:    q.V.Vec4(q.W),
		Scale:       [3]float32{scale, scale, scale},
	})
	return uint32(len(doc.Nodes) - 1)
}

func AddChild(doc *gltf.Document, parent, child uint32) {
	doc.Nodes[parent].Children = append(doc.Nodes[parent].Children, child)
}

func AddToScene(doc *gltf.Document, node uint32) {
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, node)
}

func ExportBinary(w io.Writer, doc *gltf.Document) error {
	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}
