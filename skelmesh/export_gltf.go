package skelmesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"

	"github.com/mogaika/anim_inspector/skeleton"
	"github.com/mogaika/anim_inspector/skin"
	"github.com/mogaika/anim_inspector/utils/gltfutils"
)

func skinnedArrays(out []skin.Skinned) (positions, normals []mgl32.Vec3) {
	positions = make([]mgl32.Vec3, len(out))
	normals = make([]mgl32.Vec3, len(out))
	for i := range out {
		positions[i] = out[i].Pos
		normals[i] = out[i].Normal
	}
	return positions, normals
}

// ExportGLTF writes the current pose of inst: lod as a static triangle mesh
// and, for skeletal instances, the posed joint hierarchy.
func ExportGLTF(inst MeshInstance, name string, lod int) (*gltf.Document, error) {
	out, err := inst.Skin(lod)
	if err != nil {
		return nil, err
	}
	indices, err := inst.Indices(lod)
	if err != nil {
		return nil, err
	}

	doc := gltfutils.NewDocument()
	positions, normals := skinnedArrays(out)
	gltfutils.AddToScene(doc, gltfutils.AddMesh(doc, fmt.Sprintf("%s_lod%d", name, lod), positions, normals, indices))

	if sm, ok := inst.(*SkelMeshInstance); ok && sm.mesh != nil {
		sm.exportGLTFJoints(doc)
	}
	return doc, nil
}

func (inst *SkelMeshInstance) exportGLTFJoints(doc *gltf.Document) {
	sk := inst.mesh.Skeleton

	root := uint32(len(doc.Nodes))
	doc.Nodes = append(doc.Nodes, &gltf.Node{
		Name:   sk.Name,
		Matrix: sk.Base.Mat4(),
	})
	gltfutils.AddToScene(doc, root)

	joints := make([]uint32, len(inst.bones))
	for i := range inst.bones {
		b := &inst.bones[i]
		joints[i] = gltfutils.AddJoint(doc, sk.Bones[i].Name, b.Pos, skeleton.LocalQuat(i, b.Quat), b.Scale)
		if parent := sk.Bones[i].Parent; parent == skeleton.BONE_PARENT_NONE {
			gltfutils.AddChild(doc, root, joints[i])
		} else {
			gltfutils.AddChild(doc, joints[parent], joints[i])
		}
	}
}
