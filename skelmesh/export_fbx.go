package skelmesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mogaika/anim_inspector/skeleton"
	"github.com/mogaika/anim_inspector/utils"
	"github.com/mogaika/anim_inspector/utils/fbxbuilder"
)

// ExportFbx is the FBX counterpart of ExportGLTF. Joints become LimbNode
// models parented the same way as the skeleton.
func ExportFbx(inst MeshInstance, name string, lod int) (*fbxbuilder.FBXBuilder, error) {
	out, err := inst.Skin(lod)
	if err != nil {
		return nil, err
	}
	indices, err := inst.Indices(lod)
	if err != nil {
		return nil, err
	}

	f := fbxbuilder.NewFBXBuilder(name + ".fbx")
	positions, normals := skinnedArrays(out)
	f.Connect(f.AddMesh(fmt.Sprintf("%s_lod%d", name, lod), positions, normals, indices), 0)

	if sm, ok := inst.(*SkelMeshInstance); ok && sm.mesh != nil {
		sm.exportFbxJoints(f)
	}
	return f, nil
}

func (inst *SkelMeshInstance) exportFbxJoints(f *fbxbuilder.FBXBuilder) {
	sk := inst.mesh.Skeleton
	models := make([]int64, len(inst.bones))
	for i := range inst.bones {
		b := &inst.bones[i]
		pos, q := b.Pos, skeleton.LocalQuat(i, b.Quat)
		if i == 0 {
			// fbx has no separate skeleton base, fold it into the root
			base := sk.Base.Concat(skeleton.CoordsFromPose(pos, q))
			pos = base.Origin
			q = mgl32.Mat4ToQuat(base.Mat4())
		}
		rotation := utils.QuatToEuler(q).Mul(180.0 / math.Pi)

		models[i] = f.AddLimb(sk.Bones[i].Name, pos, rotation, b.Scale)
		if parent := sk.Bones[i].Parent; parent == skeleton.BONE_PARENT_NONE {
			f.Connect(models[i], 0)
		} else {
			f.Connect(models[i], models[parent])
		}
	}
}
