package skelmesh

import (
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/skin"
)

type StaticMesh struct {
	Name string
	Lods []skin.Lod
}

func (*StaticMesh) Kind() MeshKind { return MESH_STATIC }

// StaticMeshInstance shows its mesh in bind pose.
type StaticMeshInstance struct {
	mesh *StaticMesh
}

func (inst *StaticMeshInstance) Kind() MeshKind { return MESH_STATIC }

func (inst *StaticMeshInstance) SetMesh(m Mesh) error {
	sm, ok := m.(*StaticMesh)
	if !ok {
		return errors.Errorf("Static instance cannot hold %v mesh", m.Kind())
	}
	inst.mesh = sm
	return nil
}

func (inst *StaticMeshInstance) UpdateAnimation(dt float32) {}

func (inst *StaticMeshInstance) Skin(lod int) ([]skin.Skinned, error) {
	if inst.mesh == nil {
		return nil, errors.Errorf("No mesh set")
	}
	if err := lodRange(lod, len(inst.mesh.Lods)); err != nil {
		return nil, err
	}
	return inst.mesh.Lods[lod].BindPose(), nil
}

func (inst *StaticMeshInstance) Indices(lod int) ([]uint32, error) {
	if inst.mesh == nil {
		return nil, errors.Errorf("No mesh set")
	}
	if err := lodRange(lod, len(inst.mesh.Lods)); err != nil {
		return nil, err
	}
	return inst.mesh.Lods[lod].Indices, nil
}
