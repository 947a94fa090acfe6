package skelmesh

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/skin"
	"github.com/mogaika/anim_inspector/utils"
)

type MeshKind int

const (
	MESH_STATIC MeshKind = iota
	MESH_VERTEX
	MESH_SKELETAL
)

func (k MeshKind) String() string {
	switch k {
	case MESH_STATIC:
		return "static"
	case MESH_VERTEX:
		return "vertex"
	case MESH_SKELETAL:
		return "skeletal"
	}
	return fmt.Sprintf("mesh(%d)", int(k))
}

// Mesh is implemented by StaticMesh, VertexMesh and SkeletalMesh only.
type Mesh interface {
	Kind() MeshKind
}

// MeshInstance is the per visible object state of one mesh.
type MeshInstance interface {
	Kind() MeshKind
	SetMesh(m Mesh) error
	UpdateAnimation(dt float32)
	Skin(lod int) ([]skin.Skinned, error)
	// triangle list matching the output of Skin
	Indices(lod int) ([]uint32, error)
}

// NewInstance creates the instance variant matching m.
func NewInstance(m Mesh, l *utils.Logger) (MeshInstance, error) {
	var inst MeshInstance
	switch m.(type) {
	case *StaticMesh:
		inst = &StaticMeshInstance{}
	case *VertexMesh:
		inst = NewVertMeshInstance(l)
	case *SkeletalMesh:
		inst = NewSkelMeshInstance(l)
	default:
		return nil, errors.Errorf("Unknown mesh type %T", m)
	}
	if err := inst.SetMesh(m); err != nil {
		return nil, err
	}
	return inst, nil
}

func lodRange(lod, count int) error {
	if lod < 0 || lod >= count {
		return errors.Errorf("Lod %d out of range [0,%d)", lod, count)
	}
	return nil
}
