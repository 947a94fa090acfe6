package skelmesh

import (
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/anim"
	"github.com/mogaika/anim_inspector/skeleton"
	"github.com/mogaika/anim_inspector/skin"
	"github.com/mogaika/anim_inspector/utils"
)

type SkeletalMesh struct {
	Name     string
	Skeleton *skeleton.Skeleton
	Lods     []skin.Lod
}

func (*SkeletalMesh) Kind() MeshKind { return MESH_SKELETAL }

// SkelMeshInstance owns the runtime bone table and channels of one visible
// skeletal mesh. It is not safe for concurrent use.
type SkelMeshInstance struct {
	mesh    *SkeletalMesh
	animSet *anim.AnimSet
	bones   []skeleton.RuntimeBone

	channels       [MAX_ANIM_CHANNELS]Channel
	maxAnimChannel int

	transforms []skeleton.Coords
	// goroutines used for skinning, 1 or less skins serially
	Workers int

	l *utils.Logger
}

func NewSkelMeshInstance(l *utils.Logger) *SkelMeshInstance {
	inst := &SkelMeshInstance{Workers: 1, l: l}
	inst.ClearSkelAnims()
	return inst
}

func (inst *SkelMeshInstance) Kind() MeshKind { return MESH_SKELETAL }

func (inst *SkelMeshInstance) SetMesh(m Mesh) error {
	sm, ok := m.(*SkeletalMesh)
	if !ok {
		return errors.Errorf("Skeletal instance cannot hold %v mesh", m.Kind())
	}
	bones, err := skeleton.NewRuntimeBones(sm.Skeleton)
	if err != nil {
		return errors.Wrapf(err, "Mesh %q", sm.Name)
	}

	inst.mesh = sm
	inst.bones = bones
	inst.transforms = make([]skeleton.Coords, len(bones))
	inst.ClearSkelAnims()

	if inst.animSet != nil {
		set := inst.animSet
		inst.animSet = nil
		return inst.SetAnimSet(set)
	}
	return nil
}

// SetAnimSet binds set to the mesh. All channels return to idle, also when
// binding fails.
func (inst *SkelMeshInstance) SetAnimSet(set *anim.AnimSet) error {
	inst.ClearSkelAnims()
	if inst.mesh == nil {
		inst.animSet = set
		return nil
	}
	if set == nil {
		inst.animSet = nil
		skeleton.UnmapTracks(inst.bones)
		return nil
	}
	if err := skeleton.MapTracks(inst.mesh.Skeleton, set, inst.bones); err != nil {
		inst.animSet = nil
		skeleton.UnmapTracks(inst.bones)
		return err
	}
	inst.animSet = set
	inst.l.Printf("Bound anim set %q (%d sequences) to %q", set.Name, len(set.Sequences), inst.mesh.Name)
	return nil
}

func (inst *SkelMeshInstance) Mesh() *SkeletalMesh { return inst.mesh }
func (inst *SkelMeshInstance) AnimSet() *anim.AnimSet { return inst.animSet }

// Bones exposes the runtime table for read only consumers such as exporters.
func (inst *SkelMeshInstance) Bones() []skeleton.RuntimeBone {
	return inst.bones
}

// BoneCoords returns the model space frame of every bone after the last update.
func (inst *SkelMeshInstance) BoneCoords() []skeleton.Coords {
	coords := make([]skeleton.Coords, len(inst.bones))
	for i := range inst.bones {
		coords[i] = inst.bones[i].Coords
	}
	return coords
}

func (inst *SkelMeshInstance) Skin(lod int) ([]skin.Skinned, error) {
	if inst.mesh == nil {
		return nil, errors.Errorf("No mesh set")
	}
	if err := lodRange(lod, len(inst.mesh.Lods)); err != nil {
		return nil, err
	}
	for i := range inst.bones {
		inst.transforms[i] = inst.bones[i].Transform
	}
	verts := inst.mesh.Lods[lod].Vertices
	out := make([]skin.Skinned, len(verts))
	if err := skin.SkinParallel(verts, inst.transforms, out, inst.Workers); err != nil {
		return nil, errors.Wrapf(err, "Mesh %q lod %d", inst.mesh.Name, lod)
	}
	return out, nil
}

func (inst *SkelMeshInstance) Indices(lod int) ([]uint32, error) {
	if inst.mesh == nil {
		return nil, errors.Errorf("No mesh set")
	}
	if err := lodRange(lod, len(inst.mesh.Lods)); err != nil {
		return nil, err
	}
	return inst.mesh.Lods[lod].Indices, nil
}
