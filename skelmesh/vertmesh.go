package skelmesh

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/skin"
	"github.com/mogaika/anim_inspector/utils"
)

// VertexClip is a named range of frames of a vertex animated mesh.
type VertexClip struct {
	Name       string
	FirstFrame int
	NumFrames  int
	Rate       float32
}

// VertexMesh stores one full set of vertex positions per frame. Lod carries
// topology and the normals, which are not animated.
type VertexMesh struct {
	Name   string
	Lod    skin.Lod
	Frames [][]mgl32.Vec3
	Clips  []VertexClip
}

func (*VertexMesh) Kind() MeshKind { return MESH_VERTEX }

func (m *VertexMesh) Validate() error {
	for i, f := range m.Frames {
		if len(f) != len(m.Lod.Vertices) {
			return errors.Errorf("Frame %d has %d positions, mesh %d vertices", i, len(f), len(m.Lod.Vertices))
		}
	}
	for _, c := range m.Clips {
		if c.FirstFrame < 0 || c.NumFrames < 0 || c.FirstFrame+c.NumFrames > len(m.Frames) {
			return errors.Errorf("Clip %q frames [%d,+%d) outside of %d frames", c.Name, c.FirstFrame, c.NumFrames, len(m.Frames))
		}
	}
	return nil
}

type VertMeshInstance struct {
	mesh   *VertexMesh
	clip   int
	time   float32
	rate   float32
	looped bool

	l *utils.Logger
}

func NewVertMeshInstance(l *utils.Logger) *VertMeshInstance {
	return &VertMeshInstance{clip: ANIM_NONE, rate: 1, l: l}
}

func (inst *VertMeshInstance) Kind() MeshKind { return MESH_VERTEX }

func (inst *VertMeshInstance) SetMesh(m Mesh) error {
	vm, ok := m.(*VertexMesh)
	if !ok {
		return errors.Errorf("Vertex instance cannot hold %v mesh", m.Kind())
	}
	if err := vm.Validate(); err != nil {
		return errors.Wrapf(err, "Mesh %q", vm.Name)
	}
	inst.mesh = vm
	inst.clip = ANIM_NONE
	inst.time = 0
	return nil
}

func (inst *VertMeshInstance) findClip(name string) int {
	if inst.mesh == nil {
		return ANIM_NONE
	}
	for i, c := range inst.mesh.Clips {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return ANIM_NONE
}

func (inst *VertMeshInstance) PlayAnim(name string, rate float32) {
	inst.play(name, rate, false)
}

func (inst *VertMeshInstance) LoopAnim(name string, rate float32) {
	inst.play(name, rate, true)
}

func (inst *VertMeshInstance) play(name string, rate float32, looped bool) {
	clip := inst.findClip(name)
	if clip == ANIM_NONE {
		inst.l.Warnf("Unknown vertex animation %q, showing first frame", name)
	}
	if clip != ANIM_NONE && clip == inst.clip && looped && inst.looped {
		inst.rate = rate
		return
	}
	inst.clip = clip
	inst.time = 0
	inst.rate = rate
	inst.looped = looped
}

func (inst *VertMeshInstance) AnimNames() []string {
	if inst.mesh == nil {
		return nil
	}
	names := make([]string, len(inst.mesh.Clips))
	for i, c := range inst.mesh.Clips {
		names[i] = c.Name
	}
	return names
}

// Frame returns the current clip name and the frame inside it.
func (inst *VertMeshInstance) Frame() (string, float32) {
	if inst.clip == ANIM_NONE {
		return "", 0
	}
	return inst.mesh.Clips[inst.clip].Name, inst.time
}

func (inst *VertMeshInstance) UpdateAnimation(dt float32) {
	if inst.clip == ANIM_NONE {
		return
	}
	c := &inst.mesh.Clips[inst.clip]
	if c.NumFrames <= 0 {
		inst.time = 0
		return
	}
	inst.time += dt * inst.rate * c.Rate
	if inst.looped {
		inst.time = wrapFrame(inst.time, c.NumFrames)
	} else {
		inst.time = clampFrame(inst.time, c.NumFrames)
	}
}

func (inst *VertMeshInstance) Skin(lod int) ([]skin.Skinned, error) {
	if inst.mesh == nil {
		return nil, errors.Errorf("No mesh set")
	}
	if err := lodRange(lod, 1); err != nil {
		return nil, err
	}
	out := inst.mesh.Lod.BindPose()
	if len(inst.mesh.Frames) == 0 {
		return out, nil
	}

	first, count := 0, 1
	if inst.clip != ANIM_NONE {
		c := &inst.mesh.Clips[inst.clip]
		first, count = c.FirstFrame, c.NumFrames
	}
	if count <= 0 {
		return out, nil
	}

	f := int(inst.time)
	frac := inst.time - float32(f)
	next := f + 1
	if next >= count {
		if inst.looped {
			next = 0
		} else {
			next = count - 1
		}
	}
	a, b := inst.mesh.Frames[first+f], inst.mesh.Frames[first+next]
	for i := range out {
		out[i].Pos = utils.LerpVec3(a[i], b[i], frac)
	}
	return out, nil
}

func (inst *VertMeshInstance) Indices(lod int) ([]uint32, error) {
	if inst.mesh == nil {
		return nil, errors.Errorf("No mesh set")
	}
	if err := lodRange(lod, 1); err != nil {
		return nil, err
	}
	return inst.mesh.Lod.Indices, nil
}
