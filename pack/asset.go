package pack

import (
	"encoding/base64"
	"io"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/anim_inspector/anim"
	"github.com/mogaika/anim_inspector/config"
	"github.com/mogaika/anim_inspector/skeleton"
	"github.com/mogaika/anim_inspector/skelmesh"
	"github.com/mogaika/anim_inspector/skin"
	"github.com/mogaika/anim_inspector/utils"
)

// Asset is everything the core needs from one package entry: a mesh with
// its skeleton and the not yet decoded animation streams.
type Asset struct {
	Name string
	Game config.Game
	Kind skelmesh.MeshKind

	Skeleton   *skeleton.Skeleton
	Lods       []skin.Lod
	AnimSet    *anim.AnimSet
	Sequences  []*anim.SequenceDesc
	VertexMesh *skelmesh.VertexMesh
}

// LoadAsset reads a YAML (or JSON) asset description. The asset's own game
// field overrides cfg.
func LoadAsset(r io.Reader, cfg *config.Config, l *utils.Logger) (*Asset, error) {
	var ya yamlAsset
	if err := yaml.NewDecoder(r).Decode(&ya); err != nil {
		return nil, errors.Wrapf(err, "Failed to decode asset")
	}

	a := &Asset{Name: ya.Name, Game: cfg.GameId()}
	if ya.Game != "" {
		g, ok := config.ParseGame(ya.Game)
		if !ok {
			l.Warnf("Asset %q has unknown game %q, using %v quirks", ya.Name, ya.Game, g)
		}
		a.Game = g
	}

	if err := a.loadKind(&ya); err != nil {
		return nil, err
	}

	if ya.Skeleton != nil {
		sk, err := loadSkeleton(ya.Name, ya.Skeleton, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "Asset %q skeleton", ya.Name)
		}
		a.Skeleton = sk
	}

	a.Lods = make([]skin.Lod, len(ya.Lods))
	for i := range ya.Lods {
		lod, err := loadLod(&ya.Lods[i])
		if err != nil {
			return nil, errors.Wrapf(err, "Asset %q lod %d", ya.Name, i)
		}
		a.Lods[i] = lod
	}

	if ya.AnimSet != nil {
		if err := a.loadAnimSet(ya.AnimSet); err != nil {
			return nil, errors.Wrapf(err, "Asset %q anim set", ya.Name)
		}
	}

	if a.Kind == skelmesh.MESH_VERTEX {
		vm, err := a.loadVertexMesh(ya.VertexAnim)
		if err != nil {
			return nil, errors.Wrapf(err, "Asset %q vertex animation", ya.Name)
		}
		a.VertexMesh = vm
	}

	l.Printf("Loaded asset %q: %v, %d lods, %d sequences", a.Name, a.Kind, len(a.Lods), len(a.Sequences))
	return a, nil
}

func (a *Asset) loadKind(ya *yamlAsset) error {
	switch strings.ToLower(ya.Kind) {
	case "":
		switch {
		case ya.Skeleton != nil:
			a.Kind = skelmesh.MESH_SKELETAL
		case ya.VertexAnim != nil:
			a.Kind = skelmesh.MESH_VERTEX
		default:
			a.Kind = skelmesh.MESH_STATIC
		}
	case "static":
		a.Kind = skelmesh.MESH_STATIC
	case "vertex":
		a.Kind = skelmesh.MESH_VERTEX
	case "skeletal":
		a.Kind = skelmesh.MESH_SKELETAL
	default:
		return errors.Errorf("Asset %q has unknown kind %q", ya.Name, ya.Kind)
	}
	if a.Kind == skelmesh.MESH_SKELETAL && ya.Skeleton == nil {
		return errors.Errorf("Skeletal asset %q without skeleton", ya.Name)
	}
	if a.Kind == skelmesh.MESH_VERTEX && ya.VertexAnim == nil {
		return errors.Errorf("Vertex asset %q without vertex animation", ya.Name)
	}
	return nil
}

func boneName(yb *yamlBone, cfg *config.Config) (string, error) {
	if yb.Name != "" || yb.RawName == "" {
		return yb.Name, nil
	}
	raw, err := base64.StdEncoding.DecodeString(yb.RawName)
	if err != nil {
		return "", errors.Wrapf(err, "Raw name %q", yb.RawName)
	}
	var enc encoding.Encoding
	if cm := cfg.Charmap(); cm != nil {
		enc = cm
	}
	return utils.BytesToString(raw, enc)
}

func loadSkeleton(name string, ys *yamlSkeleton, cfg *config.Config) (*skeleton.Skeleton, error) {
	bones := make([]skeleton.Bone, len(ys.Bones))
	for i := range ys.Bones {
		yb := &ys.Bones[i]
		n, err := boneName(yb, cfg)
		if err != nil {
			return nil, errors.Wrapf(err, "Bone %d", i)
		}
		parent := skeleton.BONE_PARENT_NONE
		if yb.Parent != nil {
			parent = *yb.Parent
		}
		bones[i] = skeleton.Bone{Name: n, Parent: parent, Pos: yb.Pos.Vec3(), Quat: yb.Quat.Quat()}
	}

	sk := skeleton.New(name, bones)
	if ys.Base != nil {
		sk.Base = skeleton.CoordsFromPose(ys.Base.Pos.Vec3(), ys.Base.Quat.Quat())
	}
	if err := sk.Validate(); err != nil {
		return nil, err
	}
	return sk, nil
}

func loadLod(yl *yamlLod) (skin.Lod, error) {
	lod := skin.Lod{
		Vertices: make([]skin.Vertex, len(yl.Vertices)),
		Indices:  yl.Indices,
	}
	for i := range yl.Vertices {
		yv := &yl.Vertices[i]
		if len(yv.Bones) > skin.MAX_INFLUENCES {
			return lod, errors.Errorf("Vertex %d has %d influences, max %d", i, len(yv.Bones), skin.MAX_INFLUENCES)
		}
		if len(yv.Bones) != len(yv.Weights) {
			return lod, errors.Errorf("Vertex %d has %d bones and %d weights", i, len(yv.Bones), len(yv.Weights))
		}
		v := &lod.Vertices[i]
		v.Pos, v.Normal = yv.Pos.Vec3(), yv.Normal.Vec3()
		v.Tangent, v.Binormal = yv.Tangent.Vec3(), yv.Binormal.Vec3()
		v.SetInfluences(yv.Bones, yv.Weights)
	}
	for _, idx := range yl.Indices {
		if int(idx) >= len(yl.Vertices) {
			return lod, errors.Errorf("Index %d out of %d vertices", idx, len(yl.Vertices))
		}
	}
	return lod, nil
}

func (a *Asset) loadAnimSet(ys *yamlAnimSet) error {
	set := anim.NewAnimSet(ys.Name, ys.Bones)
	set.SetTranslationPolicy(ys.RotationOnly, ys.UseTranslation, ys.ForceMeshTranslation)
	if len(ys.RefPose) != 0 {
		if len(ys.RefPose) != len(ys.Bones) {
			return errors.Errorf("%d reference poses for %d bones", len(ys.RefPose), len(ys.Bones))
		}
		set.RefPose = make([]anim.BonePose, len(ys.RefPose))
		for i, p := range ys.RefPose {
			set.RefPose[i] = anim.BonePose{Pos: p.Pos.Vec3(), Quat: p.Quat.Quat()}
		}
	}

	for i := range ys.Sequences {
		desc, err := loadSequence(&ys.Sequences[i])
		if err != nil {
			return errors.Wrapf(err, "Sequence %d %q", i, ys.Sequences[i].Name)
		}
		a.Sequences = append(a.Sequences, desc)
	}
	a.AnimSet = set
	return nil
}

func loadSequence(ys *yamlSequence) (*anim.SequenceDesc, error) {
	desc := &anim.SequenceDesc{
		Name:        ys.Name,
		NumFrames:   ys.Frames,
		Rate:        ys.Rate,
		TransFormat: anim.CompressionFormat(ys.TransFormat),
		RotFormat:   anim.CompressionFormat(ys.RotFormat),
		Offsets:     ys.Offsets,
	}
	if ys.KeyEncoding != "" {
		ke, err := anim.ParseKeyEncoding(ys.KeyEncoding)
		if err != nil {
			return nil, err
		}
		desc.KeyEncoding = ke
	}
	if ys.Stream != "" {
		stream, err := base64.StdEncoding.DecodeString(ys.Stream)
		if err != nil {
			return nil, errors.Wrapf(err, "Stream")
		}
		desc.Stream = stream
	}
	for _, yr := range ys.Raw {
		rt := anim.RawTrack{KeyTime: yr.Times}
		for _, p := range yr.Pos {
			rt.PosKeys = append(rt.PosKeys, p.Vec3())
		}
		for i := range yr.Rot {
			rt.RotKeys = append(rt.RotKeys, yr.Rot[i].Quat())
		}
		desc.Raw = append(desc.Raw, rt)
	}
	return desc, nil
}

func (a *Asset) loadVertexMesh(yv *yamlVertexAnim) (*skelmesh.VertexMesh, error) {
	if len(a.Lods) != 1 {
		return nil, errors.Errorf("Vertex animated mesh needs exactly one lod, got %d", len(a.Lods))
	}
	vm := &skelmesh.VertexMesh{Name: a.Name, Lod: a.Lods[0]}
	for _, f := range yv.Frames {
		frame := make([]mgl32.Vec3, len(f))
		for i, p := range f {
			frame[i] = p.Vec3()
		}
		vm.Frames = append(vm.Frames, frame)
	}
	for _, c := range yv.Clips {
		vm.Clips = append(vm.Clips, skelmesh.VertexClip{Name: c.Name, FirstFrame: c.First, NumFrames: c.Frames, Rate: c.Rate})
	}
	return vm, vm.Validate()
}

// Mesh returns the mesh variant described by the asset.
func (a *Asset) Mesh() skelmesh.Mesh {
	switch a.Kind {
	case skelmesh.MESH_SKELETAL:
		return &skelmesh.SkeletalMesh{Name: a.Name, Skeleton: a.Skeleton, Lods: a.Lods}
	case skelmesh.MESH_VERTEX:
		return a.VertexMesh
	}
	return &skelmesh.StaticMesh{Name: a.Name, Lods: a.Lods}
}

// DecodeAnimations decodes every sequence into the anim set. A failed
// sequence does not stop the others; the returned errors name each one.
func (a *Asset) DecodeAnimations(l *utils.Logger) []error {
	if a.AnimSet == nil {
		return nil
	}
	d := anim.NewDecoder(a.Game, l)
	errs := a.AnimSet.DecodeSequences(d, a.Sequences)
	if d.Holes() != 0 {
		l.Infof("Asset %q: %d streams did not end at the next declared offset", a.Name, d.Holes())
	}
	return errs
}

// NewInstance decodes the animations and returns a ready instance. Sequence
// decode errors are returned alongside a usable instance.
func (a *Asset) NewInstance(cfg *config.Config, l *utils.Logger) (skelmesh.MeshInstance, []error, error) {
	decodeErrs := a.DecodeAnimations(l)

	inst, err := skelmesh.NewInstance(a.Mesh(), l)
	if err != nil {
		return nil, decodeErrs, err
	}
	if sm, ok := inst.(*skelmesh.SkelMeshInstance); ok {
		sm.Workers = cfg.SkinWorkers
		if a.AnimSet != nil {
			if err := sm.SetAnimSet(a.AnimSet); err != nil {
				return nil, decodeErrs, err
			}
		}
		sm.UpdateAnimation(0)
	}
	return inst, decodeErrs, nil
}
