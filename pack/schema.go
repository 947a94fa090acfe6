package pack

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/anim_inspector/anim"
)

// On disk description of an asset, as written by extraction tools.

type vec3 [3]float32

// x, y, z, w
type quat4 [4]float32

func (v vec3) Vec3() mgl32.Vec3 { return mgl32.Vec3(v) }

func (q *quat4) Quat() mgl32.Quat {
	if q == nil {
		return mgl32.QuatIdent()
	}
	return mgl32.Quat{W: q[3], V: mgl32.Vec3{q[0], q[1], q[2]}}
}

// format accepts either a name ("fixed48") or a raw numeric code. Codes are
// not range checked here; the decoder rejects unknown ones.
type format anim.CompressionFormat

func (f *format) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		var code uint8
		if err := node.Decode(&code); err != nil {
			return err
		}
		*f = format(code)
		return nil
	}
	cf, err := anim.ParseCompressionFormat(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*f = format(cf)
	return nil
}

type yamlPose struct {
	Pos  vec3   `yaml:"pos"`
	Quat *quat4 `yaml:"quat"`
}

type yamlBone struct {
	Name string `yaml:"name"`
	// base64 of the name bytes in the configured encoding, used when Name is empty
	RawName string `yaml:"raw_name"`
	// omitted for the root
	Parent *int   `yaml:"parent"`
	Pos    vec3   `yaml:"pos"`
	Quat   *quat4 `yaml:"quat"`
}

type yamlSkeleton struct {
	Base  *yamlPose  `yaml:"base"`
	Bones []yamlBone `yaml:"bones"`
}

type yamlVertex struct {
	Pos      vec3      `yaml:"pos"`
	Normal   vec3      `yaml:"normal"`
	Tangent  vec3      `yaml:"tangent"`
	Binormal vec3      `yaml:"binormal"`
	Bones    []int     `yaml:"bones"`
	Weights  []float32 `yaml:"weights"`
}

type yamlLod struct {
	Vertices []yamlVertex `yaml:"vertices"`
	Indices  []uint32     `yaml:"indices"`
}

type yamlRawTrack struct {
	Pos   []vec3    `yaml:"pos"`
	Rot   []quat4   `yaml:"rot"`
	Times []float32 `yaml:"times"`
}

type yamlSequence struct {
	Name        string         `yaml:"name"`
	Frames      int            `yaml:"frames"`
	Rate        float32        `yaml:"rate"`
	KeyEncoding string         `yaml:"key_encoding"`
	TransFormat format         `yaml:"trans_format"`
	RotFormat   format         `yaml:"rot_format"`
	Offsets     []int32        `yaml:"offsets"`
	Stream      string         `yaml:"stream"`
	Raw         []yamlRawTrack `yaml:"raw"`
}

type yamlAnimSet struct {
	Name                 string         `yaml:"name"`
	Bones                []string       `yaml:"bones"`
	RotationOnly         bool           `yaml:"rotation_only"`
	UseTranslation       []string       `yaml:"use_translation"`
	ForceMeshTranslation []string       `yaml:"force_mesh_translation"`
	RefPose              []yamlPose     `yaml:"ref_pose"`
	Sequences            []yamlSequence `yaml:"sequences"`
}

type yamlVertexClip struct {
	Name   string  `yaml:"name"`
	First  int     `yaml:"first"`
	Frames int     `yaml:"frames"`
	Rate   float32 `yaml:"rate"`
}

type yamlVertexAnim struct {
	Frames [][]vec3         `yaml:"frames"`
	Clips  []yamlVertexClip `yaml:"clips"`
}

type yamlAsset struct {
	Name       string          `yaml:"name"`
	Game       string          `yaml:"game"`
	Kind       string          `yaml:"kind"`
	Skeleton   *yamlSkeleton   `yaml:"skeleton"`
	Lods       []yamlLod       `yaml:"lods"`
	AnimSet    *yamlAnimSet    `yaml:"anim_set"`
	VertexAnim *yamlVertexAnim `yaml:"vertex_anim"`
}
