package skin

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/skeleton"
)

const (
	MAX_INFLUENCES = 4
	// terminates the influence list of a vertex
	BONE_NONE = -1
)

var ErrBadInfluence = errors.New("vertex influence references missing bone")

// Vertex is a bind pose vertex in model space.
type Vertex struct {
	Pos      mgl32.Vec3
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec3
	Binormal mgl32.Vec3
	Bones    [MAX_INFLUENCES]int16
	Weights  [MAX_INFLUENCES]float32
}

// Influences counts entries before the BONE_NONE sentinel.
func (v *Vertex) Influences() int {
	for i, b := range v.Bones {
		if b == BONE_NONE {
			return i
		}
	}
	return MAX_INFLUENCES
}

func (v *Vertex) SetInfluences(bones []int, weights []float32) {
	for i := range v.Bones {
		if i < len(bones) {
			v.Bones[i] = int16(bones[i])
			v.Weights[i] = weights[i]
		} else {
			v.Bones[i] = BONE_NONE
			v.Weights[i] = 0
		}
	}
}

type Skinned struct {
	Pos      mgl32.Vec3
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec3
	Binormal mgl32.Vec3
}

type Lod struct {
	Vertices []Vertex
	Indices  []uint32
}

// BindPose returns the vertices without any deformation.
func (lod *Lod) BindPose() []Skinned {
	out := make([]Skinned, len(lod.Vertices))
	for i := range lod.Vertices {
		v := &lod.Vertices[i]
		out[i] = Skinned{Pos: v.Pos, Normal: v.Normal, Tangent: v.Tangent, Binormal: v.Binormal}
	}
	return out
}

// SkinVertex applies the weighted sum of the referenced transforms. Weights
// are used as stored.
func SkinVertex(v *Vertex, transforms []skeleton.Coords) (Skinned, error) {
	var acc skeleton.Coords
	for i := 0; i < MAX_INFLUENCES; i++ {
		bone := int(v.Bones[i])
		if bone == BONE_NONE {
			break
		}
		if bone < 0 || bone >= len(transforms) {
			return Skinned{}, errors.Wrapf(ErrBadInfluence, "bone %d of %d", bone, len(transforms))
		}
		acc.AddScaled(&transforms[bone], v.Weights[i])
	}
	return Skinned{
		Pos:      acc.TransformPoint(v.Pos),
		Normal:   acc.TransformVector(v.Normal),
		Tangent:  acc.TransformVector(v.Tangent),
		Binormal: acc.TransformVector(v.Binormal),
	}, nil
}

// Skin deforms verts into out, which must be at least as long.
func Skin(verts []Vertex, transforms []skeleton.Coords, out []Skinned) error {
	for i := range verts {
		s, err := SkinVertex(&verts[i], transforms)
		if err != nil {
			return errors.Wrapf(err, "vertex %d", i)
		}
		out[i] = s
	}
	return nil
}

// minimal amount of vertices worth a goroutine
const parallelChunk = 1024

// SkinParallel splits verts into contiguous ranges skinned concurrently. The
// output is identical to Skin.
func SkinParallel(verts []Vertex, transforms []skeleton.Coords, out []Skinned, workers int) error {
	if workers <= 1 || len(verts) <= parallelChunk {
		return Skin(verts, transforms, out)
	}

	chunk := (len(verts) + workers - 1) / workers
	if chunk < parallelChunk {
		chunk = parallelChunk
	}

	var wg sync.WaitGroup
	errs := make([]error, (len(verts)+chunk-1)/chunk)
	for w := range errs {
		start := w * chunk
		end := start + chunk
		if end > len(verts) {
			end = len(verts)
		}
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			if err := Skin(verts[start:end], transforms, out[start:end]); err != nil {
				errs[w] = errors.Wrapf(err, "range starting at %d", start)
			}
		}(w, start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
