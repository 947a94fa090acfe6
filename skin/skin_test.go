package skin

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/mogaika/anim_inspector/skeleton"
	"github.com/mogaika/anim_inspector/utils"
)

func testTransforms() []skeleton.Coords {
	return []skeleton.Coords{
		skeleton.IdentityCoords(),
		skeleton.CoordsFromPose(mgl32.Vec3{1, 2, 3}, mgl32.QuatRotate(0.8, mgl32.Vec3{0, 0, 1})),
		skeleton.CoordsFromPose(mgl32.Vec3{-2, 0, 5}, mgl32.QuatRotate(-1.3, mgl32.Vec3{0, 1, 0}).Normalize()).ScaleAxes(1.5),
	}
}

func randomVertices(n int, numBones int) []Vertex {
	r := rand.New(rand.NewSource(7))
	vec := func() mgl32.Vec3 { return mgl32.Vec3{r.Float32()*4 - 2, r.Float32()*4 - 2, r.Float32()*4 - 2} }
	verts := make([]Vertex, n)
	for i := range verts {
		v := &verts[i]
		v.Pos, v.Normal, v.Tangent, v.Binormal = vec(), vec(), vec(), vec()
		count := 1 + r.Intn(MAX_INFLUENCES)
		bones := make([]int, count)
		weights := make([]float32, count)
		for j := range bones {
			bones[j] = r.Intn(numBones)
			weights[j] = r.Float32()
		}
		v.SetInfluences(bones, weights)
	}
	return verts
}

func TestSingleInfluence(t *testing.T) {
	tr := testTransforms()
	v := Vertex{Pos: mgl32.Vec3{0.5, -1, 2}, Normal: mgl32.Vec3{0, 0, 1}}
	v.SetInfluences([]int{1}, []float32{1})

	s, err := SkinVertex(&v, tr)
	if err != nil {
		t.Fatal(err)
	}
	if want := tr[1].TransformPoint(v.Pos); s.Pos != want {
		t.Errorf("pos %v, want %v", s.Pos, want)
	}
	if want := tr[1].TransformVector(v.Normal); s.Normal != want {
		t.Errorf("normal %v, want %v", s.Normal, want)
	}
}

func TestWeightsNotRenormalized(t *testing.T) {
	v := Vertex{Pos: mgl32.Vec3{1, 1, 1}}
	v.SetInfluences([]int{0, 0}, []float32{0.25, 0.25})
	s, err := SkinVertex(&v, testTransforms())
	if err != nil {
		t.Fatal(err)
	}
	if !utils.Vec3ApproxEqual(s.Pos, mgl32.Vec3{0.5, 0.5, 0.5}, 1e-6) {
		t.Errorf("pos %v", s.Pos)
	}
}

func TestSentinel(t *testing.T) {
	v := Vertex{Pos: mgl32.Vec3{1, 0, 0}}
	v.Bones = [MAX_INFLUENCES]int16{2, BONE_NONE, 1, 1}
	v.Weights = [MAX_INFLUENCES]float32{1, 0, 5, 5}
	if v.Influences() != 1 {
		t.Fatalf("influences %d", v.Influences())
	}
	s, err := SkinVertex(&v, testTransforms())
	if err != nil {
		t.Fatal(err)
	}
	if want := testTransforms()[2].TransformPoint(v.Pos); !utils.Vec3ApproxEqual(s.Pos, want, 1e-5) {
		t.Errorf("pos %v, want %v", s.Pos, want)
	}
}

func TestBadInfluence(t *testing.T) {
	verts := randomVertices(10, 3)
	verts[6].Bones[0] = 3
	out := make([]Skinned, len(verts))
	if err := Skin(verts, testTransforms(), out); !errors.Is(err, ErrBadInfluence) {
		t.Errorf("got %v", err)
	}

	verts = randomVertices(5000, 3)
	verts[4321].Bones[0] = -5
	out = make([]Skinned, len(verts))
	if err := SkinParallel(verts, testTransforms(), out, 4); !errors.Is(err, ErrBadInfluence) {
		t.Errorf("parallel got %v", err)
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	verts := randomVertices(10000, 3)
	tr := testTransforms()

	serial := make([]Skinned, len(verts))
	if err := Skin(verts, tr, serial); err != nil {
		t.Fatal(err)
	}
	for _, workers := range []int{1, 3, 8} {
		out := make([]Skinned, len(verts))
		if err := SkinParallel(verts, tr, out, workers); err != nil {
			t.Fatal(err)
		}
		for i := range out {
			if out[i] != serial[i] {
				t.Fatalf("workers %d vertex %d: %v != %v", workers, i, out[i], serial[i])
			}
		}
	}

	again := make([]Skinned, len(verts))
	if err := Skin(verts, tr, again); err != nil {
		t.Fatal(err)
	}
	for i := range again {
		if again[i] != serial[i] {
			t.Fatalf("vertex %d differs between runs", i)
		}
	}
}
