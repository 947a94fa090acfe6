package pack

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/anim_inspector/utils"
)

type sequenceSummary struct {
	Name     string  `yaml:"name"`
	Frames   int     `yaml:"frames"`
	Rate     float32 `yaml:"rate"`
	Duration float32 `yaml:"duration"`
	PosKeys  int     `yaml:"pos_keys"`
	RotKeys  int     `yaml:"rot_keys"`

	// tracks without keys, posed from the skeleton bind pose
	BindTracks int `yaml:"bind_tracks,omitempty"`
}

type summary struct {
	Name      string            `yaml:"name"`
	Game      string            `yaml:"game"`
	Kind      string            `yaml:"kind"`
	Bones     []*yaml.Node      `yaml:"bones,omitempty"`
	Lods      []int             `yaml:"lod_vertices,omitempty"`
	Tracks    []string          `yaml:"tracks,omitempty"`
	Sequences []sequenceSummary `yaml:"sequences,omitempty"`
}

// WriteSummary writes what was loaded and decoded as YAML, bone names
// annotated with their lookup hash.
func WriteSummary(w io.Writer, a *Asset) error {
	s := summary{Name: a.Name, Game: a.Game.String(), Kind: a.Kind.String()}
	if a.Skeleton != nil {
		for i, b := range a.Skeleton.Bones {
			s.Bones = append(s.Bones, &yaml.Node{
				Kind:        yaml.ScalarNode,
				Value:       b.Name,
				LineComment: fmt.Sprintf("%d parent %d hash 0x%.8x", i, b.Parent, utils.BoneNameHash(b.Name)),
			})
		}
	}
	for _, lod := range a.Lods {
		s.Lods = append(s.Lods, len(lod.Vertices))
	}
	if a.AnimSet != nil {
		s.Tracks = a.AnimSet.TrackBoneNames
		for _, seq := range a.AnimSet.Sequences {
			ss := sequenceSummary{Name: seq.Name, Frames: seq.NumFrames, Rate: seq.Rate, Duration: seq.Duration()}
			for i := range seq.Tracks {
				ss.PosKeys += len(seq.Tracks[i].KeyPos)
				ss.RotKeys += len(seq.Tracks[i].KeyQuat)
				if !seq.Tracks[i].HasKeys() {
					ss.BindTracks++
				}
			}
			s.Sequences = append(s.Sequences, ss)
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&s); err != nil {
		return errors.Wrapf(err, "Failed to encode summary")
	}
	return enc.Close()
}

// DumpSequence writes every decoded track of a sequence in spew format.
func DumpSequence(w io.Writer, a *Asset, name string) error {
	if a.AnimSet == nil {
		return errors.Errorf("Asset %q has no animations", a.Name)
	}
	seq := a.AnimSet.Sequence(a.AnimSet.FindSequence(name))
	if seq == nil {
		return errors.Errorf("Sequence %q not found", name)
	}
	for i := range seq.Tracks {
		if _, err := fmt.Fprintf(w, "track %d %q:\n%s", i, a.AnimSet.TrackBoneNames[i], utils.SDump(seq.Tracks[i])); err != nil {
			return err
		}
	}
	return nil
}
