package config

import (
	"strings"
)

// Game is an opaque discriminator supplied by the package loader.
// It only selects between historically divergent stream quirks and
// must never be guessed from the shape of the data.
type Game int

const (
	GAME_UNKNOWN Game = iota
	GAME_UE2
	GAME_UE3
	GAME_UE3_PADDED
	GAME_UE3_NEGQUAT
)

var gameNames = map[Game]string{
	GAME_UNKNOWN:     "unknown",
	GAME_UE2:         "ue2",
	GAME_UE3:         "ue3",
	GAME_UE3_PADDED:  "ue3-padded",
	GAME_UE3_NEGQUAT: "ue3-negquat",
}

func (g Game) String() string {
	if name, ok := gameNames[g]; ok {
		return name
	}
	return "unknown"
}

// ParseGame resolves a game identifier. The second result is false when the
// name is not known, in which case GAME_UNKNOWN is returned.
func ParseGame(name string) (Game, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for g, n := range gameNames {
		if n == name {
			return g, true
		}
	}
	return GAME_UNKNOWN, false
}

type Quirks struct {
	// Streams are padded past their 4-byte alignment, so gaps between
	// a decoded stream end and the next declared offset are expected.
	HolesExpected bool
	// Rotation keys are stored with a negated vector part.
	NegatedRotation bool
}

func (g Game) Quirks() Quirks {
	switch g {
	case GAME_UE3_PADDED:
		return Quirks{HolesExpected: true}
	case GAME_UE3_NEGQUAT:
		return Quirks{NegatedRotation: true}
	default:
		return Quirks{}
	}
}
