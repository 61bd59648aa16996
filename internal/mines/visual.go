package mines

import "fmt"

type VisualState int8

const (
	Hidden VisualState = iota
	Flagged
	Questioned
	Revealed
	RevealedAsMine
	RevealedMistake // flag placed on a safe square, shown after a loss
)

var visualStateNames = [...]string{
	Hidden:          "hidden",
	Flagged:         "flagged",
	Questioned:      "questioned",
	Revealed:        "revealed",
	RevealedAsMine:  "revealed_as_mine",
	RevealedMistake: "revealed_mistake",
}

// markCycle is the flag cycle. States missing from it cannot be marked.
var markCycle = map[VisualState]VisualState{
	Hidden:     Flagged,
	Flagged:    Questioned,
	Questioned: Hidden,
}

func (s VisualState) String() string {
	if s < 0 || int(s) >= len(visualStateNames) {
		return fmt.Sprintf("VisualState(%d)", int8(s))
	}
	return visualStateNames[s]
}

func (s VisualState) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(visualStateNames) {
		return nil, fmt.Errorf("invalid visual state %d", int8(s))
	}
	return []byte(visualStateNames[s]), nil
}

func (s *VisualState) UnmarshalText(text []byte) error {
	for i, name := range visualStateNames {
		if name == string(text) {
			*s = VisualState(i)
			return nil
		}
	}
	return fmt.Errorf("invalid visual state %q", text)
}

// Concealed reports whether the square underneath is still unknown to the
// player.
func (s VisualState) Concealed() bool {
	return s == Hidden || s == Flagged || s == Questioned
}

// Delta is a single cell change the renderer must apply.
type Delta struct {
	Pos   Pos         `json:"pos"`
	State VisualState `json:"state"`
}
