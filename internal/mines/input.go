package mines

import "time"

type Button uint8

const (
	Primary Button = iota
	Secondary
)

type Action uint8

const (
	ActionNone Action = iota
	ActionReveal
	ActionMark
)

func (a Action) String() string {
	switch a {
	case ActionReveal:
		return "reveal"
	case ActionMark:
		return "mark"
	default:
		return "none"
	}
}

// HoldThreshold is the press duration from which a primary click flags
// instead of revealing (long-press to flag on touch screens).
const HoldThreshold = 200 * time.Millisecond

// ClassifyRelease decides what a primary-button press/release pair means.
func ClassifyRelease(down, up time.Time) Action {
	if up.Sub(down) >= HoldThreshold {
		return ActionMark
	}
	return ActionReveal
}

// Press handles a button press-down on p. A secondary press cycles the mark
// right away; a primary press starts the game and arms the hold timer.
func (g *Game) Press(p Pos, b Button, at time.Time) []Delta {
	if g.State.Terminated {
		return nil
	}

	switch b {
	case Secondary:
		if d, ok := g.CycleMark(p); ok {
			return []Delta{d}
		}
	case Primary:
		g.start()
		g.State.MouseDownAt = at
	}
	return nil
}

// Release handles a primary-button press-up on p and reports which action it
// resolved to. Secondary releases are ignored.
func (g *Game) Release(p Pos, b Button, at time.Time) (Action, []Delta) {
	if g.State.Terminated || b != Primary {
		return ActionNone, nil
	}
	g.start()

	// a release without a recorded press is a plain click
	down := g.State.MouseDownAt
	if down.IsZero() {
		down = at
	}
	switch ClassifyRelease(down, at) {
	case ActionMark:
		if d, ok := g.CycleMark(p); ok {
			return ActionMark, []Delta{d}
		}
	case ActionReveal:
		if g.Board.InBounds(p) && g.Cell(p) == Hidden {
			return ActionReveal, g.Reveal(p)
		}
	}
	return ActionNone, nil
}
