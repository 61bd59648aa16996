package mines

import "time"

type Phase uint8

const (
	NotStarted Phase = iota
	InProgress
	Won
	Lost
)

func (p Phase) String() string {
	switch p {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "not_started"
	}
}

type GameState struct {
	ElapsedTime           int       `json:"elapsed_time"`
	FirstClickDone        bool      `json:"first_click_done"`
	FlaggedCount          int       `json:"flagged_count"`
	CorrectlyFlaggedCount int       `json:"correctly_flagged_count"`
	RemainingSafeToReveal int       `json:"remaining_safe_to_reveal"`
	Terminated            bool      `json:"terminated"`
	MouseDownAt           time.Time `json:"-"`
}

// Game is one match: the board, what the player sees of it and the
// counters. It is discarded wholesale when a new board is generated.
// Game is not safe for concurrent use.
type Game struct {
	Difficulty Difficulty
	Seed       int64
	Board      *Board
	Cells      []VisualState
	State      GameState
	lost       bool
}

// Generate builds a fresh game for d. Boards generated with the same
// positive seed are identical; a seed <= 0 is replaced by a freshly drawn
// one, recorded in Game.Seed.
func Generate(d Difficulty, seed int64) (*Game, error) {
	if seed <= 0 {
		seed = DrawSeed()
	}
	board, err := GenerateBoard(d, NewXorShift(seed))
	if err != nil {
		return nil, err
	}
	return NewGame(d, seed, board), nil
}

func NewGame(d Difficulty, seed int64, board *Board) *Game {
	cells := make([]VisualState, len(board.Squares))
	return &Game{
		Difficulty: d,
		Seed:       seed,
		Board:      board,
		Cells:      cells,
		State: GameState{
			RemainingSafeToReveal: len(board.Squares) - board.MineCount(),
		},
	}
}

func (g *Game) Cell(p Pos) VisualState {
	return g.Cells[g.Board.index(p)]
}

func (g *Game) Phase() Phase {
	switch {
	case g.State.Terminated && g.lost:
		return Lost
	case g.State.Terminated:
		return Won
	case g.State.FirstClickDone:
		return InProgress
	default:
		return NotStarted
	}
}

// Remaining is the mine counter shown to the player: mines minus flags.
func (g *Game) Remaining() int {
	return g.Difficulty.Mines() - g.State.FlaggedCount
}

func (g *Game) start() {
	g.State.FirstClickDone = true
}

// Tick advances the elapsed time by one second while the game is in
// progress. It returns false once the clock should stop.
func (g *Game) Tick() bool {
	if g.Phase() != InProgress {
		return false
	}
	g.State.ElapsedTime++
	return true
}

func (g *Game) set(p Pos, s VisualState) Delta {
	g.Cells[g.Board.index(p)] = s
	return Delta{p, s}
}

// Reveal opens p. Opening a mine loses the game and discloses the other
// mines; opening a square with no adjacent mines floods outwards through
// every connected empty square and its numbered border. Ineligible targets
// are ignored.
func (g *Game) Reveal(p Pos) []Delta {
	if g.State.Terminated || !g.Board.InBounds(p) {
		return nil
	}
	if c := g.Cell(p); c != Hidden && c != Questioned {
		return nil
	}

	if g.Board.At(p).Mined {
		g.State.Terminated = true
		g.lost = true
		deltas := []Delta{g.set(p, RevealedAsMine)}
		return append(deltas, g.discloseMines(p)...)
	}

	deltas := []Delta{g.set(p, Revealed)}
	g.State.RemainingSafeToReveal--

	frontier := []Pos{p}
	for len(frontier) > 0 {
		q := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		if g.Board.At(q).Adjacent != 0 {
			continue
		}
		for _, o := range neighbourOffsets {
			n := q.add(o)
			if !g.Board.InBounds(n) || g.Cell(n) != Hidden {
				continue
			}
			deltas = append(deltas, g.set(n, Revealed))
			g.State.RemainingSafeToReveal--
			frontier = append(frontier, n)
		}
	}

	if g.State.RemainingSafeToReveal == 0 {
		g.State.Terminated = true
	}
	return deltas
}

// CycleMark moves p through hidden -> flagged -> questioned -> hidden.
func (g *Game) CycleMark(p Pos) (Delta, bool) {
	if g.State.Terminated || !g.Board.InBounds(p) {
		return Delta{}, false
	}
	cur := g.Cell(p)
	next, ok := markCycle[cur]
	if !ok {
		return Delta{}, false
	}

	mined := g.Board.At(p).Mined
	switch cur {
	case Hidden:
		g.State.FlaggedCount++
		if mined {
			g.State.CorrectlyFlaggedCount++
		}
	case Flagged:
		g.State.FlaggedCount--
		if mined {
			g.State.CorrectlyFlaggedCount--
		}
	}
	return g.set(p, next), true
}

// discloseMines shows every unflagged mine and every misplaced flag, leaving
// the exploded square alone.
func (g *Game) discloseMines(exploded Pos) []Delta {
	var deltas []Delta
	for line := range g.Board.Lines {
		for col := range g.Board.Cols {
			p := Pos{line, col}
			if p == exploded {
				continue
			}
			mined, flagged := g.Board.At(p).Mined, g.Cell(p) == Flagged
			switch {
			case mined && !flagged:
				deltas = append(deltas, g.set(p, RevealedAsMine))
			case !mined && flagged:
				deltas = append(deltas, g.set(p, RevealedMistake))
			}
		}
	}
	return deltas
}
