package mines

import (
	"fmt"
	"strings"
)

type Difficulty int

const (
	Beginner     Difficulty = 10
	Intermediate Difficulty = 40
	Expert       Difficulty = 99
)

var difficultyProfiles = map[Difficulty]struct{ lines, cols int }{
	Beginner:     {8, 8},
	Intermediate: {16, 16},
	Expert:       {16, 30},
}

// Dimensions returns the grid size for d. The mine count is d itself.
func (d Difficulty) Dimensions() (lines, cols int, err error) {
	p, ok := difficultyProfiles[d]
	if !ok {
		return 0, 0, fmt.Errorf("%w: %d", ErrUnknownDifficulty, int(d))
	}
	return p.lines, p.cols, nil
}

func (d Difficulty) Mines() int {
	return int(d)
}

type Square struct {
	Mined    bool `json:"mined"`
	Adjacent int  `json:"adjacent"`
}

type Board struct {
	Lines   int      `json:"lines"`
	Cols    int      `json:"cols"`
	Squares []Square `json:"squares"`
}

func (b *Board) InBounds(p Pos) bool {
	return p.Line >= 0 && p.Col >= 0 && p.Line < b.Lines && p.Col < b.Cols
}

func (b *Board) index(p Pos) int {
	return p.Line*b.Cols + p.Col
}

func (b *Board) At(p Pos) Square {
	return b.Squares[b.index(p)]
}

func (b *Board) MineCount() (count int) {
	for _, s := range b.Squares {
		if s.Mined {
			count++
		}
	}
	return
}

func (b *Board) String() string {
	var sb strings.Builder
	for line := range b.Lines {
		for col := range b.Cols {
			s := b.Squares[line*b.Cols+col]
			switch {
			case s.Mined:
				sb.WriteString("* ")
			case s.Adjacent == 0:
				sb.WriteString("- ")
			default:
				fmt.Fprintf(&sb, "%d ", s.Adjacent)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// GenerateBoard lays out d.Mines() mines on the grid for d, shuffled by r,
// and fills in the adjacency counts of safe squares.
func GenerateBoard(d Difficulty, r Random) (*Board, error) {
	lines, cols, err := d.Dimensions()
	if err != nil {
		return nil, err
	}

	b := &Board{
		Lines:   lines,
		Cols:    cols,
		Squares: make([]Square, lines*cols),
	}
	for i := range d.Mines() {
		b.Squares[i].Mined = true
	}
	Shuffle(len(b.Squares), r, func(i, j int) {
		b.Squares[i], b.Squares[j] = b.Squares[j], b.Squares[i]
	})

	for line := range lines {
		for col := range cols {
			p := Pos{line, col}
			i := b.index(p)
			if b.Squares[i].Mined {
				continue
			}
			n := 0
			for _, o := range neighbourOffsets {
				q := p.add(o)
				if b.InBounds(q) && b.At(q).Mined {
					n++
				}
			}
			b.Squares[i].Adjacent = n
		}
	}

	if got := b.MineCount(); got != d.Mines() {
		return nil, AssertionError{fmt.Sprintf("board has %d mines, want %d", got, d.Mines())}
	}
	return b, nil
}
