package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type Pos struct {
	Line, Col int
}

// neighbourOffsets in scan order: E, SE, S, SW, W, NW, N, NE.
var neighbourOffsets = [8]Pos{
	{0, 1}, {1, 1}, {1, 0}, {1, -1},
	{0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

func (p Pos) add(o Pos) Pos {
	return Pos{p.Line + o.Line, p.Col + o.Col}
}

// Ref encodes the position as a cell reference, e.g. "i3j4".
func (p Pos) Ref() string {
	return "i" + strconv.Itoa(p.Line) + "j" + strconv.Itoa(p.Col)
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

func ParseCellRef(ref string) (Pos, error) {
	rest, ok := strings.CutPrefix(ref, "i")
	if !ok {
		return Pos{}, fmt.Errorf("%w: %q", ErrBadCellRef, ref)
	}
	lineStr, colStr, ok := strings.Cut(rest, "j")
	if !ok {
		return Pos{}, fmt.Errorf("%w: %q", ErrBadCellRef, ref)
	}
	line, err := strconv.Atoi(lineStr)
	if err != nil || line < 0 {
		return Pos{}, fmt.Errorf("%w: %q", ErrBadCellRef, ref)
	}
	col, err := strconv.Atoi(colStr)
	if err != nil || col < 0 {
		return Pos{}, fmt.Errorf("%w: %q", ErrBadCellRef, ref)
	}
	return Pos{line, col}, nil
}
