package handlers

import (
	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper-duo/internal/mines"
)

type BoardQueryDTO struct {
	Difficulty int   `schema:"difficulty,required"`
	Seed       int64 `schema:"seed"`
}

var decoder = func() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}()

func ParseBoardQueryDTO(src map[string][]string) (BoardQueryDTO, error) {
	var dto BoardQueryDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type BoardDTO struct {
	Seed    int64           `json:"seed"`
	Lines   int             `json:"lines"`
	Cols    int             `json:"cols"`
	Mines   int             `json:"mines"`
	Squares []mines.Square  `json:"squares"`
	State   mines.GameState `json:"state"`
}

func NewBoardDTO(g *mines.Game) *BoardDTO {
	return &BoardDTO{
		Seed:    g.Seed,
		Lines:   g.Board.Lines,
		Cols:    g.Board.Cols,
		Mines:   g.Board.MineCount(),
		Squares: g.Board.Squares,
		State:   g.State,
	}
}
