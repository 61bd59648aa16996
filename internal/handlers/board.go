package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-duo/internal/mines"
)

type BoardHandler struct {
	logger logrus.FieldLogger
}

func NewBoardHandler(logger logrus.FieldLogger) *BoardHandler {
	return &BoardHandler{logger: logger}
}

// Generate returns the board a client would build for the given difficulty
// and seed. Without a seed one is drawn and echoed back.
func (h BoardHandler) Generate(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseBoardQueryDTO(r.URL.Query())
	if err != nil {
		SendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}

	game, err := mines.Generate(mines.Difficulty(dto.Difficulty), dto.Seed)
	if errors.Is(err, mines.ErrUnknownDifficulty) {
		SendErrorOrLog(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		h.logger.WithError(err).Error("unable to generate board")
		SendErrorOrLog(w, h.logger, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	SendJSONOrLog(w, h.logger, NewBoardDTO(game))
}
