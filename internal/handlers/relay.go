package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-duo/internal/config"
	"github.com/vancomm/minesweeper-duo/internal/relay"
)

type RelayHandler struct {
	logger logrus.FieldLogger
	ws     *config.WebSocket
	hub    *relay.Hub
}

func NewRelayHandler(logger logrus.FieldLogger, ws *config.WebSocket, hub *relay.Hub) *RelayHandler {
	return &RelayHandler{logger, ws, hub}
}

// Connect upgrades the request and hands the socket to the hub until it
// closes.
func (h RelayHandler) Connect(w http.ResponseWriter, r *http.Request) {
	conn, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("unable to upgrade connection")
		return
	}
	defer conn.Close()

	h.hub.Serve(r.Context(), conn)
}
