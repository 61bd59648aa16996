package app

import (
	"github.com/vancomm/minesweeper-duo/internal/handlers"
)

func (a *App) loadRoutes() {
	board := handlers.NewBoardHandler(a.logger)
	health := handlers.NewHealthHandler(a.logger, a.registry, a.hub)
	relay := handlers.NewRelayHandler(a.logger, a.ws, a.hub)

	a.router.HandleFunc("GET /{$}", relay.Connect)
	a.router.HandleFunc("GET /board", board.Generate)
	a.router.HandleFunc("GET /healthz", health.Status)
}
