package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

type sessionCounter interface {
	Len() int
}

type connectionCounter interface {
	Connections() int
}

type HealthHandler struct {
	logger      logrus.FieldLogger
	sessions    sessionCounter
	connections connectionCounter
}

func NewHealthHandler(
	logger logrus.FieldLogger,
	sessions sessionCounter,
	connections connectionCounter,
) *HealthHandler {
	return &HealthHandler{logger, sessions, connections}
}

type HealthDTO struct {
	Sessions    int `json:"sessions"`
	Connections int `json:"connections"`
}

func (h HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	SendJSONOrLog(w, h.logger, HealthDTO{
		Sessions:    h.sessions.Len(),
		Connections: h.connections.Connections(),
	})
}
