package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

func SendJSON(w http.ResponseWriter, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}
	w.Header().Add("Content-Type", "application/json")
	return w.Write(payload)
}

func SendJSONOrLog(w http.ResponseWriter, logger logrus.FieldLogger, v any) {
	_, err := SendJSON(w, v)
	if err != nil {
		logger.WithError(err).WithField("data", v).Error("failed to send data")
	}
}

// SendErrorOrLog replies {"error": e} with the given status.
func SendErrorOrLog(
	w http.ResponseWriter,
	logger logrus.FieldLogger,
	status int,
	e error,
) {
	payload, err := json.Marshal(wrapError(e))
	if err != nil {
		logger.WithError(err).WithField("sent error", e).Error("failed to encode error message")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		logger.WithError(err).WithField("sent error", e).Error("failed to send error message")
	}
}

func wrapError(err error) map[string]string {
	return map[string]string{
		"error": err.Error(),
	}
}
