package relay

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const eventBacklog = 256

type EventKind string

const (
	EventCreated  EventKind = "created"
	EventJoined   EventKind = "joined"
	EventReseeded EventKind = "reseeded"
	EventLeft     EventKind = "left"
)

// Event is a session registry change worth keeping in the match history.
type Event struct {
	Kind   EventKind
	GameID int64
	UserID int64
	Seed   int64
	At     time.Time
}

type Recorder interface {
	Record(ctx context.Context, e Event) error
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, Event) error { return nil }

// archive hands queued events to the recorder one at a time, in order.
func (h *Hub) archive() {
	for {
		select {
		case <-h.quit:
			return
		case e := <-h.events:
			ctx, cancel := context.WithTimeout(context.Background(), h.opts.RecordTimeout)
			if err := h.recorder.Record(ctx, e); err != nil {
				h.logger.WithError(err).WithFields(logrus.Fields{
					"event":  e.Kind,
					"gameId": e.GameID,
				}).Warn("unable to record session event")
			}
			cancel()
		}
	}
}
