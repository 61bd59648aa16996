package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-duo/internal/mines"
	"github.com/vancomm/minesweeper-duo/internal/relay"
)

type EventKind uint8

const (
	// EventSession: the relay assigned a session id.
	EventSession EventKind = iota
	// EventSeed: the board was rebuilt from a seed sent by the relay.
	EventSeed
	// EventRemote: an action of the other participant was replayed.
	EventRemote
	EventNoSession
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventSession:
		return "session"
	case EventSeed:
		return "seed"
	case EventRemote:
		return "remote"
	case EventNoSession:
		return "nosession"
	default:
		return "error"
	}
}

type Event struct {
	Kind   EventKind
	GameID int64
	Seed   int64
	Action mines.Action
	Pos    mines.Pos
	Deltas []mines.Delta
	Err    string
}

// Run reads relay messages and applies them until ctx is done or the
// connection closes. A clean shutdown returns nil.
func (p *Peer) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { p.conn.Close() })
	defer stop()

	for {
		_, buf, err := p.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("unable to read from relay: %w", err)
		}

		var msg relay.Outbound
		if err := json.Unmarshal(buf, &msg); err != nil {
			p.log.WithError(err).Warn("dropping malformed message")
			continue
		}
		for _, e := range p.apply(msg) {
			if p.opts.OnEvent != nil {
				p.opts.OnEvent(e)
			}
		}
	}
}

func (p *Peer) apply(msg relay.Outbound) []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var events []Event

	if msg.GameID != 0 {
		p.gameID = msg.GameID
		if msg.Seed == 0 {
			// fresh session: start over on the board the session was seeded with
			if err := p.reset(p.game.Seed); err != nil {
				p.log.WithError(err).Error("unable to regenerate board")
			}
		}
		events = append(events, Event{Kind: EventSession, GameID: msg.GameID})
	}

	if msg.Down != "" {
		if e, err := p.replay(msg.Down, msg.Secondary != 0); err != nil {
			p.log.WithError(err).WithField("cell", msg.Down).Warn("ignoring remote action")
		} else {
			events = append(events, e)
		}
	}

	if msg.NoSession != 0 {
		p.log.Debug("not previously in a session")
		events = append(events, Event{Kind: EventNoSession})
	}

	if msg.Seed != 0 {
		if err := p.reset(msg.Seed); err != nil {
			p.log.WithError(err).WithField("seed", msg.Seed).Error("unable to apply seed")
		} else {
			events = append(events, Event{Kind: EventSeed, GameID: msg.GameID, Seed: msg.Seed})
		}
	}

	if msg.Error != "" {
		p.log.WithField("error", msg.Error).Warn("relay refused request")
		if msg.Error == "game not found" || msg.Error == "game is full" {
			p.gameID = 0
		}
		events = append(events, Event{Kind: EventError, Err: msg.Error})
	}

	return events
}

// replay must be called with mu held. A remote primary action is a short
// click, so it only reveals; a remote secondary action cycles the mark.
func (p *Peer) replay(ref string, secondary bool) (Event, error) {
	pos, err := mines.ParseCellRef(ref)
	if err != nil {
		return Event{}, err
	}
	if !p.game.Board.InBounds(pos) {
		return Event{}, errors.New("cell out of bounds")
	}

	e := Event{Kind: EventRemote, GameID: p.gameID, Pos: pos}
	now := time.Now()
	if secondary {
		e.Action = mines.ActionMark
		e.Deltas = p.game.Press(pos, mines.Secondary, now)
	} else {
		p.game.Press(pos, mines.Primary, now)
		e.Action, e.Deltas = p.game.Release(pos, mines.Primary, now)
	}
	p.afterMove()

	p.log.WithFields(logrus.Fields{
		"cell":   ref,
		"action": e.Action.String(),
	}).Debug("replayed remote action")
	return e, nil
}
