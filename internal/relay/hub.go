package relay

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-duo/internal/mines"
	"github.com/vancomm/minesweeper-duo/internal/session"
)

type Options struct {
	Token        string
	OutboxSize   int
	WriteTimeout time.Duration
	Recorder     Recorder
	// RecordTimeout bounds each Recorder call.
	RecordTimeout time.Duration
}

// Hub relays multiplayer messages between the connections of a session's
// participants.
type Hub struct {
	logger   logrus.FieldLogger
	registry *session.Registry
	recorder Recorder
	opts     Options
	events   chan Event
	quit     chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	clients map[*client]struct{}
}

func NewHub(logger logrus.FieldLogger, registry *session.Registry, opts Options) *Hub {
	if opts.OutboxSize <= 0 {
		opts.OutboxSize = 16
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	if opts.RecordTimeout <= 0 {
		opts.RecordTimeout = 5 * time.Second
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = nopRecorder{}
	}
	h := &Hub{
		logger:   logger,
		registry: registry,
		recorder: recorder,
		opts:     opts,
		events:   make(chan Event, eventBacklog),
		quit:     make(chan struct{}),
		clients:  make(map[*client]struct{}),
	}
	go h.archive()
	return h
}

// Close stops the archive goroutine. Events still queued are dropped.
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.quit) })
}

func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Serve runs the read loop of conn until it closes. Messages of one
// connection are handled one at a time, in order. Closing the socket does
// not take the user out of its session, so it can reconnect later.
func (h *Hub) Serve(ctx context.Context, conn *websocket.Conn) {
	c := newClient(conn, h.opts.OutboxSize)
	log := h.logger.WithField("conn", c.id.String())

	h.register(c)
	defer h.unregister(c)

	go c.writeLoop(h.opts.WriteTimeout, log)
	defer close(c.done)

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	log.Debug("established ws connection")

	for {
		mt, buf, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("abnormal ws break")
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		text := strings.TrimSpace(string(buf))
		log.Debugf("\t> %s", text)

		var msg Inbound
		if err := json.Unmarshal([]byte(text), &msg); err != nil {
			log.WithError(err).Debug("dropping malformed message")
			continue
		}
		h.handle(c, msg, log)
	}
}

func (h *Hub) handle(c *client, msg Inbound, log logrus.FieldLogger) {
	intent := msg.Intent()
	log = log.WithField("intent", intent.String())

	switch intent {
	case IntentCreate, IntentJoin, IntentReconnect:
		if !h.authorized(msg) {
			log.Debug("token mismatch, ignoring message")
			return
		}
	}

	switch intent {
	case IntentCreate:
		h.create(c, msg, log)
	case IntentJoin:
		h.join(c, msg, log)
	case IntentAction:
		h.action(c, msg, log)
	case IntentNewSeed:
		h.newSeed(c, msg, log)
	case IntentReconnect:
		h.reconnect(c, msg, log)
	case IntentDisconnect:
		h.disconnect(c, msg, log)
	default:
		log.Debug("message carries no intent")
	}
}

func (h *Hub) authorized(msg Inbound) bool {
	return msg.Token != nil && string(*msg.Token) == h.opts.Token
}

func (h *Hub) create(c *client, msg Inbound, log logrus.FieldLogger) {
	userID := int64(*msg.Create)
	seed := int64(0)
	if msg.Seed != nil {
		seed = int64(*msg.Seed)
	}
	if seed <= 0 {
		seed = mines.DrawSeed()
	}

	c.bind(userID)
	gameID := h.registry.Create(userID, seed)
	log.WithFields(logrus.Fields{
		"userId": userID,
		"gameId": gameID,
		"seed":   seed,
	}).Info("session created")

	h.reply(c, Outbound{GameID: gameID}, log)
	h.record(Event{Kind: EventCreated, GameID: gameID, UserID: userID, Seed: seed}, log)
}

func (h *Hub) join(c *client, msg Inbound, log logrus.FieldLogger) {
	userID := int64(*msg.Join)
	if msg.GameID == nil {
		h.reply(c, Outbound{Error: "missing gameid"}, log)
		return
	}
	gameID := int64(*msg.GameID)

	seed, err := h.registry.Join(gameID, userID)
	switch {
	case errors.Is(err, session.ErrNotFound):
		log.WithField("gameId", gameID).Debug("join of unknown session")
		h.reply(c, Outbound{Error: "game not found"}, log)
		return
	case errors.Is(err, session.ErrSessionFull):
		h.reply(c, Outbound{Error: "game is full"}, log)
		return
	case err != nil:
		log.WithError(err).Error("unable to join session")
		h.reply(c, Outbound{Error: "internal error"}, log)
		return
	}

	c.bind(userID)
	log.WithFields(logrus.Fields{
		"userId": userID,
		"gameId": gameID,
	}).Info("session joined")

	h.reply(c, Outbound{Seed: seed}, log)
	h.record(Event{Kind: EventJoined, GameID: gameID, UserID: userID, Seed: seed}, log)
}

func (h *Hub) action(c *client, msg Inbound, log logrus.FieldLogger) {
	origin, ok := c.user()
	if msg.UserID != nil {
		origin, ok = int64(*msg.UserID), true
	}
	if !ok {
		h.reply(c, Outbound{Error: "unknown user"}, log)
		return
	}

	var gameID int64
	if msg.GameID != nil {
		gameID = int64(*msg.GameID)
	} else {
		id, err := h.registry.FindSessionOf(origin, false)
		if err != nil {
			h.reply(c, Outbound{Error: "no session"}, log)
			return
		}
		gameID = id
	}

	s, err := h.registry.Get(gameID)
	if err != nil || !slices.Contains(s.Participants, origin) {
		h.reply(c, Outbound{Error: "not a participant"}, log)
		return
	}

	switch {
	case msg.Action.Down != "":
		h.Broadcast(gameID, origin, Outbound{Down: msg.Action.Down})
	case msg.Action.Secondary != "":
		h.Broadcast(gameID, origin, Outbound{Down: msg.Action.Secondary, Secondary: 1})
	default:
		h.reply(c, Outbound{Error: "empty action"}, log)
	}
}

func (h *Hub) newSeed(c *client, msg Inbound, log logrus.FieldLogger) {
	userID, ok := c.user()
	if !ok {
		h.reply(c, Outbound{Error: "no session"}, log)
		return
	}
	seed := int64(*msg.NewSeed)
	if seed <= 0 {
		h.reply(c, Outbound{Error: "invalid seed"}, log)
		return
	}

	gameID, err := h.registry.FindSessionOf(userID, false)
	if err != nil {
		h.reply(c, Outbound{Error: "no session"}, log)
		return
	}
	if err := h.registry.SetSeed(gameID, seed); err != nil {
		h.reply(c, Outbound{Error: "no session"}, log)
		return
	}

	log.WithFields(logrus.Fields{
		"gameId": gameID,
		"seed":   seed,
	}).Info("session reseeded")

	h.Broadcast(gameID, userID, Outbound{Seed: seed})
	h.record(Event{Kind: EventReseeded, GameID: gameID, UserID: userID, Seed: seed}, log)
}

func (h *Hub) reconnect(c *client, msg Inbound, log logrus.FieldLogger) {
	userID := int64(*msg.Reconnect)
	c.bind(userID)

	gameID, err := h.registry.FindSessionOf(userID, false)
	if err != nil {
		log.WithField("userId", userID).Debug("unknown user")
		h.reply(c, Outbound{NoSession: 1}, log)
		return
	}
	s, err := h.registry.Get(gameID)
	if err != nil {
		h.reply(c, Outbound{NoSession: 1}, log)
		return
	}

	log.WithFields(logrus.Fields{
		"userId": userID,
		"gameId": gameID,
	}).Info("user back in session")

	// the other player regenerates from the session seed too
	h.Broadcast(gameID, userID, Outbound{Seed: s.Seed})
	h.reply(c, Outbound{GameID: gameID, Seed: s.Seed}, log)
}

func (h *Hub) disconnect(c *client, msg Inbound, log logrus.FieldLogger) {
	userID, ok := c.user()
	if !ok {
		userID = int64(*msg.Disconnect)
	}

	gameID, err := h.registry.FindSessionOf(userID, true)
	if err != nil {
		log.WithField("userId", userID).Debug("disconnect without session")
		return
	}

	log.WithFields(logrus.Fields{
		"userId": userID,
		"gameId": gameID,
	}).Info("user left session")

	h.record(Event{Kind: EventLeft, GameID: gameID, UserID: userID}, log)
}

// Broadcast sends payload to every live connection of gameID's participants
// except origin's and returns how many were reached. Delivery is best
// effort: a full outbox drops the message for that connection.
func (h *Hub) Broadcast(gameID, origin int64, payload Outbound) int {
	s, err := h.registry.Get(gameID)
	if err != nil {
		return 0
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		h.logger.WithError(err).Error("unable to marshal broadcast")
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.clients {
		userID, ok := c.user()
		if !ok || userID == origin || !slices.Contains(s.Participants, userID) {
			continue
		}
		if c.enqueue(buf) {
			delivered++
		} else {
			h.logger.WithFields(logrus.Fields{
				"conn":   c.id.String(),
				"gameId": gameID,
			}).Warn("outbox full, dropping message")
		}
	}
	return delivered
}

func (h *Hub) reply(c *client, payload Outbound, log logrus.FieldLogger) {
	buf, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Error("unable to marshal reply")
		return
	}
	if !c.enqueue(buf) {
		log.Warn("outbox full, dropping reply")
	}
}

// record queues e for the archive without waiting on it.
func (h *Hub) record(e Event, log logrus.FieldLogger) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	select {
	case h.events <- e:
	default:
		log.WithField("event", e.Kind).Warn("archive backlog full, dropping session event")
	}
}
