package peer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-duo/internal/mines"
	"github.com/vancomm/minesweeper-duo/internal/relay"
)

type Options struct {
	UserID     int64
	Token      string
	Difficulty mines.Difficulty
	// Seed of the first board; <= 0 draws one.
	Seed         int64
	TickInterval time.Duration
	Dialer       *websocket.Dialer
	// OnEvent is called from the Run goroutine after each inbound message
	// has been applied.
	OnEvent func(Event)
}

// Peer is one player connected to the relay. It owns a local game and
// replays the other participant's actions on it, so both boards stay in
// step.
type Peer struct {
	conn *websocket.Conn
	log  logrus.FieldLogger
	opts Options

	writeMu sync.Mutex

	mu     sync.Mutex
	game   *mines.Game
	gameID int64
	clock  *clock
}

func Dial(ctx context.Context, url string, logger logrus.FieldLogger, opts Options) (*Peer, error) {
	if opts.Difficulty == 0 {
		opts.Difficulty = mines.Beginner
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	game, err := mines.Generate(opts.Difficulty, opts.Seed)
	if err != nil {
		return nil, err
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to dial relay: %w", err)
	}

	return &Peer{
		conn: conn,
		log:  logger.WithField("userId", opts.UserID),
		opts: opts,
		game: game,
	}, nil
}

func (p *Peer) send(msg relay.Inbound) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("unable to send message: %w", err)
	}
	return nil
}

func (p *Peer) token() *relay.Token {
	return relay.TokenPtr(p.opts.Token)
}

// Create opens a session seeded with the current board's seed.
func (p *Peer) Create() error {
	p.mu.Lock()
	seed := p.game.Seed
	p.mu.Unlock()

	return p.send(relay.Inbound{
		Create: relay.IDPtr(p.opts.UserID),
		Seed:   relay.IDPtr(seed),
		Token:  p.token(),
	})
}

func (p *Peer) Join(gameID int64) error {
	p.mu.Lock()
	p.gameID = gameID
	p.mu.Unlock()

	return p.send(relay.Inbound{
		Join:   relay.IDPtr(p.opts.UserID),
		GameID: relay.IDPtr(gameID),
		Token:  p.token(),
	})
}

// Reconnect asks the relay to put this user back in its previous session.
func (p *Peer) Reconnect() error {
	return p.send(relay.Inbound{
		Reconnect: relay.IDPtr(p.opts.UserID),
		Token:     p.token(),
	})
}

func (p *Peer) Disconnect() error {
	p.mu.Lock()
	p.gameID = 0
	p.mu.Unlock()

	return p.send(relay.Inbound{
		Disconnect: relay.IDPtr(p.opts.UserID),
		Token:      p.token(),
	})
}

// Regenerate replaces the local board with one built from seed (drawn when
// <= 0) and, when in a session, hands the seed to the other participant.
func (p *Peer) Regenerate(seed int64) (int64, error) {
	p.mu.Lock()
	if err := p.reset(seed); err != nil {
		p.mu.Unlock()
		return 0, err
	}
	seed, inSession := p.game.Seed, p.gameID != 0
	p.mu.Unlock()

	if !inSession {
		return seed, nil
	}
	return seed, p.send(relay.Inbound{
		NewSeed: relay.IDPtr(seed),
		Token:   p.token(),
	})
}

// reset must be called with mu held.
func (p *Peer) reset(seed int64) error {
	game, err := mines.Generate(p.opts.Difficulty, seed)
	if err != nil {
		return err
	}
	p.stopClock()
	p.game = game
	return nil
}

// Press applies a local button press. Secondary presses are mirrored to the
// session right away.
func (p *Peer) Press(pos mines.Pos, b mines.Button, at time.Time) ([]mines.Delta, error) {
	p.mu.Lock()
	deltas := p.game.Press(pos, b, at)
	p.afterMove()
	gameID := p.gameID
	p.mu.Unlock()

	if b != mines.Secondary || len(deltas) == 0 || gameID == 0 {
		return deltas, nil
	}
	return deltas, p.sendAction(gameID, relay.Action{Secondary: pos.Ref()})
}

// Release applies a local button release and mirrors the resolved action.
// A long press resolves to a mark and travels as a secondary action, so the
// other participant replays a mark too.
func (p *Peer) Release(pos mines.Pos, b mines.Button, at time.Time) (mines.Action, []mines.Delta, error) {
	p.mu.Lock()
	action, deltas := p.game.Release(pos, b, at)
	p.afterMove()
	gameID := p.gameID
	p.mu.Unlock()

	if gameID == 0 {
		return action, deltas, nil
	}
	var err error
	switch action {
	case mines.ActionReveal:
		err = p.sendAction(gameID, relay.Action{Down: pos.Ref()})
	case mines.ActionMark:
		err = p.sendAction(gameID, relay.Action{Secondary: pos.Ref()})
	}
	return action, deltas, err
}

func (p *Peer) sendAction(gameID int64, action relay.Action) error {
	return p.send(relay.Inbound{
		GameID: relay.IDPtr(gameID),
		UserID: relay.IDPtr(p.opts.UserID),
		Action: &action,
	})
}

// afterMove must be called with mu held.
func (p *Peer) afterMove() {
	if p.game.State.Terminated {
		p.stopClock()
		return
	}
	p.startClock()
}

func (p *Peer) GameID() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gameID
}

func (p *Peer) Seed() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.game.Seed
}

func (p *Peer) Phase() mines.Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.game.Phase()
}

func (p *Peer) Cell(pos mines.Pos) mines.VisualState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.game.Cell(pos)
}

func (p *Peer) State() mines.GameState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.game.State
}

func (p *Peer) Close() error {
	p.mu.Lock()
	p.stopClock()
	p.mu.Unlock()

	p.writeMu.Lock()
	p.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	p.writeMu.Unlock()
	return p.conn.Close()
}
