package peer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-duo/internal/mines"
	"github.com/vancomm/minesweeper-duo/internal/relay"
	"github.com/vancomm/minesweeper-duo/internal/session"
)

const testToken = "10251985"

func newRelay(t *testing.T) string {
	t.Helper()

	logger, _ := test.NewNullLogger()
	hub := relay.NewHub(logger, session.NewRegistry(), relay.Options{Token: testToken})
	t.Cleanup(hub.Close)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		hub.Serve(r.Context(), conn)
	}))
	t.Cleanup(server.Close)

	return "ws" + strings.TrimPrefix(server.URL, "http")
}

type testPeer struct {
	*Peer
	events chan Event
}

func startPeer(t *testing.T, url string, opts Options) *testPeer {
	t.Helper()

	events := make(chan Event, 64)
	opts.Token = testToken
	opts.OnEvent = func(e Event) { events <- e }

	logger, _ := test.NewNullLogger()
	p, err := Dial(context.Background(), url, logger, opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go p.Run(ctx)

	t.Cleanup(func() {
		cancel()
		p.Close()
	})
	return &testPeer{p, events}
}

// waitFor returns the next event of the given kind, skipping others.
func (tp *testPeer) waitFor(t *testing.T, kind EventKind) Event {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-tp.events:
			if e.Kind == kind {
				return e
			}
		case <-timeout:
			t.Fatalf("no %s event", kind)
			return Event{}
		}
	}
}

// findCell returns the first square of the beginner board for seed that
// matches want.
func findCell(t *testing.T, seed int64, want func(mines.Square) bool) mines.Pos {
	t.Helper()
	board, err := mines.GenerateBoard(mines.Beginner, mines.NewXorShift(seed))
	require.NoError(t, err)
	for line := range board.Lines {
		for col := range board.Cols {
			p := mines.Pos{Line: line, Col: col}
			if want(board.At(p)) {
				return p
			}
		}
	}
	t.Fatal("no matching square")
	return mines.Pos{}
}

func numbered(s mines.Square) bool { return !s.Mined && s.Adjacent > 0 }

func pair(t *testing.T) (a, b *testPeer) {
	t.Helper()
	url := newRelay(t)
	a = startPeer(t, url, Options{UserID: 1, Seed: 42})
	b = startPeer(t, url, Options{UserID: 2, Seed: 99})

	require.NoError(t, a.Create())
	gameID := a.waitFor(t, EventSession).GameID
	require.Positive(t, gameID)
	assert.Equal(t, gameID, a.GameID())

	require.NoError(t, b.Join(gameID))
	seeded := b.waitFor(t, EventSeed)
	require.Equal(t, int64(42), seeded.Seed)
	return a, b
}

func TestJoinSharesBoard(t *testing.T) {
	a, b := pair(t)
	assert.Equal(t, a.Seed(), b.Seed())
	assert.Equal(t, mines.NotStarted, b.Phase())
}

func TestRevealIsReplayed(t *testing.T) {
	a, b := pair(t)
	pos := findCell(t, 42, numbered)

	t0 := time.Now()
	_, err := a.Press(pos, mines.Primary, t0)
	require.NoError(t, err)
	action, deltas, err := a.Release(pos, mines.Primary, t0.Add(50*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, mines.ActionReveal, action)
	assert.Len(t, deltas, 1)

	e := b.waitFor(t, EventRemote)
	assert.Equal(t, pos, e.Pos)
	assert.Equal(t, mines.ActionReveal, e.Action)
	assert.Equal(t, mines.Revealed, b.Cell(pos))
	assert.Equal(t, mines.InProgress, b.Phase())
}

func TestLongPressIsReplayedAsMark(t *testing.T) {
	a, b := pair(t)
	pos := findCell(t, 42, numbered)

	t0 := time.Now()
	_, err := a.Press(pos, mines.Primary, t0)
	require.NoError(t, err)
	action, _, err := a.Release(pos, mines.Primary, t0.Add(300*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, mines.ActionMark, action)
	assert.Equal(t, mines.Flagged, a.Cell(pos))

	e := b.waitFor(t, EventRemote)
	assert.Equal(t, mines.ActionMark, e.Action)
	assert.Equal(t, mines.Flagged, b.Cell(pos))
}

func TestSecondaryPressIsReplayed(t *testing.T) {
	a, b := pair(t)
	pos := mines.Pos{Line: 7, Col: 7}

	_, err := b.Press(pos, mines.Secondary, time.Now())
	require.NoError(t, err)
	assert.Equal(t, mines.NotStarted, b.Phase())

	a.waitFor(t, EventRemote)
	assert.Equal(t, mines.Flagged, a.Cell(pos))
	assert.Equal(t, 1, a.State().FlaggedCount)
	assert.Equal(t, mines.NotStarted, a.Phase())
}

func TestRegenerateSharesSeed(t *testing.T) {
	a, b := pair(t)

	seed, err := a.Regenerate(1234)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), seed)

	e := b.waitFor(t, EventSeed)
	assert.Equal(t, int64(1234), e.Seed)
	assert.Equal(t, int64(1234), b.Seed())
}

func TestRegenerateOutsideSession(t *testing.T) {
	url := newRelay(t)
	p := startPeer(t, url, Options{UserID: 1, Seed: 42})

	seed, err := p.Regenerate(0)
	require.NoError(t, err)
	assert.Positive(t, seed)
	assert.Equal(t, seed, p.Seed())
}

func TestReconnectWithoutSession(t *testing.T) {
	url := newRelay(t)
	p := startPeer(t, url, Options{UserID: 5})

	require.NoError(t, p.Reconnect())
	p.waitFor(t, EventNoSession)
	assert.Zero(t, p.GameID())
}

func TestReconnectRestoresSession(t *testing.T) {
	a, _ := pair(t)
	gameID := a.GameID()

	require.NoError(t, a.Reconnect())
	e := a.waitFor(t, EventSession)
	assert.Equal(t, gameID, e.GameID)
	assert.Equal(t, int64(42), a.waitFor(t, EventSeed).Seed)
}

func TestJoinUnknownGame(t *testing.T) {
	url := newRelay(t)
	p := startPeer(t, url, Options{UserID: 1})

	require.NoError(t, p.Join(999))
	e := p.waitFor(t, EventError)
	assert.Equal(t, "game not found", e.Err)
	assert.Zero(t, p.GameID())
}

func TestClockStopsOnLoss(t *testing.T) {
	url := newRelay(t)
	p := startPeer(t, url, Options{UserID: 1, Seed: 42, TickInterval: 5 * time.Millisecond})

	safe := findCell(t, 42, numbered)
	mine := findCell(t, 42, func(s mines.Square) bool { return s.Mined })

	t0 := time.Now()
	_, err := p.Press(safe, mines.Primary, t0)
	require.NoError(t, err)
	_, _, err = p.Release(safe, mines.Primary, t0)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return p.State().ElapsedTime > 0
	}, 2*time.Second, 5*time.Millisecond)

	_, err = p.Press(mine, mines.Primary, t0)
	require.NoError(t, err)
	_, _, err = p.Release(mine, mines.Primary, t0)
	require.NoError(t, err)
	require.Equal(t, mines.Lost, p.Phase())

	elapsed := p.State().ElapsedTime
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, elapsed, p.State().ElapsedTime)
}

func TestRunStopsWithContext(t *testing.T) {
	url := newRelay(t)
	logger, _ := test.NewNullLogger()
	p, err := Dial(context.Background(), url, logger, Options{UserID: 1})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}
