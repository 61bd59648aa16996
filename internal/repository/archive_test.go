package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-duo/internal/database"
	"github.com/vancomm/minesweeper-duo/internal/relay"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("MINES_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("MINES_TEST_DATABASE_URL not set")
	}
	pool, _, err := database.ConnectAndMigrate(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestArchiveRecordsSession(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	archive := NewArchive(pool)

	gameID := time.Now().UnixNano()
	at := time.Now().UTC().Truncate(time.Millisecond)
	events := []relay.Event{
		{Kind: relay.EventCreated, GameID: gameID, UserID: 1, Seed: 7, At: at},
		{Kind: relay.EventJoined, GameID: gameID, UserID: 2, Seed: 7, At: at.Add(time.Second)},
		{Kind: relay.EventReseeded, GameID: gameID, UserID: 2, Seed: 1234, At: at.Add(2 * time.Second)},
		{Kind: relay.EventLeft, GameID: gameID, UserID: 1, At: at.Add(3 * time.Second)},
	}
	for _, e := range events {
		require.NoError(t, archive.Record(ctx, e))
	}

	q := New(pool)
	match, err := q.FetchMatch(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), match.Seed)
	assert.Equal(t, int64(1), match.CreatedBy)

	stored, err := q.ListMatchEvents(ctx, gameID)
	require.NoError(t, err)
	require.Len(t, stored, len(events))
	for i, e := range events {
		assert.Equal(t, string(e.Kind), stored[i].Kind)
		assert.Equal(t, e.UserID, stored[i].UserId)
	}
	assert.Nil(t, stored[1].Seed)
	require.NotNil(t, stored[2].Seed)
	assert.Equal(t, int64(1234), *stored[2].Seed)
}

func TestCreateMatchTwice(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	q := New(pool)

	params := CreateMatchParams{MatchId: time.Now().UnixNano(), Seed: 7, CreatedBy: 1, At: time.Now()}
	_, err := q.CreateMatch(ctx, params)
	require.NoError(t, err)

	_, err = q.CreateMatch(ctx, params)
	assert.ErrorIs(t, err, ErrMatchExists)
}

func TestFetchMissingMatch(t *testing.T) {
	pool := testPool(t)
	_, err := New(pool).FetchMatch(context.Background(), -1)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestReseedMissingMatch(t *testing.T) {
	pool := testPool(t)
	err := New(pool).UpdateMatchSeed(context.Background(), -1, 5, time.Now())
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestWithTxRollback(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	matchId := time.Now().UnixNano()
	_, err = New(pool).WithTx(tx).CreateMatch(ctx, CreateMatchParams{
		MatchId: matchId, Seed: 7, CreatedBy: 1, At: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback(ctx))

	_, err = New(pool).FetchMatch(ctx, matchId)
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestMigrateTwice(t *testing.T) {
	testPool(t)
	schema, err := database.Migrate(os.Getenv("MINES_TEST_DATABASE_URL"))
	require.NoError(t, err)
	assert.Equal(t, uint(1), schema.Version)
	assert.False(t, schema.Dirty)
}
