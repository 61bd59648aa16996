package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vancomm/minesweeper-duo/internal/relay"
)

// Archive keeps the history of relay sessions. It implements
// relay.Recorder.
type Archive struct {
	pool    *pgxpool.Pool
	queries *Queries
}

func NewArchive(pool *pgxpool.Pool) *Archive {
	return &Archive{pool: pool, queries: New(pool)}
}

func (a *Archive) Record(ctx context.Context, e relay.Event) error {
	return pgx.BeginFunc(ctx, a.pool, func(tx pgx.Tx) error {
		q := a.queries.WithTx(tx)

		var seed *int64
		switch e.Kind {
		case relay.EventCreated:
			seed = &e.Seed
			if _, err := q.CreateMatch(ctx, CreateMatchParams{
				MatchId:   e.GameID,
				Seed:      e.Seed,
				CreatedBy: e.UserID,
				At:        e.At,
			}); err != nil {
				return err
			}
		case relay.EventReseeded:
			seed = &e.Seed
			if err := q.UpdateMatchSeed(ctx, e.GameID, e.Seed, e.At); err != nil {
				return err
			}
		}

		if _, err := q.AddMatchEvent(ctx, AddMatchEventParams{
			MatchId: e.GameID,
			Kind:    string(e.Kind),
			UserId:  e.UserID,
			Seed:    seed,
			At:      e.At,
		}); err != nil {
			return fmt.Errorf("unable to add %s event: %w", e.Kind, err)
		}
		return nil
	})
}
