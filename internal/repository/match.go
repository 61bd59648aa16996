package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrMatchExists   = errors.New("match already exists")
	ErrMatchNotFound = errors.New("match not found")
)

type Match struct {
	MatchId   int64
	Seed      int64
	CreatedBy int64
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type MatchEvent struct {
	MatchEventId int64
	MatchId      int64
	Kind         string
	UserId       int64
	Seed         *int64
	At           pgtype.Timestamptz
}

type CreateMatchParams struct {
	MatchId   int64
	Seed      int64
	CreatedBy int64
	At        time.Time
}

func (q *Queries) CreateMatch(ctx context.Context, params CreateMatchParams) (*Match, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO match (match_id, seed, created_by, created_at, updated_at)
		VALUES (@match_id, @seed, @created_by, @at, @at)
		RETURNING *;`,
		pgx.NamedArgs{
			"match_id":   params.MatchId,
			"seed":       params.Seed,
			"created_by": params.CreatedBy,
			"at":         params.At,
		},
	)
	match, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Match])
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
		return nil, fmt.Errorf("match %d: %w", params.MatchId, ErrMatchExists)
	}
	return match, err
}

func (q *Queries) UpdateMatchSeed(ctx context.Context, matchId, seed int64, at time.Time) error {
	tag, err := q.db.Exec(
		ctx,
		"UPDATE match SET seed = $2, updated_at = $3 WHERE match_id = $1",
		matchId, seed, at,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("match %d: %w", matchId, ErrMatchNotFound)
	}
	return nil
}

func (q *Queries) FetchMatch(ctx context.Context, matchId int64) (*Match, error) {
	rows, _ := q.db.Query(ctx, "SELECT * FROM match WHERE match_id = $1", matchId)
	match, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Match])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("match %d: %w", matchId, ErrMatchNotFound)
	}
	return match, err
}

type AddMatchEventParams struct {
	MatchId int64
	Kind    string
	UserId  int64
	Seed    *int64
	At      time.Time
}

func (q *Queries) AddMatchEvent(ctx context.Context, params AddMatchEventParams) (*MatchEvent, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO match_event (match_id, kind, user_id, seed, at)
		VALUES (@match_id, @kind, @user_id, @seed, @at)
		RETURNING *;`,
		pgx.NamedArgs{
			"match_id": params.MatchId,
			"kind":     params.Kind,
			"user_id":  params.UserId,
			"seed":     params.Seed,
			"at":       params.At,
		},
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[MatchEvent])
}

func (q *Queries) ListMatchEvents(ctx context.Context, matchId int64) ([]MatchEvent, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM match_event WHERE match_id = $1 ORDER BY at, match_event_id",
		matchId,
	)
	return pgx.CollectRows(rows, pgx.RowToStructByName[MatchEvent])
}
