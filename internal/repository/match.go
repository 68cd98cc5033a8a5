package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
)

var (
	ErrMatchNotFound      = fmt.Errorf("match %w", apperror.ErrNotFound)
	ErrMatchAlreadyExists = fmt.Errorf("match %w", apperror.ErrAlreadyExists)
)

type MatchRepository interface {
	SaveStarted(ctx context.Context, match *entity.StartedMatch) error
	GetStarted(ctx context.Context, seed, time uint64) (*entity.StartedMatch, error)
	SaveResult(ctx context.Context, result *entity.MatchResult) error
	GetResult(ctx context.Context, matchID uuid.UUID) (*entity.MatchResult, error)
	LeaderBoard(ctx context.Context, limit int) ([]entity.Standing, error)
}

type dbMatch struct {
	conn *sql.DB
}

func NewMatchRepository(conn *sql.DB) MatchRepository {
	return &dbMatch{
		conn: conn,
	}
}

func (that *dbMatch) SaveStarted(ctx context.Context, match *entity.StartedMatch) error {
	query := `INSERT INTO started_matches (match_id, seed, time, initiator, other, created_at) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := that.conn.ExecContext(ctx, query,
		match.ID, int64(match.Seed), int64(match.Time), match.Initiator, match.Other, match.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("can't save started match: %w", err)
	}

	return nil
}

func (that *dbMatch) GetStarted(ctx context.Context, seed, ts uint64) (*entity.StartedMatch, error) {
	query := `SELECT match_id, seed, time, initiator, other, created_at FROM started_matches WHERE seed = ? AND time = ?`

	var (
		match     entity.StartedMatch
		s, t      int64
		createdAt int64
	)

	err := that.conn.QueryRowContext(ctx, query, int64(seed), int64(ts)).
		Scan(&match.ID, &s, &t, &match.Initiator, &match.Other, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("can't get started match: %w", err)
	}

	match.Seed, match.Time = uint64(s), uint64(t)
	match.CreatedAt = time.UnixMilli(createdAt).UTC()

	return &match, nil
}

// SaveResult - stores a finished match and its moves. A match is stored once.
func (that *dbMatch) SaveResult(ctx context.Context, result *entity.MatchResult) error {
	tx, err := that.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("can't begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing int
	if err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM matches WHERE match_id = ? OR (seed = ? AND time = ?)`,
		result.MatchID, int64(result.Seed), int64(result.Time),
	).Scan(&existing); err != nil {
		return fmt.Errorf("can't check match: %w", err)
	}

	if existing > 0 {
		return ErrMatchAlreadyExists
	}

	var winner any
	if result.Winner != uuid.Nil {
		winner = result.Winner
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO matches
		(match_id, seed, time, player1, player2, winner, result, points_p1, points_p2, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.MatchID, int64(result.Seed), int64(result.Time), result.Player1, result.Player2, winner,
		result.Result, result.PointsP1, result.PointsP2, result.StartedAt.UnixMilli(), result.CompletedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("can't save match: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO moves (match_id, player_id, number, x, seq, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("can't prepare move insert: %w", err)
	}
	defer stmt.Close()

	for _, move := range result.Moves {
		if _, err = stmt.ExecContext(ctx,
			result.MatchID, move.PlayerID, move.Number, move.Column, move.Seq, int64(move.Timestamp),
		); err != nil {
			return fmt.Errorf("can't save move %d: %w", move.Seq, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("can't commit match: %w", err)
	}

	return nil
}

func (that *dbMatch) GetResult(ctx context.Context, matchID uuid.UUID) (*entity.MatchResult, error) {
	query := `SELECT match_id, seed, time, player1, player2, winner, result, points_p1, points_p2, started_at, completed_at
		FROM matches WHERE match_id = ?`

	var (
		result                 entity.MatchResult
		winner                 uuid.NullUUID
		seed, ts               int64
		startedAt, completedAt int64
	)

	err := that.conn.QueryRowContext(ctx, query, matchID).Scan(
		&result.MatchID, &seed, &ts, &result.Player1, &result.Player2, &winner,
		&result.Result, &result.PointsP1, &result.PointsP2, &startedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("can't get match: %w", err)
	}

	result.Seed, result.Time = uint64(seed), uint64(ts)
	result.Winner = winner.UUID
	result.StartedAt = time.UnixMilli(startedAt).UTC()
	result.CompletedAt = time.UnixMilli(completedAt).UTC()

	rows, err := that.conn.QueryContext(ctx,
		`SELECT player_id, number, x, seq, created_at FROM moves WHERE match_id = ? ORDER BY seq`, matchID)
	if err != nil {
		return nil, fmt.Errorf("can't get moves: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			move      entity.Move
			createdAt int64
		)

		if err = rows.Scan(&move.PlayerID, &move.Number, &move.Column, &move.Seq, &createdAt); err != nil {
			return nil, fmt.Errorf("can't scan move: %w", err)
		}

		move.Timestamp = uint64(createdAt)
		result.Moves = append(result.Moves, move)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read moves: %w", err)
	}

	return &result, nil
}

// LeaderBoard - totals per player over finished matches, best first: by points, then wins, then games.
func (that *dbMatch) LeaderBoard(ctx context.Context, limit int) ([]entity.Standing, error) {
	query := `SELECT player_id, SUM(points) AS total_points, COUNT(*) AS total_games,
			SUM(CASE WHEN winner = player_id THEN 1 ELSE 0 END) AS total_wins
		FROM (
			SELECT player1 AS player_id, points_p1 AS points, winner FROM matches
			UNION ALL
			SELECT player2 AS player_id, points_p2 AS points, winner FROM matches
		)
		GROUP BY player_id
		ORDER BY total_points DESC, total_wins DESC, total_games DESC, player_id
		LIMIT ?`

	rows, err := that.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("can't get leaderboard: %w", err)
	}
	defer rows.Close()

	standings := make([]entity.Standing, 0, limit)

	for rows.Next() {
		var (
			standing            entity.Standing
			points, games, wins int64
		)

		if err = rows.Scan(&standing.PlayerID, &points, &games, &wins); err != nil {
			return nil, fmt.Errorf("can't scan standing: %w", err)
		}

		standing.TotalPoints, standing.TotalGames, standing.TotalWins = uint64(points), uint64(games), uint64(wins)
		standings = append(standings, standing)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("can't read leaderboard: %w", err)
	}

	return standings, nil
}
