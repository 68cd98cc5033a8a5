package storage

import (
	"context"
	"database/sql"
	"fmt"

	// registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS started_matches (
		match_id   TEXT PRIMARY KEY,
		seed       INTEGER NOT NULL,
		time       INTEGER NOT NULL,
		initiator  TEXT NOT NULL,
		other      TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		UNIQUE (seed, time)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		match_id     TEXT PRIMARY KEY,
		seed         INTEGER NOT NULL,
		time         INTEGER NOT NULL,
		player1      TEXT NOT NULL,
		player2      TEXT NOT NULL,
		winner       TEXT,
		result       TEXT NOT NULL,
		points_p1    INTEGER NOT NULL,
		points_p2    INTEGER NOT NULL,
		started_at   INTEGER NOT NULL,
		completed_at INTEGER NOT NULL,
		UNIQUE (seed, time)
	)`,
	`CREATE TABLE IF NOT EXISTS moves (
		match_id   TEXT NOT NULL REFERENCES matches (match_id),
		player_id  TEXT NOT NULL,
		number     INTEGER NOT NULL,
		x          INTEGER NOT NULL,
		seq        INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (match_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_player1 ON matches (player1)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_player2 ON matches (player2)`,
}

type SQLiteStorage struct {
	Connection *sql.DB
}

func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("can't open database: %w", err)
	}

	if err = conn.Ping(); err != nil {
		return nil, fmt.Errorf("can't connect to database: %w", err)
	}

	if _, err = conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("can't enable WAL mode: %w", err)
	}

	return &SQLiteStorage{Connection: conn}, nil
}

// Init - creates the tables unless they exist.
func (that *SQLiteStorage) Init(ctx context.Context) error {
	for _, query := range migrations {
		if _, err := that.Connection.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("can't create table: %w", err)
		}
	}

	return nil
}

func (that *SQLiteStorage) Close() error {
	if err := that.Connection.Close(); err != nil {
		return fmt.Errorf("can't close database: %w", err)
	}

	return nil
}
