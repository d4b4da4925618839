package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/playperu/molkky/internal/molkky"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) SaveResults(ctx context.Context, table string, r molkky.Results) error {
	standings, err := json.Marshal(r.Standings)
	if err != nil {
		return fmt.Errorf("encoding standings: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO results (table_code, players, standings)
		VALUES (?, ?, ?)
	`, table, len(r.Standings), string(standings))
	return err
}

func (s *SQLiteStore) ListResults(ctx context.Context, limit int) ([]ArchivedGame, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, table_code, finished_at, players, standings
		FROM results
		ORDER BY finished_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []ArchivedGame
	for rows.Next() {
		g, err := scanArchivedGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *SQLiteStore) GetResult(ctx context.Context, id int64) (ArchivedGame, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, table_code, finished_at, players, standings
		FROM results
		WHERE id = ?
	`, id)
	g, err := scanArchivedGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return g, ErrNotFound
	}
	return g, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanArchivedGame(sc scanner) (ArchivedGame, error) {
	var (
		g         ArchivedGame
		standings string
	)
	if err := sc.Scan(&g.ID, &g.Table, &g.FinishedAt, &g.Players, &standings); err != nil {
		return g, err
	}
	if err := json.Unmarshal([]byte(standings), &g.Standings); err != nil {
		return g, fmt.Errorf("decoding standings of result %d: %w", g.ID, err)
	}
	return g, nil
}

// Check lets the store double as a health check.
func (s *SQLiteStore) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
