package server

import (
	"context"
	"errors"

	"github.com/playperu/molkky/internal/molkky"
)

var ErrNotFound = errors.New("not found")

// ArchivedGame is one finished game in the results archive.
type ArchivedGame struct {
	ID         int64              `json:"id"`
	Table      string             `json:"table"`
	FinishedAt string             `json:"finishedAt"`
	Players    int                `json:"players"`
	Standings  []molkky.Placement `json:"standings"`
}

// ResultStore keeps the standings of finished games. It never holds a game
// in progress.
type ResultStore interface {
	SaveResults(ctx context.Context, table string, r molkky.Results) error
	ListResults(ctx context.Context, limit int) ([]ArchivedGame, error)
	GetResult(ctx context.Context, id int64) (ArchivedGame, error)
}
