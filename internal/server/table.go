package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/playperu/molkky/internal/molkky"
)

const (
	OpThrow   = "throw"
	OpEdit    = "edit"
	OpUndo    = "undo"
	OpEnd     = "end"
	OpRestart = "restart"
)

var (
	ErrGameOver     = errors.New("game is not active")
	ErrNotConfirmed = errors.New("ending the game was not confirmed")
	ErrUnknownOp    = errors.New("unknown command")
)

// Command is one scorekeeper action. REST handlers build it from the route,
// the WebSocket channel decodes it from the client.
type Command struct {
	Op      string       `json:"op"`
	Player  *int         `json:"player,omitempty"`
	Round   int          `json:"round,omitempty"`
	Value   molkky.Score `json:"value"`
	Confirm bool         `json:"confirm,omitempty"`
}

// Table hosts one game. Commands are applied one at a time under mu so the
// engine only ever sees a single event in flight.
type Table struct {
	Code string

	mu        sync.Mutex
	game      *molkky.Game
	names     []string
	pinHash   []byte
	createdAt time.Time
	touchedAt time.Time
	finished  *molkky.Results

	broker  *Broker
	results ResultStore
	logger  *slog.Logger
}

func newTable(code string, pinHash []byte, broker *Broker, results ResultStore, logger *slog.Logger) *Table {
	now := time.Now()
	t := &Table{
		Code:      code,
		pinHash:   pinHash,
		createdAt: now,
		touchedAt: now,
		broker:    broker,
		results:   results,
		logger:    logger.With("table", code),
	}
	t.game = molkky.New(molkky.Hooks{
		OnChange: t.publishState,
		OnFinish: t.onFinish,
	})
	return t
}

func hashPin(pin string) ([]byte, error) {
	if pin == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing pin: %w", err)
	}
	return hash, nil
}

// Start seats a new game on the table.
func (t *Table) Start(names []string) (molkky.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.game.StartGame(names); err != nil {
		return molkky.Snapshot{}, err
	}
	t.names = slices.Clone(names)
	t.touchedAt = time.Now()
	t.logger.Info("game started", "players", len(names))
	return t.game.State(), nil
}

// Apply runs cmd against the game and returns the resulting state. When the
// command finishes the game, the standings are archived before returning.
func (t *Table) Apply(ctx context.Context, cmd Command) (molkky.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cmd.Op != OpRestart && !t.game.Active() {
		return t.game.State(), ErrGameOver
	}

	var err error
	switch cmd.Op {
	case OpThrow:
		player := t.game.CurrentPlayer()
		if cmd.Player != nil {
			player = *cmd.Player
		}
		err = t.game.RecordScore(player, cmd.Value)
		if err == nil {
			t.logger.Debug("throw recorded", "player", player, "value", cmd.Value.String())
		}
	case OpEdit:
		if cmd.Player == nil {
			err = molkky.ErrPlayerIndex
			break
		}
		err = t.game.EditScore(*cmd.Player, cmd.Round, cmd.Value)
		if err == nil {
			t.logger.Info("score edited", "player", *cmd.Player, "round", cmd.Round, "value", cmd.Value.String())
		}
	case OpUndo:
		t.game.Undo()
	case OpEnd:
		confirm := molkky.ConfirmFunc(func() bool { return cmd.Confirm })
		if !t.game.EndGame(confirm) {
			err = ErrNotConfirmed
		}
	case OpRestart:
		err = t.game.StartGame(t.names)
		if err == nil {
			t.logger.Info("game restarted", "players", len(t.names))
		}
	default:
		err = fmt.Errorf("%q: %w", cmd.Op, ErrUnknownOp)
	}
	t.touchedAt = time.Now()

	if t.finished != nil {
		t.archive(ctx, *t.finished)
		t.finished = nil
	}
	return t.game.State(), err
}

// State returns the current snapshot.
func (t *Table) State() molkky.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.State()
}

// Results returns the standings so far, sorted by place, and whether they
// are final.
func (t *Table) Results() (molkky.Results, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.FinalResults(), !t.game.Active()
}

// Active reports whether the table's game is still running.
func (t *Table) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.game.Active()
}

// Authorized reports whether pin unlocks the table. Tables without a pin
// accept anything.
func (t *Table) Authorized(pin string) bool {
	if t.pinHash == nil {
		return true
	}
	return bcrypt.CompareHashAndPassword(t.pinHash, []byte(pin)) == nil
}

// CreatedAt is when the table was opened.
func (t *Table) CreatedAt() time.Time { return t.createdAt }

func (t *Table) lastTouched() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.touchedAt
}

func (t *Table) publishState(s molkky.Snapshot) {
	t.broker.Publish(t.Code, Event{Type: EventState, State: &s})
}

func (t *Table) onFinish(r molkky.Results) {
	t.finished = &r
	t.logger.Info("game finished", "standings", len(r.Standings))
	t.broker.Publish(t.Code, Event{Type: EventFinished, Results: &r, Message: r.Message()})
}

func (t *Table) archive(ctx context.Context, r molkky.Results) {
	if t.results == nil {
		return
	}
	if err := t.results.SaveResults(ctx, t.Code, r); err != nil {
		t.logger.Error("archiving results failed", "error", err)
	}
}
