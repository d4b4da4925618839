package server

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/playperu/molkky/internal/molkky"
)

var ErrTooManyTables = errors.New("too many tables in play")

const (
	codeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength = 6
)

// Registry holds the open tables by code. When full, the least recently
// used finished table makes room for a new one.
type Registry struct {
	mu     sync.RWMutex
	tables map[string]*Table
	limit  int

	broker  *Broker
	results ResultStore
	logger  *slog.Logger
}

func NewRegistry(limit int, broker *Broker, results ResultStore, logger *slog.Logger) *Registry {
	return &Registry{
		tables:  make(map[string]*Table),
		limit:   limit,
		broker:  broker,
		results: results,
		logger:  logger,
	}
}

func (r *Registry) Get(code string) (*Table, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tables[code]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

// Create opens a table under a fresh code and starts a game for names. An
// empty pin leaves the table unlocked.
func (r *Registry) Create(names []string, pin string) (*Table, error) {
	if len(names) < molkky.MinPlayers || len(names) > molkky.MaxPlayers {
		return nil, molkky.ErrPlayerCount
	}
	pinHash, err := hashPin(pin)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.tables) >= r.limit && !r.evictLocked() {
		return nil, ErrTooManyTables
	}

	code := generateCode(codeLength)
	for r.tables[code] != nil {
		code = generateCode(codeLength)
	}

	t := newTable(code, pinHash, r.broker, r.results, r.logger)
	if _, err := t.Start(names); err != nil {
		return nil, err
	}
	r.tables[code] = t
	return t, nil
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// evictLocked drops the finished table that was touched longest ago.
func (r *Registry) evictLocked() bool {
	var (
		oldest     string
		oldestTime time.Time
	)
	for code, t := range r.tables {
		if t.Active() {
			continue
		}
		if touched := t.lastTouched(); oldest == "" || touched.Before(oldestTime) {
			oldest, oldestTime = code, touched
		}
	}
	if oldest == "" {
		return false
	}
	delete(r.tables, oldest)
	r.logger.Info("table evicted", "table", oldest)
	return true
}

func generateCode(n int) string {
	b := make([]byte, n)
	alphabet := big.NewInt(int64(len(codeChars)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = codeChars[idx.Int64()]
	}
	return string(b)
}

// Check reports whether a new table could be opened right now.
func (r *Registry) Check(_ context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.tables) < r.limit {
		return nil
	}
	for _, t := range r.tables {
		if !t.Active() {
			return nil
		}
	}
	return fmt.Errorf("%d of %d: %w", len(r.tables), r.limit, ErrTooManyTables)
}
