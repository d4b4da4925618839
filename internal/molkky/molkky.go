// Package molkky implements the scoring and turn-progression rules of a
// Mölkky-style game: players race to exactly 50 points, going over 50 drops
// the total back to 25, and three misses in a row eliminate a player.
// The package has no dependencies outside the standard library.
package molkky

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinPlayers = 2
	MaxPlayers = 8

	// WinningTotal is the exact total a player has to reach.
	WinningTotal = 50
	// BustTotal is what a total above WinningTotal is reset to.
	BustTotal = 25
	// MissLimit consecutive misses eliminate a player.
	MissLimit = 3
)

// Palette is assigned to players by setup position, wrapping around.
var Palette = []string{
	"#e6194b", "#3cb44b", "#f032e6", "#ffe119",
	"#4363d8", "#f58231", "#911eb4", "#46f0f0",
}

var (
	ErrPlayerCount = fmt.Errorf("a game needs %d to %d players", MinPlayers, MaxPlayers)
	ErrPlayerIndex = errors.New("player index out of range")
	ErrRoundIndex  = errors.New("round index out of range")
	ErrOutOfTurn   = errors.New("not this player's turn")
)

// Player is one participant. Total and Eliminated are derived from Scores.
type Player struct {
	Name       string  `json:"name"`
	Color      string  `json:"color"`
	Scores     []Score `json:"scores"`
	Total      int     `json:"total"`
	Eliminated bool    `json:"eliminated"`
}

// Placement records a player finishing. Places are handed out in the order
// players qualify.
type Placement struct {
	PlayerIndex int    `json:"playerIndex"`
	Name        string `json:"name"`
	Total       int    `json:"total"`
	Place       int    `json:"place"`
}

// Confirmer is asked before a game is ended by hand.
type Confirmer interface {
	ConfirmEnd() bool
}

// ConfirmFunc adapts a plain function to Confirmer.
type ConfirmFunc func() bool

func (f ConfirmFunc) ConfirmEnd() bool { return f() }

// Hooks lets a presentation layer observe a Game. Both callbacks are optional.
type Hooks struct {
	// OnChange receives the state after every operation that changed it.
	OnChange func(Snapshot)
	// OnFinish fires once per game, when it ends for any reason, right after
	// the OnChange of the operation that ended it.
	OnFinish func(Results)
}

// ColorFor returns the palette colour of the player at setup position i.
func ColorFor(i int) string {
	return Palette[i%len(Palette)]
}

// DefaultName is used for players entered without a name.
func DefaultName(i int) string {
	return fmt.Sprintf("Player %d", i+1)
}

func normalizeName(name string, i int) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName(i)
	}
	return name
}
