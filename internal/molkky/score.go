package molkky

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind tells a placeholder apart from a recorded throw.
type Kind uint8

const (
	KindPending Kind = iota
	KindMiss
	KindPoints
)

// MaxPoints is the highest value a single throw can score.
const MaxPoints = 12

// Score is one slot in a player's round sequence.
type Score struct {
	Kind   Kind
	Points int
}

var (
	// Pending marks a round slot that has not been played yet.
	Pending = Score{Kind: KindPending}
	// Miss is a throw that knocked no pins over.
	Miss = Score{Kind: KindMiss}
)

var ErrInvalidScore = errors.New("score must be a miss or 1..12 points")

// Points returns a numeric throw. It does not validate the range; Valid does.
func Points(n int) Score {
	return Score{Kind: KindPoints, Points: n}
}

// Played reports whether the slot holds a recorded throw.
func (s Score) Played() bool {
	return s.Kind != KindPending
}

// Valid reports whether s may be entered by a player.
func (s Score) Valid() bool {
	switch s.Kind {
	case KindMiss:
		return true
	case KindPoints:
		return s.Points >= 1 && s.Points <= MaxPoints
	}
	return false
}

func (s Score) String() string {
	switch s.Kind {
	case KindMiss:
		return "X"
	case KindPoints:
		return strconv.Itoa(s.Points)
	}
	return "-"
}

// ParseScore accepts "1".."12", "x" or "miss" (any case).
func ParseScore(v string) (Score, error) {
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "x", "miss":
		return Miss, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return Score{}, fmt.Errorf("%q: %w", v, ErrInvalidScore)
	}
	s := Points(n)
	if !s.Valid() {
		return Score{}, fmt.Errorf("%q: %w", v, ErrInvalidScore)
	}
	return s, nil
}

func (s Score) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Score) UnmarshalText(b []byte) error {
	if string(b) == "-" {
		*s = Pending
		return nil
	}
	v, err := ParseScore(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
