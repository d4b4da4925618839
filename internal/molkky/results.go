package molkky

import (
	"fmt"
	"slices"
	"strings"
)

// VisibleRounds is how many of the latest rounds a scoreboard shows.
const VisibleRounds = 5

// Results are the placements of a game ordered by place.
type Results struct {
	Standings []Placement `json:"standings"`
}

// Lines renders one "place. name (total points)" line per placement.
func (r Results) Lines() []string {
	lines := make([]string, len(r.Standings))
	for i, p := range r.Standings {
		lines[i] = fmt.Sprintf("%d. %s (%d points)", p.Place, p.Name, p.Total)
	}
	return lines
}

func (r Results) Message() string {
	var b strings.Builder
	b.WriteString("Game Over!\n\nFinal Results:\n")
	for _, line := range r.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// FinalResults returns the placements sorted by place. It does not change
// the game.
func (g *Game) FinalResults() Results {
	standings := g.Winners()
	slices.SortStableFunc(standings, func(a, b Placement) int {
		return a.Place - b.Place
	})
	return Results{Standings: standings}
}

// PlayerView is a player as a scoreboard renders it.
type PlayerView struct {
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	Color      string   `json:"color"`
	Scores     []string `json:"scores"`
	Total      int      `json:"total"`
	Eliminated bool     `json:"eliminated"`
	Place      int      `json:"place,omitempty"`
}

// Snapshot is the read-only state handed to presentation layers.
type Snapshot struct {
	Players           []PlayerView `json:"players"`
	CurrentPlayer     int          `json:"currentPlayer"`
	Active            bool         `json:"active"`
	Rounds            int          `json:"rounds"`
	FirstVisibleRound int          `json:"firstVisibleRound"`
	Winners           []Placement  `json:"winners"`
}

func (g *Game) State() Snapshot {
	rounds := g.lastRound() + 1

	views := make([]PlayerView, len(g.players))
	for i, p := range g.players {
		scores := make([]string, rounds)
		for r := range scores {
			if r < len(p.Scores) {
				scores[r] = p.Scores[r].String()
			} else {
				scores[r] = Pending.String()
			}
		}

		v := PlayerView{
			Name:       p.Name,
			Label:      p.Name,
			Color:      p.Color,
			Scores:     scores,
			Total:      p.Total,
			Eliminated: p.Eliminated,
		}
		for _, w := range g.winners {
			if w.PlayerIndex == i {
				v.Place = w.Place
			}
		}
		switch {
		case p.Eliminated:
			v.Label = p.Name + " (Out)"
		case v.Place > 0:
			v.Label = fmt.Sprintf("%s (%d.)", p.Name, v.Place)
		}
		views[i] = v
	}

	winners := g.Winners()
	if winners == nil {
		winners = []Placement{}
	}

	return Snapshot{
		Players:           views,
		CurrentPlayer:     g.current,
		Active:            g.active,
		Rounds:            rounds,
		FirstVisibleRound: max(rounds-VisibleRounds, 0),
		Winners:           winners,
	}
}
