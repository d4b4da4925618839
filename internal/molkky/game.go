package molkky

// Game is one scoring session. It is not safe for concurrent use; callers
// feed it one event at a time.
type Game struct {
	players   []Player
	current   int
	active    bool
	winners   []Placement
	nextPlace int
	finishing bool
	hooks     Hooks
}

func New(hooks Hooks) *Game {
	return &Game{hooks: hooks, nextPlace: 1}
}

// StartGame throws away any previous session and seats names in the given
// order. Blank names become "Player n".
func (g *Game) StartGame(names []string) error {
	if len(names) < MinPlayers || len(names) > MaxPlayers {
		return ErrPlayerCount
	}

	players := make([]Player, len(names))
	for i, name := range names {
		players[i] = Player{
			Name:   normalizeName(name, i),
			Color:  ColorFor(i),
			Scores: []Score{},
		}
	}

	g.players = players
	g.current = 0
	g.active = true
	g.winners = nil
	g.nextPlace = 1
	g.finishing = false

	g.changed()
	return nil
}

func (g *Game) Active() bool { return g.active }

func (g *Game) CurrentPlayer() int { return g.current }

// Players returns a deep copy of the seated players.
func (g *Game) Players() []Player {
	out := make([]Player, len(g.players))
	for i, p := range g.players {
		p.Scores = append([]Score(nil), p.Scores...)
		out[i] = p
	}
	return out
}

// Winners returns placements in the order they were handed out.
func (g *Game) Winners() []Placement {
	return append([]Placement(nil), g.winners...)
}

// Throw records s for the player whose turn it is.
func (g *Game) Throw(s Score) error {
	return g.RecordScore(g.current, s)
}

// RecordScore writes s into the current round for playerIndex, who must be
// the current player, and passes the turn on.
func (g *Game) RecordScore(playerIndex int, s Score) error {
	if !g.active {
		return nil
	}
	if !s.Valid() {
		return ErrInvalidScore
	}
	if playerIndex < 0 || playerIndex >= len(g.players) {
		return ErrPlayerIndex
	}
	if playerIndex != g.current {
		return ErrOutOfTurn
	}

	// After an undo trims an open round, the last round is complete and the
	// thrower's slot in it is taken; the throw then belongs to a fresh round.
	// Otherwise it goes into the last round, even over an edited slot.
	round := g.lastRound()
	if round < 0 || (g.slotPlayed(playerIndex, round) && g.roundComplete(round)) {
		round++
	}
	for i := range g.players {
		for len(g.players[i].Scores) <= round {
			g.players[i].Scores = append(g.players[i].Scores, Pending)
		}
	}
	g.players[playerIndex].Scores[round] = s

	g.recompute()
	g.nextTurn()
	g.changed()
	return nil
}

// EditScore overwrites an existing slot. The turn does not move and no round
// is opened.
func (g *Game) EditScore(playerIndex, round int, s Score) error {
	if !g.active {
		return nil
	}
	if !s.Valid() {
		return ErrInvalidScore
	}
	if playerIndex < 0 || playerIndex >= len(g.players) {
		return ErrPlayerIndex
	}
	if round < 0 || round >= len(g.players[playerIndex].Scores) {
		return ErrRoundIndex
	}

	g.players[playerIndex].Scores[round] = s

	g.recompute()
	g.changed()
	return nil
}

// Undo clears the most recently entered throw and hands the turn back to
// whoever made it.
func (g *Game) Undo() {
	if !g.active {
		return
	}

	found := false
	for ri := g.lastRound(); ri >= 0 && !found; ri-- {
		for pi := len(g.players) - 1; pi >= 0; pi-- {
			scores := g.players[pi].Scores
			if ri < len(scores) && scores[ri].Played() {
				scores[ri] = Pending
				g.current = pi
				found = true
				break
			}
		}
	}
	if !found {
		return
	}

	g.trimRounds()
	g.recompute()
	g.changed()
}

// EndGame stops the game by hand once c agrees. Everyone not yet placed is
// ranked after the existing placements in seating order.
func (g *Game) EndGame(c Confirmer) bool {
	if !g.active {
		return false
	}
	if c != nil && !c.ConfirmEnd() {
		return false
	}

	for i, p := range g.players {
		if !g.isWinner(i) {
			g.place(i, p)
		}
	}
	g.finish()
	g.changed()
	return true
}

// recompute rebuilds every derived field from the score history.
func (g *Game) recompute() {
	for i := range g.players {
		p := &g.players[i]
		p.Total = 0
		p.Eliminated = false

		streak := 0
		for _, s := range p.Scores {
			switch s.Kind {
			case KindMiss:
				streak++
				if streak >= MissLimit {
					p.Eliminated = true
				}
			case KindPoints:
				streak = 0
				p.Total += s.Points
				if p.Total > WinningTotal {
					p.Total = BustTotal
				}
			}
		}

		if p.Total >= WinningTotal && !g.isWinner(i) {
			g.place(i, *p)
		}
	}

	active := g.activePlayers()
	if len(active) == 1 && g.active {
		last := active[0]
		g.place(last, g.players[last])
		g.finish()
	}
}

func (g *Game) nextTurn() {
	if !g.active || len(g.players) == 0 {
		return
	}

	next := g.current
	for tries := 0; tries < 2*len(g.players); tries++ {
		next = (next + 1) % len(g.players)
		if g.isActive(next) {
			break
		}
	}
	g.current = next

	active := g.activePlayers()
	if len(active) == 0 {
		return
	}
	if round := g.lastRound(); round < 0 || !g.roundComplete(round) {
		return
	}

	for i := range g.players {
		g.players[i].Scores = append(g.players[i].Scores, Pending)
	}
	g.current = active[0]
}

// roundComplete reports whether every active player has played round.
func (g *Game) roundComplete(round int) bool {
	for _, i := range g.activePlayers() {
		if !g.slotPlayed(i, round) {
			return false
		}
	}
	return true
}

func (g *Game) slotPlayed(player, round int) bool {
	scores := g.players[player].Scores
	return round < len(scores) && scores[round].Played()
}

// trimRounds drops trailing rounds nobody has played.
func (g *Game) trimRounds() {
	for round := g.lastRound(); round >= 0; round-- {
		for _, p := range g.players {
			if round < len(p.Scores) && p.Scores[round].Played() {
				return
			}
		}
		for i := range g.players {
			if round < len(g.players[i].Scores) {
				g.players[i].Scores = g.players[i].Scores[:round]
			}
		}
	}
}

// lastRound is the highest round index any player has, or -1.
func (g *Game) lastRound() int {
	last := -1
	for _, p := range g.players {
		if len(p.Scores)-1 > last {
			last = len(p.Scores) - 1
		}
	}
	return last
}

func (g *Game) activePlayers() []int {
	var active []int
	for i := range g.players {
		if g.isActive(i) {
			active = append(active, i)
		}
	}
	return active
}

func (g *Game) isActive(i int) bool {
	return !g.players[i].Eliminated && !g.isWinner(i)
}

func (g *Game) isWinner(i int) bool {
	for _, w := range g.winners {
		if w.PlayerIndex == i {
			return true
		}
	}
	return false
}

func (g *Game) place(i int, p Player) {
	g.winners = append(g.winners, Placement{
		PlayerIndex: i,
		Name:        p.Name,
		Total:       p.Total,
		Place:       g.nextPlace,
	})
	g.nextPlace++
}

// finish stops the game. OnFinish is delivered by the next changed call so
// observers see the final state before the results.
func (g *Game) finish() {
	g.active = false
	g.finishing = true
}

func (g *Game) changed() {
	if g.hooks.OnChange != nil {
		g.hooks.OnChange(g.State())
	}
	if g.finishing {
		g.finishing = false
		if g.hooks.OnFinish != nil {
			g.hooks.OnFinish(g.FinalResults())
		}
	}
}
