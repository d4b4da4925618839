// Package console runs a game of Mölkky on a terminal, one command per line.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/playperu/molkky/internal/molkky"
)

const help = `commands:
  1..12                 points for the current player
  x                     miss
  u                     undo the last throw
  e <round> <player> <value>
                        correct a score (round and player count from 1)
  end                   end the game now
  q                     quit without results
`

var errUsage = errors.New("usage: e <round> <player> <value>")

// Console reads commands from in and draws the scoreboard to out.
type Console struct {
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger

	game     *molkky.Game
	finished *molkky.Results
}

func New(in io.Reader, out io.Writer, logger *slog.Logger) *Console {
	c := &Console{
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
	c.game = molkky.New(molkky.Hooks{
		OnFinish: func(r molkky.Results) { c.finished = &r },
	})
	return c
}

// Play runs one game for names until it finishes or the player quits. It
// returns nil results when the game was abandoned.
func (c *Console) Play(ctx context.Context, names []string) (*molkky.Results, error) {
	c.finished = nil
	if err := c.game.StartGame(names); err != nil {
		return nil, err
	}
	c.logger.Info("game started", "players", len(names))
	fmt.Fprint(c.out, help)

	for c.game.Active() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c.render()
		line, ok := c.prompt(c.turnPrompt())
		if !ok {
			return nil, c.in.Err()
		}

		quit, err := c.exec(line)
		if err != nil {
			fmt.Fprintf(c.out, "! %v\n", err)
			continue
		}
		if quit {
			c.logger.Info("game abandoned")
			return nil, nil
		}
	}

	c.render()
	fmt.Fprintln(c.out)
	fmt.Fprint(c.out, c.finished.Message())
	c.logger.Info("game finished", "standings", len(c.finished.Standings))
	return c.finished, nil
}

func (c *Console) exec(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "q", "quit":
		return true, nil
	case "h", "help", "?":
		fmt.Fprint(c.out, help)
	case "u", "undo":
		c.game.Undo()
		c.logger.Debug("undo")
	case "end":
		c.game.EndGame(molkky.ConfirmFunc(c.confirmEnd))
	case "e", "edit":
		return false, c.edit(fields[1:])
	default:
		s, err := molkky.ParseScore(fields[0])
		if err != nil {
			return false, err
		}
		player := c.game.CurrentPlayer()
		if err := c.game.Throw(s); err != nil {
			return false, err
		}
		c.logger.Debug("throw recorded", "player", player, "value", s.String())
	}
	return false, nil
}

func (c *Console) edit(args []string) error {
	if len(args) != 3 {
		return errUsage
	}
	round, err := strconv.Atoi(args[0])
	if err != nil {
		return errUsage
	}
	player, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}
	s, err := molkky.ParseScore(args[2])
	if err != nil {
		return err
	}
	if err := c.game.EditScore(player-1, round-1, s); err != nil {
		return err
	}
	c.logger.Debug("score edited", "player", player-1, "round", round-1, "value", s.String())
	return nil
}

func (c *Console) confirmEnd() bool {
	answer, ok := c.prompt("End the game now? [y/N] ")
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func (c *Console) prompt(p string) (string, bool) {
	fmt.Fprint(c.out, p)
	if !c.in.Scan() {
		return "", false
	}
	return c.in.Text(), true
}

func (c *Console) turnPrompt() string {
	s := c.game.State()
	return s.Players[s.CurrentPlayer].Name + "> "
}

// render draws the visible rounds of the scoreboard. The current player is
// marked with "*".
func (c *Console) render() {
	s := c.game.State()

	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "\t")
	for r := s.FirstVisibleRound; r < s.Rounds; r++ {
		fmt.Fprintf(tw, "%d\t", r+1)
	}
	fmt.Fprint(tw, "Total\t\n")

	for i, p := range s.Players {
		marker := " "
		if s.Active && i == s.CurrentPlayer {
			marker = "*"
		}
		fmt.Fprintf(tw, "%s %s\t", marker, p.Label)
		for _, v := range p.Scores[s.FirstVisibleRound:] {
			fmt.Fprintf(tw, "%s\t", v)
		}
		fmt.Fprintf(tw, "%d\t\n", p.Total)
	}
	tw.Flush()
}
