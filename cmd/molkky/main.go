package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/playperu/molkky/internal/console"
	"github.com/playperu/molkky/internal/molkky"
)

const (
	playerFlag   = "player"
	shuffleFlag  = "shuffle"
	resultsFlag  = "results"
	logLevelFlag = "log-level"

	stdoutName = "-"
)

var version = "v0.1.0-dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newApp(os.Stdin, os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "molkky",
		Usage:     "Keep score of a Mölkky game in the terminal",
		Version:   version,
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "log level: debug, info, warn or error",
				Value: "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "play",
				Usage: "Play one game",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     playerFlag,
						Aliases:  []string{"p"},
						Usage:    "player name in throwing order, 2 to 8 times",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  shuffleFlag,
						Usage: "shuffle the throwing order",
					},
					&cli.StringFlag{
						Name:    resultsFlag,
						Aliases: []string{"o"},
						Usage:   "write the final standings as YAML to this path (- for stdout)",
					},
				},
				Action: play,
			},
		},
	}
}

func play(cCtx *cli.Context) error {
	logger, err := newLogger(cCtx.App.ErrWriter, cCtx.String(logLevelFlag))
	if err != nil {
		return err
	}

	names := cCtx.StringSlice(playerFlag)
	if cCtx.Bool(shuffleFlag) {
		names = molkky.Shuffle(names, nil)
	}

	c := console.New(cCtx.App.Reader, cCtx.App.Writer, logger)
	res, err := c.Play(cCtx.Context, names)
	if err != nil {
		return err
	}
	if res == nil || cCtx.String(resultsFlag) == "" {
		return nil
	}
	return exportResults(cCtx.String(resultsFlag), cCtx.App.Writer, names, *res)
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing --%s: %w", logLevelFlag, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l})), nil
}

type exportedGame struct {
	Played    string           `yaml:"played"`
	Players   []string         `yaml:"players"`
	Standings []exportedPlacer `yaml:"standings"`
}

type exportedPlacer struct {
	Place  int    `yaml:"place"`
	Name   string `yaml:"name"`
	Points int    `yaml:"points"`
}

func exportResults(path string, stdout io.Writer, names []string, res molkky.Results) error {
	game := exportedGame{
		Played:  time.Now().UTC().Format(time.RFC3339),
		Players: names,
	}
	for _, p := range res.Standings {
		game.Standings = append(game.Standings, exportedPlacer{Place: p.Place, Name: p.Name, Points: p.Total})
	}

	w := stdout
	if path != stdoutName {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating results file: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&game); err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	return nil
}
