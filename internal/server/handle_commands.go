package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/molkky/internal/molkky"
)

type ThrowRequest struct {
	// Player defaults to whoever's turn it is.
	Player *int         `json:"player,omitempty"`
	Value  molkky.Score `json:"value"`
}

type EditRequest struct {
	Value molkky.Score `json:"value"`
}

type EndRequest struct {
	Confirm bool `json:"confirm"`
}

func handleThrow(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ThrowRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		applyCommand(w, r, logger, Command{Op: OpThrow, Player: req.Player, Value: req.Value})
	}
}

func handleEdit(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		round, err := strconv.Atoi(chi.URLParam(r, "round"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "round must be a number")
			return
		}
		player, err := strconv.Atoi(chi.URLParam(r, "player"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "player must be a number")
			return
		}

		var req EditRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		applyCommand(w, r, logger, Command{Op: OpEdit, Player: &player, Round: round, Value: req.Value})
	}
}

func handleUndo(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applyCommand(w, r, logger, Command{Op: OpUndo})
	}
}

func handleEnd(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req EndRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		applyCommand(w, r, logger, Command{Op: OpEnd, Confirm: req.Confirm})
	}
}

func handleRestart(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		applyCommand(w, r, logger, Command{Op: OpRestart})
	}
}

func applyCommand(w http.ResponseWriter, r *http.Request, logger *slog.Logger, cmd Command) {
	t := tableFrom(r)

	state, err := t.Apply(r.Context(), cmd)
	if err != nil {
		status, msg := commandError(err)
		if status == http.StatusInternalServerError {
			logger.Error("command failed", "table", t.Code, "op", cmd.Op, "error", err)
		}
		writeError(w, status, msg)
		return
	}
	writeJSON(w, http.StatusOK, tableResponse(t, state))
}

// commandError maps engine and table errors to an HTTP status.
func commandError(err error) (int, string) {
	switch {
	case errors.Is(err, molkky.ErrInvalidScore),
		errors.Is(err, molkky.ErrPlayerIndex),
		errors.Is(err, molkky.ErrRoundIndex),
		errors.Is(err, molkky.ErrPlayerCount),
		errors.Is(err, ErrUnknownOp):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, molkky.ErrOutOfTurn),
		errors.Is(err, ErrGameOver),
		errors.Is(err, ErrNotConfirmed):
		return http.StatusConflict, err.Error()
	}
	return http.StatusInternalServerError, "internal error"
}
