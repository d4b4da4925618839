package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

const (
	defaultResultsLimit = 20
	maxResultsLimit     = 200
)

func handleListResults(logger *slog.Logger, results ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultResultsLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive number")
				return
			}
			limit = min(n, maxResultsLimit)
		}

		games, err := results.ListResults(r.Context(), limit)
		if err != nil {
			logger.Error("listing results failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if games == nil {
			games = []ArchivedGame{}
		}
		writeJSON(w, http.StatusOK, games)
	}
}

func handleGetResult(logger *slog.Logger, results ResultStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id must be a number")
			return
		}

		game, err := results.GetResult(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "result not found")
			return
		}
		if err != nil {
			logger.Error("loading result failed", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, game)
	}
}
