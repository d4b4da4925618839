package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/playperu/molkky/internal/molkky"
)

// MaxNameLength is the longest player name a scoreboard column fits.
const MaxNameLength = 8

type CreateTableRequest struct {
	Names   []string `json:"names"`
	Shuffle bool     `json:"shuffle,omitempty"`
	Pin     string   `json:"pin,omitempty"`
}

type TableResponse struct {
	Code      string          `json:"code"`
	Locked    bool            `json:"locked"`
	CreatedAt string          `json:"createdAt"`
	State     molkky.Snapshot `json:"state"`
}

func tableResponse(t *Table, s molkky.Snapshot) TableResponse {
	return TableResponse{
		Code:      t.Code,
		Locked:    t.pinHash != nil,
		CreatedAt: t.CreatedAt().UTC().Format(time.RFC3339),
		State:     s,
	}
}

func handleCreateTable(logger *slog.Logger, tables *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTableRequest
		if err := readJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		names := make([]string, len(req.Names))
		for i, n := range req.Names {
			names[i] = strings.TrimSpace(n)
			if utf8.RuneCountInString(names[i]) > MaxNameLength {
				writeError(w, http.StatusBadRequest, "player names are limited to 8 characters")
				return
			}
		}
		if req.Shuffle {
			names = molkky.Shuffle(names, nil)
		}

		t, err := tables.Create(names, req.Pin)
		switch {
		case errors.Is(err, molkky.ErrPlayerCount):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, ErrTooManyTables):
			writeError(w, http.StatusServiceUnavailable, err.Error())
			return
		case err != nil:
			logger.Error("creating table failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, tableResponse(t, t.State()))
	}
}

func handleTableState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := tableFrom(r)
		writeJSON(w, http.StatusOK, tableResponse(t, t.State()))
	}
}

type ResultsResponse struct {
	Final     bool               `json:"final"`
	Standings []molkky.Placement `json:"standings"`
	Lines     []string           `json:"lines"`
	Message   string             `json:"message,omitempty"`
}

func handleTableResults() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := tableFrom(r)
		res, final := t.Results()

		resp := ResultsResponse{
			Final:     final,
			Standings: res.Standings,
			Lines:     res.Lines(),
		}
		if resp.Final {
			resp.Message = res.Message()
		}
		if resp.Standings == nil {
			resp.Standings = []molkky.Placement{}
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
