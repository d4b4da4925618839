package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/molkky/internal/handler/health"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	tables := deps.Tables
	broker := deps.Broker

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Mölkky API", "/openapi.json", "/docs"))
	r.Mount("/healthz", health.NewHandler(logger, deps.Checks).Routes())

	r.Post("/api/tables", handleCreateTable(logger, tables))

	// Table routes: {code} resolved by tableMiddleware.
	r.Route("/api/tables/{code}", func(r chi.Router) {
		r.Use(tableMiddleware(tables))
		r.Get("/", handleTableState())
		r.Get("/results", handleTableResults())
		r.Get("/events", handleEvents(broker))
		r.Get("/ws", handleWS(logger, broker))

		// Scorekeeper routes: pin checked when the table has one.
		r.Group(func(r chi.Router) {
			r.Use(scorekeeperMiddleware)
			r.Post("/throws", handleThrow(logger))
			r.Put("/scores/{round}/{player}", handleEdit(logger))
			r.Post("/undo", handleUndo(logger))
			r.Post("/end", handleEnd(logger))
			r.Post("/restart", handleRestart(logger))
		})
	})

	if deps.Results != nil {
		r.Get("/api/results", handleListResults(logger, deps.Results))
		r.Get("/api/results/{id}", handleGetResult(logger, deps.Results))
	}

	if deps.SPADir != "" {
		if info, err := os.Stat(deps.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", deps.SPADir)
			r.NotFound(handleSPA(deps.SPADir))
		}
	}
}
