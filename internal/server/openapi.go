package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse documents the per-dependency status map of /healthz.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

type tablePath struct {
	Code string `path:"code"`
}

type pinnedTablePath struct {
	Code string `path:"code"`
	Pin  string `header:"X-Table-Pin"`
}

type throwInput struct {
	pinnedTablePath
	ThrowRequest
}

type editInput struct {
	pinnedTablePath
	Round  int `path:"round"`
	Player int `path:"player"`
	EditRequest
}

type endInput struct {
	pinnedTablePath
	EndRequest
}

type resultsQuery struct {
	Limit int `query:"limit"`
}

type resultPath struct {
	ID int64 `path:"id"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Mölkky API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Score tables for Mölkky games. Reach exactly 50, go over and drop to 25, miss three times in a row and you are out.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/tables
	createTable, _ := r.NewOperationContext(http.MethodPost, "/api/tables")
	createTable.SetSummary("Open a table")
	createTable.SetDescription("Seats 2 to 8 players and starts a game. A pin locks the scorekeeper routes.")
	createTable.AddReqStructure(CreateTableRequest{})
	createTable.AddRespStructure(TableResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	createTable.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createTable.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(createTable)

	// GET /api/tables/{code}
	getTable, _ := r.NewOperationContext(http.MethodGet, "/api/tables/{code}")
	getTable.SetSummary("Get table state")
	getTable.SetDescription("Returns the scoreboard snapshot of a table.")
	getTable.AddReqStructure(tablePath{})
	getTable.AddRespStructure(TableResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getTable.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getTable)

	// POST /api/tables/{code}/throws
	postThrow, _ := r.NewOperationContext(http.MethodPost, "/api/tables/{code}/throws")
	postThrow.SetSummary("Record a throw")
	postThrow.SetDescription(`Records "X" (miss) or "1".."12" for the current player and passes the turn on.`)
	postThrow.AddReqStructure(throwInput{})
	postThrow.AddRespStructure(TableResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postThrow.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postThrow.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postThrow.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postThrow)

	// PUT /api/tables/{code}/scores/{round}/{player}
	putScore, _ := r.NewOperationContext(http.MethodPut, "/api/tables/{code}/scores/{round}/{player}")
	putScore.SetSummary("Correct a score")
	putScore.SetDescription("Overwrites an existing round slot. Round and player are zero-based. The turn does not move.")
	putScore.AddReqStructure(editInput{})
	putScore.AddRespStructure(TableResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	putScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	putScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	putScore.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(putScore)

	// POST /api/tables/{code}/undo
	postUndo, _ := r.NewOperationContext(http.MethodPost, "/api/tables/{code}/undo")
	postUndo.SetSummary("Undo last throw")
	postUndo.SetDescription("Clears the most recent throw and hands the turn back to its thrower.")
	postUndo.AddReqStructure(pinnedTablePath{})
	postUndo.AddRespStructure(TableResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postUndo.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postUndo.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postUndo)

	// POST /api/tables/{code}/end
	postEnd, _ := r.NewOperationContext(http.MethodPost, "/api/tables/{code}/end")
	postEnd.SetSummary("End the game")
	postEnd.SetDescription("Ends the game when confirm is true. Unplaced players are ranked in seating order.")
	postEnd.AddReqStructure(endInput{})
	postEnd.AddRespStructure(TableResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postEnd.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postEnd.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postEnd)

	// POST /api/tables/{code}/restart
	postRestart, _ := r.NewOperationContext(http.MethodPost, "/api/tables/{code}/restart")
	postRestart.SetSummary("Play again")
	postRestart.SetDescription("Starts a fresh game with the same players in the same order.")
	postRestart.AddReqStructure(pinnedTablePath{})
	postRestart.AddRespStructure(TableResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postRestart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postRestart)

	// GET /api/tables/{code}/results
	getResults, _ := r.NewOperationContext(http.MethodGet, "/api/tables/{code}/results")
	getResults.SetSummary("Standings")
	getResults.SetDescription("Returns placements sorted by place. Final is true once the game is over.")
	getResults.AddReqStructure(tablePath{})
	getResults.AddRespStructure(ResultsResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getResults.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getResults)

	// GET /api/tables/{code}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/tables/{code}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream of state and finished events for one table.")
	getEvents.AddReqStructure(tablePath{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/tables/{code}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/tables/{code}/ws")
	getWS.SetSummary("WebSocket channel")
	getWS.SetDescription("Streams the same events as /events and accepts scorekeeper commands when the pin matches.")
	getWS.AddReqStructure(tablePath{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	// GET /api/results
	listResults, _ := r.NewOperationContext(http.MethodGet, "/api/results")
	listResults.SetSummary("Finished games")
	listResults.SetDescription("Lists archived standings, newest first.")
	listResults.AddReqStructure(resultsQuery{})
	listResults.AddRespStructure([]ArchivedGame{}, openapi.WithHTTPStatus(http.StatusOK))
	listResults.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(listResults)

	// GET /api/results/{id}
	getResult, _ := r.NewOperationContext(http.MethodGet, "/api/results/{id}")
	getResult.SetSummary("Finished game")
	getResult.SetDescription("Returns one archived game.")
	getResult.AddReqStructure(resultPath{})
	getResult.AddRespStructure(ArchivedGame{}, openapi.WithHTTPStatus(http.StatusOK))
	getResult.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getResult)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
