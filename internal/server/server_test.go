package server

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/playperu/molkky/internal/database"
	"github.com/playperu/molkky/internal/handler/health"
	"github.com/playperu/molkky/internal/migrations"
	"github.com/playperu/molkky/internal/molkky"
)

func setupStore(t *testing.T) *SQLiteStore {
	t.Helper()

	db, err := database.Open(context.Background(), database.MemoryPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewSQLiteStore(db)
}

func setupDeps(t *testing.T, limit int) Deps {
	t.Helper()

	store := setupStore(t)
	broker := NewBroker()
	tables := NewRegistry(limit, broker, store, slog.Default())
	return Deps{
		Tables:  tables,
		Broker:  broker,
		Results: store,
		Checks:  map[string]health.Checker{"sqlite": store, "tables": tables},
	}
}

func doRequest(t *testing.T, h http.Handler, method, path string, body any, pin string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if pin != "" {
		req.Header.Set(PinHeader, pin)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func createTable(t *testing.T, h http.Handler, req CreateTableRequest) TableResponse {
	t.Helper()

	w := doRequest(t, h, http.MethodPost, "/api/tables", req, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("create table: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp TableResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode table: %v", err)
	}
	return resp
}

func throw(t *testing.T, h http.Handler, code, value string) TableResponse {
	t.Helper()

	w := doRequest(t, h, http.MethodPost, "/api/tables/"+code+"/throws", map[string]string{"value": value}, "")
	if w.Code != http.StatusOK {
		t.Fatalf("throw %s: expected 200, got %d: %s", value, w.Code, w.Body.String())
	}
	var resp TableResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return resp.Error
}

func TestHealthz(t *testing.T) {
	h := NewHandler(slog.Default(), setupDeps(t, 4))

	w := doRequest(t, h, http.MethodGet, "/healthz", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body map[string]struct{ Status string }
	json.NewDecoder(w.Body).Decode(&body)
	if body["sqlite"].Status != "ok" || body["tables"].Status != "ok" {
		t.Errorf("unexpected health body: %+v", body)
	}
}

func mustScore(t *testing.T, v string) molkky.Score {
	t.Helper()

	s, err := molkky.ParseScore(v)
	if err != nil {
		t.Fatalf("parse score %q: %v", v, err)
	}
	return s
}
