package server

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/playperu/molkky/internal/molkky"
)

// nextEvent reads SSE lines until a complete event has arrived.
func nextEvent(t *testing.T, sc *bufio.Scanner) (string, Event) {
	t.Helper()

	var name string
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			var ev Event
			if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			return name, ev
		}
	}
	t.Fatalf("stream ended: %v", sc.Err())
	return "", Event{}
}

func TestEventsStream(t *testing.T) {
	deps := setupDeps(t, 4)
	srv := httptest.NewServer(NewHandler(slog.Default(), deps))
	defer srv.Close()

	table, err := deps.Tables.Create([]string{"Ana", "Bo"}, "")
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/tables/"+table.Code+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get events: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content-type = %q", got)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)

	name, ev := nextEvent(t, sc)
	if name != EventState || ev.State == nil || !ev.State.Active {
		t.Fatalf("expected initial state, got %s %+v", name, ev)
	}

	// Bo misses three times in a row.
	for _, s := range []molkky.Score{molkky.Points(3), molkky.Miss, molkky.Points(3), molkky.Miss, molkky.Points(3), molkky.Miss} {
		if _, err := table.Apply(ctx, Command{Op: OpThrow, Value: s}); err != nil {
			t.Fatalf("apply: %v", err)
		}
	}

	var last *molkky.Snapshot
	for {
		name, ev = nextEvent(t, sc)
		if name == EventFinished {
			break
		}
		last = ev.State
	}
	// The final board arrives before the results.
	if last == nil || last.Active || !last.Players[1].Eliminated {
		t.Fatalf("expected final state before results, got %+v", last)
	}
	if ev.Results == nil || len(ev.Results.Standings) != 1 || ev.Results.Standings[0].Name != "Ana" {
		t.Fatalf("unexpected results %+v", ev.Results)
	}
	if !strings.Contains(ev.Message, "1. Ana (9 points)") {
		t.Errorf("unexpected message %q", ev.Message)
	}
}
