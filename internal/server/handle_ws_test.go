package server

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/molkky/internal/molkky"
)

type wsMessage struct {
	Type    string           `json:"type"`
	Op      string           `json:"op"`
	State   *molkky.Snapshot `json:"state"`
	Message string           `json:"message"`
	Error   string           `json:"error"`
}

func dialTable(t *testing.T, ctx context.Context, srv *httptest.Server, code, query string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/tables/" + code + "/ws" + query
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.CloseNow() })
	return conn
}

func readMessage(t *testing.T, ctx context.Context, conn *websocket.Conn) wsMessage {
	t.Helper()

	var msg wsMessage
	if err := wsjson.Read(ctx, conn, &msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWSCommands(t *testing.T) {
	deps := setupDeps(t, 4)
	srv := httptest.NewServer(NewHandler(slog.Default(), deps))
	defer srv.Close()

	table, err := deps.Tables.Create([]string{"Ana", "Bo"}, "77")
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialTable(t, ctx, srv, table.Code, "?pin=77")

	first := readMessage(t, ctx, conn)
	if first.Type != EventState || first.State == nil || !first.State.Active {
		t.Fatalf("expected initial active state, got %+v", first)
	}

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"op":"throw","value":"6"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	next := readMessage(t, ctx, conn)
	if next.Type != EventState || next.State == nil {
		t.Fatalf("expected state event, got %+v", next)
	}
	if next.State.Players[0].Total != 6 || next.State.CurrentPlayer != 1 {
		t.Errorf("unexpected state after throw: %+v", next.State)
	}

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"op":"throw","value":"13"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	// "13" fails to decode as a score.
	bad := readMessage(t, ctx, conn)
	if bad.Type != "error" {
		t.Fatalf("expected error message, got %+v", bad)
	}

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"op":"throw","player":0,"value":"2"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	outOfTurn := readMessage(t, ctx, conn)
	if outOfTurn.Type != "error" || outOfTurn.Op != OpThrow || outOfTurn.Error != molkky.ErrOutOfTurn.Error() {
		t.Fatalf("expected out of turn error, got %+v", outOfTurn)
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}

func TestWSReadOnlyWithoutPin(t *testing.T) {
	deps := setupDeps(t, 4)
	srv := httptest.NewServer(NewHandler(slog.Default(), deps))
	defer srv.Close()

	table, err := deps.Tables.Create([]string{"Ana", "Bo"}, "77")
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialTable(t, ctx, srv, table.Code, "")
	readMessage(t, ctx, conn)

	if err := conn.Write(ctx, websocket.MessageText, []byte(`{"op":"undo"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := readMessage(t, ctx, conn)
	if msg.Type != "error" || msg.Op != OpUndo {
		t.Fatalf("expected pin error, got %+v", msg)
	}

	// Spectators still see what the scorekeeper does.
	if _, err := table.Apply(ctx, Command{Op: OpThrow, Value: molkky.Points(4)}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	update := readMessage(t, ctx, conn)
	if update.Type != EventState || update.State.Players[0].Total != 4 {
		t.Fatalf("expected broadcast state, got %+v", update)
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}
