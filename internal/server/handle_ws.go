package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

type wsError struct {
	Type  string `json:"type"`
	Op    string `json:"op,omitempty"`
	Error string `json:"error"`
}

// handleWS upgrades to a WebSocket that carries commands from the client and
// table events back. Without the table pin the socket is read-only.
func handleWS(logger *slog.Logger, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := tableFrom(r)
		pin := r.Header.Get(PinHeader)
		if pin == "" {
			pin = r.URL.Query().Get("pin")
		}
		canWrite := t.Authorized(pin)

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 6*time.Hour)
		defer cancel()

		ch := broker.Subscribe(t.Code)
		defer broker.Unsubscribe(t.Code, ch)

		state := t.State()
		if err := wsjson.Write(ctx, conn, Event{Type: EventState, State: &state}); err != nil {
			logger.Debug("websocket write failed", "error", err)
			return
		}

		go func() {
			defer cancel()
			for {
				select {
				case <-ctx.Done():
					return
				case f := <-ch:
					if err := conn.Write(ctx, websocket.MessageText, f.Data); err != nil {
						logger.Debug("websocket write failed", "error", err)
						return
					}
				}
			}
		}()

		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				var ce websocket.CloseError
				if !errors.As(err, &ce) {
					logger.Debug("websocket read ended", "error", err)
				}
				return
			}

			var cmd Command
			if err := json.Unmarshal(data, &cmd); err != nil {
				wsjson.Write(ctx, conn, wsError{Type: "error", Error: "invalid command"})
				continue
			}

			if !canWrite {
				wsjson.Write(ctx, conn, wsError{Type: "error", Op: cmd.Op, Error: "missing or wrong table pin"})
				continue
			}
			// Successful commands reach the client through the broker.
			if _, err := t.Apply(ctx, cmd); err != nil {
				_, msg := commandError(err)
				wsjson.Write(ctx, conn, wsError{Type: "error", Op: cmd.Op, Error: msg})
			}
		}
	}
}
