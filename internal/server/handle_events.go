package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// handleEvents streams table events as Server-Sent Events. The current state
// is sent first so late joiners can render straight away. When a game ends,
// its final state event precedes the finished event.
func handleEvents(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t := tableFrom(r)

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		ch := broker.Subscribe(t.Code)
		defer broker.Unsubscribe(t.Code, ch)

		state := t.State()
		data, _ := json.Marshal(Event{Type: EventState, State: &state})
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", EventState, data)
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case f := <-ch:
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Type, f.Data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
