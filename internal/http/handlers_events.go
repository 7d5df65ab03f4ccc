package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const heartbeatInterval = 30 * time.Second

// sseEvent is the advisory payload of a change notification. It names what
// changed, never the new state; clients refetch whatever views they show.
type sseEvent struct {
	Table string `json:"table"`
	Op    string `json:"op"`
	ID    string `json:"id"`
}

// handleEvents streams the user's change events over server-sent events.
// Delivery is best-effort: a slow client misses bursts (the hub drops rather
// than blocks) and simply refetches on the next event it does receive.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request, userID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	sub := s.hub.Subscribe(userID)
	defer s.hub.Unsubscribe(sub)

	slog.DebugContext(r.Context(), "SSE subscriber connected", "user_id", userID)

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			slog.DebugContext(r.Context(), "SSE subscriber disconnected", "user_id", userID)
			return
		case ev, open := <-sub.Events:
			if !open {
				return
			}
			data, err := json.Marshal(sseEvent{Table: ev.Table, Op: ev.Action, ID: ev.EntityID})
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s:changed\ndata: %s\n\n", ev.Table, data)
			flusher.Flush()
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}
