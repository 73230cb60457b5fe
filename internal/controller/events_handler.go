package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// handleSessionEvents отдаёт события сессии как server-sent events
func (s *Server) handleSessionEvents(w http.ResponseWriter, r *http.Request) {
	if s.subscriber == nil {
		writeError(w, http.StatusServiceUnavailable, "events_unavailable")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming_unsupported")
		return
	}

	session := sessionFromContext(r.Context())
	ctx := r.Context()

	sub, err := s.subscriber.Subscribe(ctx, session.Profile.ID)
	if err != nil {
		s.logger.Error("Failed to subscribe to session events",
			zap.String("profile_id", session.Profile.ID.String()),
			zap.Error(err),
		)
		writeError(w, http.StatusServiceUnavailable, "events_unavailable")
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(s.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
