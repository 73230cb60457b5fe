package controller

import (
	"net/http"

	"github.com/google/uuid"
)

type createNotificationRequest struct {
	ProfileID uuid.UUID `json:"profile_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"

	list, err := s.svc.Notifications.List(r.Context(), session.Profile.ID, unreadOnly)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notifications": list})
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	count, err := s.svc.Notifications.UnreadCount(r.Context(), session.Profile.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (s *Server) handleCreateNotification(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := decodeJSON(r, &req); err != nil || req.ProfileID == uuid.Nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	session := sessionFromContext(r.Context())
	n, err := s.svc.Notifications.Create(r.Context(), session.Profile.ID, req.ProfileID, req.Title, req.Message, req.Type)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	session := sessionFromContext(r.Context())
	if err := s.svc.Notifications.MarkRead(r.Context(), session.Profile.ID, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())

	count, err := s.svc.Notifications.MarkAllRead(r.Context(), session.Profile.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": count})
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	session := sessionFromContext(r.Context())
	if err := s.svc.Notifications.Delete(r.Context(), session.Profile.ID, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
