package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/Freeeeeet/studio_manager/internal/service"
)

type registerRequest struct {
	DisplayName string `json:"display_name"`
}

type registerResponse struct {
	Session *service.Session `json:"session"`
	Created bool             `json:"created"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing_token")
		return
	}

	var req registerRequest
	// тело необязательное
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	session, created, err := s.svc.Sessions.Register(r.Context(), token, req.DisplayName)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, registerResponse{Session: session, Created: created})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFromContext(r.Context()))
}

func (s *Server) handleRefreshSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.svc.Sessions.Refresh(r.Context(), tokenFromContext(r.Context()))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}
