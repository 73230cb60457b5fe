package controller

import (
	"net/http"
)

type noticeRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *Server) handleListNotices(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_limit")
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_offset")
		return
	}

	notices, err := s.svc.Notices.List(r.Context(), limit, offset)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"notices": notices})
}

func (s *Server) handleGetNotice(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	notice, err := s.svc.Notices.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

func (s *Server) handlePublishNotice(w http.ResponseWriter, r *http.Request) {
	var req noticeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	session := sessionFromContext(r.Context())
	notice, err := s.svc.Notices.Publish(r.Context(), session.Profile.ID, req.Title, req.Content)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, notice)
}

func (s *Server) handleUpdateNotice(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	var req noticeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	session := sessionFromContext(r.Context())
	notice, err := s.svc.Notices.Update(r.Context(), session.Profile.ID, id, req.Title, req.Content)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notice)
}

func (s *Server) handleDeleteNotice(w http.ResponseWriter, r *http.Request) {
	id, ok := int64Param(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	session := sessionFromContext(r.Context())
	if err := s.svc.Notices.Delete(r.Context(), session.Profile.ID, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
