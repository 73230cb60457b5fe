package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type setRoleRequest struct {
	Role string `json:"role"`
}

type setPermissionRequest struct {
	Granted *bool `json:"granted"`
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	profileID, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	var req setRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	profile, perms, err := s.svc.Permissions.SetRole(r.Context(), profileID, req.Role)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":     profile,
		"permissions": perms,
	})
}

func (s *Server) handleGetPermissions(w http.ResponseWriter, r *http.Request) {
	profileID, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	perms, err := s.svc.Permissions.Resolve(r.Context(), profileID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"permissions": perms})
}

func (s *Server) handleSetPermission(w http.ResponseWriter, r *http.Request) {
	profileID, ok := uuidParam(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_id")
		return
	}

	var req setPermissionRequest
	if err := decodeJSON(r, &req); err != nil || req.Granted == nil {
		writeError(w, http.StatusBadRequest, "invalid_body")
		return
	}

	perms, err := s.svc.Permissions.SetPermission(r.Context(), profileID, chi.URLParam(r, "key"), *req.Granted)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"permissions": perms})
}
