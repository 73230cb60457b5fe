package controller

import (
	"net/http"
)

func (s *Server) handleGetSettlement(w http.ResponseWriter, r *http.Request) {
	instructorID, ok := uuidParam(r, "instructorId")
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_instructor_id")
		return
	}

	// не администратор видит только свой отчёт
	session := sessionFromContext(r.Context())
	if !session.IsAdmin() && session.Profile.ID != instructorID {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	year, okYear := queryInt(r, "year", 0)
	month, okMonth := queryInt(r, "month", 0)
	if !okYear || !okMonth || year == 0 || month == 0 {
		writeError(w, http.StatusBadRequest, "year_and_month_required")
		return
	}

	report, err := s.svc.Settlements.Aggregate(r.Context(), instructorID, year, month)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
