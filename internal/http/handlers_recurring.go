package http

import (
	"net/http"

	"bullfinance/internal/core"
)

type activeRequest struct {
	Active *bool `json:"active"`
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Scheduler.List(r.Context(), companyID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	// New templates are active unless the body says otherwise.
	rt := core.RecurringTransaction{Active: true}
	if err := decodeJSON(w, r, &rt); err != nil {
		fail(w, r, err)
		return
	}
	rt.ID, rt.CompanyID = "", companyID(r)
	rt.Description = sanitizeInput(rt.Description)
	created, err := s.svc.Scheduler.Create(r.Context(), rt)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// handleGenerate runs one scheduling step for the template as of today.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	out, err := s.svc.Scheduler.Generate(r.Context(), companyID(r), id, core.DateOf(s.now()))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var req activeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, r, err)
		return
	}
	if req.Active == nil {
		fail(w, r, badRequest("active is required"))
		return
	}
	if err := s.svc.Scheduler.SetActive(r.Context(), companyID(r), id, *req.Active); err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "active": *req.Active})
}
