package http

import (
	"io"
	"mime"
	"net/http"

	"bullfinance/internal/core"
	"bullfinance/internal/services"
)

const maxStatementBytes = 5 << 20

func (s *Server) handleListBankAccounts(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Records.BankAccounts(r.Context(), companyID(r))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listBody(items))
}

func (s *Server) handleCreateBankAccount(w http.ResponseWriter, r *http.Request) {
	a := core.BankAccount{Active: true}
	if err := decodeJSON(w, r, &a); err != nil {
		fail(w, r, err)
		return
	}
	a.ID, a.CompanyID = "", companyID(r)
	a.Name = sanitizeInput(a.Name)
	a.BankName = sanitizeInput(a.BankName)
	a.AccountNumber = sanitizeInput(a.AccountNumber)
	created, err := s.svc.Records.CreateBankAccount(r.Context(), a)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListMovements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	list, err := s.svc.Bank.ListMovements(r.Context(), companyID(r), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	if list.Movements == nil {
		list.Movements = []core.BankMovement{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handlePostMovement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var m core.BankMovement
	if err := decodeJSON(w, r, &m); err != nil {
		fail(w, r, err)
		return
	}
	m.ID, m.CompanyID, m.AccountID = "", companyID(r), id
	m.Description = sanitizeInput(m.Description)
	res, err := s.svc.Bank.PostMovement(r.Context(), m)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// handleImportStatement accepts the CSV either as a multipart "file" field
// or as the raw request body.
func (s *Server) handleImportStatement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxStatementBytes)

	var src io.Reader = r.Body
	if mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			fail(w, r, badRequest("multipart upload must include a file field"))
			return
		}
		defer file.Close()
		src = file
	}

	res, err := s.svc.Bank.ImportStatement(r.Context(), companyID(r), id, src)
	if err != nil {
		fail(w, r, err)
		return
	}
	if res.Errors == nil {
		res.Errors = []services.LineError{}
	}
	writeJSON(w, http.StatusOK, res)
}
