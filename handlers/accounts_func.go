package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// CreateFunc stores a new account from the validated request payload.
func (s *Accounts) CreateFunc(rw http.ResponseWriter, r *http.Request) {
	p, raw, ok := accountPayloadFrom(r)
	if !ok {
		handleError(rw, r, InvalidBodyError)
		return
	}

	res, err := s.service.Create(r.Context(), p, raw)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusCreated, res)
}

// UpdateFunc overwrites the client-writable fields of an account.
// It reads the identifier for the wanted account from URL.
// Account service is responsible for validating the identifier.
func (s *Accounts) UpdateFunc(rw http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	p, raw, ok := accountPayloadFrom(r)
	if !ok {
		handleError(rw, r, InvalidBodyError)
		return
	}

	res, err := s.service.Update(r.Context(), vars["id"], p, raw)
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, res)
}

// StatsFunc returns account counts grouped by scope.
func (s *Accounts) StatsFunc(rw http.ResponseWriter, r *http.Request) {
	res, err := s.service.Stats(r.Context())
	if err != nil {
		handleError(rw, r, err)
		return
	}

	handleJsonResponse(rw, http.StatusOK, res)
}
