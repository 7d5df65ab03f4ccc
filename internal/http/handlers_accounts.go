package http

import (
	"net/http"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request, userID string) {
	accounts, err := s.repo.ListAccounts(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	out := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = toAccountResponse(a)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request, userID string) {
	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account := req.toDomain(userID, "")
	if err := account.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.tracker.CreateAccount(r.Context(), account)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	writeJSON(w, http.StatusCreated, toAccountResponse(created))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request, userID string) {
	account, err := s.repo.GetAccount(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request, userID string) {
	var req accountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	account := req.toDomain(userID, r.PathValue("id"))
	if err := account.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.tracker.UpdateAccount(r.Context(), account); err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	// Balance is maintained by transaction writes, not by account updates;
	// refetch so the response carries the real value.
	updated, err := s.repo.GetAccount(r.Context(), userID, account.ID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(updated))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.tracker.DeleteAccount(r.Context(), userID, r.PathValue("id")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}
