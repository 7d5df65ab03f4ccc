package http

import (
	"net/http"
	"strings"

	"alphawealth/internal/core"
	"alphawealth/internal/storage"
)

// transactionFilter reads list query parameters; unknown values are ignored
// rather than rejected, matching the read-path "no data over errors" policy.
func transactionFilter(r *http.Request) storage.TransactionFilter {
	q := r.URL.Query()
	var f storage.TransactionFilter

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			f.From = d
		}
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		if d, err := core.ParseDate(v); err == nil {
			f.To = d
		}
	}
	f.AccountID = strings.TrimSpace(q.Get("account_id"))
	f.CategoryID = strings.TrimSpace(q.Get("category_id"))
	if v := core.TransactionType(strings.TrimSpace(q.Get("type"))); v.Valid() {
		f.Type = v
	}
	if limit := queryInt(r, "limit", 0); limit > 0 {
		f.Limit = limit
	}
	return f
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request, userID string) {
	txns, err := s.repo.ListTransactions(r.Context(), userID, transactionFilter(r))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txns))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx := req.toDomain(userID, "")
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.tracker.CreateTransaction(r.Context(), tx)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	tx, err := s.repo.GetTransaction(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	var req transactionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	tx := req.toDomain(userID, r.PathValue("id"))
	if err := tx.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.tracker.UpdateTransaction(r.Context(), tx); err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	updated, err := s.repo.GetTransaction(r.Context(), userID, tx.ID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.tracker.DeleteTransaction(r.Context(), userID, r.PathValue("id")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}
