package http

import (
	"net/http"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request, userID string) {
	budgets, err := s.repo.ListBudgets(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	out := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		out[i] = toBudgetResponse(b)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request, userID string) {
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	budget := req.toDomain(userID, "")
	if err := budget.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.tracker.CreateBudget(r.Context(), budget)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	writeJSON(w, http.StatusCreated, toBudgetResponse(created))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request, userID string) {
	budget, err := s.repo.GetBudget(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(budget))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request, userID string) {
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	budget := req.toDomain(userID, r.PathValue("id"))
	if err := budget.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.tracker.UpdateBudget(r.Context(), budget); err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	updated, err := s.repo.GetBudget(r.Context(), userID, budget.ID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetResponse(updated))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.tracker.DeleteBudget(r.Context(), userID, r.PathValue("id")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}
