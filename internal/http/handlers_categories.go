package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, userID string) {
	// First touch seeds the owner's default taxonomy; idempotent afterwards.
	if err := s.repo.EnsureDefaultCategories(r.Context(), userID); err != nil {
		slog.ErrorContext(r.Context(), "Failed seeding default categories",
			"error", err, "user_id", userID)
	}
	categories, err := s.repo.ListCategories(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	out := make([]categoryResponse, len(categories))
	for i, c := range categories {
		out[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, userID string) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category := req.toDomain(userID, "")
	if err := category.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	created, err := s.tracker.CreateCategory(r.Context(), category)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request, userID string) {
	category, err := s.repo.GetCategory(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, userID string) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category := req.toDomain(userID, r.PathValue("id"))
	if err := category.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := s.tracker.UpdateCategory(r.Context(), category); err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	updated, err := s.repo.GetCategory(r.Context(), userID, category.ID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, userID string) {
	if err := s.tracker.DeleteCategory(r.Context(), userID, r.PathValue("id")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	s.invalidateUser(userID)
	w.WriteHeader(http.StatusNoContent)
}
