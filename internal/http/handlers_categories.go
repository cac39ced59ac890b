package http

import (
	"encoding/json"
	"net/http"

	"bilancio/internal/core"
)

type categoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.ledger.ListCategories(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, categoryView{ID: c.ID, Name: c.Name})
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var p categoryView
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "bad payload")
		return
	}

	name := sanitizeInput(p.Name)
	if name == "" {
		respondError(w, http.StatusBadRequest, core.ErrEmptyTitle.Error())
		return
	}

	id, err := s.ledger.CreateCategory(r.Context(), name)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.invalidateSchedules()
	respondJSON(w, http.StatusCreated, categoryView{ID: id, Name: name})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeleteCategory(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.invalidateSchedules()
	respondJSON(w, http.StatusNoContent, nil)
}
