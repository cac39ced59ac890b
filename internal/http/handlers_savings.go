package http

import (
	"encoding/json"
	"net/http"

	"bilancio/internal/core"
)

type savingsPayload struct {
	Label  string `json:"label"`
	Amount string `json:"amount"`
	Date   string `json:"date"` // YYYY-MM-DD
	Person string `json:"person"`
}

type savingsView struct {
	ID          int64  `json:"id"`
	Label       string `json:"label"`
	AmountCents int64  `json:"amount_cents"`
	Date        string `json:"date"`
	Person      string `json:"person"`
}

func (s *Server) handleListSavings(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.ledger.ListSavings(r.Context(), year, month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	views := make([]savingsView, 0, len(entries))
	for _, e := range entries {
		views = append(views, savingsView{
			ID:          e.ID,
			Label:       e.Label,
			AmountCents: e.Amount.Cents,
			Date:        e.Date.Format("2006-01-02"),
			Person:      e.Person,
		})
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateSavings(w http.ResponseWriter, r *http.Request) {
	var p savingsPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "bad payload")
		return
	}

	cents, err := core.ParseDecimalToCents(sanitizeInput(p.Amount))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := parseDate(p.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry := core.SavingsEntry{
		Label:  sanitizeInput(p.Label),
		Amount: core.Money{Cents: cents},
		Date:   date,
		Person: sanitizeInput(p.Person),
	}
	if entry.Person == "" {
		entry.Person = core.PersonShared
	}
	if err := entry.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.ledger.CreateSavings(r.Context(), entry)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.invalidateSchedules()
	entry.ID = id
	respondJSON(w, http.StatusCreated, savingsView{
		ID:          id,
		Label:       entry.Label,
		AmountCents: cents,
		Date:        entry.Date.Format("2006-01-02"),
		Person:      entry.Person,
	})
}

func (s *Server) handleDeleteSavings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeleteSavings(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.invalidateSchedules()
	respondJSON(w, http.StatusNoContent, nil)
}
