package http

import (
	"encoding/json"
	"net/http"

	"bilancio/internal/core"
)

// transactionPayload is the write-side JSON shape. Amounts travel as
// decimal strings ("12,34" or "12.34") and are stored as cents.
type transactionPayload struct {
	Title      string `json:"title"`
	Amount     string `json:"amount"`
	Date       string `json:"date"` // YYYY-MM-DD
	IsExpense  bool   `json:"is_expense"`
	CategoryID int64  `json:"category_id"`
	Person     string `json:"person"`
	Recurring  bool   `json:"recurring"`
	Interval   string `json:"interval"`
	EndDate    string `json:"end_date"`
}

type transactionView struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	AmountCents int64 `json:"amount_cents"`
	Date       string `json:"date"`
	IsExpense  bool   `json:"is_expense"`
	CategoryID int64  `json:"category_id,omitempty"`
	Person     string `json:"person"`
	Recurring  bool   `json:"recurring"`
	Interval   string `json:"interval,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	Paid       bool   `json:"paid"`
}

func toTransactionView(t core.Template) transactionView {
	v := transactionView{
		ID:          t.ID,
		Title:       t.Title,
		AmountCents: t.Amount.Cents,
		Date:        t.Date.Format("2006-01-02"),
		IsExpense:   t.IsExpense,
		CategoryID:  t.CategoryID,
		Person:      t.Person,
		Recurring:   t.Recurring,
		Interval:    string(t.Interval),
		Paid:        t.Paid,
	}
	if !t.EndDate.IsZero() {
		v.EndDate = t.EndDate.Format("2006-01-02")
	}
	return v
}

// decodeTransaction turns a payload into a validated template.
func decodeTransaction(r *http.Request) (core.Template, error) {
	var p transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return core.Template{}, err
	}

	cents, err := core.ParseDecimalToCents(sanitizeInput(p.Amount))
	if err != nil {
		return core.Template{}, err
	}

	date, err := parseDate(p.Date)
	if err != nil {
		return core.Template{}, err
	}

	t := core.Template{
		Title:      sanitizeInput(p.Title),
		Amount:     core.Money{Cents: cents},
		Date:       date,
		IsExpense:  p.IsExpense,
		CategoryID: p.CategoryID,
		Person:     sanitizeInput(p.Person),
		Recurring:  p.Recurring,
		Interval:   core.Interval(p.Interval),
	}
	if t.Person == "" {
		t.Person = core.PersonShared
	}
	if p.EndDate != "" {
		end, err := parseDate(p.EndDate)
		if err != nil {
			return core.Template{}, err
		}
		t.EndDate = end
	}

	return t, t.Validate()
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	templates, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	views := make([]transactionView, 0, len(templates))
	for _, t := range templates {
		views = append(views, toTransactionView(t))
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := decodeTransaction(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := s.ledger.CreateTransaction(r.Context(), t)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.invalidateSchedules()
	t.ID = id
	respondJSON(w, http.StatusCreated, toTransactionView(t))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := s.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTransactionView(t))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := decodeTransaction(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	t.ID = id

	if err := s.ledger.UpdateTransaction(r.Context(), t); err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.invalidateSchedules()
	respondJSON(w, http.StatusOK, toTransactionView(t))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.invalidateSchedules()
	respondJSON(w, http.StatusNoContent, nil)
}
