package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"bilancio/internal/core"
)

type instanceView struct {
	TransactionID     int64  `json:"transaction_id"`
	Title             string `json:"title"`
	AmountCents       int64  `json:"amount_cents"`
	Date              string `json:"date"`
	Month             string `json:"month"`
	IsExpense         bool   `json:"is_expense"`
	CategoryID        int64  `json:"category_id,omitempty"`
	Person            string `json:"person"`
	Recurring         bool   `json:"recurring"`
	RecurringInstance bool   `json:"recurring_instance"`
	Paid              bool   `json:"paid"`
}

type categoryAmountView struct {
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	AmountCents int64  `json:"amount_cents"`
}

type personAmountView struct {
	Person      string `json:"person"`
	AmountCents int64  `json:"amount_cents"`
}

type dayTotalView struct {
	Day          int   `json:"day"`
	ExpenseCents int64 `json:"expense_cents"`
	IncomeCents  int64 `json:"income_cents"`
	Count        int   `json:"count"`
}

type overviewView struct {
	IncomeCents  int64                `json:"income_cents"`
	ExpenseCents int64                `json:"expense_cents"`
	NetCents     int64                `json:"net_cents"`
	SavingsCents int64                `json:"savings_cents"`
	ByCategory   []categoryAmountView `json:"by_category"`
	ByPerson     []personAmountView   `json:"by_person"`
	Calendar     []dayTotalView       `json:"calendar"`
}

type scheduleView struct {
	Year      int            `json:"year"`
	Month     int            `json:"month"`
	MonthKey  string         `json:"month_key"`
	Instances []instanceView `json:"instances"`
	Overview  overviewView   `json:"overview"`
}

func toScheduleView(s core.MonthSchedule) scheduleView {
	out := scheduleView{
		Year:      s.Year,
		Month:     s.Month,
		MonthKey:  fmt.Sprintf("%04d-%02d", s.Year, s.Month),
		Instances: make([]instanceView, 0, len(s.Instances)),
	}

	for _, inst := range s.Instances {
		out.Instances = append(out.Instances, instanceView{
			TransactionID:     inst.ID,
			Title:             inst.Title,
			AmountCents:       inst.Amount.Cents,
			Date:              inst.InstanceDate.Format("2006-01-02"),
			Month:             core.MonthKey(inst.InstanceDate.Time),
			IsExpense:         inst.IsExpense,
			CategoryID:        inst.CategoryID,
			Person:            inst.Person,
			Recurring:         inst.Recurring,
			RecurringInstance: inst.RecurringInstance,
			Paid:              inst.Paid,
		})
	}

	ov := s.Overview
	out.Overview = overviewView{
		IncomeCents:  ov.Income.Cents,
		ExpenseCents: ov.Expense.Cents,
		NetCents:     ov.Net.Cents,
		SavingsCents: ov.Savings.Cents,
		ByCategory:   make([]categoryAmountView, 0, len(ov.ByCategory)),
		ByPerson:     make([]personAmountView, 0, len(ov.ByPerson)),
		Calendar:     make([]dayTotalView, 0, len(ov.Calendar)),
	}
	for _, ca := range ov.ByCategory {
		out.Overview.ByCategory = append(out.Overview.ByCategory, categoryAmountView{
			CategoryID: ca.CategoryID, Name: ca.Name, AmountCents: ca.Amount.Cents,
		})
	}
	for _, pa := range ov.ByPerson {
		out.Overview.ByPerson = append(out.Overview.ByPerson, personAmountView{
			Person: pa.Person, AmountCents: pa.Amount.Cents,
		})
	}
	for _, dt := range ov.Calendar {
		out.Overview.Calendar = append(out.Overview.Calendar, dayTotalView{
			Day: dt.Day, ExpenseCents: dt.Expense.Cents, IncomeCents: dt.Income.Cents, Count: dt.Count,
		})
	}

	return out
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	year, month, err := parseYearMonth(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cacheKey := fmt.Sprintf("schedule_%04d-%02d", year, month)
	if cached, ok := s.scheduleCache.Get(cacheKey); ok {
		respondJSON(w, http.StatusOK, toScheduleView(cached))
		return
	}

	schedule, err := s.schedules.Month(r.Context(), year, month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.scheduleCache.Set(cacheKey, schedule)
	respondJSON(w, http.StatusOK, toScheduleView(schedule))
}

// pathMonth reads and validates the {month} path segment (YYYY-MM).
func pathMonth(r *http.Request) (string, error) {
	monthKey := r.PathValue("month")
	if _, _, err := core.ParseMonthKey(monthKey); err != nil {
		return "", err
	}
	return monthKey, nil
}

type paidPayload struct {
	Paid bool `json:"paid"`
}

func (s *Server) handleSetOccurrencePaid(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	monthKey, err := pathMonth(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var p paidPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "bad payload")
		return
	}

	if err := s.ledger.SetOccurrencePaid(r.Context(), id, monthKey, p.Paid); err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.invalidateSchedules()
	respondJSON(w, http.StatusOK, map[string]any{
		"transaction_id": id,
		"month":          monthKey,
		"paid":           p.Paid,
	})
}

func (s *Server) handleClearOccurrencePaid(w http.ResponseWriter, r *http.Request) {
	s.occurrenceAction(w, r, s.ledger.ClearOccurrencePaid)
}

func (s *Server) handleDeleteOccurrence(w http.ResponseWriter, r *http.Request) {
	s.occurrenceAction(w, r, s.ledger.DeleteOccurrence)
}

func (s *Server) handleRestoreOccurrence(w http.ResponseWriter, r *http.Request) {
	s.occurrenceAction(w, r, s.ledger.RestoreOccurrence)
}

func (s *Server) occurrenceAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id int64, monthKey string) error) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	monthKey, err := pathMonth(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := action(r.Context(), id, monthKey); err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.invalidateSchedules()
	respondJSON(w, http.StatusNoContent, nil)
}
