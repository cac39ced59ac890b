package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Daily   Interval = "daily"
	Weekly  Interval = "weekly"
	Monthly Interval = "monthly"
	Yearly  Interval = "yearly"
)

// PersonShared labels entries that belong to the whole household rather
// than a single member.
const PersonShared = "shared"

type (
	Interval string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Category struct {
		ID   int64
		Name string
	}

	// Template is the stored, canonical transaction record a user creates.
	// Recurring templates are never materialized in storage; occurrences are
	// derived on demand by Expand.
	Template struct {
		ID         int64
		Title      string
		Amount     Money
		Date       Date // anchor date, first occurrence for recurring templates
		IsExpense  bool
		CategoryID int64
		Person     string
		Recurring  bool
		Interval   Interval // set iff Recurring
		EndDate    Date     // zero means open-ended
		Paid       bool     // base paid status, overridable per month
	}

	// Instance is a concrete dated occurrence derived from a template.
	// Instances are produced fresh on every expansion and never persisted.
	Instance struct {
		Template
		InstanceDate      Date
		RecurringInstance bool
	}

	// SavingsEntry is a manual savings contribution.
	SavingsEntry struct {
		ID     int64
		Label  string
		Amount Money
		Date   Date
		Person string
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrEmptyTitle      = errors.New("empty title")
	ErrInvalidInterval = errors.New("invalid recurrence interval")
	ErrEndBeforeStart  = errors.New("end date before anchor date")
	ErrEmptyPerson     = errors.New("empty person label")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a new Date from year, month, day at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// IsEmpty reports whether the date is unset (used for optional end dates).
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Signed returns the amount with expense sign applied: negative for
// expenses, positive for income.
func (t Template) Signed() Money {
	if t.IsExpense {
		return Money{Cents: -t.Amount.Cents}
	}
	return t.Amount
}

func (i Interval) Valid() bool {
	switch i {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

func (t Template) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return errors.New("invalid anchor date: " + err.Error())
	}
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return errors.New("title too long (max 200 characters)")
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Person) == "" {
		return ErrEmptyPerson
	}

	// Interval is set if and only if the template recurs.
	if t.Recurring {
		if !t.Interval.Valid() {
			return ErrInvalidInterval
		}
	} else if t.Interval != "" {
		return errors.New("interval set on non-recurring template")
	}

	if !t.EndDate.IsZero() {
		if err := t.EndDate.Validate(); err != nil {
			return errors.New("invalid end date: " + err.Error())
		}
		if t.EndDate.Before(t.Date.Time) {
			return ErrEndBeforeStart
		}
	}

	return nil
}

func (s SavingsEntry) Validate() error {
	if err := s.Date.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(s.Label)) == 0 {
		return ErrEmptyTitle
	}
	if err := s.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(s.Person) == "" {
		return ErrEmptyPerson
	}
	return nil
}
