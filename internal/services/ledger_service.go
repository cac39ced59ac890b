package services

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/overrides"
	"bilancio/internal/storage"
)

// LedgerService orchestrates transaction writes across SQLite, the
// override store and AMQP. SQLite is the source of truth: a write that
// lands there succeeds even when the broker is unreachable, the export
// worker just catches up on its next periodic run.
type LedgerService struct {
	storage *storage.SQLiteRepository
	broker  *amqp.Client
}

func NewLedgerService(storage *storage.SQLiteRepository, broker *amqp.Client) *LedgerService {
	return &LedgerService{
		storage: storage,
		broker:  broker,
	}
}

// CreateTransaction validates and saves a transaction, then announces the
// affected month.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Template) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, id, core.MonthKey(t.Date.Time), amqp.ActionCreated)
	return id, nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (core.Template, error) {
	return s.storage.GetTransaction(ctx, id)
}

func (s *LedgerService) ListTransactions(ctx context.Context) ([]core.Template, error) {
	return s.storage.ListTransactions(ctx)
}

// UpdateTransaction validates and replaces a stored transaction.
func (s *LedgerService) UpdateTransaction(ctx context.Context, t core.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}

	if err := s.storage.UpdateTransaction(ctx, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	s.publish(ctx, t.ID, core.MonthKey(t.Date.Time), amqp.ActionUpdated)
	return nil
}

// DeleteTransaction soft deletes a transaction and drops every stored
// override for it, so a later transaction reusing the ID starts clean.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	t, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return err
	}

	if err := s.storage.SoftDeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}

	if err := overrides.PurgeTransaction(s.storage.Overrides(), id); err != nil {
		slog.ErrorContext(ctx, "Failed to purge overrides",
			"transaction_id", id, "error", err)
		// Transaction is gone, stray override keys are unreachable anyway.
	}

	s.publish(ctx, id, core.MonthKey(t.Date.Time), amqp.ActionDeleted)
	return nil
}

// SetOccurrencePaid stores a paid override for one occurrence of a
// recurring transaction.
func (s *LedgerService) SetOccurrencePaid(ctx context.Context, id int64, monthKey string, paid bool) error {
	if err := s.checkRecurring(ctx, id, monthKey); err != nil {
		return err
	}

	if err := overrides.SetPaid(s.storage.Overrides(), id, monthKey, paid); err != nil {
		return fmt.Errorf("set paid override: %w", err)
	}

	s.publish(ctx, id, monthKey, amqp.ActionOverride)
	return nil
}

// ClearOccurrencePaid removes a paid override, the occurrence falls back
// to the transaction's own paid flag.
func (s *LedgerService) ClearOccurrencePaid(ctx context.Context, id int64, monthKey string) error {
	if err := s.checkRecurring(ctx, id, monthKey); err != nil {
		return err
	}

	if err := overrides.ClearPaid(s.storage.Overrides(), id, monthKey); err != nil {
		return fmt.Errorf("clear paid override: %w", err)
	}

	s.publish(ctx, id, monthKey, amqp.ActionOverride)
	return nil
}

// DeleteOccurrence hides one occurrence of a recurring transaction without
// touching the transaction itself.
func (s *LedgerService) DeleteOccurrence(ctx context.Context, id int64, monthKey string) error {
	if err := s.checkRecurring(ctx, id, monthKey); err != nil {
		return err
	}

	if err := overrides.MarkDeleted(s.storage.Overrides(), id, monthKey); err != nil {
		return fmt.Errorf("mark occurrence deleted: %w", err)
	}

	s.publish(ctx, id, monthKey, amqp.ActionOverride)
	return nil
}

// RestoreOccurrence undoes DeleteOccurrence for one occurrence.
func (s *LedgerService) RestoreOccurrence(ctx context.Context, id int64, monthKey string) error {
	if err := s.checkRecurring(ctx, id, monthKey); err != nil {
		return err
	}

	if err := overrides.RestoreDeleted(s.storage.Overrides(), id, monthKey); err != nil {
		return fmt.Errorf("restore occurrence: %w", err)
	}

	s.publish(ctx, id, monthKey, amqp.ActionOverride)
	return nil
}

// checkRecurring validates the month key and confirms the transaction
// exists and is recurring. Overrides on non-recurring transactions would
// never be read back.
func (s *LedgerService) checkRecurring(ctx context.Context, id int64, monthKey string) error {
	if _, _, err := core.ParseMonthKey(monthKey); err != nil {
		return err
	}

	t, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if !t.Recurring {
		return fmt.Errorf("%w: transaction %d is not recurring", core.ErrInvalidInterval, id)
	}
	return nil
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]core.Category, error) {
	return s.storage.ListCategories(ctx)
}

func (s *LedgerService) CreateCategory(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, core.ErrEmptyTitle
	}
	return s.storage.CreateCategory(ctx, name)
}

func (s *LedgerService) DeleteCategory(ctx context.Context, id int64) error {
	return s.storage.DeleteCategory(ctx, id)
}

func (s *LedgerService) CreateSavings(ctx context.Context, e core.SavingsEntry) (int64, error) {
	if e.Label == "" {
		return 0, core.ErrEmptyTitle
	}
	if e.Date.IsZero() {
		return 0, core.ErrInvalidDate
	}

	id, err := s.storage.CreateSavings(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("save savings entry: %w", err)
	}

	s.publish(ctx, id, core.MonthKey(e.Date.Time), amqp.ActionCreated)
	return id, nil
}

func (s *LedgerService) ListSavings(ctx context.Context, year, month int) ([]core.SavingsEntry, error) {
	return s.storage.ListSavings(ctx, year, month)
}

func (s *LedgerService) DeleteSavings(ctx context.Context, id int64) error {
	return s.storage.DeleteSavings(ctx, id)
}

// publish sends a schedule change event. Broker failures are logged and
// swallowed, the local write already succeeded.
func (s *LedgerService) publish(ctx context.Context, id int64, monthKey, action string) {
	if s.broker == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping schedule change event",
			"transaction_id", id, "month", monthKey)
		return
	}

	msg := amqp.NewScheduleChangedMessage(id, monthKey, action)
	if err := s.broker.PublishScheduleChanged(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish schedule change",
			"transaction_id", id, "month", monthKey, "action", action, "error", err)
	}
}

// Close closes both storage and AMQP connections
func (s *LedgerService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.broker != nil {
		if err := s.broker.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
