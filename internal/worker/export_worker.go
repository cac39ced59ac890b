package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/export"
)

// MonthScheduler resolves the schedule of one calendar month.
type MonthScheduler interface {
	Month(ctx context.Context, year, month int) (core.MonthSchedule, error)
}

// ExportWorker keeps the external spreadsheet in step with the ledger. It
// reacts to schedule change events and, as a backstop for lost messages,
// re-exports the current month on a timer.
type ExportWorker struct {
	schedules MonthScheduler
	exporter  export.ScheduleExporter
	now       func() time.Time
}

func NewExportWorker(schedules MonthScheduler, exporter export.ScheduleExporter) *ExportWorker {
	return &ExportWorker{
		schedules: schedules,
		exporter:  exporter,
		now:       time.Now,
	}
}

// HandleScheduleChanged re-exports the month named by the event. Returning
// an error requeues the delivery.
func (w *ExportWorker) HandleScheduleChanged(ctx context.Context, msg *amqp.ScheduleChangedMessage) error {
	year, month, err := core.ParseMonthKey(msg.Month)
	if err != nil {
		// Undecodable month: requeueing will never help.
		slog.ErrorContext(ctx, "Dropping event with bad month key",
			"event_id", msg.EventID, "month", msg.Month, "error", err)
		return nil
	}

	slog.InfoContext(ctx, "Exporting month after schedule change",
		"event_id", msg.EventID,
		"transaction_id", msg.TransactionID,
		"month", msg.Month,
		"action", msg.Action)

	return w.exportMonth(ctx, year, month)
}

// ExportCurrent re-exports the current and the next month. Recurring
// templates make the next month visible ahead of time, so it is kept
// fresh too.
func (w *ExportWorker) ExportCurrent(ctx context.Context) error {
	now := w.now()
	year, month := now.Year(), int(now.Month())

	if err := w.exportMonth(ctx, year, month); err != nil {
		return err
	}

	nextYear, nextMonth := year, month+1
	if nextMonth > 12 {
		nextYear, nextMonth = year+1, 1
	}
	return w.exportMonth(ctx, nextYear, nextMonth)
}

// RunPeriodic exports on an interval until the context is done. The first
// export happens immediately.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	if err := w.ExportCurrent(ctx); err != nil {
		slog.ErrorContext(ctx, "Initial export failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ExportCurrent(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "error", err)
			}
		}
	}
}

func (w *ExportWorker) exportMonth(ctx context.Context, year, month int) error {
	schedule, err := w.schedules.Month(ctx, year, month)
	if err != nil {
		return fmt.Errorf("resolve schedule %04d-%02d: %w", year, month, err)
	}

	if err := w.exporter.ExportMonth(ctx, schedule); err != nil {
		return fmt.Errorf("export %04d-%02d: %w", year, month, err)
	}

	slog.InfoContext(ctx, "Month exported",
		"year", year,
		"month", month,
		"instances", len(schedule.Instances))
	return nil
}
