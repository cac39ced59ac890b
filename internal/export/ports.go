// Package export defines the outbound port for pushing resolved month
// schedules to external sinks.
package export

import (
	"context"

	"bilancio/internal/core"
)

// ScheduleExporter writes one resolved month. Implementations must be
// idempotent: the worker re-exports a month on every change event and on
// a periodic timer, so exporting the same schedule twice has to converge
// on the same result.
type ScheduleExporter interface {
	ExportMonth(ctx context.Context, schedule core.MonthSchedule) error
}
