package services

import (
	"context"
	"fmt"

	"bilancio/internal/core"
	"bilancio/internal/overrides"
)

// ScheduleStorage is the slice of the repository the schedule service
// reads from.
type ScheduleStorage interface {
	ListTransactions(ctx context.Context) ([]core.Template, error)
	CategoryNames(ctx context.Context) (map[int64]string, error)
	SavingsTotal(ctx context.Context, year, month int) (core.Money, error)
}

// ScheduleService turns stored transactions into the resolved schedule of
// one calendar month: expand every template over the month window, apply
// stored per-month overrides, then aggregate.
type ScheduleService struct {
	storage  ScheduleStorage
	resolver *overrides.Resolver
}

func NewScheduleService(storage ScheduleStorage, store overrides.Store) *ScheduleService {
	return &ScheduleService{
		storage:  storage,
		resolver: overrides.NewResolver(store),
	}
}

// Month builds the resolved schedule for a calendar month.
func (s *ScheduleService) Month(ctx context.Context, year, month int) (core.MonthSchedule, error) {
	if year < 1 || month < 1 || month > 12 {
		return core.MonthSchedule{}, fmt.Errorf("%w: year %d month %d", core.ErrInvalidDate, year, month)
	}

	templates, err := s.storage.ListTransactions(ctx)
	if err != nil {
		return core.MonthSchedule{}, fmt.Errorf("list transactions: %w", err)
	}

	windowStart, windowEnd := core.MonthWindow(year, month)

	var instances []core.Instance
	for _, t := range templates {
		expanded, err := core.Expand(t, windowStart, windowEnd)
		if err != nil {
			return core.MonthSchedule{}, fmt.Errorf("expand transaction %d: %w", t.ID, err)
		}
		instances = append(instances, expanded...)
	}

	instances = s.resolver.Resolve(instances)

	names, err := s.storage.CategoryNames(ctx)
	if err != nil {
		return core.MonthSchedule{}, fmt.Errorf("load category names: %w", err)
	}

	overview := core.Summarize(year, month, instances, names)

	savings, err := s.storage.SavingsTotal(ctx, year, month)
	if err != nil {
		return core.MonthSchedule{}, fmt.Errorf("savings total: %w", err)
	}
	overview.Savings = savings

	return core.MonthSchedule{
		Year:      year,
		Month:     month,
		Instances: instances,
		Overview:  overview,
	}, nil
}
