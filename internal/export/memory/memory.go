// Package memory provides an in-process exporter for tests and for
// running without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	"bilancio/internal/core"
)

type Store struct {
	mu        sync.Mutex
	schedules map[string]core.MonthSchedule
	exports   int
}

func New() *Store {
	return &Store{schedules: make(map[string]core.MonthSchedule)}
}

// ExportMonth records the schedule, replacing any earlier export of the
// same month.
func (s *Store) ExportMonth(_ context.Context, schedule core.MonthSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := fmt.Sprintf("%04d-%02d", schedule.Year, schedule.Month)
	s.schedules[key] = schedule
	s.exports++
	return nil
}

// Exported returns the last exported schedule for a month key.
func (s *Store) Exported(monthKey string) (core.MonthSchedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sched, ok := s.schedules[monthKey]
	return sched, ok
}

// Exports returns how many exports were performed.
func (s *Store) Exports() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exports
}
