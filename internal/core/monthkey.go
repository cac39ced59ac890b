package core

import (
	"fmt"
	"strconv"
	"time"
)

// MonthKey derives the canonical "YYYY-MM" bucket identifier for a date.
// Keys are zero-padded and therefore sort lexicographically in calendar
// order. Only year and month are considered; no timezone normalization is
// performed beyond what the time.Time itself carries.
func MonthKey(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ParseMonthKey splits a "YYYY-MM" key back into year and month. Keys not
// produced by MonthKey are rejected with ErrInvalidDate.
func ParseMonthKey(key string) (year, month int, err error) {
	if len(key) != 7 || key[4] != '-' {
		return 0, 0, fmt.Errorf("%w: month key %q", ErrInvalidDate, key)
	}
	y, errY := strconv.Atoi(key[:4])
	m, errM := strconv.Atoi(key[5:])
	if errY != nil || errM != nil {
		return 0, 0, fmt.Errorf("%w: month key %q", ErrInvalidDate, key)
	}
	year, month = y, m
	if year < 1 || month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: month key %q", ErrInvalidDate, key)
	}
	return year, month, nil
}
