package config

import (
	"fmt"
	"time"
)

// DateRange is an inclusive window of publication dates. The zero value
// accepts everything.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange parses a YYYYMMDD lower bound into a range ending today.
func ParseDateRange(dateAfter string) (DateRange, error) {
	start, err := time.Parse("20060102", dateAfter)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid date_after %q: want YYYYMMDD", dateAfter)
	}
	return DateRange{Start: start, End: today()}, nil
}

// Contains reports whether t's calendar date falls inside the range,
// inclusive on both ends.
func (r DateRange) Contains(t time.Time) bool {
	if r.Start.IsZero() {
		return true
	}
	d := truncateToDay(t)
	return !d.Before(truncateToDay(r.Start)) && !d.After(truncateToDay(r.End))
}

// Bounded reports whether the range restricts anything.
func (r DateRange) Bounded() bool {
	return !r.Start.IsZero()
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func today() time.Time {
	return truncateToDay(time.Now())
}
