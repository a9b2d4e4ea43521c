package emissions

import (
	"fmt"
	"time"
)

// Range is a closed-closed window of time, start and end inclusive.
// All ranges produced by this package are in UTC and calendar aligned.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// lastInstant is the offset subtracted from the next boundary to get the inclusive end.
const lastInstant = time.Millisecond

// Contains reports whether t falls inside the range, inclusive on both ends.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// StartUnix returns the start as unix seconds.
func (r Range) StartUnix() int64 { return r.Start.Unix() }

// EndUnix returns the end as unix seconds. The millisecond fraction is
// truncated so BETWEEN on second-resolution timestamps covers the last second.
func (r Range) EndUnix() int64 { return r.End.Unix() }

// StartYear returns the calendar year of the start boundary.
func (r Range) StartYear() int { return r.Start.Year() }

// EndYear returns the calendar year of the end boundary.
func (r Range) EndYear() int { return r.End.Year() }

func (r Range) String() string {
	return fmt.Sprintf("[%s, %s]", r.Start.Format(time.RFC3339Nano), r.End.Format(time.RFC3339Nano))
}

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func yearStart(year int) time.Time {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns the calendar month containing date.
func MonthRange(date time.Time) Range {
	start := monthStart(date)
	return Range{Start: start, End: start.AddDate(0, 1, 0).Add(-lastInstant)}
}

// PreviousMonthRange returns the calendar month before the one containing date.
func PreviousMonthRange(date time.Time) Range {
	return MonthRange(monthStart(date).AddDate(0, -1, 0))
}

// YearRange returns the calendar year containing date.
func YearRange(date time.Time) Range {
	start := yearStart(date.UTC().Year())
	return Range{Start: start, End: start.AddDate(1, 0, 0).Add(-lastInstant)}
}

// PreviousYearRange returns the calendar year before the one containing date.
func PreviousYearRange(date time.Time) Range {
	return YearRange(yearStart(date.UTC().Year() - 1))
}

// LastNYearsRange spans Jan 1 of (year - n + 1) through the end of date's year.
// n below 1 is treated as 1 and the start year never goes below 0.
func LastNYearsRange(date time.Time, n int) Range {
	if n < 1 {
		n = 1
	}
	current := date.UTC().Year()
	first := current - n + 1
	if first < 0 {
		first = 0
	}
	return Range{
		Start: yearStart(first),
		End:   yearStart(current).AddDate(1, 0, 0).Add(-lastInstant),
	}
}

// MonthKey formats t as a "YYYY-MM" bucket in UTC.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// YearKey formats a year as a zero-padded "YYYY" bucket.
func YearKey(year int) string {
	return fmt.Sprintf("%04d", year)
}

// YearLabels returns the dense, ascending list of year keys in [startYear, endYear].
func YearLabels(startYear, endYear int) []string {
	if endYear < startYear {
		return []string{}
	}
	labels := make([]string, 0, endYear-startYear+1)
	for y := startYear; y <= endYear; y++ {
		labels = append(labels, YearKey(y))
	}
	return labels
}
