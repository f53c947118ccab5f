package types

import (
	"fmt"
	"time"
)

// DateFormat is the wire format for report date boundaries.
const DateFormat = "2006-01-02"

// DateRange is an inclusive start/end pair of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange validates and parses wire-format date boundaries.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateFormat, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.Parse(DateFormat, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("end date %s precedes start date %s", end, start)
	}
	return DateRange{Start: s, End: e}, nil
}

// Days returns the inclusive length of the range in days.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Previous returns the period of equal length immediately before this one.
// Used for period-over-period KPI deltas.
func (r DateRange) Previous() DateRange {
	days := r.Days()
	return DateRange{
		Start: r.Start.AddDate(0, 0, -days),
		End:   r.Start.AddDate(0, 0, -1),
	}
}

// StartString returns the wire representation of the range start.
func (r DateRange) StartString() string {
	return r.Start.Format(DateFormat)
}

// EndString returns the wire representation of the range end.
func (r DateRange) EndString() string {
	return r.End.Format(DateFormat)
}
