package clinic

import "time"

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both ends to midnight. A reversed range collapses to
// the single day of start.
func NewDateRange(start, end time.Time) DateRange {
	s := startOfDay(start)
	e := startOfDay(end)
	if e.Before(s) {
		e = s
	}
	return DateRange{Start: s, End: e}
}

// Len is the number of calendar days covered, both ends included.
func (r DateRange) Len() int {
	s := startOfDay(r.Start)
	e := startOfDay(r.End)
	// Count with AddDate rather than hours so DST shifts don't drop a day.
	n := 0
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		n++
	}
	return n
}

func (r DateRange) Days() []time.Time {
	s := startOfDay(r.Start)
	e := startOfDay(r.End)
	var days []time.Time
	for d := s; !d.After(e); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) Contains(t time.Time) bool {
	d := startOfDay(t)
	return !d.Before(startOfDay(r.Start)) && !d.After(startOfDay(r.End))
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
