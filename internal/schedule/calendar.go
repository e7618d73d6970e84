package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
)

type Mode string

const (
	ModeDense    Mode = "dense"
	ModeDetailed Mode = "detailed"
)

const (
	// DenseThreshold is the longest range, in days, still drawn slot by slot.
	DenseThreshold = 7
	PreviewLimit   = 2
	// MinBarPercent keeps small shares visible in the per-type bars.
	MinBarPercent = 20
)

// Weekdays heads the dense grid, Monday first.
var Weekdays = []string{"Lun", "Mar", "Mer", "Jeu", "Ven", "Sam", "Dim"}

// View is the calendar for one date range. Dense views fill Summaries,
// detailed views fill Slots and Grid.
type View struct {
	Mode          Mode         `json:"mode"`
	Days          []time.Time  `json:"days"`
	Weekdays      []string     `json:"weekdays,omitempty"`
	LeadingBlanks int          `json:"leadingBlanks,omitempty"`
	Summaries     []DaySummary `json:"summaries,omitempty"`
	Slots         []string     `json:"slots,omitempty"`
	Grid          [][]Cell     `json:"grid,omitempty"`
}

type DaySummary struct {
	Date      time.Time   `json:"date"`
	Count     int         `json:"count"`
	Breakdown []TypeShare `json:"breakdown,omitempty"`
	Preview   []Entry     `json:"preview,omitempty"`
	Overflow  int         `json:"overflow,omitempty"`
	Empty     bool        `json:"empty"`
}

// OverflowLabel is the "+N autres" line under a truncated preview, or "".
func (d DaySummary) OverflowLabel() string {
	if d.Overflow <= 0 {
		return ""
	}
	return "+" + strconv.Itoa(d.Overflow) + " autres"
}

// TypeShare is one bar of a day's per-type breakdown.
type TypeShare struct {
	Type     string   `json:"type"`
	Category Category `json:"category"`
	Count    int      `json:"count"`
	Percent  int      `json:"percent"`
	Width    int      `json:"width"`
}

// Entry is an appointment as drawn inside a day or slot.
type Entry struct {
	ID       uuid.UUID                `json:"id"`
	Label    string                   `json:"label"`
	Patient  string                   `json:"patient"`
	Time     string                   `json:"time"`
	Status   clinic.AppointmentStatus `json:"status"`
	Category Category                 `json:"category"`
}

type Cell struct {
	Date         time.Time `json:"date"`
	Slot         string    `json:"slot"`
	Break        bool      `json:"break"`
	Clickable    bool      `json:"clickable"`
	Appointments []Entry   `json:"appointments,omitempty"`
}

// Build lays appointments out over rng. It keeps no state between calls.
func Build(rng clinic.DateRange, appointments []clinic.Appointment, now time.Time) View {
	days := rng.Days()
	if rng.Len() > DenseThreshold {
		return buildDense(days, appointments, now)
	}
	return buildDetailed(days, appointments, now)
}

func buildDense(days []time.Time, appointments []clinic.Appointment, now time.Time) View {
	v := View{
		Mode:      ModeDense,
		Days:      days,
		Weekdays:  Weekdays,
		Summaries: make([]DaySummary, 0, len(days)),
	}
	if len(days) > 0 {
		v.LeadingBlanks = (int(days[0].Weekday()) + 6) % 7
	}
	for _, day := range days {
		v.Summaries = append(v.Summaries, summarizeDay(day, appointments, now))
	}
	return v
}

func summarizeDay(day time.Time, appointments []clinic.Appointment, now time.Time) DaySummary {
	var onDay []clinic.Appointment
	for _, a := range appointments {
		if clinic.SameDay(a.At, day) {
			onDay = append(onDay, a)
		}
	}
	s := DaySummary{Date: day, Count: len(onDay), Empty: len(onDay) == 0}
	if s.Empty {
		return s
	}

	var order []string
	counts := map[string]int{}
	kinds := map[string]clinic.AppointmentType{}
	for _, a := range onDay {
		key := typeKey(a.Type)
		if _, seen := counts[key]; !seen {
			order = append(order, key)
			kinds[key] = a.Type
		}
		counts[key]++
	}
	ordered := make([]int, len(order))
	for i, k := range order {
		ordered[i] = counts[k]
	}
	pcts := percents(ordered, len(onDay))
	for i, k := range order {
		s.Breakdown = append(s.Breakdown, TypeShare{
			Type:     k,
			Category: TypeCategory(kinds[k]),
			Count:    ordered[i],
			Percent:  pcts[i],
			Width:    max(pcts[i], MinBarPercent),
		})
	}

	for _, a := range onDay[:min(PreviewLimit, len(onDay))] {
		e := entryFor(a, now)
		e.Label = a.TimeLabel() + " - " + a.Patient
		s.Preview = append(s.Preview, e)
	}
	s.Overflow = len(onDay) - len(s.Preview)
	return s
}

func buildDetailed(days []time.Time, appointments []clinic.Appointment, now time.Time) View {
	slots := SlotLabels()
	v := View{
		Mode:  ModeDetailed,
		Days:  days,
		Slots: slots,
		Grid:  make([][]Cell, len(slots)),
	}
	for i, label := range slots {
		clock, _ := ParseClock(label)
		row := make([]Cell, len(days))
		for j, day := range days {
			cell := Cell{
				Date:      day,
				Slot:      label,
				Break:     IsBreakSlot(clock, day),
				Clickable: IsClickable(clock, day),
			}
			// Only appointments whose stored time carries the grid label are
			// shown; off-grid starts such as 10:15 are not drawn.
			for _, a := range appointments {
				if strings.Contains(a.StoredTime(), label) && clinic.SameDay(a.At, day) {
					e := entryFor(a, now)
					e.Label = a.Patient
					cell.Appointments = append(cell.Appointments, e)
				}
			}
			row[j] = cell
		}
		v.Grid[i] = row
	}
	return v
}

func entryFor(a clinic.Appointment, now time.Time) Entry {
	return Entry{
		ID:       a.ID,
		Patient:  a.Patient,
		Time:     a.TimeLabel(),
		Status:   a.Status,
		Category: ClassifyAppointment(a, now),
	}
}

// percents splits 100 across counts by largest remainder, ties going to the
// earlier entry, so the result always sums to 100.
func percents(counts []int, total int) []int {
	out := make([]int, len(counts))
	if total == 0 {
		return out
	}
	rem := make([]int, len(counts))
	sum := 0
	for i, c := range counts {
		out[i] = c * 100 / total
		rem[i] = c * 100 % total
		sum += out[i]
	}
	for left := 100 - sum; left > 0; left-- {
		best := 0
		for i := range rem {
			if rem[i] > rem[best] {
				best = i
			}
		}
		out[best]++
		rem[best] = -1
	}
	return out
}

const (
	defaultTypeKey   = "autre"
	defaultStatusKey = "inconnu"
)

func typeKey(t clinic.AppointmentType) string {
	if t.IsZero() {
		return defaultTypeKey
	}
	return t.String()
}

// Summary counts appointments by lowercased type and by status.
type Summary struct {
	Total    int            `json:"total"`
	Types    map[string]int `json:"types"`
	Statuses map[string]int `json:"statuses"`
}

func Summarize(appointments []clinic.Appointment) Summary {
	s := Summary{
		Total:    len(appointments),
		Types:    map[string]int{},
		Statuses: map[string]int{},
	}
	for _, a := range appointments {
		s.Types[strings.ToLower(typeKey(a.Type))]++
		status := string(a.Status)
		if status == "" {
			status = defaultStatusKey
		}
		s.Statuses[status]++
	}
	return s
}
