// Package schedule holds the clinic's booking rules: which slots are breaks,
// whether an instant is free, how appointments are laid out on a calendar and
// which display category each one falls into. Everything here is a pure
// function of its inputs.
package schedule

import (
	"fmt"
	"time"
)

// Clock is a time of day at minute precision.
type Clock struct {
	Hour   int
	Minute int
}

func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("parse clock %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute()}
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

func (c Clock) minutes() int { return c.Hour*60 + c.Minute }

// On returns the instant at clock c on the calendar day of date.
func (c Clock) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, date.Location())
}

// Grid bounds for the half-hour calendar and booking form.
var (
	OpeningClock = Clock{Hour: 9}
	ClosingClock = Clock{Hour: 21}
	SlotStep     = 30 * time.Minute
)

// IsBreakSlot reports whether clock on date is outside normal operating
// hours: the 14:00 lunch slot, 17:30 and every slot from 18:00, all of
// Sunday, and Saturday from 13:00.
func IsBreakSlot(c Clock, date time.Time) bool {
	if (c.Hour == 14 && c.Minute == 0) ||
		(c.Hour == 17 && c.Minute == 30) ||
		c.Hour == 18 ||
		c.Hour >= 19 {
		return true
	}
	switch date.Weekday() {
	case time.Sunday:
		return true
	case time.Saturday:
		return c.Hour >= 13
	}
	return false
}

// IsBreakLabel is IsBreakSlot over an "HH:MM" label. A label that does not
// parse matches no time-of-day rule, so only Sunday makes it a break.
func IsBreakLabel(label string, date time.Time) bool {
	c, err := ParseClock(label)
	if err != nil {
		return date.Weekday() == time.Sunday
	}
	return IsBreakSlot(c, date)
}

// IsClickable reports whether staff may book into the slot. Break slots are
// marked on the calendar but stay bookable, so this is always true.
func IsClickable(Clock, time.Time) bool {
	return true
}

// SlotLabels lists the half-hour grid labels from opening up to, not
// including, closing.
func SlotLabels() []string {
	var labels []string
	step := int(SlotStep / time.Minute)
	for m := OpeningClock.minutes(); m < ClosingClock.minutes(); m += step {
		labels = append(labels, Clock{Hour: m / 60, Minute: m % 60}.String())
	}
	return labels
}
