package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
)

// Available reports whether at is free of every non-cancelled appointment
// other than excludeID. Instants are compared by their stored minute.
// Break slots are not considered here.
func Available(appointments []clinic.Appointment, at time.Time, excludeID uuid.UUID) bool {
	key := at.Format(clinic.StoredTimeLayout)
	for _, a := range appointments {
		if a.IsCancelled() {
			continue
		}
		if excludeID != uuid.Nil && a.ID == excludeID {
			continue
		}
		if a.StoredTime() == key {
			return false
		}
	}
	return true
}

// Conflict returns the appointment occupying at, if any.
func Conflict(appointments []clinic.Appointment, at time.Time, excludeID uuid.UUID) (*clinic.Appointment, bool) {
	key := at.Format(clinic.StoredTimeLayout)
	for i := range appointments {
		a := appointments[i]
		if a.IsCancelled() || (excludeID != uuid.Nil && a.ID == excludeID) {
			continue
		}
		if a.StoredTime() == key {
			return &a, true
		}
	}
	return nil, false
}

// Checker answers availability questions against a live store.
type Checker struct {
	store clinic.AppointmentLister
}

func NewChecker(store clinic.AppointmentLister) *Checker {
	return &Checker{store: store}
}

// IsTimeSlotAvailable checks the candidate instant. When label parses as
// "HH:MM" the candidate is that clock on the day of at, the way the booking
// form joins its date and time fields.
func (c *Checker) IsTimeSlotAvailable(ctx context.Context, at time.Time, label string, excludeID uuid.UUID) (bool, error) {
	if clock, err := ParseClock(label); err == nil {
		at = clock.On(at)
	}
	appointments, err := c.store.ListAppointments(ctx)
	if err != nil {
		return false, fmt.Errorf("list appointments: %w", err)
	}
	return Available(appointments, at, excludeID), nil
}
