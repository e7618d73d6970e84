package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
)

// BookingForm is what the front desk submits to book or edit an appointment.
// Date and Time are kept apart the way the form collects them.
type BookingForm struct {
	Patient      string     `json:"patient" validate:"required,max=200"`
	PatientID    *uuid.UUID `json:"patientId,omitempty"`
	Contact      string     `json:"contact" validate:"required,phone10"`
	Date         string     `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string     `json:"time" validate:"required,datetime=15:04"`
	Duration     int        `json:"duration,omitempty" validate:"gte=0,lte=480"`
	Type         string     `json:"type,omitempty" validate:"max=100"`
	CustomType   string     `json:"customType,omitempty" validate:"max=100"`
	Source       string     `json:"source,omitempty" validate:"max=100"`
	CustomSource string     `json:"customSource,omitempty" validate:"max=100"`
	Status       string     `json:"status,omitempty" validate:"omitempty,oneof=confirmé en-attente annulé confirmed pending cancelled"`
}

// Instant joins Date and Time as clinic wall clock in loc.
func (f BookingForm) Instant(loc *time.Location) (time.Time, error) {
	at, err := time.ParseInLocation(clinic.DateLayout+" "+clinic.ClockLayout, f.Date+" "+f.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("compose instant: %w", err)
	}
	return at, nil
}

// apply copies the form onto a, leaving identity and timestamps alone. A
// custom type or source typed by staff wins over the list choice.
func (f BookingForm) apply(a *clinic.Appointment, at time.Time, defaultDuration time.Duration) {
	a.Patient = strings.TrimSpace(f.Patient)
	a.PatientID = f.PatientID
	a.Contact = f.Contact
	a.At = at
	a.Duration = defaultDuration
	if f.Duration > 0 {
		a.Duration = time.Duration(f.Duration) * time.Minute
	}
	a.Type = clinic.ParseType(firstNonEmpty(f.CustomType, f.Type))
	a.Source = clinic.ParseSource(firstNonEmpty(f.CustomSource, f.Source))
	if f.Status != "" {
		a.Status = clinic.ParseStatus(f.Status)
	}
	if a.Status == "" {
		a.Status = clinic.StatusPending
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
