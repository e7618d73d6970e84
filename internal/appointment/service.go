package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
	"github.com/hackgods/clinic-office-scheduling/internal/config"
	"github.com/hackgods/clinic-office-scheduling/internal/logging"
	redisclient "github.com/hackgods/clinic-office-scheduling/internal/redis"
	"github.com/hackgods/clinic-office-scheduling/internal/schedule"
	"github.com/hackgods/clinic-office-scheduling/internal/validate"
)

const (
	EventAppointmentBooked   = "APPOINTMENT_BOOKED"
	EventAppointmentUpdated  = "APPOINTMENT_UPDATED"
	EventAppointmentStatus   = "APPOINTMENT_STATUS_CHANGED"
	EventAppointmentDeleted  = "APPOINTMENT_DELETED"
	EventPatientVisitUpdated = "PATIENT_NEXT_VISIT_SET"
)

// MaxRangeDays caps the span of a calendar or summary request.
const MaxRangeDays = 366

// slotMoveAttempts bounds how often SetStatus follows an appointment that a
// concurrent reschedule keeps moving.
const slotMoveAttempts = 2

var (
	ErrSlotTaken       = errors.New("Ce créneau horaire est déjà occupé par un autre rendez-vous")
	ErrSlotBeingBooked = errors.New("slot is currently being booked, please retry")
)

type Service struct {
	store           clinic.Store
	locker          Locker
	checker         *schedule.Checker
	validator       *validate.Validator
	log             *logrus.Entry
	loc             *time.Location
	defaultDuration time.Duration
	now             func() time.Time
}

func NewService(store clinic.Store, locker Locker, v *validate.Validator, log *logrus.Logger, cfg config.Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	d := cfg.DefaultDuration
	if d <= 0 {
		d = 30 * time.Minute
	}
	return &Service{
		store:           store,
		locker:          locker,
		checker:         schedule.NewChecker(store),
		validator:       v,
		log:             log.WithField("component", "appointment"),
		loc:             loc,
		defaultDuration: d,
		now:             time.Now,
	}
}

// Book validates the form and creates the appointment if its instant is
// free. The check and the write happen under a lock on the instant so that
// concurrent desks cannot both win the slot.
func (s *Service) Book(ctx context.Context, form BookingForm) (*clinic.Appointment, error) {
	at, err := s.prepare(ctx, form)
	if err != nil {
		return nil, err
	}

	appt := &clinic.Appointment{}
	form.apply(appt, at, s.defaultDuration)

	err = s.withSlotLock(ctx, at, func(lockCtx context.Context) error {
		if err := s.ensureFree(lockCtx, at, form.Time, uuid.Nil); err != nil {
			return err
		}
		if err := s.store.CreateAppointment(lockCtx, appt); err != nil {
			return fmt.Errorf("create appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.event(ctx, EventAppointmentBooked, appt)
	s.setNextVisit(ctx, appt)
	return appt, nil
}

// Update replaces an appointment's fields from the form. The appointment is
// excluded from its own conflict check so resubmitting at the original time
// succeeds.
func (s *Service) Update(ctx context.Context, id uuid.UUID, form BookingForm) (*clinic.Appointment, error) {
	existing, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	at, err := s.prepare(ctx, form)
	if err != nil {
		return nil, err
	}

	updated := *existing
	form.apply(&updated, at, s.defaultDuration)

	err = s.withSlotLock(ctx, at, func(lockCtx context.Context) error {
		if !updated.IsCancelled() {
			if err := s.ensureFree(lockCtx, at, form.Time, id); err != nil {
				return err
			}
		}
		if err := s.store.UpdateAppointment(lockCtx, &updated); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.event(ctx, EventAppointmentUpdated, &updated)
	if !updated.At.Equal(existing.At) || updated.Patient != existing.Patient {
		s.setNextVisit(ctx, &updated)
	}
	return &updated, nil
}

// SetStatus moves an appointment to status. Reviving a cancelled appointment
// needs its instant to still be free.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (*clinic.Appointment, error) {
	next := clinic.ParseStatus(status)
	if schedule.StatusCategory(next) == schedule.CategoryUnknown {
		return nil, validate.NewError("status", "Statut inconnu")
	}

	appt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	at := appt.At
	changed := false

	// The record is read again under the lock of its slot. When a concurrent
	// reschedule moved it meanwhile, the lock follows it to the new slot.
	for attempt := 0; ; attempt++ {
		err = s.withSlotLock(ctx, at, func(lockCtx context.Context) error {
			fresh, err := s.store.GetAppointment(lockCtx, id)
			if err != nil {
				return fmt.Errorf("load appointment: %w", err)
			}
			appt = fresh
			if !fresh.At.Equal(at) || fresh.Status == next {
				return nil
			}
			if fresh.IsCancelled() && next != clinic.StatusCancelled {
				if err := s.ensureFree(lockCtx, fresh.At, "", id); err != nil {
					return err
				}
			}
			fresh.Status = next
			if err := s.store.UpdateAppointment(lockCtx, fresh); err != nil {
				return fmt.Errorf("update appointment status: %w", err)
			}
			changed = true
			return nil
		})
		if err != nil {
			return nil, err
		}
		if appt.At.Equal(at) {
			break
		}
		if attempt == slotMoveAttempts {
			return nil, ErrSlotBeingBooked
		}
		at = appt.At
	}

	if changed {
		s.event(ctx, EventAppointmentStatus, appt)
	}
	return appt, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	appt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}
	if err := s.store.DeleteAppointment(ctx, id); err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	s.event(ctx, EventAppointmentDeleted, appt)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*clinic.Appointment, error) {
	appt, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

func (s *Service) List(ctx context.Context) ([]clinic.Appointment, error) {
	appts, err := s.store.ListAppointments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// ForPatient lists appointments whose patient name contains term, ignoring
// case.
func (s *Service) ForPatient(ctx context.Context, term string) ([]clinic.Appointment, error) {
	appts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]clinic.Appointment, 0)
	for _, a := range appts {
		if strings.Contains(strings.ToLower(a.Patient), term) {
			out = append(out, a)
		}
	}
	return out, nil
}

// IsTimeSlotAvailable answers the booking form's availability question for a
// date and "HH:MM" time.
func (s *Service) IsTimeSlotAvailable(ctx context.Context, date, clock string, excludeID uuid.UUID) (bool, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return false, err
	}
	if _, err := schedule.ParseClock(clock); err != nil {
		return false, validate.NewError("time", "Format invalide, attendu 15:04")
	}
	return s.checker.IsTimeSlotAvailable(ctx, day, clock, excludeID)
}

// Calendar builds the calendar view between start and end, both "2006-01-02".
func (s *Service) Calendar(ctx context.Context, start, end string) (schedule.View, error) {
	rng, err := s.parseRange(start, end)
	if err != nil {
		return schedule.View{}, err
	}
	appts, err := s.List(ctx)
	if err != nil {
		return schedule.View{}, err
	}
	return schedule.Build(rng, appts, s.now()), nil
}

// Summary counts the appointments between start and end by type and status.
func (s *Service) Summary(ctx context.Context, start, end string) (schedule.Summary, error) {
	rng, err := s.parseRange(start, end)
	if err != nil {
		return schedule.Summary{}, err
	}
	appts, err := s.List(ctx)
	if err != nil {
		return schedule.Summary{}, err
	}
	inRange := make([]clinic.Appointment, 0, len(appts))
	for _, a := range appts {
		if rng.Contains(a.At) {
			inRange = append(inRange, a)
		}
	}
	return schedule.Summarize(inRange), nil
}

// SlotState is one entry of the booking form's time picker.
type SlotState struct {
	Label         string     `json:"label"`
	Break         bool       `json:"break"`
	Clickable     bool       `json:"clickable"`
	Available     bool       `json:"available"`
	AppointmentID *uuid.UUID `json:"appointmentId,omitempty"`
}

// DaySlots lists every grid slot of date with its break and booking state.
func (s *Service) DaySlots(ctx context.Context, date string) ([]SlotState, error) {
	day, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}
	appts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	labels := schedule.SlotLabels()
	out := make([]SlotState, 0, len(labels))
	for _, label := range labels {
		clock, _ := schedule.ParseClock(label)
		at := clock.On(day)
		st := SlotState{
			Label:     label,
			Break:     schedule.IsBreakSlot(clock, day),
			Clickable: schedule.IsClickable(clock, day),
			Available: true,
		}
		if a, taken := schedule.Conflict(appts, at, uuid.Nil); taken {
			id := a.ID
			st.Available = false
			st.AppointmentID = &id
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *Service) prepare(ctx context.Context, form BookingForm) (time.Time, error) {
	if err := s.validator.Struct(&form); err != nil {
		return time.Time{}, err
	}
	if form.PatientID != nil {
		if _, err := s.store.GetPatient(ctx, *form.PatientID); err != nil {
			if errors.Is(err, clinic.ErrPatientNotFound) {
				return time.Time{}, validate.NewError("patientId", "Patient introuvable")
			}
			return time.Time{}, fmt.Errorf("load patient: %w", err)
		}
	}
	at, err := form.Instant(s.loc)
	if err != nil {
		return time.Time{}, validate.NewError("date", "Date ou heure invalide")
	}
	return at, nil
}

func (s *Service) parseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(clinic.DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, validate.NewError("date", "Format invalide, attendu 2006-01-02")
	}
	return day, nil
}

// parseRange parses both ends and rejects spans longer than MaxRangeDays.
// A reversed range collapses to its start day.
func (s *Service) parseRange(start, end string) (clinic.DateRange, error) {
	from, err := s.parseDate(start)
	if err != nil {
		return clinic.DateRange{}, err
	}
	to, err := s.parseDate(end)
	if err != nil {
		return clinic.DateRange{}, err
	}
	rng := clinic.NewDateRange(from, to)
	if civilDays(rng.Start, rng.End) > MaxRangeDays {
		return clinic.DateRange{}, validate.NewError("end",
			fmt.Sprintf("La période ne peut pas dépasser %d jours", MaxRangeDays))
	}
	return rng, nil
}

// civilDays counts the calendar days from a to b, both included, ignoring
// the zone offsets of either end.
func civilDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from)/(24*time.Hour)) + 1
}

func (s *Service) ensureFree(ctx context.Context, at time.Time, label string, excludeID uuid.UUID) error {
	ok, err := s.checker.IsTimeSlotAvailable(ctx, at, label, excludeID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSlotTaken
	}
	return nil
}

func (s *Service) withSlotLock(ctx context.Context, at time.Time, fn func(ctx context.Context) error) error {
	err := s.locker.WithLock(ctx, at.Format(clinic.StoredTimeLayout), fn)
	if errors.Is(err, redisclient.ErrLockNotAcquired) {
		return ErrSlotBeingBooked
	}
	return err
}

// setNextVisit records the appointment as the next visit of the patient it
// names. A failure here is logged and does not undo the booking.
func (s *Service) setNextVisit(ctx context.Context, appt *clinic.Appointment) {
	p, err := s.findPatient(ctx, appt)
	if err != nil {
		if !errors.Is(err, clinic.ErrPatientNotFound) {
			s.logger(ctx).WithError(err).Warn("lookup patient for next visit")
		}
		return
	}
	at := appt.At
	p.NextVisit = &at
	if err := s.store.UpdatePatient(ctx, p); err != nil {
		s.logger(ctx).WithError(err).WithField("patient", p.Number).Warn("set next visit")
		return
	}
	s.logger(ctx).WithFields(logrus.Fields{
		"event":   EventPatientVisitUpdated,
		"patient": p.Number,
		"at":      appt.StoredTime(),
	}).Debug("patient next visit updated")
}

func (s *Service) findPatient(ctx context.Context, appt *clinic.Appointment) (*clinic.Patient, error) {
	if appt.PatientID != nil {
		return s.store.GetPatient(ctx, *appt.PatientID)
	}
	patients, err := s.store.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	for i := range patients {
		if patients[i].DisplayName() == appt.Patient || patients[i].Number == appt.Patient {
			return &patients[i], nil
		}
	}
	return nil, clinic.ErrPatientNotFound
}

func (s *Service) event(ctx context.Context, name string, appt *clinic.Appointment) {
	s.logger(ctx).WithFields(logrus.Fields{
		"event":          name,
		"appointment_id": appt.ID,
		"at":             appt.StoredTime(),
		"status":         appt.Status,
		"type":           appt.Type.String(),
		"source":         appt.Source.String(),
	}).Info("appointment event")
}

func (s *Service) logger(ctx context.Context) *logrus.Entry {
	return logging.Scoped(ctx, s.log)
}
