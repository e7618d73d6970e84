// Package patient manages patient files and the payments and documents
// attached to them.
package patient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
	"github.com/hackgods/clinic-office-scheduling/internal/config"
	"github.com/hackgods/clinic-office-scheduling/internal/logging"
	"github.com/hackgods/clinic-office-scheduling/internal/validate"
)

// numberAttempts bounds how often Register picks a new number after the
// store reports the previous pick as taken by another writer.
const numberAttempts = 3

type Service struct {
	store     clinic.Store
	validator *validate.Validator
	log       *logrus.Entry
	loc       *time.Location

	// numberMu serialises the read of the highest number with the insert
	// that claims the next one.
	numberMu sync.Mutex
}

func NewService(store clinic.Store, v *validate.Validator, log *logrus.Logger, cfg config.Config) *Service {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		store:     store,
		validator: v,
		log:       log.WithField("component", "patient"),
		loc:       loc,
	}
}

// Register validates the form and files a new patient under the next free
// number.
func (s *Service) Register(ctx context.Context, form Form) (*clinic.Patient, error) {
	if err := s.validator.Struct(&form); err != nil {
		return nil, err
	}

	s.numberMu.Lock()
	defer s.numberMu.Unlock()

	var p *clinic.Patient
	for attempt := 1; ; attempt++ {
		existing, err := s.store.ListPatients(ctx)
		if err != nil {
			return nil, fmt.Errorf("list patients: %w", err)
		}

		p = &clinic.Patient{Number: NextNumber(existing)}
		form.apply(p, s.loc)
		err = s.store.CreatePatient(ctx, p)
		if err == nil {
			break
		}
		if !errors.Is(err, clinic.ErrDuplicatePatientNumber) || attempt == numberAttempts {
			return nil, fmt.Errorf("create patient: %w", err)
		}
		s.logger(ctx).WithFields(logrus.Fields{
			"number":  p.Number,
			"attempt": attempt,
		}).Warn("patient number taken, retrying")
	}

	s.logger(ctx).WithFields(logrus.Fields{
		"patient_id": p.ID,
		"number":     p.Number,
	}).Info("patient registered")
	return p, nil
}

// NextNumber returns "P" and a three digit sequence one past the highest
// number on file. Numbers past 999 simply grow wider.
func NextNumber(patients []clinic.Patient) string {
	highest := 0
	for _, p := range patients {
		if n, ok := numberSeq(p.Number); ok && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("P%03d", highest+1)
}

func numberSeq(number string) (int, bool) {
	rest, ok := strings.CutPrefix(number, "P")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Update rewrites the editable fields of a patient. Number, visit counters
// and visit dates are kept.
func (s *Service) Update(ctx context.Context, id uuid.UUID, form Form) (*clinic.Patient, error) {
	p, err := s.store.GetPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if err := s.validator.Struct(&form); err != nil {
		return nil, err
	}
	form.apply(p, s.loc)
	if err := s.store.UpdatePatient(ctx, p); err != nil {
		return nil, fmt.Errorf("update patient: %w", err)
	}
	return p, nil
}

func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeletePatient(ctx, id); err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	s.logger(ctx).WithField("patient_id", id).Info("patient removed")
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*clinic.Patient, error) {
	p, err := s.store.GetPatient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return p, nil
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*clinic.Patient, error) {
	p, err := s.store.GetPatientByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("get patient %s: %w", number, err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context) ([]clinic.Patient, error) {
	ps, err := s.store.ListPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return ps, nil
}

// Search matches term, ignoring case, against name, number, phone, email and
// city. An empty term lists everyone.
func (s *Service) Search(ctx context.Context, term string) ([]clinic.Patient, error) {
	ps, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return ps, nil
	}
	out := make([]clinic.Patient, 0)
	for _, p := range ps {
		for _, field := range []string{p.LastName, p.FirstName, p.Number, p.Phone, p.Email, p.City} {
			if strings.Contains(strings.ToLower(field), term) {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

// Age is the patient's age in whole years at now, or -1 without a birth date.
func Age(p clinic.Patient, now time.Time) int {
	if p.BirthDate == nil {
		return -1
	}
	b := *p.BirthDate
	years := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		years--
	}
	return max(years, 0)
}

func (s *Service) logger(ctx context.Context) *logrus.Entry {
	return logging.Scoped(ctx, s.log)
}
