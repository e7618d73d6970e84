package clinic

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps a clinic session in process memory. Construct one per
// session; it is safe for concurrent use.
type MemoryStore struct {
	mu           sync.RWMutex
	now          func() time.Time
	appointments table[Appointment]
	patients     table[Patient]
	payments     table[Payment]
	documents    table[Document]
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:          time.Now,
		appointments: table[Appointment]{id: func(a *Appointment) uuid.UUID { return a.ID }},
		patients:     table[Patient]{id: func(p *Patient) uuid.UUID { return p.ID }},
		payments:     table[Payment]{id: func(p *Payment) uuid.UUID { return p.ID }},
		documents:    table[Document]{id: func(d *Document) uuid.UUID { return d.ID }},
	}
}

// table is an insertion-ordered slice of records keyed by UUID.
type table[T any] struct {
	rows []T
	id   func(*T) uuid.UUID
}

func (t *table[T]) index(id uuid.UUID) int {
	for i := range t.rows {
		if t.id(&t.rows[i]) == id {
			return i
		}
	}
	return -1
}

func (t *table[T]) remove(id uuid.UUID) bool {
	i := t.index(id)
	if i < 0 {
		return false
	}
	t.rows = slices.Delete(t.rows, i, i+1)
	return true
}

// Appointments

func (s *MemoryStore) ListAppointments(_ context.Context) ([]Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.appointments.rows), nil
}

func (s *MemoryStore) GetAppointment(_ context.Context, id uuid.UUID) (*Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.appointments.index(id)
	if i < 0 {
		return nil, ErrAppointmentNotFound
	}
	a := s.appointments.rows[i]
	return &a, nil
}

func (s *MemoryStore) CreateAppointment(_ context.Context, a *Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	now := s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	s.appointments.rows = append(s.appointments.rows, *a)
	return nil
}

func (s *MemoryStore) UpdateAppointment(_ context.Context, a *Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.appointments.index(a.ID)
	if i < 0 {
		return ErrAppointmentNotFound
	}
	a.CreatedAt = s.appointments.rows[i].CreatedAt
	a.UpdatedAt = s.now()
	s.appointments.rows[i] = *a
	return nil
}

func (s *MemoryStore) DeleteAppointment(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.appointments.remove(id) {
		return ErrAppointmentNotFound
	}
	return nil
}

// Patients

func clonePatient(p Patient) Patient {
	p.MedicalHistory = slices.Clone(p.MedicalHistory)
	p.BirthDate = cloneTime(p.BirthDate)
	p.LastVisit = cloneTime(p.LastVisit)
	p.NextVisit = cloneTime(p.NextVisit)
	return p
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func (s *MemoryStore) ListPatients(_ context.Context) ([]Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Patient, len(s.patients.rows))
	for i, p := range s.patients.rows {
		out[i] = clonePatient(p)
	}
	return out, nil
}

func (s *MemoryStore) GetPatient(_ context.Context, id uuid.UUID) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.patients.index(id)
	if i < 0 {
		return nil, ErrPatientNotFound
	}
	p := clonePatient(s.patients.rows[i])
	return &p, nil
}

func (s *MemoryStore) GetPatientByNumber(_ context.Context, number string) (*Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients.rows {
		if p.Number == number {
			c := clonePatient(p)
			return &c, nil
		}
	}
	return nil, ErrPatientNotFound
}

func (s *MemoryStore) CreatePatient(_ context.Context, p *Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.patients.rows {
		if existing.Number == p.Number {
			return ErrDuplicatePatientNumber
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	s.patients.rows = append(s.patients.rows, clonePatient(*p))
	return nil
}

func (s *MemoryStore) UpdatePatient(_ context.Context, p *Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.patients.index(p.ID)
	if i < 0 {
		return ErrPatientNotFound
	}
	p.CreatedAt = s.patients.rows[i].CreatedAt
	p.UpdatedAt = s.now()
	s.patients.rows[i] = clonePatient(*p)
	return nil
}

func (s *MemoryStore) DeletePatient(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.patients.remove(id) {
		return ErrPatientNotFound
	}
	return nil
}

// Payments

func (s *MemoryStore) ListPayments(_ context.Context) ([]Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.payments.rows), nil
}

func (s *MemoryStore) GetPayment(_ context.Context, id uuid.UUID) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.payments.index(id)
	if i < 0 {
		return nil, ErrPaymentNotFound
	}
	p := s.payments.rows[i]
	return &p, nil
}

func (s *MemoryStore) CreatePayment(_ context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = s.now()
	s.payments.rows = append(s.payments.rows, *p)
	return nil
}

func (s *MemoryStore) UpdatePayment(_ context.Context, p *Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.payments.index(p.ID)
	if i < 0 {
		return ErrPaymentNotFound
	}
	p.CreatedAt = s.payments.rows[i].CreatedAt
	s.payments.rows[i] = *p
	return nil
}

func (s *MemoryStore) DeletePayment(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.payments.remove(id) {
		return ErrPaymentNotFound
	}
	return nil
}

// Documents

func (s *MemoryStore) ListDocuments(_ context.Context) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.documents.rows), nil
}

func (s *MemoryStore) GetDocument(_ context.Context, id uuid.UUID) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.documents.index(id)
	if i < 0 {
		return nil, ErrDocumentNotFound
	}
	d := s.documents.rows[i]
	return &d, nil
}

func (s *MemoryStore) CreateDocument(_ context.Context, d *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = s.now()
	s.documents.rows = append(s.documents.rows, *d)
	return nil
}

func (s *MemoryStore) UpdateDocument(_ context.Context, d *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.documents.index(d.ID)
	if i < 0 {
		return ErrDocumentNotFound
	}
	d.CreatedAt = s.documents.rows[i].CreatedAt
	s.documents.rows[i] = *d
	return nil
}

func (s *MemoryStore) DeleteDocument(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.documents.remove(id) {
		return ErrDocumentNotFound
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
