package clinic

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrDocumentNotFound    = errors.New("document not found")

	// ErrDuplicatePatientNumber is returned by CreatePatient when the number
	// is already on file.
	ErrDuplicatePatientNumber = errors.New("patient number already in use")

	// ErrStore marks failures of the storage backend itself.
	ErrStore = errors.New("clinic store failure")
)

// StoreError wraps a backend failure with the operation that hit it.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStore, e.Err}
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// AppointmentLister is all the availability checker and calendar need.
type AppointmentLister interface {
	ListAppointments(ctx context.Context) ([]Appointment, error)
}

// Store holds every record of a clinic session. Lists come back in insertion
// order.
type Store interface {
	AppointmentLister
	GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	CreateAppointment(ctx context.Context, a *Appointment) error
	UpdateAppointment(ctx context.Context, a *Appointment) error
	DeleteAppointment(ctx context.Context, id uuid.UUID) error

	ListPatients(ctx context.Context) ([]Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetPatientByNumber(ctx context.Context, number string) (*Patient, error)
	CreatePatient(ctx context.Context, p *Patient) error
	UpdatePatient(ctx context.Context, p *Patient) error
	DeletePatient(ctx context.Context, id uuid.UUID) error

	ListPayments(ctx context.Context) ([]Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error)
	CreatePayment(ctx context.Context, p *Payment) error
	UpdatePayment(ctx context.Context, p *Payment) error
	DeletePayment(ctx context.Context, id uuid.UUID) error

	ListDocuments(ctx context.Context) ([]Document, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	CreateDocument(ctx context.Context, d *Document) error
	UpdateDocument(ctx context.Context, d *Document) error
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}
