package clinic

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StoredTimeLayout is the textual form of an appointment instant. It has no
// seconds and no zone: clinic times are naive wall-clock values.
const StoredTimeLayout = "2006-01-02T15:04"

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmé"
	StatusPending   AppointmentStatus = "en-attente"
	StatusCancelled AppointmentStatus = "annulé"
)

// ParseStatus accepts the French labels and their English names. Anything
// else is returned lowercased so status buckets can still report it.
func ParseStatus(s string) AppointmentStatus {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "confirmé", "confirme", "confirmed":
		return StatusConfirmed
	case "en-attente", "en attente", "pending":
		return StatusPending
	case "annulé", "annule", "cancelled", "canceled":
		return StatusCancelled
	default:
		return AppointmentStatus(v)
	}
}

type Appointment struct {
	ID        uuid.UUID
	Patient   string
	PatientID *uuid.UUID
	Contact   string
	At        time.Time
	Duration  time.Duration
	Type      AppointmentType
	Source    Source
	Status    AppointmentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StoredTime is the canonical string an appointment is matched on, both for
// double-booking checks and for calendar slot lookup.
func (a Appointment) StoredTime() string {
	return a.At.Format(StoredTimeLayout)
}

func (a Appointment) TimeLabel() string {
	return a.At.Format(ClockLayout)
}

func (a Appointment) IsCancelled() bool {
	return a.Status == StatusCancelled
}

type Insurance struct {
	Active   bool   `json:"active"`
	Provider string `json:"provider,omitempty"`
}

type Patient struct {
	ID                uuid.UUID
	Number            string
	LastName          string
	FirstName         string
	Phone             string
	Email             string
	City              string
	Sector            string
	NationalID        string
	BirthDate         *time.Time
	ConsultationType  string
	Insurance         Insurance
	MedicalHistory    []string
	ConsultationCount int
	LastVisit         *time.Time
	NextVisit         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DisplayName is how appointments refer to a patient.
func (p Patient) DisplayName() string {
	return strings.TrimSpace(p.LastName + " " + p.FirstName)
}

type PaymentStatus string

const (
	PaymentPaid      PaymentStatus = "Payé"
	PaymentPending   PaymentStatus = "En attente"
	PaymentCancelled PaymentStatus = "Annulé"
	PaymentFree      PaymentStatus = "Gratuit"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "payé", "paye", "paid":
		return PaymentPaid, true
	case "en attente", "en-attente", "pending":
		return PaymentPending, true
	case "annulé", "annule", "cancelled", "canceled":
		return PaymentCancelled, true
	case "gratuit", "free":
		return PaymentFree, true
	}
	return "", false
}

type Payment struct {
	ID            uuid.UUID
	PatientNumber string
	Patient       string
	Date          time.Time
	Amount        decimal.Decimal
	Status        PaymentStatus
	Method        string
	Insurance     Insurance
	CreatedAt     time.Time
}

type Document struct {
	ID            uuid.UUID
	PatientNumber string
	Patient       string
	Type          string
	Name          string
	Content       string
	CreatedAt     time.Time
}

// WallClock re-anchors t to loc keeping its wall-clock fields. Used where
// naive timestamps cross a boundary that attaches its own zone.
func WallClock(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

// SameDay compares calendar dates by wall clock.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
