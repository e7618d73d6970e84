package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
	"github.com/hackgods/clinic-office-scheduling/internal/patient"
	"github.com/hackgods/clinic-office-scheduling/internal/schedule"
)

type StatusRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID        uuid.UUID                `json:"id"`
	Patient   string                   `json:"patient"`
	PatientID *uuid.UUID               `json:"patientId,omitempty"`
	Contact   string                   `json:"contact"`
	DateTime  string                   `json:"dateTime"`
	Date      string                   `json:"date"`
	Time      string                   `json:"time"`
	Duration  int                      `json:"duration"`
	Type      string                   `json:"type"`
	Source    string                   `json:"source"`
	Status    clinic.AppointmentStatus `json:"status"`
	Category  schedule.Category        `json:"category"`
	Color     string                   `json:"color"`
	Channel   schedule.Channel         `json:"channel"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

func toAppointmentResponse(a clinic.Appointment, now time.Time) AppointmentResponse {
	cat := schedule.ClassifyAppointment(a, now)
	return AppointmentResponse{
		ID:        a.ID,
		Patient:   a.Patient,
		PatientID: a.PatientID,
		Contact:   a.Contact,
		DateTime:  a.StoredTime(),
		Date:      a.At.Format(clinic.DateLayout),
		Time:      a.TimeLabel(),
		Duration:  int(a.Duration / time.Minute),
		Type:      a.Type.String(),
		Source:    a.Source.String(),
		Status:    a.Status,
		Category:  cat,
		Color:     schedule.Palette(cat),
		Channel:   schedule.SourceChannel(a.Source),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func toAppointmentResponses(appts []clinic.Appointment, now time.Time) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a, now))
	}
	return out
}

type AvailabilityResponse struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Break     bool   `json:"break"`
}

type PatientResponse struct {
	ID                uuid.UUID        `json:"id"`
	Number            string           `json:"number"`
	LastName          string           `json:"lastName"`
	FirstName         string           `json:"firstName"`
	Phone             string           `json:"phone"`
	Email             string           `json:"email,omitempty"`
	City              string           `json:"city,omitempty"`
	Sector            string           `json:"sector,omitempty"`
	NationalID        string           `json:"cin"`
	BirthDate         string           `json:"birthDate,omitempty"`
	Age               *int             `json:"age,omitempty"`
	ConsultationType  string           `json:"consultationType,omitempty"`
	Insurance         clinic.Insurance `json:"insurance"`
	MedicalHistory    []string         `json:"medicalHistory"`
	ConsultationCount int              `json:"consultationCount"`
	LastVisit         string           `json:"lastVisit,omitempty"`
	NextVisit         string           `json:"nextVisit,omitempty"`
	CreatedAt         time.Time        `json:"createdAt"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

func toPatientResponse(p clinic.Patient, now time.Time) PatientResponse {
	resp := PatientResponse{
		ID:                p.ID,
		Number:            p.Number,
		LastName:          p.LastName,
		FirstName:         p.FirstName,
		Phone:             p.Phone,
		Email:             p.Email,
		City:              p.City,
		Sector:            p.Sector,
		NationalID:        p.NationalID,
		BirthDate:         formatDate(p.BirthDate, clinic.DateLayout),
		ConsultationType:  p.ConsultationType,
		Insurance:         p.Insurance,
		MedicalHistory:    p.MedicalHistory,
		ConsultationCount: p.ConsultationCount,
		LastVisit:         formatDate(p.LastVisit, clinic.DateLayout),
		NextVisit:         formatDate(p.NextVisit, clinic.StoredTimeLayout),
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
	if resp.MedicalHistory == nil {
		resp.MedicalHistory = []string{}
	}
	if age := patient.Age(p, now); age >= 0 {
		resp.Age = &age
	}
	return resp
}

func toPatientResponses(ps []clinic.Patient, now time.Time) []PatientResponse {
	out := make([]PatientResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPatientResponse(p, now))
	}
	return out
}

type PaymentResponse struct {
	ID            uuid.UUID            `json:"id"`
	PatientNumber string               `json:"patientNumber"`
	Patient       string               `json:"patient"`
	Date          string               `json:"date"`
	Amount        string               `json:"amount"`
	Status        clinic.PaymentStatus `json:"status"`
	Method        string               `json:"method,omitempty"`
	Insurance     clinic.Insurance     `json:"insurance"`
	CreatedAt     time.Time            `json:"createdAt"`
}

func toPaymentResponse(p clinic.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		PatientNumber: p.PatientNumber,
		Patient:       p.Patient,
		Date:          p.Date.Format(clinic.DateLayout),
		Amount:        p.Amount.StringFixed(2),
		Status:        p.Status,
		Method:        p.Method,
		Insurance:     p.Insurance,
		CreatedAt:     p.CreatedAt,
	}
}

func toPaymentResponses(ps []clinic.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPaymentResponse(p))
	}
	return out
}

type DocumentResponse struct {
	ID            uuid.UUID `json:"id"`
	PatientNumber string    `json:"patientNumber"`
	Patient       string    `json:"patient"`
	Type          string    `json:"type"`
	Name          string    `json:"name"`
	Content       string    `json:"content,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toDocumentResponse(d clinic.Document) DocumentResponse {
	return DocumentResponse(d)
}

func toDocumentResponses(ds []clinic.Document) []DocumentResponse {
	out := make([]DocumentResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, toDocumentResponse(d))
	}
	return out
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func formatDate(t *time.Time, layout string) string {
	if t == nil {
		return ""
	}
	return t.Format(layout)
}
