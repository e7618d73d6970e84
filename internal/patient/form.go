package patient

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
)

// Form is the patient record form.
type Form struct {
	LastName               string           `json:"lastName" validate:"required,max=100"`
	FirstName              string           `json:"firstName" validate:"required,max=100"`
	Phone                  string           `json:"phone" validate:"required,phone10"`
	Email                  string           `json:"email,omitempty" validate:"omitempty,simpleemail"`
	City                   string           `json:"city,omitempty" validate:"max=100"`
	Sector                 string           `json:"sector,omitempty" validate:"max=100"`
	NationalID             string           `json:"cin" validate:"required,cin"`
	BirthDate              string           `json:"birthDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ConsultationType       string           `json:"consultationType,omitempty" validate:"max=100"`
	CustomConsultationType string           `json:"customConsultationType,omitempty" validate:"max=100"`
	Insurance              clinic.Insurance `json:"insurance"`
	MedicalHistory         []string         `json:"medicalHistory,omitempty" validate:"max=50,dive,max=200"`
}

// sectorCity is the only city whose sectors are tracked.
const sectorCity = "marrakech"

func (f Form) apply(p *clinic.Patient, loc *time.Location) {
	p.LastName = strings.TrimSpace(f.LastName)
	p.FirstName = strings.TrimSpace(f.FirstName)
	p.Phone = f.Phone
	p.Email = strings.TrimSpace(f.Email)
	p.City = strings.TrimSpace(f.City)
	p.Sector = ""
	if strings.EqualFold(p.City, sectorCity) {
		p.Sector = strings.TrimSpace(f.Sector)
	}
	p.NationalID = f.NationalID
	p.BirthDate = nil
	if f.BirthDate != "" {
		if d, err := time.ParseInLocation(clinic.DateLayout, f.BirthDate, loc); err == nil {
			p.BirthDate = &d
		}
	}
	p.ConsultationType = firstNonEmpty(f.CustomConsultationType, f.ConsultationType)
	p.Insurance = clinic.Insurance{
		Active:   f.Insurance.Active,
		Provider: strings.TrimSpace(f.Insurance.Provider),
	}
	p.MedicalHistory = cleanTags(f.MedicalHistory)
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// PaymentForm records what a patient paid for a visit.
type PaymentForm struct {
	PatientNumber string           `json:"patientNumber" validate:"required,max=20"`
	Patient       string           `json:"patient" validate:"max=200"`
	Date          string           `json:"date" validate:"required,datetime=2006-01-02"`
	Amount        string           `json:"amount" validate:"required,amount"`
	Status        string           `json:"status" validate:"required"`
	Method        string           `json:"method,omitempty" validate:"max=50"`
	Insurance     clinic.Insurance `json:"insurance"`
}

// DocumentForm attaches a document to a patient file.
type DocumentForm struct {
	PatientNumber string `json:"patientNumber" validate:"required,max=20"`
	Patient       string `json:"patient" validate:"max=200"`
	Type          string `json:"type" validate:"required,max=100"`
	Name          string `json:"name" validate:"required,max=200"`
	Content       string `json:"content"`
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}
