package patient

import "github.com/hackgods/clinic-office-scheduling/internal/clinic"

// Catalog holds the pick lists offered by the patient form. Staff may still
// type values outside them.
type Catalog struct {
	Insurers          []string `json:"insurers"`
	Sectors           []string `json:"sectors"`
	MedicalHistory    []string `json:"medicalHistory"`
	ConsultationTypes []string `json:"consultationTypes"`
	Sources           []string `json:"sources"`
	PaymentStatuses   []string `json:"paymentStatuses"`
}

func DefaultCatalog() Catalog {
	c := Catalog{
		Insurers:       []string{"CNOPS", "CNSS", "RMA", "SAHAM", "AXA"},
		Sectors:        []string{"Guéliz", "Hivernage", "Médina", "Targa", "Semlalia", "Amerchich"},
		MedicalHistory: []string{"Diabète", "Hypertension", "Asthme", "Allergie", "Dépression", "Anxiété"},
		PaymentStatuses: []string{
			string(clinic.PaymentPaid),
			string(clinic.PaymentPending),
			string(clinic.PaymentCancelled),
			string(clinic.PaymentFree),
		},
	}
	for _, t := range clinic.KnownTypes() {
		c.ConsultationTypes = append(c.ConsultationTypes, t.String())
	}
	for _, s := range clinic.KnownSources() {
		c.Sources = append(c.Sources, s.String())
	}
	return c
}
