package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
)

func TestClassify(t *testing.T) {
	urgent := clinic.ParseType("Urgence")
	phone := clinic.ParseSource("Téléphone")

	tests := []struct {
		name   string
		typ    clinic.AppointmentType
		source clinic.Source
		past   bool
		want   Category
	}{
		{"both absent", clinic.AppointmentType{}, clinic.Source{}, false, CategoryUnclassified},
		{"both absent past", clinic.AppointmentType{}, clinic.Source{}, true, CategoryUnclassified},
		{"past uses source", urgent, phone, true, CategoryPhone},
		{"future uses type", urgent, phone, false, CategoryUrgent},
		{"past without source", urgent, clinic.Source{}, true, CategoryUnclassified},
		{"future without type", clinic.AppointmentType{}, phone, false, CategoryUnclassified},
		{"custom type", clinic.ParseType("Bilan"), phone, false, CategoryUnclassified},
		{"custom source", urgent, clinic.ParseSource("Instagram"), true, CategoryUnclassified},
		{"case insensitive", clinic.ParseType("  suivi "), clinic.ParseSource("SITE-SATLI"), true, CategoryReferralSite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.typ, tt.source, tt.past))
		})
	}
}

func TestClassifyAppointmentFlipsOnPastness(t *testing.T) {
	now := time.Date(2024, 6, 5, 12, 0, 0, 0, time.UTC)
	a := clinic.Appointment{
		Type:   clinic.ParseType("Urgence"),
		Source: clinic.ParseSource("Téléphone"),
	}

	a.At = now.AddDate(0, 0, -1)
	assert.Equal(t, CategoryPhone, ClassifyAppointment(a, now))

	a.At = now.AddDate(0, 0, 1)
	assert.Equal(t, CategoryUrgent, ClassifyAppointment(a, now))

	a.At = now
	assert.Equal(t, CategoryUrgent, ClassifyAppointment(a, now), "the present is not past")
}

func TestStatusCategory(t *testing.T) {
	assert.Equal(t, CategoryConfirmed, StatusCategory(clinic.StatusConfirmed))
	assert.Equal(t, CategoryPending, StatusCategory(clinic.ParseStatus("en-attente")))
	assert.Equal(t, CategoryCancelled, StatusCategory(clinic.ParseStatus("cancelled")))
	assert.Equal(t, CategoryUnknown, StatusCategory(""))
	assert.Equal(t, CategoryUnknown, StatusCategory("reporté"))
}

func TestPalette(t *testing.T) {
	assert.Equal(t, "bg-red-100 text-red-800", Palette(CategoryUrgent))
	assert.Equal(t, "bg-indigo-100 text-indigo-800", Palette(CategoryPhone))
	assert.Equal(t, "bg-gray-100 text-gray-800", Palette(Category("nope")))
}

func TestSourceChannel(t *testing.T) {
	assert.Equal(t, ChannelPhone, SourceChannel(clinic.ParseSource("téléphone")))
	assert.Equal(t, ChannelWeb, SourceChannel(clinic.ParseSource("Site-Satli")))
	assert.Equal(t, ChannelWeb, SourceChannel(clinic.ParseSource("Autres sites")))
	assert.Equal(t, ChannelPerson, SourceChannel(clinic.ParseSource("Visite directe")))
	assert.Equal(t, ChannelPerson, SourceChannel(clinic.Source{}))
}
