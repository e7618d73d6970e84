package clinic

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreAppointments(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a := &Appointment{Patient: "Alami Sara", At: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)}
	require.NoError(t, s.CreateAppointment(ctx, a))
	require.NotEqual(t, uuid.Nil, a.ID)
	require.NoError(t, s.CreateAppointment(ctx, &Appointment{Patient: "Benali Omar"}))

	list, err := s.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alami Sara", list[0].Patient, "insertion order")

	list[0].Patient = "mutated"
	got, err := s.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alami Sara", got.Patient, "lists are copies")

	got.Status = StatusConfirmed
	require.NoError(t, s.UpdateAppointment(ctx, got))
	again, err := s.GetAppointment(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, again.Status)
	assert.Equal(t, a.CreatedAt, again.CreatedAt)

	require.NoError(t, s.DeleteAppointment(ctx, a.ID))
	assert.ErrorIs(t, s.DeleteAppointment(ctx, a.ID), ErrAppointmentNotFound)
	_, err = s.GetAppointment(ctx, a.ID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
	assert.ErrorIs(t, s.UpdateAppointment(ctx, &Appointment{ID: uuid.New()}), ErrAppointmentNotFound)
}

func TestMemoryStorePatientsAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	p := &Patient{Number: "P001", LastName: "Alami", FirstName: "Sara", MedicalHistory: []string{"Asthme"}}
	require.NoError(t, s.CreatePatient(ctx, p))
	p.MedicalHistory[0] = "changed"

	got, err := s.GetPatientByNumber(ctx, "P001")
	require.NoError(t, err)
	assert.Equal(t, []string{"Asthme"}, got.MedicalHistory)
	assert.Equal(t, "Alami Sara", got.DisplayName())

	_, err = s.GetPatientByNumber(ctx, "P002")
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestMemoryStorePatientDatesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	birth := time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC)
	visit := time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)
	p := &Patient{Number: "P001", LastName: "Alami", BirthDate: &birth, LastVisit: &visit, NextVisit: &visit}
	require.NoError(t, s.CreatePatient(ctx, p))
	*p.BirthDate = birth.AddDate(1, 0, 0)

	got, err := s.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	*got.LastVisit = visit.AddDate(0, 1, 0)
	*got.NextVisit = visit.AddDate(0, 1, 0)

	again, err := s.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, again.BirthDate.Equal(time.Date(1990, 5, 12, 0, 0, 0, 0, time.UTC)))
	assert.True(t, again.LastVisit.Equal(time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)))
	assert.True(t, again.NextVisit.Equal(time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC)))
}

func TestMemoryStoreRejectsDuplicatePatientNumber(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.CreatePatient(ctx, &Patient{Number: "P001", LastName: "Alami"}))
	err := s.CreatePatient(ctx, &Patient{Number: "P001", LastName: "Benali"})
	assert.ErrorIs(t, err, ErrDuplicatePatientNumber)

	list, err := s.ListPatients(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestStoreErrorUnwrap(t *testing.T) {
	cause := context.DeadlineExceeded
	err := storeErr("list appointments", cause)
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, "list appointments: context deadline exceeded")
	assert.NoError(t, storeErr("noop", nil))
}

func TestDateRange(t *testing.T) {
	r := NewDateRange(time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC), time.Date(2024, 6, 5, 1, 0, 0, 0, time.UTC))
	assert.Equal(t, 3, r.Len())
	assert.Len(t, r.Days(), 3)
	assert.True(t, r.Contains(time.Date(2024, 6, 5, 23, 59, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC)))

	reversed := NewDateRange(time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 1, reversed.Len())

	march := NewDateRange(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 31, march.Len())
}

func TestParseKinds(t *testing.T) {
	assert.Equal(t, TypeFollowUp, ParseType(" suivi ").Kind)
	custom := ParseType("Bilan sanguin")
	assert.Equal(t, TypeCustom, custom.Kind)
	assert.Equal(t, "Bilan sanguin", custom.String())
	assert.True(t, ParseType("").IsZero())

	assert.Equal(t, SourceReferralSite, ParseSource("site-satli").Kind)
	assert.Equal(t, "Visite directe", Source{Kind: SourceWalkIn}.String())

	assert.Equal(t, StatusPending, ParseStatus("En attente"))
	assert.Equal(t, StatusCancelled, ParseStatus("cancelled"))
	assert.Equal(t, AppointmentStatus("reporté"), ParseStatus("Reporté"))

	st, ok := ParsePaymentStatus("free")
	assert.True(t, ok)
	assert.Equal(t, PaymentFree, st)
	_, ok = ParsePaymentStatus("offert")
	assert.False(t, ok)
}

func TestStoredTime(t *testing.T) {
	a := Appointment{At: time.Date(2024, 6, 3, 9, 30, 45, 0, time.UTC)}
	assert.Equal(t, "2024-06-03T09:30", a.StoredTime())
	assert.Equal(t, "09:30", a.TimeLabel())
}
