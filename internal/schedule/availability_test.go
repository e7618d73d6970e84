package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
)

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 6, day, hour, minute, 0, 0, time.UTC)
}

func appt(when time.Time, status clinic.AppointmentStatus) clinic.Appointment {
	return clinic.Appointment{ID: uuid.New(), Patient: "Alami Sara", At: when, Status: status}
}

func TestAvailable(t *testing.T) {
	booked := appt(at(3, 10, 0), clinic.StatusConfirmed)
	cancelled := appt(at(3, 11, 0), clinic.StatusCancelled)
	list := []clinic.Appointment{booked, cancelled}

	assert.False(t, Available(list, at(3, 10, 0), uuid.Nil), "same instant is taken")
	assert.True(t, Available(list, at(3, 10, 0), booked.ID), "an appointment does not conflict with itself")
	assert.True(t, Available(list, at(3, 11, 0), uuid.Nil), "cancelled appointments free their slot")
	assert.True(t, Available(list, at(3, 10, 30), uuid.Nil))
	assert.True(t, Available(list, at(4, 10, 0), uuid.Nil))
	assert.True(t, Available(nil, at(9, 14, 0), uuid.Nil), "break slots are not checked here")
}

func TestAvailableIgnoresSeconds(t *testing.T) {
	list := []clinic.Appointment{appt(at(3, 10, 0), clinic.StatusPending)}
	assert.False(t, Available(list, at(3, 10, 0).Add(30*time.Second), uuid.Nil))
}

func TestConflict(t *testing.T) {
	booked := appt(at(3, 10, 0), clinic.StatusConfirmed)
	got, ok := Conflict([]clinic.Appointment{booked}, at(3, 10, 0), uuid.Nil)
	require.True(t, ok)
	assert.Equal(t, booked.ID, got.ID)

	_, ok = Conflict([]clinic.Appointment{booked}, at(3, 10, 0), booked.ID)
	assert.False(t, ok)
}

type listerFunc func(ctx context.Context) ([]clinic.Appointment, error)

func (f listerFunc) ListAppointments(ctx context.Context) ([]clinic.Appointment, error) {
	return f(ctx)
}

func TestCheckerComposesLabel(t *testing.T) {
	store := clinic.NewMemoryStore()
	ctx := context.Background()
	existing := appt(at(3, 10, 0), clinic.StatusConfirmed)
	require.NoError(t, store.CreateAppointment(ctx, &existing))

	c := NewChecker(store)

	ok, err := c.IsTimeSlotAvailable(ctx, at(3, 0, 0), "10:00", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = c.IsTimeSlotAvailable(ctx, at(3, 0, 0), "10:30", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.IsTimeSlotAvailable(ctx, at(3, 10, 0), "", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, ok, "without a label the instant is used as given")

	ok, err = c.IsTimeSlotAvailable(ctx, at(3, 0, 0), "10:00", existing.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckerStoreError(t *testing.T) {
	boom := errors.New("boom")
	c := NewChecker(listerFunc(func(context.Context) ([]clinic.Appointment, error) {
		return nil, boom
	}))
	_, err := c.IsTimeSlotAvailable(context.Background(), at(3, 10, 0), "", uuid.Nil)
	assert.ErrorIs(t, err, boom)
}
