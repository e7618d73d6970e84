package appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
	"github.com/hackgods/clinic-office-scheduling/internal/config"
	"github.com/hackgods/clinic-office-scheduling/internal/logging"
	redisclient "github.com/hackgods/clinic-office-scheduling/internal/redis"
	"github.com/hackgods/clinic-office-scheduling/internal/schedule"
	"github.com/hackgods/clinic-office-scheduling/internal/validate"
)

func newTestService(t *testing.T, store clinic.Store, locker Locker) *Service {
	t.Helper()
	if locker == nil {
		locker = NewLocalLocker()
	}
	cfg := config.Config{Location: time.UTC, DefaultDuration: 30 * time.Minute}
	s := NewService(store, locker, validate.New(), logging.Discard(), cfg)
	s.now = func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) }
	return s
}

func form(date, clock string) BookingForm {
	return BookingForm{
		Patient: "Alami Sara",
		Contact: "0612345678",
		Date:    date,
		Time:    clock,
		Type:    "Suivi",
		Source:  "Téléphone",
	}
}

func count(t *testing.T, store clinic.Store) int {
	t.Helper()
	appts, err := store.ListAppointments(context.Background())
	require.NoError(t, err)
	return len(appts)
}

func TestBookPhoneValidation(t *testing.T) {
	ctx := context.Background()
	store := clinic.NewMemoryStore()
	svc := newTestService(t, store, nil)

	bad := form("2024-06-04", "10:00")
	bad.Contact = "061234567"
	_, err := svc.Book(ctx, bad)
	require.Error(t, err)
	assert.ErrorIs(t, err, validate.ErrInvalid)
	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, validate.MsgPhone, verr.Fields["contact"])
	assert.Equal(t, 0, count(t, store), "rejected submissions do not touch the store")

	good := bad
	good.Contact = "0612345678"
	appt, err := svc.Book(ctx, good)
	require.NoError(t, err)
	assert.Equal(t, 1, count(t, store))
	assert.Equal(t, "2024-06-04T10:00", appt.StoredTime())
	assert.Equal(t, clinic.StatusPending, appt.Status)
	assert.Equal(t, 30*time.Minute, appt.Duration)
	assert.Equal(t, clinic.TypeFollowUp, appt.Type.Kind)
	assert.Equal(t, clinic.SourcePhone, appt.Source.Kind)
	assert.NotEqual(t, uuid.Nil, appt.ID)
}

func TestBookRejectsBadDateAndTime(t *testing.T) {
	svc := newTestService(t, clinic.NewMemoryStore(), nil)

	_, err := svc.Book(context.Background(), form("04/06/2024", "25:00"))
	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "date")
	assert.Contains(t, verr.Fields, "time")
}

func TestBookDoubleBooking(t *testing.T) {
	ctx := context.Background()
	store := clinic.NewMemoryStore()
	svc := newTestService(t, store, nil)

	first, err := svc.Book(ctx, form("2024-06-04", "10:00"))
	require.NoError(t, err)

	_, err = svc.Book(ctx, form("2024-06-04", "10:00"))
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Equal(t, 1, count(t, store))

	_, err = svc.Book(ctx, form("2024-06-04", "10:30"))
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, first.ID, "annulé")
	require.NoError(t, err)
	_, err = svc.Book(ctx, form("2024-06-04", "10:00"))
	assert.NoError(t, err, "a cancelled appointment frees its slot")
}

func TestBookBreakSlotStaysBookable(t *testing.T) {
	svc := newTestService(t, clinic.NewMemoryStore(), nil)
	_, err := svc.Book(context.Background(), form("2024-06-04", "14:00"))
	assert.NoError(t, err)
}

func TestBookCustomValuesOverrideLists(t *testing.T) {
	svc := newTestService(t, clinic.NewMemoryStore(), nil)
	f := form("2024-06-04", "11:00")
	f.CustomSource = "Instagram"
	f.CustomType = "Bilan annuel"
	f.Duration = 45
	f.Status = "confirmed"

	appt, err := svc.Book(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, clinic.Source{Kind: clinic.SourceCustom, Text: "Instagram"}, appt.Source)
	assert.Equal(t, "Bilan annuel", appt.Type.String())
	assert.Equal(t, 45*time.Minute, appt.Duration)
	assert.Equal(t, clinic.StatusConfirmed, appt.Status)
}

func TestUpdateAtOwnTime(t *testing.T) {
	ctx := context.Background()
	store := clinic.NewMemoryStore()
	svc := newTestService(t, store, nil)

	appt, err := svc.Book(ctx, form("2024-06-04", "10:00"))
	require.NoError(t, err)
	other, err := svc.Book(ctx, form("2024-06-04", "11:00"))
	require.NoError(t, err)

	edit := form("2024-06-04", "10:00")
	edit.Type = "Urgence"
	updated, err := svc.Update(ctx, appt.ID, edit)
	require.NoError(t, err, "resubmitting at the original time is not a conflict")
	assert.Equal(t, clinic.TypeUrgent, updated.Type.Kind)
	assert.Equal(t, appt.CreatedAt, updated.CreatedAt)

	_, err = svc.Update(ctx, other.ID, form("2024-06-04", "10:00"))
	assert.ErrorIs(t, err, ErrSlotTaken)

	got, err := svc.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-04T11:00", got.StoredTime(), "a failed edit leaves the record alone")
}

func TestUpdateMissing(t *testing.T) {
	svc := newTestService(t, clinic.NewMemoryStore(), nil)
	_, err := svc.Update(context.Background(), uuid.New(), form("2024-06-04", "10:00"))
	assert.ErrorIs(t, err, clinic.ErrAppointmentNotFound)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, clinic.NewMemoryStore(), nil)

	appt, err := svc.Book(ctx, form("2024-06-04", "10:00"))
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, appt.ID, "reporté")
	assert.ErrorIs(t, err, validate.ErrInvalid)

	confirmed, err := svc.SetStatus(ctx, appt.ID, "confirmé")
	require.NoError(t, err)
	assert.Equal(t, clinic.StatusConfirmed, confirmed.Status)

	_, err = svc.SetStatus(ctx, appt.ID, "annulé")
	require.NoError(t, err)
	_, err = svc.Book(ctx, form("2024-06-04", "10:00"))
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, appt.ID, "confirmé")
	assert.ErrorIs(t, err, ErrSlotTaken, "reviving onto a taken slot")
}

// movingStore reschedules the appointment right after its first read, as a
// concurrent edit landing between the read and the slot lock would.
type movingStore struct {
	clinic.Store
	to    time.Time
	moved bool
}

func (s *movingStore) GetAppointment(ctx context.Context, id uuid.UUID) (*clinic.Appointment, error) {
	appt, err := s.Store.GetAppointment(ctx, id)
	if err != nil || s.moved {
		return appt, err
	}
	s.moved = true
	moved := *appt
	moved.At = s.to
	if err := s.Store.UpdateAppointment(ctx, &moved); err != nil {
		return nil, err
	}
	return appt, nil
}

type recordingLocker struct {
	Locker
	keys []string
}

func (l *recordingLocker) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	l.keys = append(l.keys, key)
	return l.Locker.WithLock(ctx, key, fn)
}

func TestSetStatusFollowsConcurrentReschedule(t *testing.T) {
	ctx := context.Background()
	mem := clinic.NewMemoryStore()
	booker := newTestService(t, mem, nil)
	appt, err := booker.Book(ctx, form("2024-06-04", "10:00"))
	require.NoError(t, err)

	later := time.Date(2024, 6, 4, 11, 0, 0, 0, time.UTC)
	store := &movingStore{Store: mem, to: later}
	locker := &recordingLocker{Locker: NewLocalLocker()}
	svc := newTestService(t, store, locker)

	got, err := svc.SetStatus(ctx, appt.ID, "confirmé")
	require.NoError(t, err)
	assert.True(t, got.At.Equal(later))
	assert.Equal(t, clinic.StatusConfirmed, got.Status)
	assert.Equal(t, []string{
		appt.At.Format(clinic.StoredTimeLayout),
		later.Format(clinic.StoredTimeLayout),
	}, locker.keys, "lock follows the appointment to its new slot")

	stored, err := mem.GetAppointment(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, stored.At.Equal(later), "status change must not restore the old slot")
	assert.Equal(t, clinic.StatusConfirmed, stored.Status)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := clinic.NewMemoryStore()
	svc := newTestService(t, store, nil)

	appt, err := svc.Book(ctx, form("2024-06-04", "10:00"))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, appt.ID))
	assert.Equal(t, 0, count(t, store))
	assert.ErrorIs(t, svc.Delete(ctx, appt.ID), clinic.ErrAppointmentNotFound)
}

func TestForPatient(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, clinic.NewMemoryStore(), nil)

	_, err := svc.Book(ctx, form("2024-06-04", "10:00"))
	require.NoError(t, err)
	f := form("2024-06-04", "11:00")
	f.Patient = "Benali Omar"
	_, err = svc.Book(ctx, f)
	require.NoError(t, err)

	got, err := svc.ForPatient(ctx, "benali")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Benali Omar", got[0].Patient)
}

func TestBookSetsNextVisit(t *testing.T) {
	ctx := context.Background()
	store := clinic.NewMemoryStore()
	svc := newTestService(t, store, nil)

	p := &clinic.Patient{Number: "P001", LastName: "Alami", FirstName: "Sara", Phone: "0612345678"}
	require.NoError(t, store.CreatePatient(ctx, p))

	appt, err := svc.Book(ctx, form("2024-06-04", "10:00"))
	require.NoError(t, err)

	got, err := store.GetPatient(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.NextVisit)
	assert.True(t, got.NextVisit.Equal(appt.At))
}

func TestBookUnknownPatientID(t *testing.T) {
	svc := newTestService(t, clinic.NewMemoryStore(), nil)
	f := form("2024-06-04", "10:00")
	id := uuid.New()
	f.PatientID = &id

	_, err := svc.Book(context.Background(), f)
	var verr *validate.Error
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "patientId")
}

func TestIsTimeSlotAvailable(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, clinic.NewMemoryStore(), nil)
	appt, err := svc.Book(ctx, form("2024-06-04", "10:00"))
	require.NoError(t, err)

	ok, err := svc.IsTimeSlotAvailable(ctx, "2024-06-04", "10:00", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsTimeSlotAvailable(ctx, "2024-06-04", "10:00", appt.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.IsTimeSlotAvailable(ctx, "2024-06-04", "ten", uuid.Nil)
	assert.ErrorIs(t, err, validate.ErrInvalid)
}

func TestDaySlots(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, clinic.NewMemoryStore(), nil)
	appt, err := svc.Book(ctx, form("2024-06-08", "09:30"))
	require.NoError(t, err)

	slots, err := svc.DaySlots(ctx, "2024-06-08")
	require.NoError(t, err)
	require.Len(t, slots, 24)

	assert.True(t, slots[0].Available)
	assert.False(t, slots[1].Available)
	require.NotNil(t, slots[1].AppointmentID)
	assert.Equal(t, appt.ID, *slots[1].AppointmentID)
	assert.False(t, slots[7].Break, "saturday 12:30")
	assert.True(t, slots[8].Break, "saturday 13:00")
	assert.True(t, slots[8].Clickable)
}

func TestCalendarAndSummary(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, clinic.NewMemoryStore(), nil)
	_, err := svc.Book(ctx, form("2024-06-04", "10:00"))
	require.NoError(t, err)
	_, err = svc.Book(ctx, form("2024-06-20", "10:00"))
	require.NoError(t, err)

	week, err := svc.Calendar(ctx, "2024-06-03", "2024-06-09")
	require.NoError(t, err)
	assert.Equal(t, schedule.ModeDetailed, week.Mode)

	month, err := svc.Calendar(ctx, "2024-06-01", "2024-06-30")
	require.NoError(t, err)
	assert.Equal(t, schedule.ModeDense, month.Mode)
	assert.Equal(t, 1, month.Summaries[3].Count)

	sum, err := svc.Summary(ctx, "2024-06-03", "2024-06-09")
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Total)
	assert.Equal(t, 1, sum.Statuses["en-attente"])

	_, err = svc.Calendar(ctx, "june", "2024-06-09")
	assert.ErrorIs(t, err, validate.ErrInvalid)
}

func TestCalendarRangeIsCapped(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, clinic.NewMemoryStore(), nil)

	year, err := svc.Calendar(ctx, "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	assert.Len(t, year.Days, MaxRangeDays)

	for _, rng := range [][2]string{
		{"2024-01-01", "2025-01-01"},
		{"0001-01-01", "9999-12-31"},
	} {
		_, err := svc.Calendar(ctx, rng[0], rng[1])
		var verr *validate.Error
		require.ErrorAs(t, err, &verr, "%s..%s", rng[0], rng[1])
		assert.Contains(t, verr.Fields, "end")

		_, err = svc.Summary(ctx, rng[0], rng[1])
		assert.ErrorIs(t, err, validate.ErrInvalid, "%s..%s", rng[0], rng[1])
	}

	reversed, err := svc.Calendar(ctx, "9999-12-31", "0001-01-01")
	require.NoError(t, err)
	assert.Len(t, reversed.Days, 1, "reversed range collapses to its start")
}

type busyLocker struct{}

func (busyLocker) WithLock(context.Context, string, func(context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

func TestBookLockContention(t *testing.T) {
	store := clinic.NewMemoryStore()
	svc := newTestService(t, store, busyLocker{})

	_, err := svc.Book(context.Background(), form("2024-06-04", "10:00"))
	assert.ErrorIs(t, err, ErrSlotBeingBooked)
	assert.Equal(t, 0, count(t, store))
}

type failingStore struct {
	*clinic.MemoryStore
}

func (failingStore) CreateAppointment(context.Context, *clinic.Appointment) error {
	return &clinic.StoreError{Op: "insert appointment", Err: errors.New("connection reset")}
}

func TestBookStoreFailure(t *testing.T) {
	svc := newTestService(t, failingStore{clinic.NewMemoryStore()}, nil)
	_, err := svc.Book(context.Background(), form("2024-06-04", "10:00"))
	assert.ErrorIs(t, err, clinic.ErrStore)
	assert.NotErrorIs(t, err, validate.ErrInvalid)
}

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	inside := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.WithLock(ctx, "2024-06-04T10:00", func(context.Context) error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	err := l.WithLock(ctx, "2024-06-04T10:00", func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrSlotBeingBooked)
	assert.NoError(t, l.WithLock(ctx, "2024-06-04T10:30", func(context.Context) error { return nil }))

	close(release)
	wg.Wait()
	assert.NoError(t, l.WithLock(ctx, "2024-06-04T10:00", func(context.Context) error { return nil }))
}

func TestConcurrentBookingsOneWinner(t *testing.T) {
	store := clinic.NewMemoryStore()
	svc := newTestService(t, store, nil)

	const desks = 8
	var wg sync.WaitGroup
	errs := make([]error, desks)
	for i := range desks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Book(context.Background(), form("2024-06-04", "10:00"))
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.True(t, errors.Is(err, ErrSlotTaken) || errors.Is(err, ErrSlotBeingBooked), err)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, count(t, store))
}
