package main

import (
	"context"
	"errors"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-office-scheduling/internal/appointment"
	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
	"github.com/hackgods/clinic-office-scheduling/internal/config"
	"github.com/hackgods/clinic-office-scheduling/internal/db"
	"github.com/hackgods/clinic-office-scheduling/internal/logging"
	"github.com/hackgods/clinic-office-scheduling/internal/patient"
	"github.com/hackgods/clinic-office-scheduling/internal/schedule"
	"github.com/hackgods/clinic-office-scheduling/internal/validate"
)

const (
	patientCount     = 120
	appointmentCount = 400
	paymentCount     = 200
	// appointments are spread over this many days around today
	spreadDays = 45
)

var cities = []string{"Marrakech", "Marrakech", "Casablanca", "Rabat", "Agadir", "Fès", "Safi"}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config load error")
	}
	log := logging.New(cfg.LogLevel, cfg.IsDev())
	if cfg.StoreBackend != config.BackendPostgres {
		log.Fatal("seed needs STORE_BACKEND=postgres")
	}
	log.Info("seed starting")

	m, err := db.NewMigrator(cfg.PostgresDSN, log.WithField("component", "migrate"))
	if err != nil {
		log.WithError(err).Fatal("open migrator")
	}
	if err := m.Up(); err != nil {
		log.WithError(err).Fatal("migrate up")
	}
	_ = m.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, cfg.Location)
	if err != nil {
		log.WithError(err).Fatal("connect postgres")
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	store := clinic.NewPgStore(pool, cfg.Location)
	v := validate.New()
	quiet := logging.Discard()
	patients := patient.NewService(store, v, quiet, cfg)
	appts := appointment.NewService(store, appointment.NewLocalLocker(), v, quiet, cfg)

	work := context.Background()
	registered, err := seedPatients(work, patients, patientCount, log)
	if err != nil {
		log.WithError(err).Fatal("seed patients")
	}
	if err := seedAppointments(work, appts, registered, appointmentCount, cfg.Location, log); err != nil {
		log.WithError(err).Fatal("seed appointments")
	}
	if err := seedPayments(work, patients, registered, paymentCount, cfg.Location, log); err != nil {
		log.WithError(err).Fatal("seed payments")
	}

	log.Info("seed complete")
}

func fakePhone() string {
	return gofakeit.RandomString([]string{"06", "07", "05"}) + gofakeit.Numerify("########")
}

func seedPatients(ctx context.Context, svc *patient.Service, count int, log *logrus.Logger) ([]*clinic.Patient, error) {
	log.WithField("count", count).Info("seeding patients")

	catalog := patient.DefaultCatalog()
	out := make([]*clinic.Patient, 0, count)
	for i := 0; i < count; i++ {
		city := gofakeit.RandomString(cities)
		form := patient.Form{
			LastName:         gofakeit.LastName(),
			FirstName:        gofakeit.FirstName(),
			Phone:            fakePhone(),
			City:             city,
			NationalID:       gofakeit.Lexify("??") + gofakeit.Numerify("######"),
			BirthDate:        time.Now().AddDate(-gofakeit.Number(5, 85), -gofakeit.Number(0, 11), -gofakeit.Number(0, 27)).Format(clinic.DateLayout),
			ConsultationType: gofakeit.RandomString(catalog.ConsultationTypes),
		}
		if city == "Marrakech" {
			form.Sector = gofakeit.RandomString(catalog.Sectors)
		}
		if gofakeit.Bool() {
			form.Email = gofakeit.Email()
		}
		if gofakeit.Number(0, 2) == 0 {
			form.Insurance = clinic.Insurance{Active: true, Provider: gofakeit.RandomString(catalog.Insurers)}
		}
		if gofakeit.Number(0, 3) == 0 {
			form.MedicalHistory = []string{gofakeit.RandomString(catalog.MedicalHistory)}
		}

		p, err := svc.Register(ctx, form)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}

	log.WithField("count", len(out)).Info("patients seeded")
	return out, nil
}

func seedAppointments(ctx context.Context, svc *appointment.Service, patients []*clinic.Patient, count int, loc *time.Location, log *logrus.Logger) error {
	log.WithField("count", count).Info("seeding appointments")

	catalog := patient.DefaultCatalog()
	labels := schedule.SlotLabels()
	statuses := []string{"confirmé", "confirmé", "en-attente", "annulé"}
	today := time.Now().In(loc)

	booked, taken := 0, 0
	for i := 0; i < count; i++ {
		p := patients[gofakeit.Number(0, len(patients)-1)]
		id := p.ID
		day := today.AddDate(0, 0, gofakeit.Number(-spreadDays/2, spreadDays/2))
		form := appointment.BookingForm{
			Patient:   p.DisplayName(),
			PatientID: &id,
			Contact:   p.Phone,
			Date:      day.Format(clinic.DateLayout),
			Time:      gofakeit.RandomString(labels),
			Type:      gofakeit.RandomString(catalog.ConsultationTypes),
			Source:    gofakeit.RandomString(catalog.Sources),
			Status:    gofakeit.RandomString(statuses),
		}

		_, err := svc.Book(ctx, form)
		switch {
		case err == nil:
			booked++
		case errors.Is(err, appointment.ErrSlotTaken):
			taken++
		default:
			return err
		}
	}

	log.WithFields(logrus.Fields{"booked": booked, "slot_taken": taken}).Info("appointments seeded")
	return nil
}

func seedPayments(ctx context.Context, svc *patient.Service, patients []*clinic.Patient, count int, loc *time.Location, log *logrus.Logger) error {
	log.WithField("count", count).Info("seeding payments")

	catalog := patient.DefaultCatalog()
	methods := []string{"Espèces", "Carte", "Chèque", "Virement"}
	today := time.Now().In(loc)

	for i := 0; i < count; i++ {
		p := patients[gofakeit.Number(0, len(patients)-1)]
		status := gofakeit.RandomString(catalog.PaymentStatuses)
		amount := "0"
		if status != string(clinic.PaymentFree) {
			amount = gofakeit.RandomString([]string{"200", "250", "300", "350", "400", "500"})
		}
		_, err := svc.RecordPayment(ctx, patient.PaymentForm{
			PatientNumber: p.Number,
			Date:          today.AddDate(0, 0, -gofakeit.Number(0, 90)).Format(clinic.DateLayout),
			Amount:        amount,
			Status:        status,
			Method:        gofakeit.RandomString(methods),
			Insurance:     p.Insurance,
		})
		if err != nil {
			return err
		}
	}

	log.WithField("count", count).Info("payments seeded")
	return nil
}
