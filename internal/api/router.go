package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-office-scheduling/internal/appointment"
	"github.com/hackgods/clinic-office-scheduling/internal/logging"
	"github.com/hackgods/clinic-office-scheduling/internal/patient"
)

type RouterConfig struct {
	Appointments *appointment.Service
	Patients     *patient.Service
	Catalog      patient.Catalog
	Health       *HealthHandler
	Logger       *logrus.Logger
	// Now classifies appointments as past or upcoming. Defaults to time.Now.
	Now func() time.Time
}

func NewRouter(cfg RouterConfig) http.Handler {
	now := clock(cfg.Now)
	if now == nil {
		now = time.Now
	}
	health := cfg.Health
	if health == nil {
		health = NewHealthHandler(nil, nil, "", "")
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", catalogHandler(cfg.Catalog))

		r.Route("/appointments", func(r chi.Router) {
			r.Post("/", createAppointmentHandler(cfg.Appointments, now))
			r.Get("/", listAppointmentsHandler(cfg.Appointments, now))
			r.Get("/{id}", getAppointmentHandler(cfg.Appointments, now))
			r.Put("/{id}", updateAppointmentHandler(cfg.Appointments, now))
			r.Patch("/{id}/status", setStatusHandler(cfg.Appointments, now))
			r.Delete("/{id}", deleteAppointmentHandler(cfg.Appointments))
		})
		r.Get("/availability", availabilityHandler(cfg.Appointments))
		r.Get("/slots", daySlotsHandler(cfg.Appointments))
		r.Get("/calendar", calendarHandler(cfg.Appointments))
		r.Get("/calendar/summary", summaryHandler(cfg.Appointments))

		r.Route("/patients", func(r chi.Router) {
			r.Post("/", registerPatientHandler(cfg.Patients, now))
			r.Get("/", listPatientsHandler(cfg.Patients, now))
			r.Get("/{id}", getPatientHandler(cfg.Patients, now))
			r.Put("/{id}", updatePatientHandler(cfg.Patients, now))
			r.Delete("/{id}", removePatientHandler(cfg.Patients))
			r.Get("/{id}/appointments", patientAppointmentsHandler(cfg.Patients, cfg.Appointments, now))

			r.Get("/number/{number}", getPatientByNumberHandler(cfg.Patients, now))
			r.Get("/number/{number}/payments", patientPaymentsHandler(cfg.Patients))
			r.Get("/number/{number}/payments/last", lastPaymentHandler(cfg.Patients))
			r.Get("/number/{number}/documents", patientDocumentsHandler(cfg.Patients))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", recordPaymentHandler(cfg.Patients))
			r.Get("/", listPaymentsHandler(cfg.Patients))
			r.Put("/{id}", updatePaymentHandler(cfg.Patients))
			r.Delete("/{id}", deletePaymentHandler(cfg.Patients))
		})

		r.Route("/documents", func(r chi.Router) {
			r.Post("/", addDocumentHandler(cfg.Patients))
			r.Get("/", listDocumentsHandler(cfg.Patients))
			r.Put("/{id}", updateDocumentHandler(cfg.Patients))
			r.Delete("/{id}", deleteDocumentHandler(cfg.Patients))
		})
	})

	return r
}
