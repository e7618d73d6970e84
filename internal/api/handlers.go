package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-office-scheduling/internal/appointment"
	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
	"github.com/hackgods/clinic-office-scheduling/internal/schedule"
)

type clock func() time.Time

func createAppointmentHandler(svc *appointment.Service, now clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form appointment.BookingForm
		if !decodeJSON(w, r, &form) {
			return
		}

		appt, err := svc.Book(r.Context(), form)
		if err != nil {
			handleError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(*appt, now()))
	}
}

// listAppointmentsHandler lists every appointment, or those whose patient
// name contains ?patient=.
func listAppointmentsHandler(svc *appointment.Service, now clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var (
			appts []clinic.Appointment
			err   error
		)
		if term := r.URL.Query().Get("patient"); term != "" {
			appts, err = svc.ForPatient(r.Context(), term)
		} else {
			appts, err = svc.List(r.Context())
		}
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(appts, now()))
	}
}

func getAppointmentHandler(svc *appointment.Service, now clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		appt, err := svc.Get(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt, now()))
	}
}

func updateAppointmentHandler(svc *appointment.Service, now clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var form appointment.BookingForm
		if !decodeJSON(w, r, &form) {
			return
		}
		appt, err := svc.Update(r.Context(), id, form)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt, now()))
	}
}

func setStatusHandler(svc *appointment.Service, now clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var req StatusRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		appt, err := svc.SetStatus(r.Context(), id, req.Status)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt, now()))
	}
}

func deleteAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// availabilityHandler answers ?date=2006-01-02&time=15:04[&exclude=<id>].
func availabilityHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		exclude := uuid.Nil
		if raw := q.Get("exclude"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_exclude", "exclude must be a valid UUID")
				return
			}
			exclude = id
		}

		date, clockLabel := q.Get("date"), q.Get("time")
		ok, err := svc.IsTimeSlotAvailable(r.Context(), date, clockLabel, exclude)
		if err != nil {
			handleError(w, r, err)
			return
		}

		resp := AvailabilityResponse{Date: date, Time: clockLabel, Available: ok}
		if day, err := time.Parse(clinic.DateLayout, date); err == nil {
			resp.Break = schedule.IsBreakLabel(clockLabel, day)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func daySlotsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots, err := svc.DaySlots(r.Context(), r.URL.Query().Get("date"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, slots)
	}
}

func calendarHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		view, err := svc.Calendar(r.Context(), q.Get("start"), q.Get("end"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func summaryHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		sum, err := svc.Summary(r.Context(), q.Get("start"), q.Get("end"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, sum)
	}
}
