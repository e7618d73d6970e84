package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hackgods/clinic-office-scheduling/internal/appointment"
	"github.com/hackgods/clinic-office-scheduling/internal/patient"
)

func registerPatientHandler(svc *patient.Service, now clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form patient.Form
		if !decodeJSON(w, r, &form) {
			return
		}
		p, err := svc.Register(r.Context(), form)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPatientResponse(*p, now()))
	}
}

// listPatientsHandler lists everyone, or the matches of ?q=.
func listPatientsHandler(svc *patient.Service, now clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := svc.Search(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponses(ps, now()))
	}
}

func getPatientHandler(svc *patient.Service, now clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		p, err := svc.Get(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(*p, now()))
	}
}

func getPatientByNumberHandler(svc *patient.Service, now clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByNumber(r.Context(), chi.URLParam(r, "number"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(*p, now()))
	}
}

func updatePatientHandler(svc *patient.Service, now clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var form patient.Form
		if !decodeJSON(w, r, &form) {
			return
		}
		p, err := svc.Update(r.Context(), id, form)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPatientResponse(*p, now()))
	}
}

func removePatientHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		if err := svc.Remove(r.Context(), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// patientAppointmentsHandler lists the appointments booked under the
// patient's display name.
func patientAppointmentsHandler(patients *patient.Service, appts *appointment.Service, now clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		p, err := patients.Get(r.Context(), id)
		if err != nil {
			handleError(w, r, err)
			return
		}
		list, err := appts.ForPatient(r.Context(), p.DisplayName())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(list, now()))
	}
}

func patientPaymentsHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := svc.PaymentsFor(r.Context(), chi.URLParam(r, "number"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPaymentResponses(ps))
	}
}

func lastPaymentHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.LastPayment(r.Context(), chi.URLParam(r, "number"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPaymentResponse(*p))
	}
}

func patientDocumentsHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := svc.DocumentsFor(r.Context(), chi.URLParam(r, "number"))
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toDocumentResponses(ds))
	}
}

func recordPaymentHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form patient.PaymentForm
		if !decodeJSON(w, r, &form) {
			return
		}
		p, err := svc.RecordPayment(r.Context(), form)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toPaymentResponse(*p))
	}
}

func listPaymentsHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps, err := svc.ListPayments(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPaymentResponses(ps))
	}
}

func updatePaymentHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var form patient.PaymentForm
		if !decodeJSON(w, r, &form) {
			return
		}
		p, err := svc.UpdatePayment(r.Context(), id, form)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toPaymentResponse(*p))
	}
}

func deletePaymentHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		if err := svc.DeletePayment(r.Context(), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func addDocumentHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form patient.DocumentForm
		if !decodeJSON(w, r, &form) {
			return
		}
		d, err := svc.AddDocument(r.Context(), form)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toDocumentResponse(*d))
	}
}

func listDocumentsHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := svc.ListDocuments(r.Context())
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toDocumentResponses(ds))
	}
}

func updateDocumentHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		var form patient.DocumentForm
		if !decodeJSON(w, r, &form) {
			return
		}
		d, err := svc.UpdateDocument(r.Context(), id, form)
		if err != nil {
			handleError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toDocumentResponse(*d))
	}
}

func deleteDocumentHandler(svc *patient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}
		if err := svc.DeleteDocument(r.Context(), id); err != nil {
			handleError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func catalogHandler(c patient.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, c)
	}
}
