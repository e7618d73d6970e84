package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
	"github.com/hackgods/clinic-office-scheduling/internal/validate"
)

const msgPaymentStatus = "Statut de paiement inconnu"

func (s *Service) paymentFromForm(form PaymentForm, p *clinic.Payment) error {
	if err := s.validator.Struct(&form); err != nil {
		return err
	}
	status, ok := clinic.ParsePaymentStatus(form.Status)
	if !ok {
		return validate.NewError("status", msgPaymentStatus)
	}
	date, err := time.ParseInLocation(clinic.DateLayout, form.Date, s.loc)
	if err != nil {
		return validate.NewError("date", "Format invalide, attendu 2006-01-02")
	}
	p.PatientNumber = form.PatientNumber
	p.Patient = form.Patient
	p.Date = date
	p.Amount = parseAmount(form.Amount)
	p.Status = status
	p.Method = form.Method
	p.Insurance = form.Insurance
	return nil
}

// RecordPayment files a payment and counts it as a consultation of the
// patient with that number, whose last visit becomes the payment date.
func (s *Service) RecordPayment(ctx context.Context, form PaymentForm) (*clinic.Payment, error) {
	pay := &clinic.Payment{}
	if err := s.paymentFromForm(form, pay); err != nil {
		return nil, err
	}

	owner, err := s.store.GetPatientByNumber(ctx, pay.PatientNumber)
	switch {
	case err == nil:
		if pay.Patient == "" {
			pay.Patient = owner.DisplayName()
		}
	case errors.Is(err, clinic.ErrPatientNotFound):
		owner = nil
	default:
		return nil, fmt.Errorf("load patient: %w", err)
	}

	if err := s.store.CreatePayment(ctx, pay); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	if owner != nil {
		date := pay.Date
		owner.ConsultationCount++
		owner.LastVisit = &date
		if err := s.store.UpdatePatient(ctx, owner); err != nil {
			s.logger(ctx).WithError(err).WithField("number", owner.Number).Warn("update consultation count")
		}
	}

	s.logger(ctx).WithFields(logrus.Fields{
		"payment_id": pay.ID,
		"number":     pay.PatientNumber,
		"amount":     pay.Amount.StringFixed(2),
		"status":     pay.Status,
	}).Info("payment recorded")
	return pay, nil
}

func (s *Service) UpdatePayment(ctx context.Context, id uuid.UUID, form PaymentForm) (*clinic.Payment, error) {
	pay, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	if err := s.paymentFromForm(form, pay); err != nil {
		return nil, err
	}
	if err := s.store.UpdatePayment(ctx, pay); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	return pay, nil
}

func (s *Service) DeletePayment(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

func (s *Service) ListPayments(ctx context.Context) ([]clinic.Payment, error) {
	ps, err := s.store.ListPayments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return ps, nil
}

// PaymentsFor lists the payments filed under a patient number.
func (s *Service) PaymentsFor(ctx context.Context, number string) ([]clinic.Payment, error) {
	ps, err := s.ListPayments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]clinic.Payment, 0)
	for _, p := range ps {
		if p.PatientNumber == number {
			out = append(out, p)
		}
	}
	return out, nil
}

// LastPayment is the most recently filed payment for number, if any.
func (s *Service) LastPayment(ctx context.Context, number string) (*clinic.Payment, error) {
	ps, err := s.PaymentsFor(ctx, number)
	if err != nil {
		return nil, err
	}
	if len(ps) == 0 {
		return nil, clinic.ErrPaymentNotFound
	}
	last := ps[len(ps)-1]
	return &last, nil
}
