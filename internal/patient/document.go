package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-office-scheduling/internal/clinic"
)

func (s *Service) AddDocument(ctx context.Context, form DocumentForm) (*clinic.Document, error) {
	if err := s.validator.Struct(&form); err != nil {
		return nil, err
	}
	d := &clinic.Document{}
	applyDocument(form, d)
	if err := s.store.CreateDocument(ctx, d); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	s.logger(ctx).WithField("document_id", d.ID).WithField("number", d.PatientNumber).Info("document added")
	return d, nil
}

func (s *Service) UpdateDocument(ctx context.Context, id uuid.UUID, form DocumentForm) (*clinic.Document, error) {
	d, err := s.store.GetDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if err := s.validator.Struct(&form); err != nil {
		return nil, err
	}
	applyDocument(form, d)
	if err := s.store.UpdateDocument(ctx, d); err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	return d, nil
}

func (s *Service) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func (s *Service) ListDocuments(ctx context.Context) ([]clinic.Document, error) {
	ds, err := s.store.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return ds, nil
}

func (s *Service) DocumentsFor(ctx context.Context, number string) ([]clinic.Document, error) {
	ds, err := s.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]clinic.Document, 0)
	for _, d := range ds {
		if d.PatientNumber == number {
			out = append(out, d)
		}
	}
	return out, nil
}

func applyDocument(form DocumentForm, d *clinic.Document) {
	d.PatientNumber = form.PatientNumber
	d.Patient = strings.TrimSpace(form.Patient)
	d.Type = strings.TrimSpace(form.Type)
	d.Name = strings.TrimSpace(form.Name)
	d.Content = form.Content
}
