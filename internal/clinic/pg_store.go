package clinic

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgStore persists a clinic in Postgres. Timestamps are stored as
// TIMESTAMP WITHOUT TIME ZONE holding clinic wall-clock time; loc is attached
// again on read.
type PgStore struct {
	pool *pgxpool.Pool
	loc  *time.Location
}

func NewPgStore(pool *pgxpool.Pool, loc *time.Location) *PgStore {
	if loc == nil {
		loc = time.Local
	}
	return &PgStore{pool: pool, loc: loc}
}

// Helpers

func naive(t time.Time) time.Time {
	return WallClock(t, time.UTC)
}

func naivePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	n := naive(*t)
	return &n
}

func (s *PgStore) local(t time.Time) time.Time {
	return WallClock(t, s.loc)
}

func (s *PgStore) localPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	l := s.local(*t)
	return &l
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

const uniqueViolation = "23505"

func isDuplicateNumber(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == "patients_number_key"
}

const appointmentColumns = `id, patient, patient_id, contact, scheduled_at, duration_minutes, type, source, status, created_at, updated_at`

func (s *PgStore) scanAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a        Appointment
		minutes  int
		typ, src string
		status   string
	)
	err := row.Scan(
		&a.ID,
		&a.Patient,
		&a.PatientID,
		&a.Contact,
		&a.At,
		&minutes,
		&typ,
		&src,
		&status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.At = s.local(a.At)
	a.Duration = time.Duration(minutes) * time.Minute
	a.Type = ParseType(typ)
	a.Source = ParseSource(src)
	a.Status = AppointmentStatus(status)
	return &a, nil
}

const patientColumns = `id, number, last_name, first_name, phone, email, city, sector, national_id,
	birth_date, consultation_type, insurance_active, insurance_provider, medical_history,
	consultation_count, last_visit, next_visit, created_at, updated_at`

func (s *PgStore) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(
		&p.ID,
		&p.Number,
		&p.LastName,
		&p.FirstName,
		&p.Phone,
		&p.Email,
		&p.City,
		&p.Sector,
		&p.NationalID,
		&p.BirthDate,
		&p.ConsultationType,
		&p.Insurance.Active,
		&p.Insurance.Provider,
		&p.MedicalHistory,
		&p.ConsultationCount,
		&p.LastVisit,
		&p.NextVisit,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.BirthDate = s.localPtr(p.BirthDate)
	p.LastVisit = s.localPtr(p.LastVisit)
	p.NextVisit = s.localPtr(p.NextVisit)
	return &p, nil
}

const paymentColumns = `id, patient_number, patient, date, amount::text, status, method,
	insurance_active, insurance_provider, created_at`

func (s *PgStore) scanPayment(row pgx.Row) (*Payment, error) {
	var (
		p      Payment
		amount string
		status string
	)
	err := row.Scan(
		&p.ID,
		&p.PatientNumber,
		&p.Patient,
		&p.Date,
		&amount,
		&status,
		&p.Method,
		&p.Insurance.Active,
		&p.Insurance.Provider,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	p.Amount = d
	p.Status = PaymentStatus(status)
	p.Date = s.local(p.Date)
	return &p, nil
}

const documentColumns = `id, patient_number, patient, type, name, content, created_at`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(
		&d.ID,
		&d.PatientNumber,
		&d.Patient,
		&d.Type,
		&d.Name,
		&d.Content,
		&d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// collect drains rows through scan.
func collect[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Appointments

func (s *PgStore) ListAppointments(ctx context.Context) ([]Appointment, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY seq`)
	if err != nil {
		return nil, storeErr("list appointments", err)
	}
	out, err := collect(rows, s.scanAppointment)
	return out, storeErr("list appointments", err)
}

func (s *PgStore) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id)
	a, err := s.scanAppointment(row)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrAppointmentNotFound
		}
		return nil, storeErr("get appointment", err)
	}
	return a, nil
}

func (s *PgStore) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, patient, patient_id, contact, scheduled_at, duration_minutes, type, source, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING created_at, updated_at
	`, a.ID, a.Patient, a.PatientID, a.Contact, naive(a.At), int(a.Duration/time.Minute),
		a.Type.String(), a.Source.String(), string(a.Status),
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	return storeErr("create appointment", err)
}

func (s *PgStore) UpdateAppointment(ctx context.Context, a *Appointment) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE appointments
		SET patient = $2,
		    patient_id = $3,
		    contact = $4,
		    scheduled_at = $5,
		    duration_minutes = $6,
		    type = $7,
		    source = $8,
		    status = $9,
		    updated_at = now()
		WHERE id = $1
	`, a.ID, a.Patient, a.PatientID, a.Contact, naive(a.At), int(a.Duration/time.Minute),
		a.Type.String(), a.Source.String(), string(a.Status))
	if err != nil {
		return storeErr("update appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (s *PgStore) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// Patients

func (s *PgStore) ListPatients(ctx context.Context) ([]Patient, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+patientColumns+` FROM patients ORDER BY seq`)
	if err != nil {
		return nil, storeErr("list patients", err)
	}
	out, err := collect(rows, s.scanPatient)
	return out, storeErr("list patients", err)
}

func (s *PgStore) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	p, err := s.scanPatient(row)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrPatientNotFound
		}
		return nil, storeErr("get patient", err)
	}
	return p, nil
}

func (s *PgStore) GetPatientByNumber(ctx context.Context, number string) (*Patient, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+patientColumns+` FROM patients WHERE number = $1`, number)
	p, err := s.scanPatient(row)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrPatientNotFound
		}
		return nil, storeErr("get patient by number", err)
	}
	return p, nil
}

func (s *PgStore) CreatePatient(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	history := p.MedicalHistory
	if history == nil {
		history = []string{}
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO patients (id, number, last_name, first_name, phone, email, city, sector, national_id,
			birth_date, consultation_type, insurance_active, insurance_provider, medical_history,
			consultation_count, last_visit, next_visit, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, now(), now())
		RETURNING created_at, updated_at
	`, p.ID, p.Number, p.LastName, p.FirstName, p.Phone, p.Email, p.City, p.Sector, p.NationalID,
		naivePtr(p.BirthDate), p.ConsultationType, p.Insurance.Active, p.Insurance.Provider, history,
		p.ConsultationCount, naivePtr(p.LastVisit), naivePtr(p.NextVisit),
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if isDuplicateNumber(err) {
		return ErrDuplicatePatientNumber
	}
	return storeErr("create patient", err)
}

func (s *PgStore) UpdatePatient(ctx context.Context, p *Patient) error {
	history := p.MedicalHistory
	if history == nil {
		history = []string{}
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE patients
		SET last_name = $2,
		    first_name = $3,
		    phone = $4,
		    email = $5,
		    city = $6,
		    sector = $7,
		    national_id = $8,
		    birth_date = $9,
		    consultation_type = $10,
		    insurance_active = $11,
		    insurance_provider = $12,
		    medical_history = $13,
		    consultation_count = $14,
		    last_visit = $15,
		    next_visit = $16,
		    updated_at = now()
		WHERE id = $1
	`, p.ID, p.LastName, p.FirstName, p.Phone, p.Email, p.City, p.Sector, p.NationalID,
		naivePtr(p.BirthDate), p.ConsultationType, p.Insurance.Active, p.Insurance.Provider, history,
		p.ConsultationCount, naivePtr(p.LastVisit), naivePtr(p.NextVisit))
	if err != nil {
		return storeErr("update patient", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

func (s *PgStore) DeletePatient(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete patient", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

// Payments

func (s *PgStore) ListPayments(ctx context.Context) ([]Payment, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+paymentColumns+` FROM payments ORDER BY seq`)
	if err != nil {
		return nil, storeErr("list payments", err)
	}
	out, err := collect(rows, s.scanPayment)
	return out, storeErr("list payments", err)
}

func (s *PgStore) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	p, err := s.scanPayment(row)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrPaymentNotFound
		}
		return nil, storeErr("get payment", err)
	}
	return p, nil
}

func (s *PgStore) CreatePayment(ctx context.Context, p *Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO payments (id, patient_number, patient, date, amount, status, method,
			insurance_active, insurance_provider, created_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, $7, $8, $9, now())
		RETURNING created_at
	`, p.ID, p.PatientNumber, p.Patient, naive(p.Date), p.Amount.String(), string(p.Status), p.Method,
		p.Insurance.Active, p.Insurance.Provider,
	).Scan(&p.CreatedAt)
	return storeErr("create payment", err)
}

func (s *PgStore) UpdatePayment(ctx context.Context, p *Payment) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE payments
		SET patient_number = $2,
		    patient = $3,
		    date = $4,
		    amount = $5::numeric,
		    status = $6,
		    method = $7,
		    insurance_active = $8,
		    insurance_provider = $9
		WHERE id = $1
	`, p.ID, p.PatientNumber, p.Patient, naive(p.Date), p.Amount.String(), string(p.Status), p.Method,
		p.Insurance.Active, p.Insurance.Provider)
	if err != nil {
		return storeErr("update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

func (s *PgStore) DeletePayment(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete payment", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}

// Documents

func (s *PgStore) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY seq`)
	if err != nil {
		return nil, storeErr("list documents", err)
	}
	out, err := collect(rows, scanDocument)
	return out, storeErr("list documents", err)
}

func (s *PgStore) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	d, err := scanDocument(row)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrDocumentNotFound
		}
		return nil, storeErr("get document", err)
	}
	return d, nil
}

func (s *PgStore) CreateDocument(ctx context.Context, d *Document) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO documents (id, patient_number, patient, type, name, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		RETURNING created_at
	`, d.ID, d.PatientNumber, d.Patient, d.Type, d.Name, d.Content).Scan(&d.CreatedAt)
	return storeErr("create document", err)
}

func (s *PgStore) UpdateDocument(ctx context.Context, d *Document) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE documents
		SET patient_number = $2,
		    patient = $3,
		    type = $4,
		    name = $5,
		    content = $6
		WHERE id = $1
	`, d.ID, d.PatientNumber, d.Patient, d.Type, d.Name, d.Content)
	if err != nil {
		return storeErr("update document", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (s *PgStore) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return storeErr("delete document", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

var _ Store = (*PgStore)(nil)
