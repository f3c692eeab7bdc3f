package prescription

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dosetrack/dosetrack/internal/domain/doseevent"
	"github.com/dosetrack/dosetrack/internal/platform/apperr"
	"github.com/dosetrack/dosetrack/internal/platform/db"
	"github.com/dosetrack/dosetrack/pkg/pagination"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx, ok := db.TxFromContext(ctx); ok {
		return tx
	}
	return r.pool
}

const prescriptionCols = `id, doctor_id, patient_id, disease, disease_description, try_comment, created_at`

func scanPrescription(row pgx.Row) (*Prescription, error) {
	var p Prescription
	err := row.Scan(&p.ID, &p.DoctorID, &p.PatientID, &p.Disease,
		&p.DiseaseDescription, &p.TryComment, &p.CreatedAt)
	return &p, err
}

func (r *repoPG) Insert(ctx context.Context, p *Prescription) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO prescription (id, doctor_id, patient_id, disease, disease_description, try_comment)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		p.ID, p.DoctorID, p.PatientID, p.Disease, p.DiseaseDescription, p.TryComment)
	return err
}

func (r *repoPG) InsertLineItem(ctx context.Context, li *LineItem) error {
	li.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO line_item (id, prescription_id, patient_id, doctor_id, drug, days, doses_per_day, note, start_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		li.ID, li.PrescriptionID, li.PatientID, li.DoctorID,
		li.Drug, li.Days, li.DosesPerDay, li.Note, li.StartDate)
	return err
}

// InsertDoseEvents writes the expanded events in one round trip.
func (r *repoPG) InsertDoseEvents(ctx context.Context, events []doseevent.DoseEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([][]interface{}, len(events))
	for i, e := range events {
		rows[i] = []interface{}{e.ID, e.LineItemID, e.PatientID, e.DoctorID, e.ScheduledAt, string(e.Slot)}
	}

	// CopyFrom needs a pgx connection; inside a transaction use the tx
	// directly, otherwise the pool.
	columns := []string{"id", "line_item_id", "patient_id", "doctor_id", "scheduled_at", "slot"}
	if tx, ok := db.TxFromContext(ctx); ok {
		_, err := tx.CopyFrom(ctx, pgx.Identifier{"dose_event"}, columns, pgx.CopyFromRows(rows))
		return err
	}
	_, err := r.pool.CopyFrom(ctx, pgx.Identifier{"dose_event"}, columns, pgx.CopyFromRows(rows))
	return err
}

func (r *repoPG) LinkDoctorPatient(ctx context.Context, doctorID, patientID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_doctor (patient_id, doctor_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, patientID, doctorID)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	p, err := scanPrescription(r.conn(ctx).QueryRow(ctx,
		`SELECT `+prescriptionCols+` FROM prescription WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.NotFound, "prescription %s not found", id)
	}
	return p, err
}

func (r *repoPG) list(ctx context.Context, where string, arg interface{}, page pagination.Params) ([]*Prescription, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM prescription WHERE `+where, arg).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+prescriptionCols+` FROM prescription WHERE `+where+
			` ORDER BY created_at DESC `+page.SQL(), arg)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var prescriptions []*Prescription
	for rows.Next() {
		p, err := scanPrescription(rows)
		if err != nil {
			return nil, 0, err
		}
		prescriptions = append(prescriptions, p)
	}
	return prescriptions, total, rows.Err()
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, page pagination.Params) ([]*Prescription, int, error) {
	return r.list(ctx, "patient_id = $1", patientID, page)
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, page pagination.Params) ([]*Prescription, int, error) {
	return r.list(ctx, "doctor_id = $1", doctorID, page)
}

func (r *repoPG) ListLineItems(ctx context.Context, prescriptionID uuid.UUID) ([]*LineItem, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, prescription_id, patient_id, doctor_id, drug, days, doses_per_day, note, start_date, created_at
		FROM line_item WHERE prescription_id = $1 ORDER BY created_at`, prescriptionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*LineItem
	for rows.Next() {
		var li LineItem
		if err := rows.Scan(&li.ID, &li.PrescriptionID, &li.PatientID, &li.DoctorID,
			&li.Drug, &li.Days, &li.DosesPerDay, &li.Note, &li.StartDate, &li.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &li)
	}
	return items, rows.Err()
}
