package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dosetrack/dosetrack/internal/platform/apperr"
	"github.com/dosetrack/dosetrack/internal/platform/db"
	"github.com/dosetrack/dosetrack/internal/platform/schedule"
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

const patientCols = `id, name, iin, phone,
	morning_hour, morning_minute, afternoon_hour, afternoon_minute,
	evening_hour, evening_minute, created_at, updated_at`

// timeCols splits a stored slot preference back into a TimeOfDay.
// Hour and minute columns are always set or cleared together.
func timeFromCols(hour, minute *int16) *schedule.TimeOfDay {
	if hour == nil || minute == nil {
		return nil
	}
	return &schedule.TimeOfDay{Hour: int(*hour), Minute: int(*minute)}
}

func colsFromTime(t *schedule.TimeOfDay) (*int16, *int16) {
	if t == nil {
		return nil, nil
	}
	h, m := int16(t.Hour), int16(t.Minute)
	return &h, &m
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var mh, mm, ah, am, eh, em *int16
	err := row.Scan(&p.ID, &p.Name, &p.IIN, &p.Phone,
		&mh, &mm, &ah, &am, &eh, &em, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.MedicationTimes = MedicationTimes{
		Morning:   timeFromCols(mh, mm),
		Afternoon: timeFromCols(ah, am),
		Evening:   timeFromCols(eh, em),
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	mh, mm := colsFromTime(p.MedicationTimes.Morning)
	ah, am := colsFromTime(p.MedicationTimes.Afternoon)
	eh, em := colsFromTime(p.MedicationTimes.Evening)
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (id, name, iin, phone,
			morning_hour, morning_minute, afternoon_hour, afternoon_minute,
			evening_hour, evening_minute)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.Name, p.IIN, p.Phone, mh, mm, ah, am, eh, em)
	if isUniqueViolation(err) {
		return apperr.E(apperr.Validation, "patient with this iin or phone already exists")
	}
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.NotFound, "patient %s not found", id)
	}
	return p, err
}

func (r *repoPG) UpdateMedicationTimes(ctx context.Context, id uuid.UUID, times MedicationTimes) error {
	mh, mm := colsFromTime(times.Morning)
	ah, am := colsFromTime(times.Afternoon)
	eh, em := colsFromTime(times.Evening)
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			morning_hour=$2, morning_minute=$3,
			afternoon_hour=$4, afternoon_minute=$5,
			evening_hour=$6, evening_minute=$7,
			updated_at=NOW()
		WHERE id = $1`,
		id, mh, mm, ah, am, eh, em)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.E(apperr.NotFound, "patient %s not found", id)
	}
	return nil
}

func (r *repoPG) Search(ctx context.Context, query string, limit int) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patient
		WHERE name ILIKE '%' || $1 || '%'
		   OR iin LIKE '%' || $1 || '%'
		   OR phone LIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

func (r *repoPG) ListDoctors(ctx context.Context, patientID uuid.UUID) ([]Doctor, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.id, d.name, d.phone, d.speciality
		FROM doctor d
		JOIN patient_doctor pd ON pd.doctor_id = d.id
		WHERE pd.patient_id = $1
		ORDER BY d.name`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var doctors []Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.Speciality); err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

func (r *repoPG) ListHospitals(ctx context.Context, patientID uuid.UUID) ([]Hospital, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT h.id, h.name, h.address
		FROM hospital h
		JOIN hospital_patient hp ON hp.hospital_id = h.id
		WHERE hp.patient_id = $1
		ORDER BY h.name`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hospitals []Hospital
	for rows.Next() {
		var h Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Address); err != nil {
			return nil, err
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, rows.Err()
}

func (r *repoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
