package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dosetrack/dosetrack/internal/platform/apperr"
	"github.com/dosetrack/dosetrack/internal/platform/db"
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

const appointmentCols = `id, doctor_id, patient_id, starts_at, created_at`

func (r *repoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO appointment (id, doctor_id, patient_id, starts_at)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at`,
		a.ID, a.DoctorID, a.PatientID, a.StartsAt).Scan(&a.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return apperr.E(apperr.NotFound, "referenced record does not exist")
	}
	return err
}

func (r *repoPG) ListByPatientFrom(ctx context.Context, patientID uuid.UUID, from time.Time) ([]*Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentCols+` FROM appointment
		WHERE patient_id = $1 AND starts_at >= $2
		ORDER BY starts_at`, patientID, from)
}

func (r *repoPG) ListByPatientBefore(ctx context.Context, patientID uuid.UUID, before time.Time) ([]*Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentCols+` FROM appointment
		WHERE patient_id = $1 AND starts_at < $2
		ORDER BY starts_at DESC`, patientID, before)
}

func (r *repoPG) ListByDoctorRange(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]*Appointment, error) {
	return r.list(ctx, `
		SELECT `+appointmentCols+` FROM appointment
		WHERE doctor_id = $1 AND starts_at >= $2 AND starts_at < $3
		ORDER BY starts_at`, doctorID, from, to)
}

func (r *repoPG) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM appointment WHERE starts_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *repoPG) list(ctx context.Context, sql string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.DoctorID, &a.PatientID, &a.StartsAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}
