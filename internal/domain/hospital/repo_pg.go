package hospital

import (
	"context"
	"errors"

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

const hospitalCols = `id, name, address, reg_number, gis_link, created_at`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Name, &h.Address, &h.RegNumber, &h.GISLink, &h.CreatedAt)
	return &h, err
}

func (r *repoPG) Create(ctx context.Context, h *Hospital) error {
	h.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hospital (id, name, address, reg_number, gis_link)
		VALUES ($1,$2,$3,$4,$5)`,
		h.ID, h.Name, h.Address, h.RegNumber, h.GISLink)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	h, err := scanHospital(r.conn(ctx).QueryRow(ctx,
		`SELECT `+hospitalCols+` FROM hospital WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.NotFound, "hospital %s not found", id)
	}
	return h, err
}

func (r *repoPG) Search(ctx context.Context, query string, limit int) ([]*Hospital, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+hospitalCols+` FROM hospital
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hospitals []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, err
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, rows.Err()
}

func (r *repoPG) AssignDoctor(ctx context.Context, hospitalID, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hospital_doctor (hospital_id, doctor_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, hospitalID, doctorID)
	return foreignKeyToNotFound(err)
}

func (r *repoPG) AssignPatient(ctx context.Context, hospitalID, patientID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO hospital_patient (hospital_id, patient_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, hospitalID, patientID)
	return foreignKeyToNotFound(err)
}

func (r *repoPG) ListMembers(ctx context.Context, hospitalID uuid.UUID) (*Members, error) {
	members := &Members{}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT d.id, d.name, d.phone
		FROM doctor d
		JOIN hospital_doctor hd ON hd.doctor_id = d.id
		WHERE hd.hospital_id = $1
		ORDER BY d.name`, hospitalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Phone); err != nil {
			return nil, err
		}
		members.Doctors = append(members.Doctors, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.conn(ctx).Query(ctx, `
		SELECT p.id, p.name, p.phone
		FROM patient p
		JOIN hospital_patient hp ON hp.patient_id = p.id
		WHERE hp.hospital_id = $1
		ORDER BY p.name`, hospitalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name, &m.Phone); err != nil {
			return nil, err
		}
		members.Patients = append(members.Patients, m)
	}
	return members, rows.Err()
}

func foreignKeyToNotFound(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return apperr.E(apperr.NotFound, "referenced record does not exist")
	}
	return err
}
