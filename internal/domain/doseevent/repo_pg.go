package doseevent

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

const eventCols = `id, line_item_id, patient_id, doctor_id, scheduled_at, slot, missed_count, is_completed, is_expired`

func scanEvent(row pgx.Row) (*DoseEvent, error) {
	var e DoseEvent
	err := row.Scan(&e.ID, &e.LineItemID, &e.PatientID, &e.DoctorID,
		&e.ScheduledAt, &e.Slot, &e.MissedCount, &e.IsCompleted, &e.IsExpired)
	return &e, err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*DoseEvent, error) {
	e, err := scanEvent(r.conn(ctx).QueryRow(ctx,
		`SELECT `+eventCols+` FROM dose_event WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.E(apperr.NotFound, "dose event %s not found", id)
	}
	return e, err
}

// Complete finalizes a pending event. The guard on the terminal flags
// makes concurrent finalizations lose cleanly instead of overwriting.
func (r *repoPG) Complete(ctx context.Context, id uuid.UUID) (*DoseEvent, bool, error) {
	e, err := scanEvent(r.conn(ctx).QueryRow(ctx, `
		UPDATE dose_event SET is_completed = TRUE
		WHERE id = $1 AND NOT is_completed AND NOT is_expired
		RETURNING `+eventCols, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

// Delay bumps the missed count; at the ceiling the event expires with
// its timestamp untouched, otherwise the schedule slips by the given
// interval.
func (r *repoPG) Delay(ctx context.Context, id uuid.UUID, by time.Duration) (*DoseEvent, bool, error) {
	e, err := scanEvent(r.conn(ctx).QueryRow(ctx, `
		UPDATE dose_event SET
			missed_count = missed_count + 1,
			is_expired = missed_count + 1 >= $2,
			scheduled_at = CASE
				WHEN missed_count + 1 >= $2 THEN scheduled_at
				ELSE scheduled_at + $3
			END
		WHERE id = $1 AND NOT is_completed AND NOT is_expired
		RETURNING `+eventCols, id, MaxMissed, by))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return e, true, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*DoseEvent, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+eventCols+` FROM dose_event
		WHERE patient_id = $1
		ORDER BY scheduled_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func (r *repoPG) ListForRange(ctx context.Context, patientID uuid.UUID, from, to time.Time) ([]*DoseEvent, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+eventCols+` FROM dose_event
		WHERE patient_id = $1 AND scheduled_at >= $2 AND scheduled_at < $3
		ORDER BY scheduled_at`, patientID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEvents(rows)
}

func collectEvents(rows pgx.Rows) ([]*DoseEvent, error) {
	var events []*DoseEvent
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *repoPG) CountPrescriptions(ctx context.Context, patientID uuid.UUID) (int, int, error) {
	var withItems, withoutItems int
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE li.n > 0),
			COUNT(*) FILTER (WHERE li.n = 0)
		FROM prescription p
		LEFT JOIN LATERAL (
			SELECT COUNT(*) AS n FROM line_item WHERE prescription_id = p.id
		) li ON TRUE
		WHERE p.patient_id = $1`, patientID).Scan(&withItems, &withoutItems)
	return withItems, withoutItems, err
}
