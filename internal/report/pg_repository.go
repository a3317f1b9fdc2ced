package report

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/okingsaam/Pulse/internal/db"
)

type PgRepository struct {
	conn db.DBTX
}

func NewPgRepository(conn db.DBTX) *PgRepository {
	return &PgRepository{conn: conn}
}

func bounds(r *Range) (*time.Time, *time.Time) {
	if r == nil {
		return nil, nil
	}
	return &r.From, &r.To
}

func (r *PgRepository) CountAppointments(ctx context.Context, rg Range) (int, error) {
	var n int
	err := r.conn.QueryRow(ctx, `
		SELECT count(*) FROM appointments WHERE scheduled_at >= $1 AND scheduled_at < $2
	`, rg.From, rg.To).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count appointments: %w", err)
	}
	return n, nil
}

func (r *PgRepository) CountByDay(ctx context.Context, rg Range, loc *time.Location) ([]DayCount, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT to_char(scheduled_at AT TIME ZONE $3, 'YYYY-MM-DD') AS day, count(*)
		FROM appointments
		WHERE scheduled_at >= $1 AND scheduled_at < $2
		GROUP BY day
		ORDER BY day
	`, rg.From, rg.To, loc.String())
	if err != nil {
		return nil, fmt.Errorf("count by day: %w", err)
	}
	return collect(rows, func(row pgx.Row) (DayCount, error) {
		var dc DayCount
		err := row.Scan(&dc.Day, &dc.Count)
		return dc, err
	})
}

func (r *PgRepository) CountByStatus(ctx context.Context, rg *Range) ([]StatusCount, error) {
	from, to := bounds(rg)
	rows, err := r.conn.Query(ctx, `
		SELECT status, count(*)
		FROM appointments
		WHERE ($1::timestamptz IS NULL OR scheduled_at >= $1)
		  AND ($2::timestamptz IS NULL OR scheduled_at < $2)
		GROUP BY status
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	return collect(rows, func(row pgx.Row) (StatusCount, error) {
		var sc StatusCount
		err := row.Scan(&sc.Status, &sc.Count)
		return sc, err
	})
}

func (r *PgRepository) ServiceRevenue(ctx context.Context, rg Range) (int64, error) {
	var cents int64
	err := r.conn.QueryRow(ctx, `
		SELECT COALESCE(SUM(s.price_cents), 0)::bigint
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE a.scheduled_at >= $1 AND a.scheduled_at < $2
		  AND a.status IN ('confirmed', 'completed')
		  AND NOT EXISTS (
		    SELECT 1 FROM consultations c
		    WHERE c.appointment_id = a.id AND c.paid
		  )
	`, rg.From, rg.To).Scan(&cents)
	if err != nil {
		return 0, fmt.Errorf("service revenue: %w", err)
	}
	return cents, nil
}

func (r *PgRepository) PaidConsultationRevenue(ctx context.Context, rg Range) (int64, error) {
	var cents int64
	err := r.conn.QueryRow(ctx, `
		SELECT COALESCE(SUM(c.amount_cents), 0)::bigint
		FROM consultations c
		JOIN appointments a ON a.id = c.appointment_id
		WHERE a.scheduled_at >= $1 AND a.scheduled_at < $2
		  AND c.paid
	`, rg.From, rg.To).Scan(&cents)
	if err != nil {
		return 0, fmt.Errorf("consultation revenue: %w", err)
	}
	return cents, nil
}

func (r *PgRepository) TopProfessionals(ctx context.Context, rg *Range, n int) ([]Ranked, error) {
	return r.top(ctx, `
		SELECT p.id, p.name, count(*) AS total
		FROM appointments a
		JOIN professionals p ON p.id = a.professional_id
		WHERE ($1::timestamptz IS NULL OR a.scheduled_at >= $1)
		  AND ($2::timestamptz IS NULL OR a.scheduled_at < $2)
		GROUP BY p.id, p.name
		ORDER BY total DESC, p.name
		LIMIT $3
	`, rg, n)
}

func (r *PgRepository) TopServices(ctx context.Context, rg *Range, n int) ([]Ranked, error) {
	return r.top(ctx, `
		SELECT s.id, s.name, count(*) AS total
		FROM appointments a
		JOIN services s ON s.id = a.service_id
		WHERE ($1::timestamptz IS NULL OR a.scheduled_at >= $1)
		  AND ($2::timestamptz IS NULL OR a.scheduled_at < $2)
		GROUP BY s.id, s.name
		ORDER BY total DESC, s.name
		LIMIT $3
	`, rg, n)
}

func (r *PgRepository) top(ctx context.Context, query string, rg *Range, n int) ([]Ranked, error) {
	from, to := bounds(rg)
	rows, err := r.conn.Query(ctx, query, from, to, n)
	if err != nil {
		return nil, fmt.Errorf("top ranking: %w", err)
	}
	return collect(rows, func(row pgx.Row) (Ranked, error) {
		var rk Ranked
		err := row.Scan(&rk.ID, &rk.Name, &rk.Count)
		return rk, err
	})
}

func (r *PgRepository) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	err := r.conn.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM persons WHERE role = 'patient'),
			(SELECT count(*) FROM professionals),
			(SELECT count(*) FROM services)
	`).Scan(&t.Patients, &t.Professionals, &t.Services)
	if err != nil {
		return Totals{}, fmt.Errorf("totals: %w", err)
	}
	return t, nil
}

func collect[T any](rows pgx.Rows, scan func(pgx.Row) (T, error)) ([]T, error) {
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}
