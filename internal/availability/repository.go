package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nekogravitycat/coaching-backend/internal/db"
)

// Repository persists coach availability. Records are upserted and never deleted.
type Repository interface {
	GetByCoachID(ctx context.Context, coachID string) (*Availability, error)
	Upsert(ctx context.Context, a *Availability) (created bool, err error)

	// WithCoachLock runs fn in a transaction that serializes edits of the
	// coach's record. The Repository handed to fn is bound to that transaction.
	WithCoachLock(ctx context.Context, coachID string, fn func(repo Repository) error) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
	db   db.DBTX
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool, db: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func (r *pgxRepository) GetByCoachID(ctx context.Context, coachID string) (*Availability, error) {
	query, args, err := psql.Select(
		"id", "coach_id", "unavailable_dates", "working_hours", "time_zone", "created_at", "updated_at",
	).
		From("public.coach_availability").
		Where(squirrel.Eq{"coach_id": coachID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get availability query failed: %w", err)
	}

	var a Availability
	var hoursJSON []byte
	if err := r.db.QueryRow(ctx, query, args...).Scan(
		&a.ID, &a.CoachID, &a.UnavailableDates, &hoursJSON, &a.TimeZone, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get availability failed: %w", err)
	}

	if len(hoursJSON) > 0 {
		if err := json.Unmarshal(hoursJSON, &a.WorkingHours); err != nil {
			return nil, fmt.Errorf("decode working hours for coach %s: %w", coachID, err)
		}
	}

	return &a, nil
}

func (r *pgxRepository) Upsert(ctx context.Context, a *Availability) (bool, error) {
	hours := a.WorkingHours
	if hours == nil {
		hours = WorkingHours{}
	}
	hoursJSON, err := json.Marshal(hours)
	if err != nil {
		return false, fmt.Errorf("encode working hours: %w", err)
	}

	dates := a.UnavailableDates
	if dates == nil {
		dates = []time.Time{}
	}

	// xmax = 0 only for freshly inserted rows.
	query, args, err := psql.Insert("public.coach_availability").
		Columns("coach_id", "unavailable_dates", "working_hours", "time_zone").
		Values(a.CoachID, dates, hoursJSON, a.TimeZone).
		Suffix(`ON CONFLICT (coach_id) DO UPDATE SET
			unavailable_dates = EXCLUDED.unavailable_dates,
			working_hours = EXCLUDED.working_hours,
			time_zone = EXCLUDED.time_zone,
			updated_at = now()
		RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build upsert availability query failed: %w", err)
	}

	var inserted bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt, &inserted); err != nil {
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ForeignKeyViolation {
			return false, ErrCoachNotFound
		}
		return false, fmt.Errorf("upsert availability failed: %w", err)
	}

	return inserted, nil
}

// The lock key is namespaced so calendar edits never wait on session bookings.
func (r *pgxRepository) WithCoachLock(ctx context.Context, coachID string, fn func(repo Repository) error) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended('availability:' || $1, 0))", coachID); err != nil {
			return fmt.Errorf("acquire availability lock failed: %w", err)
		}
		return fn(&pgxRepository{pool: r.pool, db: tx})
	})
}
