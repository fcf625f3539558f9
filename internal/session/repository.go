package session

import (
	"context"
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

type Repository interface {
	ActiveSessionReader

	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	List(ctx context.Context, filter Filter) ([]*Session, int, error)
	Update(ctx context.Context, s *Session) error

	// WithCoachLock runs fn in a transaction that holds the coach's advisory
	// lock until commit. The Repository handed to fn is bound to that transaction.
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

func selectSessions(extra ...string) squirrel.SelectBuilder {
	cols := []string{
		"s.id", "s.coach_id", "c.name", "s.client_id", "cl.name",
		"s.date", "s.duration", "s.status", "COALESCE(s.notes, '')",
		"s.canceled_by", "s.cancel_reason", "s.rescheduled_at", "s.previous_date",
		"s.created_at", "s.updated_at",
	}
	return psql.Select(append(cols, extra...)...).
		From("public.sessions s").
		Join("public.users c ON s.coach_id = c.id").
		Join("public.users cl ON s.client_id = cl.id")
}

func scanSession(row pgx.Row, extra ...any) (*Session, error) {
	var s Session
	dest := []any{
		&s.ID, &s.CoachID, &s.CoachName, &s.ClientID, &s.ClientName,
		&s.Date, &s.Duration, &s.Status, &s.Notes,
		&s.CanceledBy, &s.CancelReason, &s.RescheduledAt, &s.PreviousDate,
		&s.CreatedAt, &s.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &s, nil
}

func nullableNotes(notes string) *string {
	if notes == "" {
		return nil
	}
	return &notes
}

func (r *pgxRepository) Create(ctx context.Context, s *Session) error {
	query, args, err := psql.Insert("public.sessions").
		Columns("coach_id", "client_id", "date", "duration", "status", "notes").
		Values(s.CoachID, s.ClientID, s.Date, s.Duration, s.Status, nullableNotes(s.Notes)).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create session query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("create session failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Session, error) {
	query, args, err := selectSessions().
		Where(squirrel.Eq{"s.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get session query failed: %w", err)
	}

	s, err := scanSession(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session failed: %w", err)
	}
	return s, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Session, int, error) {
	query := selectSessions("count(*) OVER() AS total_count")

	if filter.CoachID != "" {
		query = query.Where(squirrel.Eq{"s.coach_id": filter.CoachID})
	}
	if filter.ClientID != "" {
		query = query.Where(squirrel.Eq{"s.client_id": filter.ClientID})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"s.status": filter.Status})
	}
	if filter.From != nil {
		query = query.Where(squirrel.GtOrEq{"s.date": *filter.From})
	}
	if filter.To != nil {
		query = query.Where(squirrel.Lt{"s.date": *filter.To})
	}

	orderDir := "ASC"
	if filter.SortOrder == "DESC" {
		orderDir = "DESC"
	}
	query = query.OrderBy("s.date " + orderDir)

	// Pagination
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64(offset))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list sessions query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sessions failed: %w", err)
	}
	defer rows.Close()

	sessions := []*Session{}
	var total int
	for rows.Next() {
		s, err := scanSession(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan session failed: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate sessions failed: %w", err)
	}

	return sessions, total, nil
}

func (r *pgxRepository) ListActiveByCoach(ctx context.Context, coachID string, from, to time.Time) ([]*Session, error) {
	query, args, err := selectSessions().
		Where(squirrel.Eq{"s.coach_id": coachID}).
		Where(squirrel.NotEq{"s.status": StatusCanceled}).
		Where(squirrel.GtOrEq{"s.date": from}).
		Where(squirrel.Lt{"s.date": to}).
		OrderBy("s.date ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active sessions query failed: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list active sessions failed: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session failed: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *pgxRepository) Update(ctx context.Context, s *Session) error {
	query, args, err := psql.Update("public.sessions").
		Set("date", s.Date).
		Set("duration", s.Duration).
		Set("status", s.Status).
		Set("notes", nullableNotes(s.Notes)).
		Set("canceled_by", s.CanceledBy).
		Set("cancel_reason", s.CancelReason).
		Set("rescheduled_at", s.RescheduledAt).
		Set("previous_date", s.PreviousDate).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": s.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update session query failed: %w", err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		var e *pgconn.PgError
		if errors.As(err, &e) && e.Code == pgerrcode.ForeignKeyViolation {
			return ErrCancelerNotFound
		}
		return fmt.Errorf("update session failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) WithCoachLock(ctx context.Context, coachID string, fn func(repo Repository) error) error {
	return db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))", coachID); err != nil {
			return fmt.Errorf("acquire coach lock failed: %w", err)
		}
		return fn(&pgxRepository{pool: r.pool, db: tx})
	})
}
