package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, p *Post) error
	GetByID(ctx context.Context, id string) (*Post, error)
	List(ctx context.Context, filter Filter) ([]*Post, int, error)
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func selectPosts(extra ...string) squirrel.SelectBuilder {
	cols := []string{
		"p.id", "p.title", "p.content", "p.image_file_id", "p.tags",
		"p.author_id", "u.name", "p.created_at", "p.updated_at",
	}
	return psql.Select(append(cols, extra...)...).
		From("public.blog_posts p").
		Join("public.users u ON u.id = p.author_id")
}

func scanPost(row pgx.Row, extra ...any) (*Post, error) {
	var p Post
	dest := []any{
		&p.ID, &p.Title, &p.Content, &p.ImageFileID, &p.Tags,
		&p.AuthorID, &p.AuthorName, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pgxRepository) Create(ctx context.Context, p *Post) error {
	query, args, err := psql.Insert("public.blog_posts").
		Columns("title", "content", "image_file_id", "tags", "author_id").
		Values(p.Title, p.Content, p.ImageFileID, p.Tags, p.AuthorID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create post query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("create post failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Post, error) {
	query, args, err := selectPosts().
		Where(squirrel.Eq{"p.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get post query failed: %w", err)
	}

	p, err := scanPost(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get post failed: %w", err)
	}
	return p, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Post, int, error) {
	query := selectPosts("count(*) OVER() AS total_count")

	if filter.Keyword != "" {
		query = query.Where(squirrel.Or{
			squirrel.ILike{"p.title": "%" + filter.Keyword + "%"},
			squirrel.ILike{"p.content": "%" + filter.Keyword + "%"},
		})
	}
	if filter.Tag != "" {
		query = query.Where(squirrel.Expr("? = ANY(p.tags)", filter.Tag))
	}
	if filter.AuthorID != "" {
		query = query.Where(squirrel.Eq{"p.author_id": filter.AuthorID})
	}

	query = query.OrderBy("p.created_at DESC", "p.id")

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	query = query.Limit(uint64(filter.PageSize)).Offset(uint64((filter.Page - 1) * filter.PageSize))

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list posts query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list posts failed: %w", err)
	}
	defer rows.Close()

	var (
		result []*Post
		total  int
	)
	for rows.Next() {
		p, err := scanPost(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan post failed: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate posts failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, p *Post) error {
	query, args, err := psql.Update("public.blog_posts").
		Set("title", p.Title).
		Set("content", p.Content).
		Set("image_file_id", p.ImageFileID).
		Set("tags", p.Tags).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": p.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update post query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update post failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete("public.blog_posts").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete post query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete post failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
