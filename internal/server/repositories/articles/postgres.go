// Package articles provides the PostgreSQL-backed article repository.
package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/dbx"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectArticle = `
	SELECT a.id, a.title, a.slug, a.content, a.image, a.author_id, u.username, u.full_name,
	       a.category_id, c.name, a.created_at
	FROM articles a
	JOIN users u ON u.id = a.author_id
	JOIN categories c ON c.id = a.category_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	a := &models.Article{}
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &a.Content, &a.Image, &a.AuthorID, &a.AuthorUserName,
		&a.AuthorFullName, &a.CategoryID, &a.CategoryName, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Article) (*models.Article, error) {
	query :=
		`INSERT INTO articles (title, slug, content, image, author_id, category_id)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, a.Title, a.Slug, a.Content, a.Image, a.AuthorID, a.CategoryID).
		Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	return r.getOne(ctx, selectArticle+` WHERE a.id = $1`, id)
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*models.Article, error) {
	return r.getOne(ctx, selectArticle+` WHERE a.slug = $1`, slug)
}

func (r *PostgresRepository) getOne(ctx context.Context, query, arg string) (*models.Article, error) {
	a, err := scanArticle(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*models.Article, error) {
	var (
		where []string
		args  []any
	)
	if f.AuthorID != "" {
		args = append(args, f.AuthorID)
		where = append(where, fmt.Sprintf("a.author_id = $%d", len(args)))
	}
	if f.CategoryID != "" {
		args = append(args, f.CategoryID)
		where = append(where, fmt.Sprintf("a.category_id = $%d", len(args)))
	}

	query := selectArticle
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY a.created_at DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, a *models.Article) error {
	query :=
		`UPDATE articles SET title = $2, slug = $3, content = $4, image = $5, category_id = $6
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query, a.ID, a.Title, a.Slug, a.Content, a.Image, a.CategoryID)
	if err != nil {
		return translate(err)
	}
	return oneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return oneRow(res)
}

func (r *PostgresRepository) Count(ctx context.Context, authorID string) (int, error) {
	if authorID == "" {
		return r.count(ctx, `SELECT COUNT(*) FROM articles`)
	}
	return r.count(ctx, `SELECT COUNT(*) FROM articles WHERE author_id = $1`, authorID)
}

func (r *PostgresRepository) CountByCategory(ctx context.Context, categoryID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM articles WHERE category_id = $1`, categoryID)
}

func (r *PostgresRepository) count(ctx context.Context, query string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

// translate maps constraint violations: a duplicate slug is a conflict and
// a dangling author or category reference is not found.
func translate(err error) error {
	switch {
	case dbx.IsUniqueViolation(err):
		return common.ErrorConflict
	case dbx.IsForeignKeyViolation(err):
		return common.ErrorNotFound
	default:
		return fmt.Errorf("db error: %w", err)
	}
}

func oneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
