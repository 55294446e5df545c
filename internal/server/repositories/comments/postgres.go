// Package comments provides the PostgreSQL-backed comment repository.
package comments

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

const selectComment = `
	SELECT cm.id, cm.article_id, cm.name, cm.email, cm.content, cm.status, a.title, a.author_id, cm.created_at
	FROM comments cm
	JOIN articles a ON a.id = cm.article_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(row rowScanner) (*models.Comment, error) {
	c := &models.Comment{}
	err := row.Scan(&c.ID, &c.ArticleID, &c.Name, &c.Email, &c.Content, &c.Status,
		&c.ArticleTitle, &c.ArticleAuthorID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Comment) (*models.Comment, error) {
	query :=
		`INSERT INTO comments (article_id, name, email, content, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query, c.ArticleID, c.Name, c.Email, c.Content, string(c.Status)).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	c, err := scanComment(r.db.QueryRowContext(ctx, selectComment+` WHERE cm.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*models.Comment, error) {
	var (
		where []string
		args  []any
	)
	if f.ArticleID != "" {
		args = append(args, f.ArticleID)
		where = append(where, fmt.Sprintf("cm.article_id = $%d", len(args)))
	}
	if f.ArticleAuthorID != "" {
		args = append(args, f.ArticleAuthorID)
		where = append(where, fmt.Sprintf("a.author_id = $%d", len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("cm.status = $%d", len(args)))
	}

	query := selectComment
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY cm.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status models.CommentStatus) error {
	return r.execOne(ctx, `UPDATE comments SET status = $2 WHERE id = $1`, id, string(status))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.execOne(ctx, `DELETE FROM comments WHERE id = $1`, id)
}

func (r *PostgresRepository) CountOnArticlesBy(ctx context.Context, authorID string) (int, error) {
	query :=
		`SELECT COUNT(*) FROM comments cm
		 JOIN articles a ON a.id = cm.article_id
		 WHERE a.author_id = $1
		 `

	var n int
	if err := r.db.QueryRowContext(ctx, query, authorID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
