// Package settings persists the single row of site-wide settings.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Get(ctx context.Context) (*models.Setting, error) {
	query :=
		`SELECT website_name, image, theme_color, footer_description, updated_at
		 FROM settings WHERE id = 1
		 `

	s := &models.Setting{}
	err := r.db.QueryRowContext(ctx, query).Scan(&s.WebsiteName, &s.Image, &s.ThemeColor, &s.FooterDescription, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) Save(ctx context.Context, s *models.Setting) error {
	query :=
		`INSERT INTO settings (id, website_name, image, theme_color, footer_description, updated_at)
		 VALUES (1, $1, $2, $3, $4, now())
		 ON CONFLICT (id) DO UPDATE SET
		     website_name = EXCLUDED.website_name,
		     image = EXCLUDED.image,
		     theme_color = EXCLUDED.theme_color,
		     footer_description = EXCLUDED.footer_description,
		     updated_at = EXCLUDED.updated_at
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, s.WebsiteName, s.Image, s.ThemeColor, s.FooterDescription).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
