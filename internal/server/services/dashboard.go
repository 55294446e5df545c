package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/repomanager"
)

type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager) *DashboardService {
	return &DashboardService{db: db, repomanager: m}
}

// Get counts users, categories and articles. Authors see only their own
// article count.
func (s *DashboardService) Get(ctx context.Context, caller *models.PublicUser) (*models.Dashboard, error) {
	if caller == nil {
		return nil, common.ErrorUnauthorized
	}

	d := &models.Dashboard{User: caller}
	var err error

	if d.UserCount, err = s.repomanager.Users(s.db).Count(ctx); err != nil {
		return nil, fmt.Errorf("error counting users: %w", err)
	}
	if d.CategoryCount, err = s.repomanager.Categories(s.db).Count(ctx); err != nil {
		return nil, fmt.Errorf("error counting categories: %w", err)
	}

	author := ""
	if !caller.IsAdmin() {
		author = caller.ID
	}
	if d.ArticleCount, err = s.repomanager.Articles(s.db).Count(ctx, author); err != nil {
		return nil, fmt.Errorf("error counting articles: %w", err)
	}

	return d, nil
}
