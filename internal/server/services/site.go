package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/articles"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/repomanager"
)

const (
	frontPagePerCategory = 3
	latestCount          = 5
)

// SiteService serves the public, unauthenticated reads.
type SiteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSiteService(db *sql.DB, m repomanager.RepositoryManager) *SiteService {
	return &SiteService{db: db, repomanager: m}
}

// FrontPage returns up to three newest articles per category.
func (s *SiteService) FrontPage(ctx context.Context) ([]*models.Article, error) {
	list, err := s.repomanager.Articles(s.db).List(ctx, articles.Filter{})
	if err != nil {
		return nil, fmt.Errorf("error listing articles: %w", err)
	}

	seen := make(map[string]int)
	res := make([]*models.Article, 0, len(list))
	for _, a := range list {
		if seen[a.CategoryID] >= frontPagePerCategory {
			continue
		}
		seen[a.CategoryID]++
		res = append(res, a)
	}
	return res, nil
}

func (s *SiteService) Latest(ctx context.Context) ([]*models.Article, error) {
	list, err := s.repomanager.Articles(s.db).List(ctx, articles.Filter{Limit: latestCount})
	if err != nil {
		return nil, fmt.Errorf("error listing articles: %w", err)
	}
	return list, nil
}

// Categories returns the categories that have at least one article.
func (s *SiteService) Categories(ctx context.Context) ([]*models.Category, error) {
	list, err := s.repomanager.Categories(s.db).ListInUse(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	return list, nil
}

// ByCategory lists the articles of the category with the given name,
// matched case-insensitively.
func (s *SiteService) ByCategory(ctx context.Context, name string) ([]*models.Article, error) {
	c, err := s.repomanager.Categories(s.db).GetByName(ctx, name)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "error getting category")
	}

	list, err := s.repomanager.Articles(s.db).List(ctx, articles.Filter{CategoryID: c.ID})
	if err != nil {
		return nil, fmt.Errorf("error listing articles: %w", err)
	}
	return list, nil
}

// ByAuthor lists the articles written by the given username.
func (s *SiteService) ByAuthor(ctx context.Context, userName string) ([]*models.Article, error) {
	u, err := s.repomanager.Users(s.db).GetUserByLogin(ctx, userName)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "error getting author")
	}

	list, err := s.repomanager.Articles(s.db).List(ctx, articles.Filter{AuthorID: u.ID})
	if err != nil {
		return nil, fmt.Errorf("error listing articles: %w", err)
	}
	return list, nil
}

func (s *SiteService) Article(ctx context.Context, slug string) (*models.Article, error) {
	a, err := s.repomanager.Articles(s.db).GetBySlug(ctx, slug)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "error getting article")
	}
	return a, nil
}
