package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/articles"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/repomanager"
)

// ArticleInput carries article fields from the admin API. AuthorID is
// honoured for admins only. Empty fields on update keep the stored value.
type ArticleInput struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Content    string `json:"content"`
	Image      string `json:"image"`
	CategoryID string `json:"categoryId"`
	AuthorID   string `json:"authorId"`
}

type ArticleService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewArticleService(db *sql.DB, m repomanager.RepositoryManager) *ArticleService {
	return &ArticleService{db: db, repomanager: m}
}

// List returns all articles for admins and the caller's own for authors.
func (s *ArticleService) List(ctx context.Context, caller *models.PublicUser) ([]*models.Article, error) {
	if caller == nil {
		return nil, common.ErrorUnauthorized
	}

	var f articles.Filter
	if !caller.IsAdmin() {
		f.AuthorID = caller.ID
	}

	list, err := s.repomanager.Articles(s.db).List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error listing articles: %w", err)
	}
	return list, nil
}

// Get returns one article. Authors get common.ErrorNotFound for articles
// they did not write.
func (s *ArticleService) Get(ctx context.Context, caller *models.PublicUser, id string) (*models.Article, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	a, err := s.repomanager.Articles(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "error getting article")
	}
	if !canModify(caller, a.AuthorID) {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (s *ArticleService) Create(ctx context.Context, caller *models.PublicUser, in ArticleInput) (*models.Article, error) {
	if caller == nil {
		return nil, common.ErrorUnauthorized
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || in.CategoryID == "" {
		return nil, fmt.Errorf("%w: title and category are required", common.ErrorValidation)
	}
	if err := checkID(in.CategoryID); err != nil {
		return nil, err
	}

	authorID := caller.ID
	if caller.IsAdmin() && in.AuthorID != "" {
		if err := checkID(in.AuthorID); err != nil {
			return nil, err
		}
		authorID = in.AuthorID
	}

	slug := Slugify(in.Slug)
	if slug == "" {
		slug = Slugify(title)
	}

	a := &models.Article{
		Title:      title,
		Slug:       slug,
		Content:    in.Content,
		Image:      in.Image,
		AuthorID:   authorID,
		CategoryID: in.CategoryID,
	}

	a, err := s.repomanager.Articles(s.db).Create(ctx, a)
	if err != nil {
		return nil, articleWriteErr(err, slug, "error creating article")
	}
	return a, nil
}

// Update overlays the non-empty fields of in. Authors may edit only their
// own articles.
func (s *ArticleService) Update(ctx context.Context, caller *models.PublicUser, id string, in ArticleInput) (*models.Article, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	repo := s.repomanager.Articles(s.db)

	a, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "error getting article")
	}
	if !canModify(caller, a.AuthorID) {
		return nil, fmt.Errorf("%w: not the author of this article", common.ErrorForbidden)
	}

	if v := strings.TrimSpace(in.Title); v != "" {
		a.Title = v
	}
	if v := Slugify(in.Slug); v != "" {
		a.Slug = v
	}
	if in.Content != "" {
		a.Content = in.Content
	}
	if in.Image != "" {
		a.Image = in.Image
	}
	if in.CategoryID != "" {
		if err := checkID(in.CategoryID); err != nil {
			return nil, err
		}
		a.CategoryID = in.CategoryID
	}

	if err := repo.Update(ctx, a); err != nil {
		return nil, articleWriteErr(err, a.Slug, "error updating article")
	}
	return a, nil
}

// Delete removes an article and, through the cascade, its comments.
func (s *ArticleService) Delete(ctx context.Context, caller *models.PublicUser, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	repo := s.repomanager.Articles(s.db)

	a, err := repo.GetByID(ctx, id)
	if err != nil {
		return wrapUnlessNotFound(err, "error getting article")
	}
	if !canModify(caller, a.AuthorID) {
		return fmt.Errorf("%w: not the author of this article", common.ErrorForbidden)
	}

	if err := repo.Delete(ctx, id); err != nil {
		return wrapUnlessNotFound(err, "error deleting article")
	}
	return nil
}

func articleWriteErr(err error, slug, msg string) error {
	switch {
	case errors.Is(err, common.ErrorConflict):
		return fmt.Errorf("%w: slug %q is taken", common.ErrorConflict, slug)
	case errors.Is(err, common.ErrorNotFound):
		return fmt.Errorf("%w: category or author does not exist", common.ErrorValidation)
	default:
		return fmt.Errorf("%s: %w", msg, err)
	}
}
