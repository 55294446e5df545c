package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/repomanager"
)

type CategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager) *CategoryService {
	return &CategoryService{db: db, repomanager: m}
}

// List returns every category with its article count.
func (s *CategoryService) List(ctx context.Context) ([]*models.Category, error) {
	list, err := s.repomanager.Categories(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %w", err)
	}
	return list, nil
}

// Create adds a category owned by caller. The slug is derived from the name.
func (s *CategoryService) Create(ctx context.Context, caller *models.PublicUser, in CategoryInput) (*models.Category, error) {
	if caller == nil {
		return nil, common.ErrorUnauthorized
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", common.ErrorValidation)
	}

	c := &models.Category{
		Name:        name,
		Description: in.Description,
		Slug:        Slugify(name),
		AuthorID:    caller.ID,
	}

	c, err := s.repomanager.Categories(s.db).Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("error creating category: %w", err)
	}
	return c, nil
}

// Update changes name and description. Authors may edit only their own
// categories.
func (s *CategoryService) Update(ctx context.Context, caller *models.PublicUser, id string, in CategoryInput) (*models.Category, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	repo := s.repomanager.Categories(s.db)

	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "error getting category")
	}

	if !canModify(caller, c.AuthorID) {
		return nil, fmt.Errorf("%w: not the owner of this category", common.ErrorForbidden)
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		c.Name = name
		c.Slug = Slugify(name)
	}
	c.Description = in.Description

	if err := repo.Update(ctx, c); err != nil {
		return nil, wrapUnlessNotFound(err, "error updating category")
	}
	return c, nil
}
