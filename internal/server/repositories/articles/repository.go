package articles

import (
	"context"

	"github.com/dmitrijs2005/newsnow/internal/server/models"
)

// Filter narrows List. Empty fields do not filter; Limit <= 0 means no limit.
type Filter struct {
	AuthorID   string
	CategoryID string
	Limit      int
}

type Repository interface {
	Create(ctx context.Context, a *models.Article) (*models.Article, error)
	GetByID(ctx context.Context, id string) (*models.Article, error)
	GetBySlug(ctx context.Context, slug string) (*models.Article, error)
	// List returns newest first.
	List(ctx context.Context, f Filter) ([]*models.Article, error)
	Update(ctx context.Context, a *models.Article) error
	Delete(ctx context.Context, id string) error

	// Count counts articles by authorID, or all articles when authorID is empty.
	Count(ctx context.Context, authorID string) (int, error)
	CountByCategory(ctx context.Context, categoryID string) (int, error)
}
