package comments

import (
	"context"

	"github.com/dmitrijs2005/newsnow/internal/server/models"
)

// Filter narrows List. Empty fields do not filter.
type Filter struct {
	ArticleID       string
	ArticleAuthorID string
	Status          models.CommentStatus
}

type Repository interface {
	Create(ctx context.Context, c *models.Comment) (*models.Comment, error)
	// GetByID also fills ArticleTitle and ArticleAuthorID.
	GetByID(ctx context.Context, id string) (*models.Comment, error)
	List(ctx context.Context, f Filter) ([]*models.Comment, error)
	UpdateStatus(ctx context.Context, id string, status models.CommentStatus) error
	Delete(ctx context.Context, id string) error
	// CountOnArticlesBy counts comments attached to articles written by authorID.
	CountOnArticlesBy(ctx context.Context, authorID string) (int, error)
}
