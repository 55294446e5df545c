package categories

import (
	"context"

	"github.com/dmitrijs2005/newsnow/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	GetByID(ctx context.Context, id string) (*models.Category, error)
	// GetByName matches case-insensitively.
	GetByName(ctx context.Context, name string) (*models.Category, error)
	// List returns every category with its author name and article count.
	List(ctx context.Context) ([]*models.Category, error)
	// ListInUse returns only categories referenced by at least one article.
	ListInUse(ctx context.Context) ([]*models.Category, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, c *models.Category) error
	LockForDelete(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
