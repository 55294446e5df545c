package settings

import (
	"context"

	"github.com/dmitrijs2005/newsnow/internal/server/models"
)

type Repository interface {
	// Get returns common.ErrorNotFound until settings are saved once.
	Get(ctx context.Context) (*models.Setting, error)
	Save(ctx context.Context, s *models.Setting) error
}
