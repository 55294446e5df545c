package users

import (
	"context"

	"github.com/dmitrijs2005/newsnow/internal/server/models"
)

// Repository is the credential store.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
	// Update writes profile fields (full name, username, role). The password
	// hash is written only by UpdatePassword.
	Update(ctx context.Context, user *models.User) error
	// UpdatePassword also clears the refresh digest, ending live sessions.
	UpdatePassword(ctx context.Context, id string, hash []byte) error

	// SetRefreshToken unconditionally stores the digest of the active refresh token.
	SetRefreshToken(ctx context.Context, id, digest string) error
	// SwapRefreshToken replaces oldDigest with newDigest only if oldDigest is
	// still current. It reports whether the swap happened.
	SwapRefreshToken(ctx context.Context, id, oldDigest, newDigest string) (bool, error)
	// ClearRefreshToken nulls the stored digest if it still equals digest.
	ClearRefreshToken(ctx context.Context, id, digest string) (bool, error)

	// LockForDelete takes a row lock on the user for the rest of the transaction.
	LockForDelete(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
