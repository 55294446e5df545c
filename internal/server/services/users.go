package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/dbx"
	"github.com/dmitrijs2005/newsnow/internal/server/auth"
	"github.com/dmitrijs2005/newsnow/internal/server/config"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/repomanager"
)

// UserInput carries user fields from the admin API. Empty fields on update
// keep the stored value.
type UserInput struct {
	FullName string `json:"fullName"`
	UserName string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	bcryptCost  int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		bcryptCost:  cfg.BcryptCost,
	}
}

func (s *UserService) List(ctx context.Context) ([]*models.PublicUser, error) {
	list, err := s.repomanager.Users(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}

	res := make([]*models.PublicUser, 0, len(list))
	for _, u := range list {
		res = append(res, u.Public())
	}
	return res, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.PublicUser, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "error getting user")
	}
	return u.Public(), nil
}

// Create adds a user. Role defaults to author; a taken username yields
// common.ErrorConflict.
func (s *UserService) Create(ctx context.Context, in UserInput) (*models.PublicUser, error) {

	in.UserName = strings.TrimSpace(in.UserName)
	in.FullName = strings.TrimSpace(in.FullName)
	if in.UserName == "" || in.Password == "" || in.FullName == "" {
		return nil, fmt.Errorf("%w: full name, username and password are required", common.ErrorValidation)
	}

	role := models.RoleAuthor
	if in.Role != "" {
		r, err := models.ParseRole(in.Role)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
		}
		role = r
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		FullName:     in.FullName,
		UserName:     in.UserName,
		PasswordHash: hash,
		Role:         role,
	}

	user, err = s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, fmt.Errorf("%w: username %q is taken", common.ErrorConflict, in.UserName)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user.Public(), nil
}

// Update overlays the non-empty fields of in onto the user. The password is
// re-hashed only when a new one is supplied.
func (s *UserService) Update(ctx context.Context, id string, in UserInput) (*models.PublicUser, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var updated *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, id)
		if err != nil {
			return wrapUnlessNotFound(err, "error getting user")
		}

		if v := strings.TrimSpace(in.FullName); v != "" {
			user.FullName = v
		}
		if v := strings.TrimSpace(in.UserName); v != "" {
			user.UserName = v
		}
		if in.Role != "" {
			r, err := models.ParseRole(in.Role)
			if err != nil {
				return fmt.Errorf("%w: %v", common.ErrorValidation, err)
			}
			user.Role = r
		}

		if err := repo.Update(ctx, user); err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return fmt.Errorf("%w: username %q is taken", common.ErrorConflict, user.UserName)
			}
			return wrapUnlessNotFound(err, "error updating user")
		}

		if in.Password != "" {
			hash, err := auth.HashPassword(in.Password, s.bcryptCost)
			if err != nil {
				return fmt.Errorf("error hashing password: %w", err)
			}
			if err := repo.UpdatePassword(ctx, id, hash); err != nil {
				return fmt.Errorf("error updating password: %w", err)
			}
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated.Public(), nil
}

func wrapUnlessNotFound(err error, msg string) error {
	if errors.Is(err, common.ErrorNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
