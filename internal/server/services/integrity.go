package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/dbx"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/repomanager"
)

// Kind names a record type whose deletion is guarded.
type Kind string

const (
	KindUser     Kind = "user"
	KindCategory Kind = "category"
)

// Verdict is the result of a dependency check.
type Verdict struct {
	Allowed       bool
	BlockingCount int
	Articles      int
	Comments      int
}

// Guard refuses to delete users and categories that are still referenced.
// Lock, count and delete run in one transaction; the RESTRICT foreign keys
// catch anything that slips past the count.
type Guard struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewGuard(db *sql.DB, m repomanager.RepositoryManager) *Guard {
	return &Guard{db: db, repomanager: m}
}

// CanDelete counts the records referencing the target. It does not check
// that the target itself exists.
func (g *Guard) CanDelete(ctx context.Context, db dbx.DBTX, kind Kind, id string) (Verdict, error) {
	if err := checkID(id); err != nil {
		return Verdict{}, err
	}

	var v Verdict
	var err error

	switch kind {
	case KindCategory:
		v.Articles, err = g.repomanager.Articles(db).CountByCategory(ctx, id)
		if err != nil {
			return Verdict{}, fmt.Errorf("error counting articles: %w", err)
		}
	case KindUser:
		v.Articles, err = g.repomanager.Articles(db).Count(ctx, id)
		if err != nil {
			return Verdict{}, fmt.Errorf("error counting articles: %w", err)
		}
		v.Comments, err = g.repomanager.Comments(db).CountOnArticlesBy(ctx, id)
		if err != nil {
			return Verdict{}, fmt.Errorf("error counting comments: %w", err)
		}
	default:
		return Verdict{}, fmt.Errorf("unknown kind %q", kind)
	}

	v.BlockingCount = v.Articles + v.Comments
	v.Allowed = v.BlockingCount == 0
	return v, nil
}

// DeleteUser removes a user with no articles and no comments on their
// articles and returns the removed record. Fails with common.ErrorNotFound
// or a *common.BlockedError.
func (g *Guard) DeleteUser(ctx context.Context, id string) (*models.PublicUser, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var deleted *models.PublicUser

	err := dbx.WithTx(ctx, g.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := g.repomanager.Users(tx)

		if err := repo.LockForDelete(ctx, id); err != nil {
			return err
		}
		u, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		deleted = u.Public()

		v, err := g.CanDelete(ctx, tx, KindUser, id)
		if err != nil {
			return err
		}
		if !v.Allowed {
			return &common.BlockedError{Kind: string(KindUser), ID: id, Articles: v.Articles, Comments: v.Comments}
		}

		return deleteErr(repo.Delete(ctx, id), "user")
	})
	if err != nil {
		return nil, g.recount(ctx, KindUser, id, err)
	}
	return deleted, nil
}

// DeleteCategory removes a category no article belongs to and returns the
// removed record. Only admins and the category's author may delete it.
// Fails with common.ErrorNotFound, common.ErrorForbidden or a
// *common.BlockedError.
func (g *Guard) DeleteCategory(ctx context.Context, caller *models.PublicUser, id string) (*models.Category, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var deleted *models.Category

	err := dbx.WithTx(ctx, g.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := g.repomanager.Categories(tx)

		if err := repo.LockForDelete(ctx, id); err != nil {
			return err
		}
		c, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !canModify(caller, c.AuthorID) {
			return fmt.Errorf("%w: not the owner of this category", common.ErrorForbidden)
		}
		deleted = c

		v, err := g.CanDelete(ctx, tx, KindCategory, id)
		if err != nil {
			return err
		}
		if !v.Allowed {
			return &common.BlockedError{Kind: string(KindCategory), ID: id, Articles: v.Articles}
		}

		return deleteErr(repo.Delete(ctx, id), "category")
	})
	if err != nil {
		return nil, g.recount(ctx, KindCategory, id, err)
	}
	return deleted, nil
}

// recount turns a foreign key refusal into a *common.BlockedError carrying
// the dependents committed since the in-transaction count. err is returned
// unchanged when it is not such a refusal or the recount finds nothing.
func (g *Guard) recount(ctx context.Context, kind Kind, id string, err error) error {
	var blocked *common.BlockedError
	if !errors.Is(err, common.ErrBlockedByDependents) || errors.As(err, &blocked) {
		return err
	}

	v, cerr := g.CanDelete(ctx, g.db, kind, id)
	if cerr != nil || v.Allowed {
		return err
	}
	return &common.BlockedError{Kind: string(kind), ID: id, Articles: v.Articles, Comments: v.Comments}
}

func deleteErr(err error, what string) error {
	if err == nil || errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrBlockedByDependents) {
		return err
	}
	return fmt.Errorf("error deleting %s: %w", what, err)
}
