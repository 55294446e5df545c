package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/comments"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/repomanager"
)

// CommentInput is a reader comment submitted on the public site.
type CommentInput struct {
	ArticleID string `json:"articleId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Content   string `json:"content"`
}

type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager) *CommentService {
	return &CommentService{db: db, repomanager: m}
}

// List returns every comment for admins and comments on the caller's own
// articles for authors.
func (s *CommentService) List(ctx context.Context, caller *models.PublicUser) ([]*models.Comment, error) {
	if caller == nil {
		return nil, common.ErrorUnauthorized
	}

	var f comments.Filter
	if !caller.IsAdmin() {
		f.ArticleAuthorID = caller.ID
	}

	list, err := s.repomanager.Comments(s.db).List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	return list, nil
}

// SetStatus moderates a comment. Rejecting deletes it and returns nil.
// Authors may moderate only comments on their own articles.
func (s *CommentService) SetStatus(ctx context.Context, caller *models.PublicUser, id, status string) (*models.Comment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	st, err := models.ParseCommentStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	repo := s.repomanager.Comments(s.db)

	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapUnlessNotFound(err, "error getting comment")
	}
	if !canModify(caller, c.ArticleAuthorID) {
		return nil, fmt.Errorf("%w: comment is not on your article", common.ErrorForbidden)
	}

	if st == models.CommentRejected {
		if err := repo.Delete(ctx, id); err != nil {
			return nil, wrapUnlessNotFound(err, "error deleting comment")
		}
		return nil, nil
	}

	if err := repo.UpdateStatus(ctx, id, st); err != nil {
		return nil, wrapUnlessNotFound(err, "error updating comment")
	}
	c.Status = st
	return c, nil
}

// Add stores a reader comment as pending.
func (s *CommentService) Add(ctx context.Context, in CommentInput) (*models.Comment, error) {
	name := strings.TrimSpace(in.Name)
	content := strings.TrimSpace(in.Content)
	if in.ArticleID == "" || name == "" || in.Email == "" || content == "" {
		return nil, fmt.Errorf("%w: articleId, name, email and content are required", common.ErrorValidation)
	}
	if err := checkID(in.ArticleID); err != nil {
		return nil, err
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}

	c := &models.Comment{
		ArticleID: in.ArticleID,
		Name:      name,
		Email:     in.Email,
		Content:   content,
		Status:    models.CommentPending,
	}

	c, err := s.repomanager.Comments(s.db).Create(ctx, c)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: article not found", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("error adding comment: %w", err)
	}
	return c, nil
}

// Approved returns the approved comments of an article.
func (s *CommentService) Approved(ctx context.Context, articleID string) ([]*models.Comment, error) {
	if err := checkID(articleID); err != nil {
		return nil, err
	}

	list, err := s.repomanager.Comments(s.db).List(ctx, comments.Filter{
		ArticleID: articleID,
		Status:    models.CommentApproved,
	})
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	return list, nil
}
