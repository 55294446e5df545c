package models

import (
	"fmt"
	"time"
)

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
	AuthorID    string `json:"authorId"`
	AuthorName  string `json:"authorName,omitempty"`
	// ArticleCount is filled by listing queries only.
	ArticleCount int       `json:"articleCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Article struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Slug           string    `json:"slug"`
	Content        string    `json:"content"`
	Image          string    `json:"image"`
	AuthorID       string    `json:"authorId"`
	AuthorUserName string    `json:"authorUsername,omitempty"`
	AuthorFullName string    `json:"authorFullName,omitempty"`
	CategoryID     string    `json:"categoryId"`
	CategoryName   string    `json:"categoryName,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
)

func ParseCommentStatus(s string) (CommentStatus, error) {
	switch CommentStatus(s) {
	case CommentPending, CommentApproved, CommentRejected:
		return CommentStatus(s), nil
	default:
		return "", fmt.Errorf("unknown comment status %q", s)
	}
}

type Comment struct {
	ID        string        `json:"id"`
	ArticleID string        `json:"articleId"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Content   string        `json:"content"`
	Status    CommentStatus `json:"status"`
	// ArticleTitle and ArticleAuthorID are filled by moderation listings.
	ArticleTitle    string    `json:"articleTitle,omitempty"`
	ArticleAuthorID string    `json:"articleAuthorId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Setting holds the single row of site-wide presentation settings.
type Setting struct {
	WebsiteName       string    `json:"websiteName"`
	Image             string    `json:"image"`
	ThemeColor        string    `json:"themeColor"`
	FooterDescription string    `json:"footerDescription"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Dashboard carries the admin landing-page counters.
type Dashboard struct {
	User          *PublicUser `json:"user"`
	UserCount     int         `json:"userCount"`
	CategoryCount int         `json:"categoryCount"`
	ArticleCount  int         `json:"articleCount"`
}
