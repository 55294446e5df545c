// Package memory provides in-process repositories with the same constraint
// semantics as the PostgreSQL schema: unique usernames and slugs, RESTRICT
// on article references, and CASCADE from articles to comments. Service and
// HTTP tests run on it.
package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/dbx"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/articles"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/categories"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/comments"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/settings"
	"github.com/dmitrijs2005/newsnow/internal/server/repositories/users"
	"github.com/google/uuid"
)

// Store holds all tables behind one mutex. Row locks are not modelled; the
// mutex serialises every operation instead.
type Store struct {
	mu         sync.Mutex
	users      map[string]*models.User
	categories map[string]*models.Category
	articles   map[string]*models.Article
	comments   map[string]*models.Comment
	setting    *models.Setting
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:      make(map[string]*models.User),
		categories: make(map[string]*models.Category),
		articles:   make(map[string]*models.Article),
		comments:   make(map[string]*models.Comment),
		now:        time.Now,
	}
}

// Manager adapts a Store to repomanager.RepositoryManager. The DBTX argument
// is ignored.
type Manager struct {
	Store *Store
}

func NewManager() *Manager {
	return &Manager{Store: NewStore()}
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *Manager) Users(dbx.DBTX) users.Repository           { return (*userRepo)(m.Store) }
func (m *Manager) Categories(dbx.DBTX) categories.Repository { return (*categoryRepo)(m.Store) }
func (m *Manager) Articles(dbx.DBTX) articles.Repository     { return (*articleRepo)(m.Store) }
func (m *Manager) Comments(dbx.DBTX) comments.Repository     { return (*commentRepo)(m.Store) }
func (m *Manager) Settings(dbx.DBTX) settings.Repository     { return (*settingRepo)(m.Store) }

// --- users ---

type userRepo Store

func cloneUser(u *models.User) *models.User {
	c := *u
	c.PasswordHash = append([]byte(nil), u.PasswordHash...)
	return &c
}

func (r *userRepo) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.UserName == u.UserName {
			return nil, common.ErrorConflict
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = cloneUser(u)
	return u, nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.UserName == login {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) List(_ context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserName < out[j].UserName
	})
	return out, nil
}

func (r *userRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

func (r *userRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		return common.ErrorNotFound
	}
	for id, other := range r.users {
		if id != u.ID && other.UserName == u.UserName {
			return common.ErrorConflict
		}
	}
	stored.FullName = u.FullName
	stored.UserName = u.UserName
	stored.Role = u.Role
	stored.UpdatedAt = r.now()
	u.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *userRepo) UpdatePassword(_ context.Context, id string, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.PasswordHash = append([]byte(nil), hash...)
	u.RefreshTokenHash = ""
	u.UpdatedAt = r.now()
	return nil
}

func (r *userRepo) SetRefreshToken(_ context.Context, id, digest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.RefreshTokenHash = digest
	return nil
}

func (r *userRepo) SwapRefreshToken(_ context.Context, id, oldDigest, newDigest string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.RefreshTokenHash == "" || u.RefreshTokenHash != oldDigest {
		return false, nil
	}
	u.RefreshTokenHash = newDigest
	return true, nil
}

func (r *userRepo) ClearRefreshToken(_ context.Context, id, digest string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.RefreshTokenHash == "" || u.RefreshTokenHash != digest {
		return false, nil
	}
	u.RefreshTokenHash = ""
	return true, nil
}

func (r *userRepo) LockForDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (r *userRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return common.ErrorNotFound
	}
	for _, a := range r.articles {
		if a.AuthorID == id {
			return fmt.Errorf("%w: user %s", common.ErrBlockedByDependents, id)
		}
	}
	for _, c := range r.categories {
		if c.AuthorID == id {
			c.AuthorID = ""
		}
	}
	delete(r.users, id)
	return nil
}

// --- categories ---

type categoryRepo Store

func (r *categoryRepo) fill(c *models.Category) *models.Category {
	out := *c
	out.AuthorName = ""
	if u, ok := r.users[c.AuthorID]; ok {
		out.AuthorName = u.FullName
	}
	out.ArticleCount = 0
	for _, a := range r.articles {
		if a.CategoryID == c.ID {
			out.ArticleCount++
		}
	}
	return &out
}

func (r *categoryRepo) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.AuthorID != "" {
		if _, ok := r.users[c.AuthorID]; !ok {
			return nil, common.ErrorNotFound
		}
	}
	c.ID = uuid.NewString()
	c.CreatedAt = r.now()
	c.UpdatedAt = c.CreatedAt
	stored := *c
	r.categories[c.ID] = &stored
	return c, nil
}

func (r *categoryRepo) GetByID(_ context.Context, id string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.categories[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.fill(c), nil
}

func (r *categoryRepo) GetByName(_ context.Context, name string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.categories {
		if strings.EqualFold(c.Name, name) {
			return r.fill(c), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *categoryRepo) List(_ context.Context) ([]*models.Category, error) {
	return r.list(false), nil
}

func (r *categoryRepo) ListInUse(_ context.Context) ([]*models.Category, error) {
	return r.list(true), nil
}

func (r *categoryRepo) list(inUse bool) []*models.Category {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Category, 0, len(r.categories))
	for _, c := range r.categories {
		filled := r.fill(c)
		if inUse && filled.ArticleCount == 0 {
			continue
		}
		out = append(out, filled)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *categoryRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.categories), nil
}

func (r *categoryRepo) Update(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.categories[c.ID]
	if !ok {
		return common.ErrorNotFound
	}
	stored.Name = c.Name
	stored.Description = c.Description
	stored.Slug = c.Slug
	stored.UpdatedAt = r.now()
	c.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *categoryRepo) LockForDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return common.ErrorNotFound
	}
	return nil
}

func (r *categoryRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return common.ErrorNotFound
	}
	for _, a := range r.articles {
		if a.CategoryID == id {
			return fmt.Errorf("%w: category %s", common.ErrBlockedByDependents, id)
		}
	}
	delete(r.categories, id)
	return nil
}

// --- articles ---

type articleRepo Store

func (r *articleRepo) fill(a *models.Article) *models.Article {
	out := *a
	if u, ok := r.users[a.AuthorID]; ok {
		out.AuthorUserName = u.UserName
		out.AuthorFullName = u.FullName
	}
	if c, ok := r.categories[a.CategoryID]; ok {
		out.CategoryName = c.Name
	}
	return &out
}

func (r *articleRepo) checkRefs(a *models.Article, selfID string) error {
	if _, ok := r.users[a.AuthorID]; !ok {
		return common.ErrorNotFound
	}
	if _, ok := r.categories[a.CategoryID]; !ok {
		return common.ErrorNotFound
	}
	for id, other := range r.articles {
		if id != selfID && other.Slug == a.Slug {
			return common.ErrorConflict
		}
	}
	return nil
}

func (r *articleRepo) Create(_ context.Context, a *models.Article) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkRefs(a, ""); err != nil {
		return nil, err
	}
	a.ID = uuid.NewString()
	a.CreatedAt = r.now()
	stored := *a
	r.articles[a.ID] = &stored
	return a, nil
}

func (r *articleRepo) GetByID(_ context.Context, id string) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.articles[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.fill(a), nil
}

func (r *articleRepo) GetBySlug(_ context.Context, slug string) (*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.articles {
		if a.Slug == slug {
			return r.fill(a), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *articleRepo) List(_ context.Context, f articles.Filter) ([]*models.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Article, 0, len(r.articles))
	for _, a := range r.articles {
		if f.AuthorID != "" && a.AuthorID != f.AuthorID {
			continue
		}
		if f.CategoryID != "" && a.CategoryID != f.CategoryID {
			continue
		}
		out = append(out, r.fill(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *articleRepo) Update(_ context.Context, a *models.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.articles[a.ID]
	if !ok {
		return common.ErrorNotFound
	}
	check := *a
	check.AuthorID = stored.AuthorID
	if err := r.checkRefs(&check, a.ID); err != nil {
		return err
	}
	stored.Title = a.Title
	stored.Slug = a.Slug
	stored.Content = a.Content
	stored.Image = a.Image
	stored.CategoryID = a.CategoryID
	return nil
}

func (r *articleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.articles[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.articles, id)
	for cid, c := range r.comments {
		if c.ArticleID == id {
			delete(r.comments, cid)
		}
	}
	return nil
}

func (r *articleRepo) Count(_ context.Context, authorID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, a := range r.articles {
		if authorID == "" || a.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (r *articleRepo) CountByCategory(_ context.Context, categoryID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, a := range r.articles {
		if a.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

// --- comments ---

type commentRepo Store

func (r *commentRepo) fill(c *models.Comment) *models.Comment {
	out := *c
	if a, ok := r.articles[c.ArticleID]; ok {
		out.ArticleTitle = a.Title
		out.ArticleAuthorID = a.AuthorID
	}
	return &out
}

func (r *commentRepo) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.articles[c.ArticleID]; !ok {
		return nil, common.ErrorNotFound
	}
	c.ID = uuid.NewString()
	c.CreatedAt = r.now()
	stored := *c
	r.comments[c.ID] = &stored
	return c, nil
}

func (r *commentRepo) GetByID(_ context.Context, id string) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.fill(c), nil
}

func (r *commentRepo) List(_ context.Context, f comments.Filter) ([]*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.Comment, 0, len(r.comments))
	for _, c := range r.comments {
		filled := r.fill(c)
		if f.ArticleID != "" && filled.ArticleID != f.ArticleID {
			continue
		}
		if f.ArticleAuthorID != "" && filled.ArticleAuthorID != f.ArticleAuthorID {
			continue
		}
		if f.Status != "" && filled.Status != f.Status {
			continue
		}
		out = append(out, filled)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *commentRepo) UpdateStatus(_ context.Context, id string, status models.CommentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.comments[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.Status = status
	return nil
}

func (r *commentRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.comments[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *commentRepo) CountOnArticlesBy(_ context.Context, authorID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, c := range r.comments {
		if a, ok := r.articles[c.ArticleID]; ok && a.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

// --- settings ---

type settingRepo Store

func (r *settingRepo) Get(_ context.Context) (*models.Setting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.setting == nil {
		return nil, common.ErrorNotFound
	}
	s := *r.setting
	return &s, nil
}

func (r *settingRepo) Save(_ context.Context, s *models.Setting) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.UpdatedAt = r.now()
	stored := *s
	r.setting = &stored
	return nil
}
