// Package httpapi exposes the CMS over HTTP with gin: session endpoints,
// role-gated administration and the public site reads.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/dmitrijs2005/newsnow/internal/logging"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps wires the router to the service layer.
type Deps struct {
	Sessions   *services.SessionService
	Users      *services.UserService
	Categories *services.CategoryService
	Articles   *services.ArticleService
	Comments   *services.CommentService
	Settings   *services.SettingsService
	Dashboard  *services.DashboardService
	Site       *services.SiteService
	Guard      *services.Guard

	Logger  logging.Logger
	Metrics *Metrics

	Cookies        CookieOptions
	AccessTTL      time.Duration
	RefreshTTL     time.Duration
	AllowedOrigins []string

	// Ready reports whether the backing store is reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

type handler struct {
	sessions   *services.SessionService
	users      *services.UserService
	categories *services.CategoryService
	articles   *services.ArticleService
	comments   *services.CommentService
	settings   *services.SettingsService
	dashboard  *services.DashboardService
	site       *services.SiteService
	guard      *services.Guard

	logger     logging.Logger
	metrics    *Metrics
	cookies    CookieOptions
	accessTTL  time.Duration
	refreshTTL time.Duration
	ready      func(ctx context.Context) error
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(d Deps) *gin.Engine {
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}
	if d.Metrics == nil {
		d.Metrics = NewMetrics()
	}

	h := &handler{
		sessions:   d.Sessions,
		users:      d.Users,
		categories: d.Categories,
		articles:   d.Articles,
		comments:   d.Comments,
		settings:   d.Settings,
		dashboard:  d.Dashboard,
		site:       d.Site,
		guard:      d.Guard,
		logger:     d.Logger.With("module", "http"),
		metrics:    d.Metrics,
		cookies:    d.Cookies,
		accessTTL:  d.AccessTTL,
		refreshTTL: d.RefreshTTL,
		ready:      d.Ready,
	}

	r := gin.New()
	r.Use(recovery(h.logger), accessLog(h.logger), d.Metrics.middleware())

	if len(d.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", h.healthz)
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	api := r.Group("/api")
	{
		api.POST("/login", h.login)
		api.POST("/logout", h.logout)
		api.POST("/refresh", h.refresh)
		api.GET("/settings", h.getSettings)
		api.GET("/categories", h.listCategories)

		authed := api.Group("", h.authenticate)
		authed.GET("/me", h.me)
		authed.GET("/dashboard", h.getDashboard)

		authed.POST("/categories", h.createCategory)
		authed.PUT("/categories/:id", h.updateCategory)
		authed.DELETE("/categories/:id", h.deleteCategory)

		authed.GET("/articles", h.listArticles)
		authed.GET("/articles/:id", h.getArticle)
		authed.POST("/articles", h.createArticle)
		authed.PUT("/articles/:id", h.updateArticle)
		authed.DELETE("/articles/:id", h.deleteArticle)

		authed.GET("/comments", h.listComments)
		authed.PATCH("/comments/:id", h.setCommentStatus)

		admin := authed.Group("", requireRole(models.RoleAdmin))
		admin.PUT("/settings", h.saveSettings)
		admin.GET("/users", h.listUsers)
		admin.POST("/users", h.createUser)
		admin.PUT("/users/:id", h.updateUser)
		admin.DELETE("/users/:id", h.deleteUser)
	}

	site := r.Group("/site")
	{
		site.GET("/articles", h.siteFrontPage)
		site.GET("/latest", h.siteLatest)
		site.GET("/categories", h.siteCategories)
		site.GET("/category/:name", h.siteByCategory)
		site.GET("/author/:username", h.siteByAuthor)
		site.GET("/articles/:slug", h.siteArticle)
		site.POST("/comments", h.siteAddComment)
		site.GET("/comments/:articleId", h.siteComments)
	}

	r.NoRoute(func(c *gin.Context) {
		abortWith(c, http.StatusNotFound, "route not found")
	})

	return r
}

func (h *handler) healthz(c *gin.Context) {
	if h.ready != nil {
		if err := h.ready(c.Request.Context()); err != nil {
			h.logger.Warn(c.Request.Context(), "readiness check failed", "error", err)
			respond(c, http.StatusServiceUnavailable, "store unavailable", nil)
			return
		}
	}
	respond(c, http.StatusOK, "ok", nil)
}
