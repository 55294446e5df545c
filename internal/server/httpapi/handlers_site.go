package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/dmitrijs2005/newsnow/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *handler) respondArticles(c *gin.Context, list []*models.Article, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "articles", list)
}

func (h *handler) siteFrontPage(c *gin.Context) {
	list, err := h.site.FrontPage(c.Request.Context())
	h.respondArticles(c, list, err)
}

func (h *handler) siteLatest(c *gin.Context) {
	list, err := h.site.Latest(c.Request.Context())
	h.respondArticles(c, list, err)
}

func (h *handler) siteByCategory(c *gin.Context) {
	list, err := h.site.ByCategory(c.Request.Context(), c.Param("name"))
	h.respondArticles(c, list, err)
}

func (h *handler) siteByAuthor(c *gin.Context) {
	list, err := h.site.ByAuthor(c.Request.Context(), c.Param("username"))
	h.respondArticles(c, list, err)
}

func (h *handler) siteCategories(c *gin.Context) {
	list, err := h.site.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "categories", list)
}

func (h *handler) siteArticle(c *gin.Context) {
	a, err := h.site.Article(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "article", a)
}

func (h *handler) siteAddComment(c *gin.Context) {
	var in services.CommentInput
	if !bindJSON(c, &in) {
		return
	}
	cm, err := h.comments.Add(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "comment added", cm)
}

func (h *handler) siteComments(c *gin.Context) {
	list, err := h.comments.Approved(c.Request.Context(), c.Param("articleId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "comments", list)
}
