package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/server/services"
	"github.com/gin-gonic/gin"
)

func (h *handler) listCategories(c *gin.Context) {
	list, err := h.categories.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "categories", list)
}

func (h *handler) createCategory(c *gin.Context) {
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.categories.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "category created", cat)
}

func (h *handler) updateCategory(c *gin.Context) {
	var in services.CategoryInput
	if !bindJSON(c, &in) {
		return
	}
	cat, err := h.categories.Update(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "category updated", cat)
}

func (h *handler) deleteCategory(c *gin.Context) {
	cat, err := h.guard.DeleteCategory(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrBlockedByDependents) {
			h.metrics.refused(string(services.KindCategory))
		}
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "category deleted", cat)
}

func (h *handler) listArticles(c *gin.Context) {
	list, err := h.articles.List(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "articles", list)
}

func (h *handler) getArticle(c *gin.Context) {
	a, err := h.articles.Get(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "article", a)
}

func (h *handler) createArticle(c *gin.Context) {
	var in services.ArticleInput
	if !bindJSON(c, &in) {
		return
	}
	a, err := h.articles.Create(c.Request.Context(), currentUser(c), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "article created", a)
}

func (h *handler) updateArticle(c *gin.Context) {
	var in services.ArticleInput
	if !bindJSON(c, &in) {
		return
	}
	a, err := h.articles.Update(c.Request.Context(), currentUser(c), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "article updated", a)
}

func (h *handler) deleteArticle(c *gin.Context) {
	id := c.Param("id")
	if err := h.articles.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "article deleted", gin.H{"id": id})
}

func (h *handler) listComments(c *gin.Context) {
	list, err := h.comments.List(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "comments", list)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handler) setCommentStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}
	cm, err := h.comments.SetStatus(c.Request.Context(), currentUser(c), c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if cm == nil {
		respond(c, http.StatusOK, "comment rejected and deleted", nil)
		return
	}
	respond(c, http.StatusOK, "comment status updated", cm)
}
