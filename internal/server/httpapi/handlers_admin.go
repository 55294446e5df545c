package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/server/services"
	"github.com/gin-gonic/gin"
)

// bindJSON decodes the body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortWith(c, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func (h *handler) getDashboard(c *gin.Context) {
	d, err := h.dashboard.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "dashboard data", d)
}

func (h *handler) getSettings(c *gin.Context) {
	s, err := h.settings.Get(c.Request.Context())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			abortWith(c, http.StatusNotFound, "settings not found")
			return
		}
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "settings", s)
}

func (h *handler) saveSettings(c *gin.Context) {
	var in services.SettingsInput
	if !bindJSON(c, &in) {
		return
	}
	s, err := h.settings.Save(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "settings saved", s)
}

func (h *handler) listUsers(c *gin.Context) {
	list, err := h.users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "users", list)
}

func (h *handler) createUser(c *gin.Context) {
	var in services.UserInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.users.Create(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "user created", u)
}

func (h *handler) updateUser(c *gin.Context) {
	var in services.UserInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.users.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "user updated", u)
}

func (h *handler) deleteUser(c *gin.Context) {
	u, err := h.guard.DeleteUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrBlockedByDependents) {
			h.metrics.refused(string(services.KindUser))
		}
		h.respondError(c, err)
		return
	}
	h.logger.Info(c.Request.Context(), "user deleted", "user_id", u.ID, "by", currentUser(c).ID)
	respond(c, http.StatusOK, "user deleted", u)
}
