package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	UserName string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "username and password are required")
		return
	}

	sess, err := h.sessions.Login(c.Request.Context(), req.UserName, req.Password, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorUnauthorized):
			h.metrics.authEvent("login", "rejected")
			abortWith(c, http.StatusUnauthorized, "invalid username or password")
		case errors.Is(err, common.ErrorTooManyRequests):
			h.metrics.authEvent("login", "throttled")
			abortWith(c, http.StatusTooManyRequests, "too many failed login attempts, try again later")
		default:
			h.metrics.authEvent("login", "error")
			h.respondError(c, err)
		}
		return
	}

	h.metrics.authEvent("login", "ok")
	h.logger.Info(c.Request.Context(), "login succeeded", "user_id", sess.User.ID, "remote", c.ClientIP())

	h.setAccessCookie(c.Writer, sess.AccessToken)
	h.setRefreshCookie(c.Writer, sess.RefreshToken)
	respond(c, http.StatusOK, "login successful", gin.H{"user": sess.User})
}

// logout clears both cookies. The stored refresh digest is cleared only when
// the presented cookie is the current one; a store failure is reported as 500
// with the cookies already cleared.
func (h *handler) logout(c *gin.Context) {
	token, _ := c.Cookie(common.RefreshTokenCookieName)

	h.clearSessionCookies(c.Writer)

	if err := h.sessions.Logout(c.Request.Context(), token); err != nil {
		h.metrics.authEvent("logout", "error")
		h.respondError(c, err)
		return
	}

	h.metrics.authEvent("logout", "ok")
	respond(c, http.StatusOK, "logout successful", nil)
}

func (h *handler) refresh(c *gin.Context) {
	token, err := c.Cookie(common.RefreshTokenCookieName)
	if err != nil || token == "" {
		h.metrics.authEvent("refresh", "missing")
		abortWith(c, http.StatusUnauthorized, "refresh token not found")
		return
	}

	pair, err := h.sessions.Refresh(c.Request.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTokenExpired):
			h.metrics.authEvent("refresh", "expired")
			abortWith(c, http.StatusUnauthorized, "refresh token expired")
		case errors.Is(err, common.ErrInvalidToken):
			h.metrics.authEvent("refresh", "invalid")
			abortWith(c, http.StatusForbidden, "invalid refresh token")
		case errors.Is(err, common.ErrRefreshTokenMismatch):
			h.metrics.authEvent("refresh", "mismatch")
			abortWith(c, http.StatusForbidden, "refresh token mismatch")
		default:
			h.metrics.authEvent("refresh", "error")
			h.respondError(c, err)
		}
		return
	}

	h.metrics.authEvent("refresh", "ok")
	h.setAccessCookie(c.Writer, pair.AccessToken)
	if pair.RefreshToken != "" {
		h.setRefreshCookie(c.Writer, pair.RefreshToken)
	}
	respond(c, http.StatusOK, "access token refreshed", nil)
}

func (h *handler) me(c *gin.Context) {
	respond(c, http.StatusOK, "current user", currentUser(c))
}
