package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/dmitrijs2005/newsnow/internal/logging"
	"github.com/dmitrijs2005/newsnow/internal/server/models"
	"github.com/gin-gonic/gin"
)

const userKey = "newsnow.user"

// currentUser returns the user attached by authenticate, or nil.
func currentUser(c *gin.Context) *models.PublicUser {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*models.PublicUser)
	return u
}

// authenticate resolves the access cookie to a user and attaches it to the
// request. It keeps no state between requests.
func (h *handler) authenticate(c *gin.Context) {
	token, err := c.Cookie(common.AccessTokenCookieName)
	if err != nil || token == "" {
		abortWith(c, http.StatusUnauthorized, "access token is missing")
		return
	}

	user, err := h.sessions.Authenticate(c.Request.Context(), token)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrTokenExpired):
		abortWith(c, http.StatusUnauthorized, "access token expired")
		return
	case errors.Is(err, common.ErrInvalidToken):
		abortWith(c, http.StatusUnauthorized, "invalid access token")
		return
	case errors.Is(err, common.ErrorNotFound):
		abortWith(c, http.StatusNotFound, "user not found")
		return
	default:
		h.respondError(c, err)
		return
	}

	c.Set(userKey, user)
	c.Next()
}

// requireRole lets through only users holding role. It must run after
// authenticate.
func requireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			abortWith(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if user.Role != role {
			abortWith(c, http.StatusForbidden, "access denied: "+role.String()+" role required")
			return
		}
		c.Next()
	}
}

// accessLog writes one line per request through logger.
func accessLog(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"remote", c.ClientIP(),
		}
		if u := currentUser(c); u != nil {
			args = append(args, "user_id", u.ID)
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Warn(c.Request.Context(), "http request", args...)
			return
		}
		logger.Info(c.Request.Context(), "http request", args...)
	}
}

// recovery turns panics into a logged 500.
func recovery(logger logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.Error(c.Request.Context(), "panic in handler", "path", c.Request.URL.Path, "panic", rec)
		abortWith(c, http.StatusInternalServerError, "internal server error")
	})
}
