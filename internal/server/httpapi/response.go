package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/newsnow/internal/common"
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
type Envelope struct {
	StatusCode int      `json:"statusCode"`
	Success    bool     `json:"success"`
	Message    string   `json:"message"`
	Data       any      `json:"data"`
	Errors     []string `json:"errors"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{
		StatusCode: status,
		Success:    status < http.StatusBadRequest,
		Message:    message,
		Data:       data,
		Errors:     []string{},
	})
}

func abortWith(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{
		StatusCode: status,
		Success:    false,
		Message:    message,
		Errors:     []string{message},
	})
}

// statusOf maps a service error to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation), errors.Is(err, common.ErrBlockedByDependents):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrRefreshTokenMissing):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorForbidden), errors.Is(err, common.ErrRefreshTokenMismatch):
		return http.StatusForbidden
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	case errors.Is(err, common.ErrorTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an envelope. Server errors are logged with
// their cause and reported with a generic message.
func (h *handler) respondError(c *gin.Context, err error) {
	status := statusOf(err)
	ctx := c.Request.Context()

	if status >= http.StatusInternalServerError {
		h.logger.Error(ctx, "request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		abortWith(c, status, "internal server error")
		return
	}

	h.logger.Debug(ctx, "request rejected", "status", status, "path", c.FullPath(), "error", err)

	var blocked *common.BlockedError
	if errors.As(err, &blocked) {
		c.AbortWithStatusJSON(status, Envelope{
			StatusCode: status,
			Message:    "cannot delete: " + blocked.Kind + " is still referenced",
			Data:       blockedData(blocked),
			Errors:     []string{err.Error()},
		})
		return
	}

	abortWith(c, status, err.Error())
}

func blockedData(b *common.BlockedError) gin.H {
	if b.Kind == "category" {
		return gin.H{"count": b.Count()}
	}
	return gin.H{"count": b.Count(), "articles": b.Articles, "comments": b.Comments}
}
