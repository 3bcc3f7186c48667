package handler

import (
	"errors"
	"net/http"

	"askroom/internal/transport/httpdto"
	askroom_errors "askroom/pkg/errors"

	"github.com/gin-gonic/gin"
)

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, askroom_errors.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, askroom_errors.ErrUnauthorized):
		status, code = http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, askroom_errors.ErrLinkExpired):
		status, code = http.StatusUnauthorized, "LINK_EXPIRED"
	case errors.Is(err, askroom_errors.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, askroom_errors.ErrAlreadyExists):
		status, code = http.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, askroom_errors.ErrExhaustedIDSpace):
		status, code = http.StatusServiceUnavailable, "EXHAUSTED_ID_SPACE"
	case errors.Is(err, askroom_errors.ErrStoreUnavailable):
		status, code = http.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	case errors.Is(err, askroom_errors.ErrRateLimited):
		status, code = http.StatusTooManyRequests, "RATE_LIMITED"
	}
	c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
}
