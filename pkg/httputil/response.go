package httputil

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	apperrors "github.com/showrunner/notification-api/pkg/errors"
)

// Response is the envelope every endpoint returns
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Pagination describes the page window of a list response
type Pagination struct {
	Page  int `json:"page"`
	Pages int `json:"pages"`
	Total int `json:"total"`
	Limit int `json:"limit"`
}

// ListResponse is the envelope for paginated notification lists. The unread
// count is always scoped to recipient+project, independent of page filters.
type ListResponse struct {
	Success     bool        `json:"success"`
	Data        interface{} `json:"data"`
	Pagination  Pagination  `json:"pagination"`
	UnreadCount int         `json:"unreadCount"`
}

// RespondWithSuccess sends a success response
func RespondWithSuccess(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondWithList sends a paginated list response
func RespondWithList(c *gin.Context, data interface{}, p Pagination, unreadCount int) {
	c.JSON(http.StatusOK, ListResponse{
		Success:     true,
		Data:        data,
		Pagination:  p,
		UnreadCount: unreadCount,
	})
}

// RespondWithError maps an error onto the failure envelope. Raw backend
// error text is logged, never returned to the client.
func RespondWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"
	kind := "internal_error"

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		status = appErr.StatusCode()
		message = appErr.Message
		kind = appErr.Kind()
	}

	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("path", c.Request.URL.Path).
			Str("method", c.Request.Method).
			Msg("request failed")
	}

	c.JSON(status, Response{
		Success: false,
		Message: message,
		Error:   kind,
	})
}
