package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/circlekitchen/backend/internal/logger"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable,omitempty"`
}

// ErrorMapper translates a handler error into a status code and client message.
type ErrorMapper func(err error) (status int, message string)

// ErrorHandler renders the last error a handler attached with c.Error as a
// JSON body. Panics become 500s.
func ErrorHandler(mapErr ErrorMapper, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic while handling request", "path", c.Request.URL.Path, "panic", fmt.Sprint(rec))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, message := mapErr(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "error", err)
		} else {
			log.Debug("request rejected", "method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "error", err)
		}
		c.JSON(status, ErrorResponse{
			Error:     message,
			Retryable: status == http.StatusServiceUnavailable,
		})
	}
}
