package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"storefront-core/internal/handler/httperr"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}
		// Search backward through the error stack
		for i := len(c.Errors) - 1; i >= 0; i-- {
			err := c.Errors[i]

			if err.IsType(gin.ErrorTypePublic) {
				// Public: Meta ⇒ Return as is
				if resp, ok := err.Meta.(httperr.Response); ok {
					c.JSON(resp.Status, resp)
					return
				}
			}
		}
		if status := c.Writer.Status(); status != http.StatusOK {
			c.Status(status)
			c.Writer.WriteHeaderNow()
			return
		}
		c.JSON(http.StatusInternalServerError, internalErrorResponse())
	}
}

func CustomRecovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("recovered from panic", "error", err, "path", c.Request.URL.Path)

				c.JSON(http.StatusInternalServerError, internalErrorResponse())
				c.Abort()
			}
		}()
		c.Next()
	}
}

func internalErrorResponse() httperr.Response {
	return httperr.Response{
		Status:    http.StatusInternalServerError,
		Success:   false,
		Message:   "Internal server error",
		ErrorCode: "internal_error",
		Timestamp: time.Now().UTC(),
	}
}
