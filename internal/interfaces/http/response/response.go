package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "vininfo.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error sends an error response. Errors that are not AppErrors never leak their text.
func Error(c *gin.Context, err error) {
	appErr, ok := domainerrors.AsAppError(err)
	if !ok {
		appErr = domainerrors.InternalError(err)
	}

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message, // Backward compatibility
	}
	for key, value := range appErr.Details {
		body[key] = value
	}
	c.JSON(appErr.Status, body)
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{
		"code":    code,
		"message": message,
		"error":   message,
	})
}

// HTML writes a rendered page
func HTML(c *gin.Context, status int, page string) {
	c.Data(status, "text/html; charset=utf-8", []byte(page))
}

// Unauthorized aborts with the plain 401 body used by the auth guards
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    domainerrors.CodeUnauthorized,
		"message": message,
		"error":   message,
	})
}
