package errorx

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Send writes an error response in the standard shape. Untyped errors are
// masked as ErrServer so internals never leak to clients.
func Send(c *gin.Context, err error) {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, gorm.ErrRecordNotFound):
		apiErr = ErrNotFound
	default:
		apiErr = ErrServer
	}
	c.JSON(apiErr.HTTPStatus, gin.H{"error": apiErr})
}
