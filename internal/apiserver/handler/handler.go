package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/storecrew/storecrew/internal/apiserver/middleware"
	"github.com/storecrew/storecrew/internal/common/errorx"
)

// currentUserID returns the authenticated user id, or aborts with 401 when
// the middleware did not run.
func currentUserID(c *gin.Context) (string, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		errorx.Send(c, errorx.ErrAuthRequired)
		return "", false
	}
	return claims.UserID, true
}

// channelParam parses the :channelId path segment
func channelParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("channelId"), 10, 64)
	if err != nil {
		errorx.Send(c, errorx.ErrValidation.WithMessage("invalid channel id"))
		return 0, false
	}
	return uint(id), true
}

// yearMonthQuery parses the ?year= and ?month= query parameters
func yearMonthQuery(c *gin.Context) (int, int, bool) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		errorx.Send(c, errorx.ErrValidation.WithMessage("invalid year"))
		return 0, 0, false
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		errorx.Send(c, errorx.ErrValidation.WithMessage("invalid month"))
		return 0, 0, false
	}
	return year, month, true
}
