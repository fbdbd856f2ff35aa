// internal/interfaces/http/handlers/common.go
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/easystock-backend/internal/pkg/apperror"
)

// respondError maps a service error to the JSON error envelope. Domain
// errors carry their own status and safe detail; everything else is a 500
// with a generic message.
func respondError(c *gin.Context, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		payload := gin.H{
			"error": appErr.Detail,
			"code":  string(appErr.Kind),
		}
		if len(appErr.Fields) > 0 {
			payload["fields"] = appErr.Fields
		}
		c.JSON(appErr.HTTPStatus(), payload)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
	})
}

// parseIDParam reads a :id path parameter as uint
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid ID",
		})
		return 0, false
	}
	return uint(id), true
}
