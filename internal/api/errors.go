package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pantrypal/backend/internal/service"
)

// respondError maps taxonomy errors to HTTP statuses with a stable
// machine-readable code alongside the human message.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	}

	c.JSON(status, gin.H{
		"error": err.Error(),
		"code":  service.ErrorCode(err),
	})
}
