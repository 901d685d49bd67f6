package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"yamdb/internal/apperr"
	"yamdb/internal/http-api/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const requestTimeout = 5 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError renders application errors with their status and body.
// Anything else is recorded on the gin context and reported as a 500.
func respondError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status(), appErr.Body())
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
}

// respondBindError turns a ShouldBindJSON failure into a 400.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, dto.FieldErrors(verrs))
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"detail": "malformed request body"})
}

// parseID reads a numeric path parameter. Anything that is not a positive
// integer cannot name a resource, so it is reported as 404.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "not found"})
		return 0, false
	}
	return id, true
}
