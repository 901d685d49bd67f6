package middleware

import (
	"errors"
	"net/http"
	"strings"

	"yamdb/internal/apperr"
	"yamdb/internal/http-api/models"
	"yamdb/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

const userContextKey = "user"

// Authenticate resolves a "Bearer <token>" header to the active user and
// stores it on the context. Requests without the header continue anonymously;
// a bad or stale token is rejected with 401.
func Authenticate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abort(c, apperr.Authentication("invalid authorization header format"))
			return
		}

		user, err := authService.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(userContextKey, user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// CurrentUser returns the authenticated caller or nil for anonymous requests.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// SetCurrentUser is used by tests and tools that authenticate out of band.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userContextKey, user)
	c.Set("userID", user.ID)
}

func abort(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		c.AbortWithStatusJSON(appErr.Status(), appErr.Body())
		return
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
}
