package middleware

import (
	"yamdb/internal/apperr"
	"yamdb/internal/http-api/permission"

	"github.com/gin-gonic/gin"
)

// Require rejects requests the policy does not allow: anonymous callers get
// 401, authenticated ones 403.
func Require(policy permission.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if policy.HasPermission(user, c.Request.Method) {
			c.Next()
			return
		}
		if user == nil {
			abort(c, apperr.Authentication("authentication credentials were not provided"))
			return
		}
		abort(c, apperr.Permission("you do not have permission to perform this action"))
	}
}
