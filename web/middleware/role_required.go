package middleware

import (
	"net/http"

	"github.com/dailydiet/daily-diet/web/entity"
	"github.com/dailydiet/daily-diet/web/session"

	"github.com/gin-gonic/gin"
)

// RoleRequired aborts unless the request principal holds one of roles. It
// must run after the login check has attached the principal.
func RoleRequired(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool)
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		user := session.GetPrincipal(c)
		if user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.Msg{Msg: "authentication required"})
			return
		}
		if !allowed[user.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, entity.Msg{Msg: "admin role required"})
			return
		}
		c.Next()
	}
}
