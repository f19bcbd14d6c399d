// Package controller provides the HTTP handlers of the Daily Diet API.
package controller

import (
	"errors"
	"net/http"

	"github.com/dailydiet/daily-diet/logger"
	"github.com/dailydiet/daily-diet/web/service"
	"github.com/dailydiet/daily-diet/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides common functionality for all controllers, including authentication checks.
type BaseController struct {
	userService *service.UserService
}

// checkLogin resolves the session user into the request principal. Requests
// without a session, or whose user has since been deleted, get 401.
func (a *BaseController) checkLogin(c *gin.Context) {
	id, ok := session.GetLoginUserId(c)
	if !ok {
		pureJsonMsg(c, http.StatusUnauthorized, false, service.ErrUnauthenticated.Msg)
		c.Abort()
		return
	}

	user, err := a.userService.Principal(c.Request.Context(), id)
	if errors.Is(err, service.ErrUnauthenticated) {
		logger.Infof("session of deleted user %d cleared", id)
		if err := session.ClearSession(c); err != nil {
			logger.Warning("Unable to clear session:", err)
		}
		pureJsonMsg(c, http.StatusUnauthorized, false, service.ErrUnauthenticated.Msg)
		c.Abort()
		return
	} else if err != nil {
		jsonError(c, err)
		c.Abort()
		return
	}

	session.SetPrincipal(c, user)
	c.Next()
}
