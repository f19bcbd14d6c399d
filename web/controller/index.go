package controller

import (
	"errors"
	"net/http"

	"github.com/dailydiet/daily-diet/database/model"
	"github.com/dailydiet/daily-diet/logger"
	"github.com/dailydiet/daily-diet/util/metrics"
	"github.com/dailydiet/daily-diet/web/entity"
	"github.com/dailydiet/daily-diet/web/middleware"
	"github.com/dailydiet/daily-diet/web/service"
	"github.com/dailydiet/daily-diet/web/session"

	"github.com/gin-gonic/gin"
)

// IndexController handles the root route, login and logout.
type IndexController struct {
	BaseController
}

// NewIndexController creates a new IndexController and initializes its routes.
// loginLimit guards POST /login.
func NewIndexController(g *gin.RouterGroup, userService *service.UserService, loginLimit gin.HandlerFunc) *IndexController {
	a := &IndexController{BaseController{userService: userService}}
	a.initRouter(g, loginLimit)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup, loginLimit gin.HandlerFunc) {
	g.GET("/", a.index)
	g.POST("/login", loginLimit, a.login)
	g.GET("/logout", a.checkLogin, a.logout)
}

func (a *IndexController) index(c *gin.Context) {
	c.String(http.StatusOK, "Daily Diet API")
}

// login verifies the credentials and starts a session.
func (a *IndexController) login(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	creds, err := service.ParseCredentials(body)
	if err != nil {
		jsonError(c, err)
		return
	}

	user, err := a.userService.CheckUser(c.Request.Context(), creds.UserName, creds.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		logger.Warningf("wrong user_name: %q, IP: %q", creds.UserName, c.ClientIP())
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		middleware.RecordAudit(c, service.AuditEntry{UserName: creds.UserName, Action: model.AuditLoginFailed})
		jsonError(c, err)
		return
	} else if err != nil {
		jsonError(c, err)
		return
	}

	if err := session.SetLoginUser(c, user); err != nil {
		jsonError(c, err)
		return
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	middleware.RecordAudit(c, service.AuditEntry{UserId: user.Id, UserName: user.UserName, Action: model.AuditLogin})
	logger.Infof("%s logged in successfully, Ip Address: %s", user.UserName, c.ClientIP())
	c.JSON(http.StatusOK, entity.Msg{
		Success: true,
		Msg:     "logged in",
		Obj:     entity.NewUserView(user),
	})
}

// logout clears the session and expires the cookie.
func (a *IndexController) logout(c *gin.Context) {
	user := session.GetPrincipal(c)
	if err := session.ClearSession(c); err != nil {
		jsonError(c, err)
		return
	}
	middleware.RecordAudit(c, service.AuditEntry{UserId: user.Id, UserName: user.UserName, Action: model.AuditLogout})
	logger.Infof("%s logged out successfully", user.UserName)
	jsonMsg(c, "logged out")
}
