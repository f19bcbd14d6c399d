package controller

import (
	"net/http"

	"github.com/dailydiet/daily-diet/database/model"
	"github.com/dailydiet/daily-diet/logger"
	"github.com/dailydiet/daily-diet/web/entity"
	"github.com/dailydiet/daily-diet/web/middleware"
	"github.com/dailydiet/daily-diet/web/service"
	"github.com/dailydiet/daily-diet/web/session"

	"github.com/gin-gonic/gin"
)

// UserController handles registration and user administration.
type UserController struct {
	BaseController
}

func NewUserController(g *gin.RouterGroup, userService *service.UserService) *UserController {
	a := &UserController{BaseController{userService: userService}}
	a.initRouter(g)
	return a
}

func (a *UserController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/user")

	g.POST("", a.register)

	authed := g.Group("", a.checkLogin)
	authed.GET("", a.list)
	authed.GET("/:id", a.get)
	authed.DELETE("/:id", a.delete)
}

func (a *UserController) register(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	creds, err := service.ParseCredentials(body)
	if err != nil {
		jsonError(c, err)
		return
	}
	user, err := a.userService.Register(c.Request.Context(), creds.UserName, creds.Password)
	if err != nil {
		jsonError(c, err)
		return
	}
	middleware.RecordAudit(c, service.AuditEntry{UserId: user.Id, UserName: user.UserName, Action: model.AuditRegister})
	logger.Infof("user %s registered", user.UserName)
	jsonObj(c, http.StatusCreated, entity.NewUserView(user))
}

func (a *UserController) list(c *gin.Context) {
	users, err := a.userService.ListUsers(c.Request.Context(), session.GetPrincipal(c))
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, entity.NewUserViews(users))
}

func (a *UserController) get(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	user, err := a.userService.GetUser(c.Request.Context(), session.GetPrincipal(c), id)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, entity.NewUserView(user))
}

func (a *UserController) delete(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	principal := session.GetPrincipal(c)
	user, err := a.userService.DeleteUser(c.Request.Context(), principal, id)
	if err != nil {
		jsonError(c, err)
		return
	}
	middleware.RecordAudit(c, service.AuditEntry{
		UserId:     principal.Id,
		UserName:   principal.UserName,
		Action:     model.AuditUserDelete,
		ResourceId: user.Id,
	})
	logger.Infof("user %s deleted by %s", user.UserName, principal.UserName)
	jsonMsg(c, "user deleted")
}
