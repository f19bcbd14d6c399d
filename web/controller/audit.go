package controller

import (
	"net/http"
	"strconv"

	"github.com/dailydiet/daily-diet/database/model"
	"github.com/dailydiet/daily-diet/web/entity"
	"github.com/dailydiet/daily-diet/web/middleware"
	"github.com/dailydiet/daily-diet/web/service"

	"github.com/gin-gonic/gin"
)

// AuditController exposes the audit log to admins.
type AuditController struct {
	BaseController

	auditService *service.AuditLogService
}

func NewAuditController(g *gin.RouterGroup, userService *service.UserService, auditService *service.AuditLogService) *AuditController {
	a := &AuditController{
		BaseController: BaseController{userService: userService},
		auditService:   auditService,
	}
	a.initRouter(g)
	return a
}

func (a *AuditController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/audit", a.checkLogin, middleware.RoleRequired(model.RoleAdmin))
	g.GET("", a.list)
}

func queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		pureJsonMsg(c, http.StatusBadRequest, false, key+" must be a non-negative integer")
		return 0, false
	}
	return v, true
}

func (a *AuditController) list(c *gin.Context) {
	limit, ok := queryInt(c, "limit", service.DefaultAuditLimit)
	if !ok {
		return
	}
	offset, ok := queryInt(c, "offset", 0)
	if !ok {
		return
	}
	limit, offset = service.NormalizeAuditPage(limit, offset)

	logs, total, err := a.auditService.ListLogs(c.Request.Context(), limit, offset)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, entity.NewAuditPage(logs, total, limit, offset))
}
