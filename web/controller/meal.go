package controller

import (
	"net/http"

	"github.com/dailydiet/daily-diet/web/entity"
	"github.com/dailydiet/daily-diet/web/service"
	"github.com/dailydiet/daily-diet/web/session"

	"github.com/gin-gonic/gin"
)

// MealController handles the meals of the logged-in user.
type MealController struct {
	BaseController

	mealService *service.MealService
}

func NewMealController(g *gin.RouterGroup, userService *service.UserService, mealService *service.MealService) *MealController {
	a := &MealController{
		BaseController: BaseController{userService: userService},
		mealService:    mealService,
	}
	a.initRouter(g)
	return a
}

func (a *MealController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/meal", a.checkLogin)

	g.POST("", a.create)
	g.GET("", a.list)
	g.GET("/metrics", a.metrics)
	g.GET("/:id", a.get)
	g.PUT("/:id", a.update)
	g.DELETE("/:id", a.delete)
}

func (a *MealController) create(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	patch, err := service.ParseMealPayload(body, false)
	if err != nil {
		jsonError(c, err)
		return
	}
	meal, err := a.mealService.CreateMeal(c.Request.Context(), session.GetPrincipal(c), patch)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusCreated, entity.NewMealView(meal))
}

func (a *MealController) list(c *gin.Context) {
	var onDiet *bool
	switch c.Query("on_diet") {
	case "":
	case "true":
		v := true
		onDiet = &v
	case "false":
		v := false
		onDiet = &v
	default:
		pureJsonMsg(c, http.StatusBadRequest, false, "on_diet must be true or false")
		return
	}

	meals, err := a.mealService.ListMeals(c.Request.Context(), session.GetPrincipal(c), onDiet)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, entity.NewMealViews(meals))
}

func (a *MealController) metrics(c *gin.Context) {
	m, err := a.mealService.Metrics(c.Request.Context(), session.GetPrincipal(c))
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, m)
}

func (a *MealController) get(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	meal, err := a.mealService.GetMeal(c.Request.Context(), session.GetPrincipal(c), id)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, entity.NewMealView(meal))
}

func (a *MealController) update(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	body, ok := readBody(c)
	if !ok {
		return
	}
	patch, err := service.ParseMealPayload(body, true)
	if err != nil {
		jsonError(c, err)
		return
	}
	meal, err := a.mealService.UpdateMeal(c.Request.Context(), session.GetPrincipal(c), id, patch)
	if err != nil {
		jsonError(c, err)
		return
	}
	jsonObj(c, http.StatusOK, entity.NewMealView(meal))
}

func (a *MealController) delete(c *gin.Context) {
	id, ok := paramId(c)
	if !ok {
		return
	}
	if err := a.mealService.DeleteMeal(c.Request.Context(), session.GetPrincipal(c), id); err != nil {
		jsonError(c, err)
		return
	}
	jsonMsg(c, "meal deleted")
}
