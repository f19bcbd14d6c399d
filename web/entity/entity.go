// Package entity defines the response bodies returned by the web layer.
package entity

import (
	"time"

	"github.com/dailydiet/daily-diet/database/model"
)

// Msg represents an API message with success status, message text, and
// optional data object. Errors always use it.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj,omitempty"`
}

// UserView is the public representation of a user. The password hash never
// leaves the service layer.
type UserView struct {
	Id       int    `json:"id"`
	UserName string `json:"user_name"`
}

func NewUserView(u *model.User) UserView {
	return UserView{Id: u.Id, UserName: u.UserName}
}

func NewUserViews(users []model.User) []UserView {
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, NewUserView(&users[i]))
	}
	return views
}

// MealView is a meal as rendered to its owner.
type MealView struct {
	Id          int    `json:"id"`
	Name        string `json:"meal_name"`
	Description string `json:"meal_description"`
	DateTime    string `json:"meal_date_time"`
	OnDiet      bool   `json:"meal_on_diet"`
	UserId      int    `json:"user_id"`
}

func NewMealView(m *model.Meal) MealView {
	return MealView{
		Id:          m.Id,
		Name:        m.Name,
		Description: m.Description,
		DateTime:    m.DateTime.UTC().Format(model.DateTimeLayout),
		OnDiet:      m.OnDiet,
		UserId:      m.UserId,
	}
}

func NewMealViews(meals []model.Meal) []MealView {
	views := make([]MealView, 0, len(meals))
	for i := range meals {
		views = append(views, NewMealView(&meals[i]))
	}
	return views
}

// AuditLogView is one audit entry.
type AuditLogView struct {
	Id         int    `json:"id"`
	UserId     int    `json:"user_id"`
	UserName   string `json:"user_name"`
	Action     string `json:"action"`
	ResourceId int    `json:"resource_id,omitempty"`
	IP         string `json:"ip"`
	UserAgent  string `json:"user_agent"`
	CreatedAt  string `json:"created_at"`
}

// AuditPage is a page of audit entries with the total count.
type AuditPage struct {
	Total  int64          `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
	Logs   []AuditLogView `json:"logs"`
}

func NewAuditPage(logs []model.AuditLog, total int64, limit, offset int) AuditPage {
	page := AuditPage{
		Total:  total,
		Limit:  limit,
		Offset: offset,
		Logs:   make([]AuditLogView, 0, len(logs)),
	}
	for _, l := range logs {
		page.Logs = append(page.Logs, AuditLogView{
			Id:         l.Id,
			UserId:     l.UserId,
			UserName:   l.UserName,
			Action:     l.Action,
			ResourceId: l.ResourceId,
			IP:         l.IP,
			UserAgent:  l.UserAgent,
			CreatedAt:  l.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return page
}
