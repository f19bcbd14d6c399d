// Package model contains the gorm models persisted by the Daily Diet server.
package model

import "time"

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// DateTimeLayout is the wire format of meal timestamps.
const DateTimeLayout = "2006-01-02 15:04:05"

type User struct {
	Id       int    `json:"id" gorm:"primaryKey;autoIncrement"`
	UserName string `json:"user_name" gorm:"column:user_name;size:80;uniqueIndex;not null"`
	Password string `json:"-" gorm:"size:255;not null"` // bcrypt hash
	Role     string `json:"role" gorm:"size:80;not null;default:user"`
	Meals    []Meal `json:"-" gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Meal struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" gorm:"size:80;not null"`
	Description string    `json:"description" gorm:"size:255;not null"`
	DateTime    time.Time `json:"date_time" gorm:"column:date_time;not null"`
	OnDiet      bool      `json:"on_diet" gorm:"column:on_diet;not null"`
	UserId      int       `json:"user_id" gorm:"column:user_id;not null;index"`
}

// Audit actions.
const (
	AuditRegister    = "register"
	AuditLogin       = "login"
	AuditLoginFailed = "login_failed"
	AuditLogout      = "logout"
	AuditUserDelete  = "user_delete"
)

// AuditLog records authentication and administration events.
type AuditLog struct {
	Id         int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId     int       `json:"user_id" gorm:"index"`
	UserName   string    `json:"user_name" gorm:"size:80"`
	Action     string    `json:"action" gorm:"size:32;not null"`
	ResourceId int       `json:"resource_id"`
	IP         string    `json:"ip" gorm:"size:64"`
	UserAgent  string    `json:"user_agent" gorm:"size:255"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}
