// Package session keeps the logged-in user id in the gin session and the
// resolved principal on the request context.
package session

import (
	"net/http"

	"github.com/dailydiet/daily-diet/database/model"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// CookieName is the name of the session cookie.
const CookieName = "daily_diet"

const (
	loginUserId = "LOGIN_USER_ID"
	principal   = "PRINCIPAL"
)

// Options returns the cookie options for a session lasting maxAge seconds.
func Options(maxAge int, secure bool) sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetLoginUser stores the user id in a fresh session.
func SetLoginUser(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	s.Clear()
	s.Set(loginUserId, user.Id)
	return s.Save()
}

// GetLoginUserId returns the user id stored in the session, if any.
func GetLoginUserId(c *gin.Context) (int, bool) {
	s := sessions.Default(c)
	if obj := s.Get(loginUserId); obj != nil {
		if id, ok := obj.(int); ok && id > 0 {
			return id, true
		}
	}
	return 0, false
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	return s.Save()
}

// SetPrincipal attaches the authenticated user to the request.
func SetPrincipal(c *gin.Context, user *model.User) {
	c.Set(principal, user)
}

// GetPrincipal returns the user attached by SetPrincipal, or nil.
func GetPrincipal(c *gin.Context) *model.User {
	if obj, ok := c.Get(principal); ok {
		if user, ok := obj.(*model.User); ok {
			return user
		}
	}
	return nil
}
