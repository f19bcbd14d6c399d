package controller

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dailydiet/daily-diet/logger"
	"github.com/dailydiet/daily-diet/web/entity"
	"github.com/dailydiet/daily-diet/web/middleware"
	"github.com/dailydiet/daily-diet/web/service"

	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

// statusOf maps a service error kind to its HTTP status.
func statusOf(kind service.ErrorKind) int {
	switch kind {
	case service.KindInvalidInput:
		return http.StatusBadRequest
	case service.KindUnauthenticated, service.KindInvalidCredentials:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// jsonError answers with the status and message of a service error. Internal
// errors are logged and their cause is not exposed.
func jsonError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	status := statusOf(kind)
	if kind == service.KindInternal {
		logger.Errorf("[%s] %s %s: %v", middleware.GetRequestID(c), c.Request.Method, c.Request.URL.Path, err)
		pureJsonMsg(c, status, false, "internal error")
		return
	}
	var se *service.Error
	msg := kind.String()
	if errors.As(err, &se) {
		msg = se.Msg
	}
	pureJsonMsg(c, status, false, msg)
}

// jsonMsg sends a successful message response.
func jsonMsg(c *gin.Context, msg string) {
	pureJsonMsg(c, http.StatusOK, true, msg)
}

// jsonObj sends obj as the raw response body.
func jsonObj(c *gin.Context, status int, obj any) {
	c.JSON(status, obj)
}

// pureJsonMsg sends a pure JSON message response with custom status code.
func pureJsonMsg(c *gin.Context, statusCode int, success bool, msg string) {
	c.JSON(statusCode, entity.Msg{
		Success: success,
		Msg:     msg,
	})
}

// paramId parses the :id path parameter. It answers 400 and returns false
// when the id is not a positive integer.
func paramId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid id")
		return 0, false
	}
	return id, true
}

// readBody reads the request body, bounded to maxBodyBytes. It answers 400
// and returns false on failure.
func readBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		pureJsonMsg(c, http.StatusBadRequest, false, "invalid JSON body")
		return nil, false
	}
	return body, true
}
