package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types/status"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/errors"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/logger"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/response"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/session"
)

// RequireSession rebuilds the session from the request cookies and rejects the request
// when it is absent.
func RequireSession(c *gin.Context) {
	user, ok := session.DefaultStore().Read(c)
	if !ok {
		response.HandleResponse(c, errors.New(status.SessionAbsentErr), nil)
		c.Abort()
		return
	}
	session.Set(c, user)
	c.Next()
}

// RequirePageSession is RequireSession for rendered pages: it redirects to sign-in.
func RequirePageSession(c *gin.Context) {
	user, ok := session.DefaultStore().Read(c)
	if !ok {
		c.Redirect(http.StatusFound, config.AppSetting.BasePath+types.SignInPath)
		c.Abort()
		return
	}
	session.Set(c, user)
	c.Next()
}

// RequireProfile only lets the given profile codes through.
func RequireProfile(codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := session.Get(c)
		if u == nil {
			response.HandleResponse(c, errors.New(status.SessionAbsentErr), nil)
			c.Abort()
			return
		}
		if !u.HasProfile(codes...) {
			response.HandleResponse(c, errors.Newf(status.ProfileNotPermittedErr, u.Profile), nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestID tags the request with an id taken from X-Request-ID or freshly generated.
func RequestID(c *gin.Context) {
	id := strings.TrimSpace(c.GetHeader(types.RequestIDHeader))
	if id == "" || len(id) > 64 {
		id = uuid.NewString()
	}
	c.Writer.Header().Set(types.RequestIDHeader, id)
	c.Request = c.Request.WithContext(logger.ContextWithRequestID(c.Request.Context(), id))
	c.Next()
}

// AccessLog writes one entry per request. Query strings are left out.
func AccessLog(c *gin.Context) {
	start := time.Now()
	c.Next()

	fields := logger.Fields{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
		"ip":      c.ClientIP(),
	}
	if u := session.Get(c); u != nil {
		fields["user_id"] = u.UserID
	}
	config.Logger.WithContext(c.Request.Context()).WithFields(fields).Info("access")
}
