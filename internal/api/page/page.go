package page

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/session"
)

// SignIn renders the sign-in form, or sends an authenticated user home.
func SignIn(c *gin.Context) {
	if _, ok := session.DefaultStore().Read(c); ok {
		c.Redirect(http.StatusFound, config.AppSetting.BasePath+types.HomePath)
		return
	}
	c.HTML(http.StatusOK, "signin", gin.H{"BasePath": config.AppSetting.BasePath})
}

// Home is the landing page after login. It runs the validation poll and the idle timer
// with the configured session timing.
func Home(c *gin.Context) {
	u := session.Get(c)
	timing := config.GetSessionSetting()
	c.HTML(http.StatusOK, "home", gin.H{
		"BasePath":        config.AppSetting.BasePath,
		"User":            u,
		"ProfileLabel":    session.ProfileLabel(u.Profile),
		"IdleSeconds":     int64(timing.IdleTimeout.Seconds()),
		"IntervalSeconds": int64(timing.ValidateInterval.Seconds()),
		"GraceSeconds":    int64(timing.ValidateGrace.Seconds()),
		"ValidatorMode":   timing.ValidatorMode,
	})
}
