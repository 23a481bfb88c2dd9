package page

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/api/middleware"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
)

func RegisterPageRouter(r gin.IRouter) {
	r.GET("signin", SignIn)
	r.GET("home", middleware.RequirePageSession, Home)
	r.GET("", func(c *gin.Context) {
		c.Redirect(http.StatusFound, config.AppSetting.BasePath+types.HomePath)
	})
}
