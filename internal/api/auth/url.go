package auth

import (
	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/api/middleware"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
)

func RegisterAuthRouter(r gin.IRouter) {
	limiter := middleware.NewIPLimiter(config.AppSetting.LoginRate, config.AppSetting.LoginBurst)

	group := r.Group("auth")
	{
		group.POST("login", limiter.Handler(), Login)
		group.GET("session", GetSession)
		group.GET("validate", Validate)
		group.POST("logout", Logout)
		// audit report
		group.GET("events", middleware.RequireSession,
			middleware.RequireProfile(types.ProfileCompliance, types.ProfileAdmin), GetEventList)
	}
}
