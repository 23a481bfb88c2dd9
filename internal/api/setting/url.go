package setting

import (
	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/api/middleware"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
)

func RegisterSettingRouter(r gin.IRouter) {
	group := r.Group("settings", middleware.RequireSession)

	group.GET("session", GetSessionSetting)
	group.POST("session", middleware.RequireProfile(types.ProfileAdmin), UpdateSessionSetting)
}
