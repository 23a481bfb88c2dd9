package task

import (
	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/api/middleware"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
)

func RegisterTaskRouter(r gin.IRouter) {
	group := r.Group("tasks", middleware.RequireSession, middleware.RequireProfile(types.ProfileAdmin))
	{
		group.GET("", ListTask)       // pending audit writes
		group.PUT(":id", RestartTask) // retry a failed write
		group.DELETE(":id", DelTask)  // drop a write
	}
}
