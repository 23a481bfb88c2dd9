package auth

import (
	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/entity"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/task"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/logger"
)

// recordEvent queues an audit row; it never blocks the session transition.
func recordEvent(c *gin.Context, kind, userID, branchCode, message string) {
	e := entity.NewAuthEvent(kind, userID, branchCode, message)
	e.RemoteAddr = c.ClientIP()
	e.RequestID = logger.RequestIDFromContext(c.Request.Context())
	task.GetTaskManager().Add(types.TaskAuthEvent, e.ID, e)
}
