package task

import (
	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/task"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/response"
)

type ListResp struct {
	List []task.Detail `json:"list"`
}

// ListTask lists queued and failed background tasks
func ListTask(c *gin.Context) {
	resp := ListResp{List: task.GetTaskManager().List()}
	response.HandleResponse(c, nil, &resp)
}
