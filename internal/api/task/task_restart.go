package task

import (
	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/task"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types/status"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/errors"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/response"
)

type RestartResp struct {
}

type RestartReq struct {
	Id string `uri:"id"`
}

// RestartTask re-queues a failed task
func RestartTask(c *gin.Context) {
	var (
		resp RestartResp
		req  RestartReq
		err  error
	)
	defer func() {
		response.HandleResponse(c, err, &resp)
	}()

	if err = c.ShouldBindUri(&req); err != nil {
		err = errors.Wrap(err, errors.BadRequest)
		return
	}

	taskInfo, exist := task.GetTaskManager().GetTaskInfoByKey(req.Id)
	if !exist {
		err = errors.New(status.TaskNotExistErr)
		return
	}

	if taskInfo.Status == types.TaskOnGoing {
		err = errors.New(status.TaskStatusErr)
		return
	}

	task.GetTaskManager().RestartByKey(req.Id)
}
