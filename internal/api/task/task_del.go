package task

import (
	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/task"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types/status"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/errors"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/response"
)

type DelResp struct {
}

type DelReq struct {
	Id string `uri:"id"`
}

// DelTask drops a task that is not running
func DelTask(c *gin.Context) {
	var (
		resp DelResp
		req  DelReq
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

	task.GetTaskManager().DelByKey(req.Id)
}
