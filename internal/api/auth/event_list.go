package auth

import (
	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/entity"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/errors"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/response"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/utils"
)

type EventListReq struct {
	UserID     string `form:"user_id"`
	BranchCode string `form:"branch_code"`
	Kind       string `form:"kind"`
}

// GetEventList pages through the session audit trail.
func GetEventList(c *gin.Context) {
	var (
		req   EventListReq
		list  []*entity.AuthEvent
		total int64
		err   error
	)
	defer func() {
		response.HandleResponseList(c, err, list, total)
	}()

	if err = c.ShouldBindQuery(&req); err != nil {
		err = errors.Wrap(err, errors.BadRequest)
		return
	}
	page := utils.GetPage(c)
	pageSize := utils.GetPageSize(c)
	list, total, err = entity.GetAuthEventList(entity.AuthEventQuery{
		UserID:     req.UserID,
		BranchCode: req.BranchCode,
		Kind:       req.Kind,
		Offset:     utils.GetPageOffset(page, pageSize),
		Limit:      pageSize,
	})
	if err != nil {
		err = errors.Wrap(err, errors.InternalServerErr)
	}
}
