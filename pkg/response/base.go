package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/errors"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/utils"
)

type BaseResponse struct {
	Success bool `json:"success"`
	errors.Code
	Data interface{} `json:"data,omitempty"`
}

func getResponse(ctx *gin.Context, err error, resp interface{}) *BaseResponse {
	baseResult := BaseResponse{
		Success: true,
		Code:    errors.GetCode(errors.OK),
		Data:    resp,
	}
	if err != nil {
		baseResult.Success = false
		baseResult.Data = nil
		switch v := err.(type) {
		case errors.Error:
			baseResult.Code = v.Code
		default:
			baseResult.Code = errors.GetCode(errors.InternalServerErr)
		}
		config.Logger.WithContext(ctx.Request.Context()).Errorf("%s %s: %+v", ctx.Request.Method, ctx.Request.URL.Path, err)
	}
	return &baseResult
}

// statusOf picks the HTTP status: the error code's own status, else the given one.
func statusOf(status int, err error) int {
	if err == nil {
		return status
	}
	if v, ok := err.(errors.Error); ok && v.Code.HTTPStatus != 0 {
		return v.Code.HTTPStatus
	}
	return http.StatusInternalServerError
}

func HandleResponse(ctx *gin.Context, err error, response interface{}) {
	HandleResponseWithStatus(ctx, http.StatusOK, err, response)
}

func HandleResponseList(ctx *gin.Context, err error, list interface{}, totalRow int64) {
	page := utils.GetPage(ctx)
	pageSize := utils.GetPageSize(ctx)
	pageOffset := utils.GetPageOffset(page, pageSize)
	// whether more rows follow this page
	hasMore := false
	if pageSize > 0 && int64(pageOffset+pageSize) < totalRow {
		hasMore = true
	}
	HandleResponseWithStatus(ctx, http.StatusOK, err, gin.H{
		"list": list,
		"pager": utils.Pager{
			Page:      page,
			PageSize:  pageSize,
			TotalRows: totalRow,
			HasMore:   hasMore,
		},
	})
}

func HandleResponseWithStatus(ctx *gin.Context, status int, err error, response interface{}) {
	baseResult := getResponse(ctx, err, response)
	ctx.JSON(statusOf(status, err), baseResult)
}

// HandleFlatResponse writes the base fields with extra top-level fields next to them,
// for endpoints whose body is not wrapped in "data" (login, validate, logout).
func HandleFlatResponse(ctx *gin.Context, err error, fields gin.H) {
	baseResult := getResponse(ctx, err, nil)
	body := gin.H{
		"success": baseResult.Success,
		"status":  baseResult.Status,
		"message": baseResult.Reason,
	}
	if baseResult.Detail != "" {
		body["detail"] = baseResult.Detail
	}
	for k, v := range fields {
		body[k] = v
	}
	ctx.JSON(statusOf(http.StatusOK, err), body)
}
