package setting

import (
	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/response"
)

func GetSessionSetting(c *gin.Context) {
	resp := toResp(config.GetSessionSetting())
	response.HandleResponse(c, nil, &resp)
}
