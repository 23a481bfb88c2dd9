package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/api/auth"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/api/middleware"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/api/page"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/api/setting"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/api/task"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/metrics"
)

func LoadModules(engine *gin.Engine) {
	engine.SetHTMLTemplate(page.Templates)
	engine.Use(gin.Recovery(), middleware.RequestID, middleware.AccessLog)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{})))

	base := engine.Group(config.AppSetting.BasePath)
	page.RegisterPageRouter(base)

	rwp := base.Group("api")
	auth.RegisterAuthRouter(rwp)
	setting.RegisterSettingRouter(rwp)
	task.RegisterTaskRouter(rwp)
}
