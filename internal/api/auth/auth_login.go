package auth

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/metrics"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types/status"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/backend"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/errors"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/response"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/session"
)

type LoginReq struct {
	UserID   string `json:"userid"`
	Password string `json:"password"`
}

type LoginResp struct {
	Message  string             `json:"message"`
	UserMenu []session.MenuItem `json:"userMenu"`
	Redirect string             `json:"redirect"`
}

// Login exchanges credentials with the authentication service and, on success, commits
// the session cookies. A rejected login leaves the cookies untouched.
func Login(c *gin.Context) {
	var (
		resp LoginResp
		req  LoginReq
		err  error
	)
	defer func() {
		if err != nil {
			response.HandleFlatResponse(c, err, nil)
			return
		}
		fields := gin.H{"userMenu": resp.UserMenu, "redirect": resp.Redirect}
		if resp.Message != "" {
			fields["message"] = resp.Message
		}
		response.HandleFlatResponse(c, nil, fields)
	}()

	if err = c.ShouldBindJSON(&req); err != nil {
		err = errors.Wrap(err, status.LoginParamFailErr)
		return
	}
	req.UserID = strings.TrimSpace(req.UserID)
	if req.UserID == "" || req.Password == "" {
		err = errors.New(status.LoginParamFailErr)
		metrics.Default().LoginAttempts.WithLabelValues("rejected").Inc()
		return
	}

	result, err := backend.DefaultClient().Login(c.Request.Context(), req.UserID, req.Password)
	if err != nil {
		config.Logger.WithContext(c.Request.Context()).Errorf("login %s: %v", req.UserID, err)
		err = errors.WithDetail(errors.Wrap(err, status.LoginBackendErr), errors.Cause(err).Error())
		metrics.Default().LoginAttempts.WithLabelValues("error").Inc()
		return
	}
	if !result.Success {
		err = errors.WithDetail(errors.Newf(status.LoginFailErr, result.Message), result.Detail)
		metrics.Default().LoginAttempts.WithLabelValues("rejected").Inc()
		recordEvent(c, types.EventLoginFailure, req.UserID, "", result.Message)
		return
	}

	if err = session.DefaultStore().Commit(c, result.User); err != nil {
		err = errors.Wrap(err, status.LoginSessionIncompleteErr)
		metrics.Default().LoginAttempts.WithLabelValues("error").Inc()
		return
	}

	metrics.Default().LoginAttempts.WithLabelValues("success").Inc()
	recordEvent(c, types.EventLoginSuccess, result.User.UserID, result.User.BranchCode, result.Message)
	resp.Message = result.Message
	resp.UserMenu = result.UserMenu
	if resp.UserMenu == nil {
		resp.UserMenu = []session.MenuItem{}
	}
	resp.Redirect = types.HomePath
}
