package auth

import (
	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/types/status"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/errors"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/response"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/session"
)

type SessionResp struct {
	*session.User
	ProfileLabel string `json:"profileLabel"`
	IsLocal      bool   `json:"isLocal"`
}

// GetSession returns the cookie-derived session. The backend token stays server side.
func GetSession(c *gin.Context) {
	var (
		resp *SessionResp
		err  error
	)
	defer func() {
		response.HandleResponse(c, err, resp)
	}()

	user, ok := session.DefaultStore().Read(c)
	if !ok {
		err = errors.New(status.SessionAbsentErr)
		return
	}
	resp = &SessionResp{
		User:         user,
		ProfileLabel: session.ProfileLabel(user.Profile),
		IsLocal:      user.IsLocal(),
	}
}
