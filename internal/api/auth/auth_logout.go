package auth

import (
	"github.com/gin-gonic/gin"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/metrics"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/backend"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/response"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/session"
)

type LogoutReq struct {
	Reason string `json:"reason"` // "idle" when sent by the inactivity monitor
}

// Logout expires every session cookie. The backend is told to drop the token on a best
// effort basis; the cookies are cleared either way.
func Logout(c *gin.Context) {
	var req LogoutReq
	_ = c.ShouldBindJSON(&req)

	store := session.DefaultStore()
	if user, ok := store.Read(c); ok {
		if err := backend.DefaultClient().Logout(c.Request.Context(), user.UserID, user.Token); err != nil {
			config.Logger.WithContext(c.Request.Context()).Warnf("backend logout %s: %v", user.UserID, err)
		}
		reason := "user"
		if req.Reason == "idle" {
			reason = "idle"
		}
		recordEvent(c, types.EventLogout, user.UserID, user.BranchCode, reason)
		metrics.Default().Logouts.WithLabelValues(reason).Inc()
	}
	store.Clear(c)

	response.HandleFlatResponse(c, nil, gin.H{"message": "logged out"})
}
