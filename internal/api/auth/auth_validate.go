package auth

import (
	"context"

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

// Validate asks the authentication service whether the session token is still live.
// An invalid verdict clears the cookies; transport failures leave the session alone.
func Validate(c *gin.Context) {
	var (
		valid bool
		msg   string
		err   error
	)
	defer func() {
		fields := gin.H{"valid": valid}
		if err == nil {
			fields["message"] = msg
		}
		response.HandleFlatResponse(c, err, fields)
	}()

	store := session.DefaultStore()
	user, ok := store.Read(c)
	if !ok {
		err = errors.New(status.SessionAbsentErr)
		metrics.Default().Validations.WithLabelValues("absent").Inc()
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), config.ExtServerSetting.ValidateTimeout)
	defer cancel()
	result, err := backend.DefaultClient().Validate(ctx, user.UserID, user.Token)
	if err != nil {
		log := config.Logger.WithContext(c.Request.Context())
		if backend.IsTimeout(err) {
			log.Warnf("validate %s timed out: %v", user.UserID, err)
			err = errors.Wrap(err, status.SessionValidateTimeoutErr)
			metrics.Default().Validations.WithLabelValues("timeout").Inc()
			return
		}
		log.Errorf("validate %s: %v", user.UserID, err)
		err = errors.Wrap(err, status.SessionValidateBackendErr)
		metrics.Default().Validations.WithLabelValues("error").Inc()
		return
	}
	if !result.Valid {
		store.Clear(c)
		err = errors.WithDetail(errors.New(status.SessionInvalidErr), result.Message)
		metrics.Default().Validations.WithLabelValues("invalid").Inc()
		metrics.Default().Logouts.WithLabelValues("invalidated").Inc()
		recordEvent(c, types.EventSessionInvalidated, user.UserID, user.BranchCode, result.Message)
		return
	}

	metrics.Default().Validations.WithLabelValues("valid").Inc()
	valid = true
	msg = result.Message
}
