package setting

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/entity"
	"gitlab.yctc.tech/zhiting/strportal.git/internal/types/status"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/errors"
	"gitlab.yctc.tech/zhiting/strportal.git/pkg/response"
)

type UpdateReq struct {
	IdleTimeoutSeconds      int64  `json:"idle_timeout_seconds"`
	ValidateIntervalSeconds int64  `json:"validate_interval_seconds"`
	ValidateGraceSeconds    int64  `json:"validate_grace_seconds"`
	ValidatorMode           string `json:"validator_mode"`
}

func (req *UpdateReq) toSetting() config.SessionSettingS {
	return config.SessionSettingS{
		IdleTimeout:      time.Duration(req.IdleTimeoutSeconds) * time.Second,
		ValidateInterval: time.Duration(req.ValidateIntervalSeconds) * time.Second,
		ValidateGrace:    time.Duration(req.ValidateGraceSeconds) * time.Second,
		ValidatorMode:    req.ValidatorMode,
	}
}

func (req *UpdateReq) validateRequest() error {
	if err := entity.ValidateSessionSettings(req.toSetting()); err != nil {
		return errors.Newf(status.SettingParamFailErr, err.Error())
	}
	return nil
}

// UpdateSessionSetting replaces the stored session timing and applies it immediately.
func UpdateSessionSetting(c *gin.Context) {
	var (
		resp SessionSettingResp
		req  UpdateReq
		err  error
	)
	defer func() {
		response.HandleResponse(c, err, &resp)
	}()
	if err = c.ShouldBindJSON(&req); err != nil {
		err = errors.Wrap(err, errors.BadRequest)
		return
	}
	if err = req.validateRequest(); err != nil {
		return
	}

	updated := req.toSetting()
	if err = entity.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := entity.DropSetting(tx); err != nil {
			return errors.Wrap(err, status.SettingUpdateFailErr)
		}
		if err := entity.BatchInsertSetting(tx, entity.SessionSettings(updated)); err != nil {
			return errors.Wrap(err, status.SettingUpdateFailErr)
		}
		return nil
	}); err != nil {
		return
	}

	config.SetSessionSetting(updated)
	resp = toResp(updated)
}
