package setting

import (
	"gitlab.yctc.tech/zhiting/strportal.git/internal/config"
)

// SessionSettingResp timing parameters for the browser side monitors
type SessionSettingResp struct {
	IdleTimeoutSeconds      int64  `json:"idle_timeout_seconds"`
	ValidateIntervalSeconds int64  `json:"validate_interval_seconds"`
	ValidateGraceSeconds    int64  `json:"validate_grace_seconds"`
	ValidatorMode           string `json:"validator_mode"`
}

func toResp(s config.SessionSettingS) SessionSettingResp {
	return SessionSettingResp{
		IdleTimeoutSeconds:      int64(s.IdleTimeout.Seconds()),
		ValidateIntervalSeconds: int64(s.ValidateInterval.Seconds()),
		ValidateGraceSeconds:    int64(s.ValidateGrace.Seconds()),
		ValidatorMode:           s.ValidatorMode,
	}
}
