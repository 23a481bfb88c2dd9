package status

import (
	"net/http"

	"gitlab.yctc.tech/zhiting/strportal.git/pkg/errors"
)

const (
	SettingParamFailErr = iota + 60000
	SettingUpdateFailErr
)

func init() {
	errors.NewCode(SettingParamFailErr, "invalid session setting: %s", http.StatusBadRequest)
	errors.NewCode(SettingUpdateFailErr, "failed to update settings", http.StatusInternalServerError)
}
