package status

import (
	"net/http"

	"gitlab.yctc.tech/zhiting/strportal.git/pkg/errors"
)

const (
	TaskNotExistErr = iota + 70000
	TaskStatusErr
)

func init() {
	errors.NewCode(TaskNotExistErr, "task does not exist", http.StatusNotFound)
	errors.NewCode(TaskStatusErr, "task status does not allow this operation", http.StatusConflict)
}
