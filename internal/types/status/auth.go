package status

import (
	"net/http"

	"gitlab.yctc.tech/zhiting/strportal.git/pkg/errors"
)

const (
	LoginParamFailErr = iota + 10000
	LoginFailErr
	LoginBackendErr
	LoginSessionIncompleteErr
	LoginTooManyErr
	SessionAbsentErr
	SessionInvalidErr
	SessionValidateTimeoutErr
	SessionValidateBackendErr
	ProfileNotPermittedErr
)

func init() {
	errors.NewCode(LoginParamFailErr, "user id and password are required", http.StatusUnauthorized)
	errors.NewCode(LoginFailErr, "%s", http.StatusUnauthorized)
	errors.NewCode(LoginBackendErr, "authentication service unavailable", http.StatusInternalServerError)
	errors.NewCode(LoginSessionIncompleteErr, "authentication service returned an incomplete profile", http.StatusInternalServerError)
	errors.NewCode(LoginTooManyErr, "too many login attempts, try again later", http.StatusTooManyRequests)
	errors.NewCode(SessionAbsentErr, "no active session", http.StatusUnauthorized)
	errors.NewCode(SessionInvalidErr, "session is no longer valid", http.StatusUnauthorized)
	errors.NewCode(SessionValidateTimeoutErr, "session validation timed out", http.StatusRequestTimeout)
	errors.NewCode(SessionValidateBackendErr, "session validation unavailable", http.StatusBadGateway)
	errors.NewCode(ProfileNotPermittedErr, "profile %s is not permitted", http.StatusForbidden)
}
