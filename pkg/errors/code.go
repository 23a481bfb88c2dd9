package errors

import (
	"net/http"
	"sync"
)

const (
	OK                = 0
	InternalServerErr = iota + 1000
	BadRequest
	NotFound
	Unauthorized
	Forbidden
	TooManyRequests
)

// Code is the status/reason pair returned to the caller.
type Code struct {
	Status     int    `json:"status"`
	Reason     string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
}

var (
	codes   = make(map[int]Code)
	codesMu sync.RWMutex
)

func init() {
	NewCode(OK, "success")
	NewCode(InternalServerErr, "internal server error", http.StatusInternalServerError)
	NewCode(BadRequest, "bad request", http.StatusBadRequest)
	NewCode(NotFound, "not found", http.StatusNotFound)
	NewCode(Unauthorized, "unauthorized", http.StatusUnauthorized)
	NewCode(Forbidden, "forbidden", http.StatusForbidden)
	NewCode(TooManyRequests, "too many requests", http.StatusTooManyRequests)
}

// NewCode registers a status code. httpStatus defaults to 200.
func NewCode(status int, reason string, httpStatus ...int) {
	code := Code{Status: status, Reason: reason, HTTPStatus: http.StatusOK}
	if len(httpStatus) != 0 {
		code.HTTPStatus = httpStatus[0]
	}
	codesMu.Lock()
	codes[status] = code
	codesMu.Unlock()
}

func GetCode(status int) Code {
	codesMu.RLock()
	defer codesMu.RUnlock()
	if code, ok := codes[status]; ok {
		return code
	}
	return codes[InternalServerErr]
}
