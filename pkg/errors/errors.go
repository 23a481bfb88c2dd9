package errors

import (
	"fmt"
	"io"
	"regexp"

	"github.com/pkg/errors"
)

type Error struct {
	Err  error
	Code Code
}

func (e Error) Error() string {
	return e.Code.Reason
}

func (e Error) Unwrap() error {
	return e.Err
}

func (e Error) Format(f fmt.State, verb rune) {
	io.WriteString(f, e.Error())
	stackTrace := e.GetErrStack()
	stackTrace.Format(f, verb)
}

// GetErrStack returns the call stack of the wrapped error, skipping the New/Wrap frames.
func (e Error) GetErrStack() errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}
	st, ok := e.Err.(stackTracer)
	if !ok {
		return nil
	}
	stackTrace := st.StackTrace()
	if len(stackTrace) < 2 {
		return stackTrace
	}

	filterStack := errors.StackTrace{}
	filterFuncRegex, _ := regexp.Compile(`/pkg/errors\.(New|Wrap)f?`)

	for _, f := range stackTrace[:2] {
		stackText, _ := f.MarshalText()
		if !filterFuncRegex.MatchString(string(stackText)) {
			filterStack = append(filterStack, f)
		}
	}
	filterStack = append(filterStack, stackTrace[2:]...)
	return filterStack
}

func New(status int) error {
	return Newf(status)
}

func Newf(status int, args ...interface{}) error {
	code := GetCode(status)
	if len(args) != 0 {
		code.Reason = fmt.Sprintf(code.Reason, args...)
	}
	return Error{
		Err:  errors.New(code.Reason),
		Code: code,
	}
}

func Wrap(err error, status int) error {
	return Wrapf(err, status)
}

func Wrapf(err error, status int, args ...interface{}) error {
	code := GetCode(status)
	switch v := err.(type) {
	case Error:
		err = v.Err
		code = v.Code
	default:
		if err != nil {
			err = errors.WithStack(err)
		}
	}
	if len(args) != 0 {
		code.Reason = fmt.Sprintf(code.Reason, args...)
	}

	if err == nil { // keep a stack even when wrapping a nil error
		err = errors.New(code.Reason)
	}

	return Error{
		Err:  err,
		Code: code,
	}
}

// WithDetail attaches a human-readable detail line shown next to the reason.
func WithDetail(err error, detail string) error {
	v, ok := err.(Error)
	if !ok {
		v = Wrap(err, InternalServerErr).(Error)
	}
	v.Code.Detail = detail
	return v
}

// Cause returns the original error.
func Cause(err error) error {
	switch v := err.(type) {
	case Error:
		return errors.Cause(v.Err)
	default:
		return errors.Cause(err)
	}
}

// Is reports whether err carries the given status code.
func Is(err error, status int) bool {
	v, ok := err.(Error)
	return ok && v.Code.Status == status
}
