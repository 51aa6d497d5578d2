package constants

import (
	"errors"
	"net/http"
)

// CodedError carries the HTTP status the api error handler should answer with.
type CodedError struct {
	code int
	msg  string
}

func NewCodedError(code int, msg string) *CodedError {
	return &CodedError{code: code, msg: msg}
}

func (e *CodedError) Error() string { return e.msg }
func (e *CodedError) Code() int     { return e.code }

var (
	ErrDBNotFound   = NewCodedError(http.StatusNotFound, "not found")
	ErrUnauthorized = NewCodedError(http.StatusUnauthorized, "unauthorized")
	ErrBadRequest   = NewCodedError(http.StatusBadRequest, "bad request")
)

// Pipeline error taxonomy. Row-scoped problems are counted and reported, these
// sentinels mark the run-scoped failures that terminate a pipeline run.
var (
	ErrRawInputMissing    = errors.New("raw input missing or unreadable")
	ErrQualityGateBlocked = errors.New("quality gate blocked the load")
	ErrStoreFailure       = errors.New("store failure")
)
