package common

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies domain failures into the four categories the
// rotation and allocation engines can produce.
type ErrorKind int

const (
	KindNotFound ErrorKind = iota
	KindInvalidState
	KindInvariantViolation
	KindConflict
)

// BusinessError is a typed domain error with a stable HTTP-equivalent code.
type BusinessError struct {
	Kind    ErrorKind
	Code    int
	Message string
}

func (e *BusinessError) Error() string { return e.Message }

// HTTPStatus returns the status code category for the error kind.
func (e *BusinessError) HTTPStatus() int { return e.Code }

// NotFound builds a 404-category error for an absent member or record.
func NotFound(format string, args ...interface{}) *BusinessError {
	return &BusinessError{Kind: KindNotFound, Code: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidState builds a 400-category error for a violated precondition.
func InvalidState(format string, args ...interface{}) *BusinessError {
	return &BusinessError{Kind: KindInvalidState, Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// InvariantViolation builds a 400-category error for a post-condition that
// failed after a mutation was applied.
func InvariantViolation(format string, args ...interface{}) *BusinessError {
	return &BusinessError{Kind: KindInvariantViolation, Code: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

// Conflict builds a 409-category error for a storage-layer write collision.
func Conflict(format string, args ...interface{}) *BusinessError {
	return &BusinessError{Kind: KindConflict, Code: http.StatusConflict, Message: fmt.Sprintf(format, args...)}
}

// AsBusinessError unwraps err into a BusinessError if one is in the chain.
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
