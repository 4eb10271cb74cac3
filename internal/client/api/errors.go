package api

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// ErrUnavailable means the server could not be reached at all.
var ErrUnavailable = errors.New("server unavailable")

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Error is a non-2xx answer from the server. It unwraps to the matching
// common sentinel so callers can use errors.Is.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	switch e.Code {
	case "VALIDATION_ERROR":
		return common.ErrorValidation
	case "UNAUTHORIZED":
		return common.ErrorUnauthorized
	case "NOT_FOUND":
		return common.ErrorNotFound
	case "CONFLICT":
		return common.ErrorAlreadyExists
	case "DEPENDENCY_UNAVAILABLE":
		return common.ErrorDependency
	default:
		return common.ErrorInternal
	}
}
