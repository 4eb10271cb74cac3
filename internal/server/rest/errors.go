package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func errorResponse(err error) (int, ErrorResponse) {
	var he *echo.HTTPError

	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"}
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, ErrorResponse{Error: err.Error(), Code: "UNAUTHORIZED"}
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "NOT_FOUND"}
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "CONFLICT"}
	case errors.Is(err, common.ErrorDependency):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "dependency unavailable", Code: "DEPENDENCY_UNAVAILABLE"}
	case errors.As(err, &he):
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		}
		return he.Code, ErrorResponse{Error: msg, Code: statusCode(he.Code)}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal error", Code: "INTERNAL_ERROR"}
	}
}

// statusCode turns 413 into "REQUEST_ENTITY_TOO_LARGE".
func statusCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "HTTP_ERROR"
	}
	return strings.ToUpper(strings.NewReplacer(" ", "_", "-", "_").Replace(text))
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed", "uri", c.Request().RequestURI, "error", err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		s.logger.Error(c.Request().Context(), "error response failed", "error", err)
	}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrorValidation, fmt.Sprintf(format, args...))
}
