package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/payroll-api/internal/core/department"
	"github.com/ogurasousui/payroll-api/internal/core/domainerr"
	"github.com/ogurasousui/payroll-api/internal/core/employee"
	"github.com/ogurasousui/payroll-api/internal/core/jobgrade"
	"github.com/ogurasousui/payroll-api/internal/platform/logger"
)

const (
	codeInvalidArgument  = "invalid_argument"
	codeValidationFailed = "validation_failed"
	codeNotFound         = "not_found"
	codeInvalidState     = "invalid_state"
	codeInternal         = "internal"
)

// ErrorResponse は API のエラーレスポンスです。
type ErrorResponse struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func isInvalidArgument(err error) bool {
	return errors.Is(err, employee.ErrInvalidID) ||
		errors.Is(err, employee.ErrInvalidPage) ||
		errors.Is(err, employee.ErrInvalidPageSize) ||
		errors.Is(err, employee.ErrInvalidCount) ||
		errors.Is(err, employee.ErrInvalidSearchTerm) ||
		errors.Is(err, employee.ErrInvalidEmployeeNumber) ||
		errors.Is(err, employee.ErrInvalidEmail) ||
		errors.Is(err, employee.ErrInvalidDepartmentID) ||
		errors.Is(err, employee.ErrInvalidJobGradeID) ||
		errors.Is(err, department.ErrInvalidID) ||
		errors.Is(err, jobgrade.ErrInvalidID)
}

// toErrorResponse はエラーを HTTP ステータスとレスポンスに変換します。
func toErrorResponse(err error) (int, ErrorResponse) {
	if nf, ok := domainerr.AsNotFound(err); ok {
		return http.StatusNotFound, ErrorResponse{Code: codeNotFound, Message: nf.Error()}
	}
	if is, ok := domainerr.AsInvalidState(err); ok {
		return http.StatusBadRequest, ErrorResponse{Code: codeInvalidState, Message: is.Error(), Errors: is.Errors}
	}
	if isInvalidArgument(err) {
		return http.StatusBadRequest, ErrorResponse{Code: codeInvalidArgument, Message: err.Error()}
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		messages := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			messages = append(messages, fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), fe.Tag()))
		}
		return http.StatusBadRequest, ErrorResponse{Code: codeValidationFailed, Message: "request validation failed", Errors: messages}
	}

	var be *echo.BindingError
	if errors.As(err, &be) {
		return be.Code, ErrorResponse{Code: codeInvalidArgument, Message: fmt.Sprint(be.Message)}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, ErrorResponse{Code: httpErrorCode(he.Code), Message: fmt.Sprint(he.Message)}
	}

	return http.StatusInternalServerError, ErrorResponse{Code: codeInternal, Message: "internal server error"}
}

func httpErrorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return codeInvalidArgument
	case http.StatusNotFound:
		return codeNotFound
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	default:
		if status >= http.StatusInternalServerError {
			return codeInternal
		}
		return "error"
	}
}

// NewErrorHandler は ErrorResponse 形式で応答する echo.HTTPErrorHandler を返します。
func NewErrorHandler(fallback zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := toErrorResponse(err)
		if status >= http.StatusInternalServerError {
			logger.FromContext(c.Request().Context(), fallback).Error().Err(err).
				Str("path", c.Path()).
				Msg("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.FromContext(c.Request().Context(), fallback).Warn().Err(writeErr).Msg("write error response")
		}
	}
}
