// Package responses renders handler results and errors as JSON.
package responses

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"promptforge/internal/domain/generation"
	"promptforge/internal/infrastructure/logger"
	"promptforge/internal/infrastructure/observability"
	"promptforge/internal/utils/platformerrors"
)

const requestIDKey = "X-Request-Id"

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code            string `json:"code"`
	Error           string `json:"error"`
	ErrorInstanceID string `json:"error_instance_id,omitempty"`
	RequestID       string `json:"request_id,omitempty"`
	TraceID         string `json:"trace_id,omitempty"`
}

// ListResponse wraps a page of items with cursor metadata.
type ListResponse[T any] struct {
	Object  string `json:"object"`
	Data    []T    `json:"data"`
	FirstID string `json:"first_id,omitempty"`
	LastID  string `json:"last_id,omitempty"`
	HasMore bool   `json:"has_more"`
	Total   int64  `json:"total"`
}

// StatusFor maps a platform error type onto an HTTP status.
func StatusFor(errType platformerrors.ErrorType) int {
	switch errType {
	case platformerrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case platformerrors.ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case platformerrors.ErrorTypeForbidden:
		return http.StatusForbidden
	case platformerrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case platformerrors.ErrorTypeConflict:
		return http.StatusConflict
	case platformerrors.ErrorTypeUnprocessable:
		return http.StatusUnprocessableEntity
	case platformerrors.ErrorTypeTooManyRecords:
		return http.StatusRequestEntityTooLarge
	case platformerrors.ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	case platformerrors.ErrorTypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// HandleError aborts with the status derived from err. Internal errors keep
// their cause out of the body and use fallbackMessage instead.
func HandleError(c *gin.Context, err error, fallbackMessage string) {
	var pe *platformerrors.PlatformError
	if !errors.As(err, &pe) {
		pe = platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler, platformerrors.ErrorTypeInternal, fallbackMessage, err, "")
	}
	status := StatusFor(pe.Type)

	message := pe.Message
	if status == http.StatusInternalServerError || message == "" {
		message = fallbackMessage
	}
	traceID := observability.TraceID(c.Request.Context())
	code := string(pe.Type)
	if kind, ok := generation.KindOf(err); ok {
		code = string(kind)
	}

	if status >= http.StatusInternalServerError {
		log := logger.GetLogger()
		log.Error().
			Err(err).
			Str("error_code", pe.UUID).
			Str("request_id", requestID(c, pe)).
			Str("trace_id", traceID).
			Msg(fallbackMessage)
	}

	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:            code,
		Error:           message,
		ErrorInstanceID: pe.UUID,
		RequestID:       requestID(c, pe),
		TraceID:         traceID,
	})
}

// HandleNewError aborts with a fresh handler layer error.
func HandleNewError(c *gin.Context, errType platformerrors.ErrorType, message string, uuid string) {
	HandleError(c, platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler, errType, message, nil, uuid), message)
}

// HandleErrorWithStatus aborts with an explicit status, for errors raised
// before a handler runs.
func HandleErrorWithStatus(c *gin.Context, status int, err error, message string) {
	resp := ErrorResponse{
		Code:      http.StatusText(status),
		Error:     message,
		RequestID: c.GetString(requestIDKey),
	}
	if err != nil {
		c.Error(err) //nolint:errcheck
	}
	c.AbortWithStatusJSON(status, resp)
}

func requestID(c *gin.Context, pe *platformerrors.PlatformError) string {
	if id := c.GetString(requestIDKey); id != "" {
		return id
	}
	return pe.RequestID
}
