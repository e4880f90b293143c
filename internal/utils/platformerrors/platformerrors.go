// Package platformerrors carries layered, typed errors from repositories up to
// the HTTP responses.
package platformerrors

import (
	"context"
	"errors"
	"fmt"
)

type Layer string

const (
	LayerDomain         Layer = "domain"
	LayerRepository     Layer = "repository"
	LayerHandler        Layer = "handler"
	LayerInfrastructure Layer = "infrastructure"
)

type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeDatabaseError  ErrorType = "database"
	ErrorTypeInternal       ErrorType = "internal"
	ErrorTypeUnauthorized   ErrorType = "unauthorized"
	ErrorTypeForbidden      ErrorType = "forbidden"
	ErrorTypeConflict       ErrorType = "conflict"
	ErrorTypeExternal       ErrorType = "external"
	ErrorTypeTimeout        ErrorType = "timeout"
	ErrorTypeTooManyRecords ErrorType = "too_many_records"
	ErrorTypeUnprocessable  ErrorType = "unprocessable"
)

type requestIDKey struct{}

// WithRequestID stores the request id so errors created further down the call
// chain can be correlated with the access log.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func requestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// PlatformError is the error shape shared by every layer of the service.
type PlatformError struct {
	Layer     Layer
	Type      ErrorType
	Message   string
	Err       error
	UUID      string
	RequestID string
}

func (e *PlatformError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Layer, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Layer, e.Message)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// NewError builds a PlatformError. uuid identifies the call site and may be empty.
func NewError(ctx context.Context, layer Layer, errType ErrorType, message string, err error, uuid string) *PlatformError {
	return &PlatformError{
		Layer:     layer,
		Type:      errType,
		Message:   message,
		Err:       err,
		UUID:      uuid,
		RequestID: requestIDFrom(ctx),
	}
}

// AsError re-wraps err for the given layer, keeping the original error type
// when err is already a PlatformError.
func AsError(ctx context.Context, layer Layer, err error, message string) *PlatformError {
	return AsErrorWithUUID(ctx, layer, err, message, "")
}

func AsErrorWithUUID(ctx context.Context, layer Layer, err error, message string, uuid string) *PlatformError {
	if err == nil {
		return nil
	}
	var pe *PlatformError
	if errors.As(err, &pe) {
		if uuid == "" {
			uuid = pe.UUID
		}
		return &PlatformError{
			Layer:     layer,
			Type:      pe.Type,
			Message:   message,
			Err:       err,
			UUID:      uuid,
			RequestID: firstNonEmpty(pe.RequestID, requestIDFrom(ctx)),
		}
	}
	return NewError(ctx, layer, ErrorTypeInternal, message, err, uuid)
}

// GetErrorType returns the type of the outermost PlatformError in the chain.
func GetErrorType(err error) (ErrorType, bool) {
	var pe *PlatformError
	if errors.As(err, &pe) {
		return pe.Type, true
	}
	return "", false
}

func IsErrorType(err error, errType ErrorType) bool {
	t, ok := GetErrorType(err)
	return ok && t == errType
}

func IsValidationError(err error) bool {
	return IsErrorType(err, ErrorTypeValidation)
}

func IsNotFoundError(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
