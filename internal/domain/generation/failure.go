package generation

import (
	"context"
	"errors"
	"fmt"

	"promptforge/internal/utils/platformerrors"
)

// Kind classifies why a generation request failed. The set is closed.
type Kind string

const (
	KindMalformedSchema         Kind = "malformed_schema"
	KindEmptyConversation       Kind = "empty_conversation"
	KindFileReadError           Kind = "file_read_error"
	KindUpstreamUnavailable     Kind = "upstream_unavailable"
	KindUpstreamError           Kind = "upstream_error"
	KindInvalidUpstreamResponse Kind = "invalid_upstream_response"
	KindMalformedModelOutput    Kind = "malformed_model_output"
)

// Failure is the cause attached to every error produced by the pipeline.
type Failure struct {
	Kind       Kind
	Message    string
	StatusCode int
	Timeout    bool
	Err        error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Upstream reports whether the provider itself could not be reached or refused
// the call, as opposed to answering outside the expected contract.
func (f *Failure) Upstream() bool {
	return f.Kind == KindUpstreamUnavailable || f.Kind == KindUpstreamError
}

// KindOf extracts the failure kind from anywhere in err's chain.
func KindOf(err error) (Kind, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind, true
	}
	return "", false
}

// FailureOf returns the Failure in err's chain, if any.
func FailureOf(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// ErrorType maps a failure onto the platform error taxonomy.
func (f *Failure) ErrorType() platformerrors.ErrorType {
	switch f.Kind {
	case KindMalformedSchema, KindEmptyConversation:
		return platformerrors.ErrorTypeUnprocessable
	case KindFileReadError:
		return platformerrors.ErrorTypeValidation
	case KindUpstreamUnavailable:
		if f.Timeout {
			return platformerrors.ErrorTypeTimeout
		}
		return platformerrors.ErrorTypeExternal
	default:
		return platformerrors.ErrorTypeExternal
	}
}

// NewFailure wraps a Failure into a domain layer PlatformError.
func NewFailure(ctx context.Context, failure *Failure, uuid string) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, failure.ErrorType(), failure.Message, failure, uuid)
}

func fail(ctx context.Context, kind Kind, message string, err error, uuid string) error {
	return NewFailure(ctx, &Failure{Kind: kind, Message: message, Err: err}, uuid)
}
