package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidRequest marks requests rejected before any provider is called.
	ErrInvalidRequest = errors.New("invalid request")
	ErrMissingImage   = fmt.Errorf("%w: wrong number of images", ErrInvalidRequest)
	ErrMissingPrompt  = fmt.Errorf("%w: prompt is required", ErrInvalidRequest)
	ErrMissingHotspot = fmt.Errorf("%w: hotspot is required", ErrInvalidRequest)
)

// FailureKind classifies why a provider did not produce an image.
type FailureKind int

const (
	Blocked FailureKind = iota + 1
	AbnormalStop
	EmptyResponse
	Malformed
	TransportError
	AllProvidersExhausted
	DecodeFailure
)

func (k FailureKind) String() string {
	switch k {
	case Blocked:
		return "blocked"
	case AbnormalStop:
		return "abnormal_stop"
	case EmptyResponse:
		return "empty_response"
	case Malformed:
		return "malformed"
	case TransportError:
		return "transport_error"
	case AllProvidersExhausted:
		return "all_providers_exhausted"
	case DecodeFailure:
		return "decode_failure"
	default:
		return "unknown"
	}
}

// Failure is the typed error carried by a failed Result.
type Failure struct {
	Kind     FailureKind
	Message  string
	Provider string
	Cause    error

	// Primary and Secondary are set on AllProvidersExhausted failures.
	Primary   *Failure
	Secondary *Failure
}

// NewFailure builds a Failure attributed to provider.
func NewFailure(kind FailureKind, provider, message string, cause error) *Failure {
	return &Failure{Kind: kind, Provider: provider, Message: strings.TrimSpace(message), Cause: cause}
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	msg := f.Message
	if msg == "" && f.Cause != nil {
		msg = f.Cause.Error()
	}
	if msg == "" {
		msg = f.Kind.String()
	}
	if f.Provider == "" {
		return msg
	}
	return f.Provider + ": " + msg
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Cause
}

// Text is the human readable message without the provider prefix.
func (f *Failure) Text() string {
	if f == nil {
		return ""
	}
	if f.Message != "" {
		return f.Message
	}
	if f.Cause != nil {
		return f.Cause.Error()
	}
	return ""
}

// KindOf extracts the FailureKind from err, or zero when err carries none.
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}

// MessageOf returns the user facing text of err.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var f *Failure
	if errors.As(err, &f) {
		return f.Text()
	}
	return err.Error()
}
