package exchange

import (
	"errors"
	"fmt"

	"github.com/desertthunder/tokenrelay/internal/services"
)

// Kind classifies why an exchange failed.
type Kind string

const (
	KindInvalidRequest   Kind = "invalid_request"
	KindUpstreamRejected Kind = "upstream_rejected"
	KindUpstreamProtocol Kind = "upstream_protocol_error"
	KindInternal         Kind = "internal_error"
)

// Error is a classified exchange failure.
type Error struct {
	Kind         Kind
	Message      string
	ProviderCode int // set for KindUpstreamRejected
	Err          error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the [Kind] of err. Unclassified errors are [KindInternal]; nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var xerr *Error
	if errors.As(err, &xerr) {
		return xerr.Kind
	}
	return KindInternal
}

// classify wraps a provider call failure. Structured rejections keep the provider's message and code.
func classify(err error, step string) *Error {
	var perr *services.ProviderError
	if errors.As(err, &perr) {
		return &Error{
			Kind:         KindUpstreamRejected,
			Message:      perr.Message,
			ProviderCode: perr.Code,
			Err:          err,
		}
	}
	return &Error{
		Kind:    KindInternal,
		Message: step + " failed",
		Err:     err,
	}
}
