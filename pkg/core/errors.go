package core

import (
	"github.com/pkg/errors"
)

// Kind names an error category (not a Go type): callers
// branch on Kind, never on the concrete error's type.
type Kind int

const (
	KindNone Kind = iota
	KindConfigInvalid
	KindSceneBuildFailed
	KindNumericalFailure
	KindPhotonMapEmpty
	KindResourceExhausted
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindConfigInvalid:
		return "ConfigInvalid"
	case KindSceneBuildFailed:
		return "SceneBuildFailed"
	case KindNumericalFailure:
		return "NumericalFailure"
	case KindPhotonMapEmpty:
		return "PhotonMapEmpty"
	case KindResourceExhausted:
		return "ResourceExhausted"
	case KindCancelled:
		return "Cancelled"
	default:
		return "None"
	}
}

// kindError pairs a Kind with a wrapped cause. Propagation is always by
// return value: nothing in this core panics or uses
// exceptional control flow for these kinds.
type kindError struct {
	kind  Kind
	cause error
}

func (e *kindError) Error() string {
	if e.cause == nil {
		return e.kind.String()
	}
	return e.kind.String() + ": " + e.cause.Error()
}

func (e *kindError) Unwrap() error { return e.cause }

// NewError wraps cause (which may be nil) with a Kind. A non-nil cause
// gets context attached with github.com/pkg/errors' WithMessage, which
// records no stack trace; with no cause, a non-empty context becomes a
// new pkg/errors error, which does record one.
func NewError(kind Kind, cause error, context string) error {
	var wrapped error
	if cause != nil {
		wrapped = errors.WithMessage(cause, context)
	} else if context != "" {
		wrapped = errors.New(context)
	}
	return &kindError{kind: kind, cause: wrapped}
}

// ErrorKind extracts the Kind from an error built with NewError, or
// KindNone if err doesn't carry one.
func ErrorKind(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindNone
}

// IsCancelled reports whether err represents a cancelled render.
func IsCancelled(err error) bool { return ErrorKind(err) == KindCancelled }
