package review

import (
	"errors"
	"fmt"

	"github.com/chessreview/review/internal/engine"
)

// Kind enumerates the driver-facing error taxonomy, matching the engine
// package's Kind values plus CancelledByClient, which has no engine
// counterpart. The driver reports a malformed FEN as InvalidInput.
type Kind int

const (
	InvalidInput Kind = iota
	EngineTimeout
	EngineUnavailable
	EngineInvalidOutput
	PoolExhausted
	PoolDisposed
	CancelledByClient
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case EngineTimeout:
		return "EngineTimeout"
	case EngineUnavailable:
		return "EngineUnavailable"
	case EngineInvalidOutput:
		return "EngineInvalidOutput"
	case PoolExhausted:
		return "PoolExhausted"
	case PoolDisposed:
		return "PoolDisposed"
	case CancelledByClient:
		return "CancelledByClient"
	default:
		return "Unknown"
	}
}

// Error is the error type Review returns.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// fromEngineError wraps an *engine.Error as a driver-level *Error,
// carrying its Kind across the package boundary.
func fromEngineError(err error) *Error {
	var ee *engine.Error
	if errors.As(err, &ee) {
		var kind Kind
		switch ee.Kind {
		case engine.AnalysisTimeout:
			kind = EngineTimeout
		case engine.WorkerUnavailable:
			kind = EngineUnavailable
		case engine.InvalidOutput:
			kind = EngineInvalidOutput
		case engine.PoolExhausted:
			kind = PoolExhausted
		case engine.PoolDisposed:
			kind = PoolDisposed
		default:
			kind = EngineUnavailable
		}
		return newError(kind, ee.Message, ee)
	}
	return newError(EngineUnavailable, "engine analysis failed", err)
}
