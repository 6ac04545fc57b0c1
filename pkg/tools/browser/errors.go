package browser

import (
	"errors"
	"fmt"
)

// Kind classifies a browser operation failure.
type Kind string

const (
	NavigationTimeout      Kind = "NavigationTimeout"
	NavigationFailure      Kind = "NavigationFailure"
	SelectorWaitTimeout    Kind = "SelectorWaitTimeout"
	ElementNotFound        Kind = "ElementNotFound"
	PostSubmitTimeout      Kind = "PostSubmitTimeout"
	ScriptEvaluationError  Kind = "ScriptEvaluationError"
	ScreenshotWriteFailure Kind = "ScreenshotWriteFailure"
	PollReadError          Kind = "PollReadError"
	SecurityViolation      Kind = "SecurityViolation"
	BrowserLaunchFailure   Kind = "BrowserLaunchFailure"
	InvalidArgument        Kind = "InvalidArgument"
)

// ErrTimeout is wrapped by driver errors caused by an expired wait.
var ErrTimeout = errors.New("timeout exceeded")

// Error is a classified failure of one step of a browser operation.
type Error struct {
	Kind     Kind
	Op       string
	Selector string
	Err      error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Op
	if e.Selector != "" {
		msg += fmt.Sprintf(" %q", e.Selector)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind, so errors.Is(err,
// &Error{Kind: ElementNotFound}) works regardless of op and selector.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

func newError(kind Kind, op, selector string, err error) *Error {
	return &Error{Kind: kind, Op: op, Selector: selector, Err: err}
}

// classify wraps a driver error as timeoutKind when it was a timeout and
// otherKind otherwise.
func classify(err error, timeoutKind, otherKind Kind, op, selector string) *Error {
	if errors.Is(err, ErrTimeout) {
		return newError(timeoutKind, op, selector, err)
	}
	return newError(otherKind, op, selector, err)
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
