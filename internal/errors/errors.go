// internal/errors/errors.go
package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies an error for the top-level driver.
type Kind string

const (
	ConfigError        Kind = "ConfigError"
	IOError            Kind = "IOError"
	DecodeError        Kind = "DecodeError"
	FormatError        Kind = "FormatError"
	SerializationError Kind = "SerializationError"
)

// Error is a kinded error with an optional cause below it.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the cause for errors.Is / errors.As walking.
func (e *Error) Unwrap() error { return e.Err }

// Newf creates a new kinded error with no cause.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message on top of err. Returns nil when err is nil.
func Wrap(kind Kind, err error, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Wrapf is Wrap with formatting.
func Wrapf(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost kinded error in the chain,
// or the empty string when the chain carries none.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether the chain contains an error of the given kind.
func IsKind(err error, kind Kind) bool {
	for cur := err; cur != nil; cur = stderrors.Unwrap(cur) {
		if e, ok := cur.(*Error); ok && e.Kind == kind {
			return true
		}
	}
	return false
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// FprintChain writes the top-level message followed by one "caused by" line
// per cause. When DSK_BACKTRACE=1 and a cause carries a recorded stack,
// the deepest such stack is printed last.
func FprintChain(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "error: %s\n", ownMessage(err))
	var deepest stackTracer
	for cur := stderrors.Unwrap(err); cur != nil; cur = stderrors.Unwrap(cur) {
		if st, ok := cur.(stackTracer); ok {
			deepest = st
		}
		msg := ownMessage(cur)
		if msg == "" {
			continue
		}
		fmt.Fprintf(w, "caused by: %s\n", msg)
	}
	if deepest != nil && os.Getenv("DSK_BACKTRACE") == "1" {
		fmt.Fprintf(w, "backtrace:%+v\n", deepest.StackTrace())
	}
}

// ownMessage strips the concatenated cause suffix that wrapping errors
// (fmt %w, pkg/errors) bake into Error(), leaving only the frame's own text.
// Pure pass-through wrappers (pkg/errors WithStack) yield "".
func ownMessage(err error) string {
	msg := err.Error()
	next := stderrors.Unwrap(err)
	if next == nil {
		return msg
	}
	if msg == next.Error() {
		return ""
	}
	return strings.TrimSuffix(msg, ": "+next.Error())
}
