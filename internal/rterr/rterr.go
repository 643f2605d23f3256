// Package rterr defines the error kinds that propagate by unwinding the
// current compile or VM invocation, as described in spec.md section 7.
package rterr

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind enumerates the distinguished error kinds of spec section 7. Exit is
// a control-flow signal, not a failure, but it unwinds the same way and so
// shares the Kind enum and Error type.
type Kind string

const (
	OutOfMemory     Kind = "OutOfMemory"
	Overflow        Kind = "Overflow"
	IndexError      Kind = "IndexError"
	TypeMismatch    Kind = "TypeMismatch"
	OutOfRange      Kind = "OutOfRange"
	DivisionByZero  Kind = "DivisionByZero"
	DuplicateIdent  Kind = "DuplicateIdent"
	UnknownIdent    Kind = "UnknownIdent"
	AssertionFailed Kind = "AssertionFailed"
	ParseError      Kind = "ParseError"
	TokenError      Kind = "TokenError"
	SystemError     Kind = "SystemError"
	NotAnLValue     Kind = "NotAnLValue"
	JumpTooFar      Kind = "JumpTooFar"
	InvalidCast     Kind = "InvalidCast"
	Exit            Kind = "Exit"
)

// Location pins an error to a source position, mirroring the teacher's
// SourceLocation.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return ""
	}
	if l.Line == 0 {
		return l.File
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Error is the single error type used throughout the core runtime. Kind
// drives spec-level matching; Cause, when present, is the underlying Go
// error wrapped with github.com/pkg/errors so %+v / errors.Cause still
// recovers the original failure without the caller needing to know the
// wrapping scheme.
type Error struct {
	Kind     Kind
	Name     string // identifier for DuplicateIdent / UnknownIdent
	Message  string
	Loc      Location
	ExitCode int // set only for Kind == Exit
	Cause    error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	if e.Name != "" {
		sb.WriteString("(" + e.Name + ")")
	}
	if e.Message != "" {
		sb.WriteString(": " + e.Message)
	}
	if loc := e.Loc.String(); loc != "" {
		sb.WriteString(" at " + loc)
	}
	return sb.String()
}

// Unwrap lets errors.Is/As and pkg/errors.Cause see through to the wrapped
// cause.
func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches cause using pkg/errors so the resulting error carries a
// stack trace at the point of wrapping, matching spec.md's requirement that
// OutOfMemory/SystemError surface the underlying allocation/syscall failure.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: errors.Wrap(cause, message)}
}

func AtLocation(err *Error, loc Location) *Error {
	err.Loc = loc
	return err
}

func Ident(kind Kind, name string) *Error {
	return &Error{Kind: kind, Name: name}
}

// NewExit constructs the distinguished Exit control-flow signal carrying the
// program's result code.
func NewExit(code int) *Error {
	return &Error{Kind: Exit, ExitCode: code}
}

// Is reports whether err (or any error it wraps) is an *Error of the given
// kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
