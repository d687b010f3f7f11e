// Package failure defines the fatal error vocabulary of the criteria pipeline.
//
// Every detected problem is surfaced to the invoker as an *Error carrying a
// Kind plus the file, id, field or key that triggered it. Kind itself
// implements error, so callers can match on it directly:
//
//	if errors.Is(err, failure.UnknownCategory) { ... }
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies the class of a pipeline failure.
type Kind string

const (
	// Taxonomy loading.
	ConfigMissing   Kind = "ConfigMissing"
	ConfigMalformed Kind = "ConfigMalformed"

	// Record store.
	StoreMissing     Kind = "StoreMissing"
	RecordUnreadable Kind = "RecordUnreadable"

	// Validation, in precedence order.
	InvalidID       Kind = "InvalidId"
	MissingText     Kind = "MissingText"
	MalformedField  Kind = "MalformedField"
	UnknownCategory Kind = "UnknownCategory"
	DuplicateID     Kind = "DuplicateId"

	// Bootstrap import.
	SourceMissing   Kind = "SourceMissing"
	SourceMalformed Kind = "SourceMalformed"

	// Generated artifact was modified after the last build.
	ArtifactEdited Kind = "ArtifactEdited"
)

func (k Kind) Error() string {
	return string(k)
}

// Error is a pipeline failure tied to a concrete input.
type Error struct {
	Kind    Kind
	Path    string // file the failure was detected in, if any
	ID      string // criterion id, if known
	Field   string // offending field, if any
	Message string
	Err     error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Kind))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Path != "" {
		sb.WriteString(" (")
		sb.WriteString(e.Path)
		sb.WriteString(")")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New creates an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error of the given kind that wraps cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// WithPath sets the file the failure was detected in.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithID sets the criterion id the failure refers to.
func (e *Error) WithID(id string) *Error {
	e.ID = id
	return e
}

// WithField sets the offending field name.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when err
// is not a pipeline failure.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return ""
}
