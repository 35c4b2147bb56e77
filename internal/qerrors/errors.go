// Package qerrors provides the structured error taxonomy used across QFS.
//
// Every failure the Store, Indexer, or Searcher can produce is tagged with
// one of a small set of Kinds so callers can branch on "what kind of
// problem is this" without string-matching messages.
package qerrors

import "fmt"

// Kind is the tagged-sum error classification.
type Kind string

const (
	// NotFound indicates a document, content blob, or collection is missing.
	NotFound Kind = "NOT_FOUND"
	// InvalidQuery indicates a malformed docid, empty sanitized FTS query, or bad glob syntax.
	InvalidQuery Kind = "INVALID_QUERY"
	// NoEmbeddings indicates a vector/hybrid query was requested but no embeddings exist for the filter.
	NoEmbeddings Kind = "NO_EMBEDDINGS"
	// SchemaTooNew indicates the on-disk schema version exceeds the code's compiled version.
	SchemaTooNew Kind = "SCHEMA_TOO_NEW"
	// Database indicates an underlying storage failure.
	Database Kind = "DATABASE"
	// Io indicates a per-file read failure during indexing.
	Io Kind = "IO"
)

// Error is the structured error type for QFS.
type Error struct {
	// Kind is the tagged-sum classification used for caller dispatch.
	Kind Kind

	// Message is the human-readable error message.
	Message string

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is enables errors.Is(err, &Error{Kind: ...}) by comparing Kind only.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithDetail attaches a key-value detail and returns the error for chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind around an existing error.
// Returns nil if err is nil.
func Wrap(kind Kind, message string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Cause: err}
}

// NotFoundf builds a NotFound error with a formatted message.
func NotFoundf(format string, args ...any) *Error {
	return New(NotFound, fmt.Sprintf(format, args...))
}

// InvalidQueryf builds an InvalidQuery error with a formatted message.
func InvalidQueryf(format string, args ...any) *Error {
	return New(InvalidQuery, fmt.Sprintf(format, args...))
}

// Is reports whether err is a *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if as(err, &e) {
		return e.Kind == kind
	}
	return false
}

// as is a small local errors.As to avoid importing the stdlib errors
// package solely for this one call site used by Is.
func as(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// GetKind extracts the Kind from err, or empty string if err is not an *Error.
func GetKind(err error) Kind {
	var e *Error
	if as(err, &e) {
		return e.Kind
	}
	return ""
}
