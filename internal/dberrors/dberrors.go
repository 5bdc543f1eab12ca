// Package dberrors implements a closed set of error kinds: the engine does
// not retry, and every kind collapses to a single human-readable text line
// at the protocol boundary.
package dberrors

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Kind tags the closed set of error categories the core can raise.
type Kind int

const (
	// IO covers any failure from the host filesystem layer.
	IO Kind = iota
	// Path means the database path could not be decomposed into (dir, stem, ext).
	Path
	// Serde means the schema could not be (de)serialised.
	Serde
	// Schema means a table is unknown, or the schema/data-file pairing or
	// column count does not match.
	Schema
	// Meta wraps another error that occurred while reporting an error.
	Meta
	// StringForm is the erased form used once an error has crossed the wire
	// and its structured kind can no longer be reconstructed.
	StringForm
)

func (k Kind) String() string {
	switch k {
	case IO:
		return "IO"
	case Path:
		return "Path"
	case Serde:
		return "Serde"
	case Schema:
		return "Schema"
	case Meta:
		return "Meta"
	case StringForm:
		return "StringForm"
	default:
		return "Unknown"
	}
}

// Error is the core's error value. Inner is only populated for Kind == Meta,
// and must never form a cycle.
type Error struct {
	Kind    Kind
	Message string
	Inner   *Error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Kind == Meta && e.Inner != nil {
		return e.Inner.Error()
	}
	return e.Message
}

// Unwrap exposes the wrapped error for Meta so errors.Is/As still work
// against the inner cause.
func (e *Error) Unwrap() error {
	if e.Kind != Meta || e.Inner == nil {
		return nil
	}
	return e.Inner
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a Meta error recording that reporting cause itself failed.
func Wrap(cause *Error, format string, args ...any) *Error {
	return &Error{Kind: Meta, Message: fmt.Sprintf(format, args...), Inner: cause}
}

func IOErrorf(format string, args ...any) *Error     { return New(IO, format, args...) }
func PathErrorf(format string, args ...any) *Error    { return New(Path, format, args...) }
func SerdeErrorf(format string, args ...any) *Error   { return New(Serde, format, args...) }
func SchemaErrorf(format string, args ...any) *Error  { return New(Schema, format, args...) }

// MarshalJSON serialises any Error kind down to a single text token: once
// an error crosses the wire, only its message survives.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Error())
}

// UnmarshalJSON always reconstructs a StringForm, since the original kind
// cannot be recovered once the error has crossed the wire as plain text.
func (e *Error) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	e.Kind = StringForm
	e.Message = s
	e.Inner = nil
	return nil
}
