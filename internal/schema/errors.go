package schema

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error wraps exactly one of them.
var (
	ErrUnexpectedDeclaration = errors.New("unexpected declaration")
	ErrMalformedSystem       = errors.New("malformed system")
	ErrMissingEventBinding   = fmt.Errorf("%w: missing event binding", ErrMalformedSystem)
	ErrUnresolvedIdentifier  = errors.New("unresolved identifier")
	ErrDuplicateDeclaration  = errors.New("duplicate declaration")
	ErrNameCollision         = errors.New("name collision")
	ErrUnknownCapability     = errors.New("unknown capability")
	ErrInvalidIdentifier     = errors.New("invalid identifier")
	ErrMalformedConstructor  = errors.New("malformed constructor")
)

// Error is a generation time error tied to one declaration.
type Error struct {
	Kind error
	Decl string // e.g. "system move_ships"
	Pos  Pos
	Msg  string
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Decl != "" {
		msg = e.Decl + ": " + msg
	}
	if e.Pos.IsValid() || e.Pos.File != "" {
		msg = e.Pos.String() + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, decl string, pos Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Decl: decl, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Errors flattens err, which may be wrapped or joined, into its *Error values.
func Errors(err error) []*Error {
	switch e := err.(type) {
	case nil:
		return nil
	case *Error:
		return []*Error{e}
	case interface{ Unwrap() []error }:
		var out []*Error
		for _, inner := range e.Unwrap() {
			out = append(out, Errors(inner)...)
		}
		return out
	case interface{ Unwrap() error }:
		return Errors(e.Unwrap())
	}
	return nil
}

// errorList collects errors in the order they are found.
type errorList []error

func (l *errorList) add(kind error, decl string, pos Pos, format string, args ...any) {
	*l = append(*l, newError(kind, decl, pos, format, args...))
}

func (l errorList) err() error {
	return errors.Join(l...)
}
