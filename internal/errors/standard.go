// Package errors provides the failure taxonomy shared by every quark stage.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Kind classifies a compile failure. The taxonomy is flat.
type Kind string

const (
	KindLexical Kind = "Lexical"
	KindSyntax  Kind = "Syntax"
	KindType    Kind = "Type"
	KindCodeGen Kind = "CodeGen"
)

// String returns the human-readable label used in messages
func (k Kind) String() string {
	if k == KindCodeGen {
		return "Code generation"
	}
	return string(k)
}

// CompileError is the failure value returned by the lexer, parser,
// checker and code generator.
type CompileError struct {
	Kind    Kind
	Message string
}

// Error implements the error interface
func (e *CompileError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// New creates a CompileError of the given kind
func New(kind Kind, format string, args ...interface{}) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Common error constructors
func Lexical(format string, args ...interface{}) *CompileError {
	return New(KindLexical, format, args...)
}

func Syntax(format string, args ...interface{}) *CompileError {
	return New(KindSyntax, format, args...)
}

func Type(format string, args ...interface{}) *CompileError {
	return New(KindType, format, args...)
}

func CodeGen(format string, args ...interface{}) *CompileError {
	return New(KindCodeGen, format, args...)
}

// KindOf reports the kind of the first CompileError found in err's chain.
func KindOf(err error) (Kind, bool) {
	var ce *CompileError
	if stderrors.As(err, &ce) {
		return ce.Kind, true
	}
	return "", false
}

// Is reports whether err carries a CompileError of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// List collects several failures from one stage, e.g. every type error the
// checker found. It is only ever returned non-empty.
type List []error

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, err := range l {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors:\n  %s", len(l), strings.Join(msgs, "\n  "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As
func (l List) Unwrap() []error { return l }

// Err returns nil for an empty list so callers can `return list.Err()`.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Wrapf prefixes err's message with context. A CompileError keeps its
// kind so the result still renders as "<Kind> error: context: message".
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	prefix := fmt.Sprintf(format, args...)
	var ce *CompileError
	if stderrors.As(err, &ce) {
		return &CompileError{Kind: ce.Kind, Message: prefix + ": " + ce.Message}
	}
	return fmt.Errorf("%s: %w", prefix, err)
}
