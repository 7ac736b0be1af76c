package codegen

import (
	"github.com/quark-lang/quark/internal/ast"
	qerrors "github.com/quark-lang/quark/internal/errors"
)

// CType maps a quark type to its C spelling. Arrays decay to a pointer to
// their element type; Unknown has no C form.
func CType(t ast.Type) (string, error) {
	switch tt := t.(type) {
	case *ast.BasicType:
		switch tt.Kind {
		case ast.Int, ast.Bool:
			return "int", nil
		case ast.Float:
			return "float", nil
		case ast.String:
			return "char*", nil
		case ast.Void:
			return "void", nil
		}
		return "", qerrors.CodeGen("unknown type")
	case *ast.ArrayType:
		elem, err := CType(tt.Element)
		if err != nil {
			return "", err
		}
		return elem + "*", nil
	case nil:
		return "", qerrors.CodeGen("missing type")
	}
	return "", qerrors.CodeGen("unsupported type %s", t)
}

// printfVerb picks the conversion for a value of type t. Anything that
// is not known to be a string or a float prints as an integer.
func printfVerb(t ast.Type) string {
	switch {
	case ast.IsKind(t, ast.String):
		return "%s"
	case ast.IsKind(t, ast.Float):
		return "%f"
	}
	return "%d"
}

// elementType returns the element of an array type, or nil
func elementType(t ast.Type) ast.Type {
	if at, ok := t.(*ast.ArrayType); ok {
		return at.Element
	}
	return nil
}

// usableType drops Unknown so callers fall back to the let default
func usableType(t ast.Type) ast.Type {
	if ast.IsKind(t, ast.Unknown) {
		return nil
	}
	return t
}
