package codegen

import (
	"strings"

	"github.com/quark-lang/quark/internal/ast"
	qerrors "github.com/quark-lang/quark/internal/errors"
)

// emitExpression renders e as C. The returned set is never nil.
func (g *Generator) emitExpression(e ast.Expression) (string, includeSet, error) {
	switch ex := e.(type) {
	case *ast.NumberLiteral:
		return ast.FormatNumber(ex.Value), includeSet{}, nil

	case *ast.StringLiteral:
		return quoteC(ex.Value), includeSet{}, nil

	case *ast.BooleanLiteral:
		if ex.Value {
			return "1", includeSet{}, nil
		}
		return "0", includeSet{}, nil

	case *ast.Identifier:
		return ex.Name, includeSet{}, nil

	case *ast.BinaryExpression:
		return g.emitBinary(ex)

	case *ast.UnaryExpression:
		operand, inc, err := g.emitExpression(ex.Operand)
		if err != nil {
			return "", nil, err
		}
		return ex.Operator + "(" + operand + ")", inc, nil

	case *ast.CallExpression:
		if b, ok := GetBuiltinFunction(ex.Name); ok {
			return b.lower(g, ex)
		}
		args, inc, err := g.emitList(ex.Args)
		if err != nil {
			return "", nil, err
		}
		return ex.Name + "(" + args + ")", inc, nil

	case *ast.ArrayLiteral:
		elems, inc, err := g.emitList(ex.Elements)
		if err != nil {
			return "", nil, err
		}
		return "{" + elems + "}", inc, nil

	case *ast.IndexExpression:
		arr, includes, err := g.emitOperand(ex.Array)
		if err != nil {
			return "", nil, err
		}
		index, inc, err := g.emitExpression(ex.Index)
		if err != nil {
			return "", nil, err
		}
		includes.merge(inc)
		return arr + "[" + index + "]", includes, nil

	case *ast.TernaryExpression:
		parts := make([]string, 3)
		includes := includeSet{}
		for i, sub := range []ast.Expression{ex.Condition, ex.Then, ex.Else} {
			code, inc, err := g.emitExpression(sub)
			if err != nil {
				return "", nil, err
			}
			parts[i] = code
			includes.merge(inc)
		}
		return "(" + parts[0] + ") ? (" + parts[1] + ") : (" + parts[2] + ")", includes, nil

	case nil:
		return "", nil, qerrors.CodeGen("missing expression")
	}
	return "", nil, qerrors.CodeGen("unhandled expression type %T", e)
}

// emitBinary keeps the grouping of the tree: nested binary and ternary
// operands are parenthesised. The value side of an assignment is not.
func (g *Generator) emitBinary(e *ast.BinaryExpression) (string, includeSet, error) {
	left, includes, err := g.emitOperand(e.Left)
	if err != nil {
		return "", nil, err
	}

	var right string
	var inc includeSet
	if e.Operator == "=" {
		right, inc, err = g.emitExpression(e.Right)
	} else {
		right, inc, err = g.emitOperand(e.Right)
	}
	if err != nil {
		return "", nil, err
	}
	includes.merge(inc)

	return left + " " + e.Operator + " " + right, includes, nil
}

// emitOperand renders e for use inside a larger expression
func (g *Generator) emitOperand(e ast.Expression) (string, includeSet, error) {
	code, inc, err := g.emitExpression(e)
	if err != nil {
		return "", nil, err
	}
	switch e.(type) {
	case *ast.BinaryExpression, *ast.TernaryExpression:
		code = "(" + code + ")"
	}
	return code, inc, nil
}

// emitList renders comma separated expressions
func (g *Generator) emitList(exprs []ast.Expression) (string, includeSet, error) {
	parts := make([]string, len(exprs))
	includes := includeSet{}
	for i, e := range exprs {
		code, inc, err := g.emitExpression(e)
		if err != nil {
			return "", nil, err
		}
		parts[i] = code
		includes.merge(inc)
	}
	return strings.Join(parts, ", "), includes, nil
}

// typeOf makes a best effort guess at the type of e from literals,
// declared bindings and function signatures. nil means unknown.
func (g *Generator) typeOf(e ast.Expression) ast.Type {
	switch ex := e.(type) {
	case *ast.NumberLiteral:
		if ex.IsIntegral() {
			return ast.IntType()
		}
		return ast.FloatType()
	case *ast.StringLiteral:
		return ast.StringType()
	case *ast.BooleanLiteral:
		return ast.BoolType()
	case *ast.Identifier:
		if b, ok := g.lookup(ex.Name); ok {
			return usableType(b.typ)
		}
	case *ast.BinaryExpression:
		if ex.Operator == "=" {
			return g.typeOf(ex.Left)
		}
		left, right := g.typeOf(ex.Left), g.typeOf(ex.Right)
		if ast.IsKind(left, ast.Float) || ast.IsKind(right, ast.Float) {
			return ast.FloatType()
		}
		if left != nil && right != nil {
			return ast.IntType()
		}
	case *ast.UnaryExpression:
		return g.typeOf(ex.Operand)
	case *ast.CallExpression:
		if b, ok := GetBuiltinFunction(ex.Name); ok {
			return b.ReturnType
		}
		return usableType(g.functions[ex.Name])
	case *ast.ArrayLiteral:
		if len(ex.Elements) > 0 {
			return ast.ArrayOf(g.typeOf(ex.Elements[0]))
		}
	case *ast.IndexExpression:
		return usableType(elementType(g.typeOf(ex.Array)))
	case *ast.TernaryExpression:
		return g.typeOf(ex.Then)
	}
	return nil
}

// quoteC renders s as a C string literal. Source strings carry no escape
// sequences, so every backslash is literal.
func quoteC(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
