package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/quark-lang/quark/internal/ast"
	qerrors "github.com/quark-lang/quark/internal/errors"
)

func indent(b *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		b.WriteByte('\t')
	}
}

// line writes one indented line of code
func line(b *strings.Builder, depth int, format string, args ...interface{}) {
	indent(b, depth)
	fmt.Fprintf(b, format, args...)
	b.WriteByte('\n')
}

// emitStatement writes s at the given nesting depth and returns the
// headers it requires.
func (g *Generator) emitStatement(b *strings.Builder, s ast.Statement, depth int) (includeSet, error) {
	switch st := s.(type) {
	case *ast.FunctionDeclaration:
		if depth > 0 {
			return nil, qerrors.CodeGen("function %s must be declared at top level", st.Name)
		}
		return g.emitFunction(b, st, depth)
	case *ast.LetStatement:
		return g.emitLet(b, st, depth)
	case *ast.ReturnStatement:
		return g.emitReturn(b, st, depth)
	case *ast.ExpressionStatement:
		code, inc, err := g.emitExpression(st.Expression)
		if err != nil {
			return nil, err
		}
		line(b, depth, "%s;", code)
		return inc, nil
	case *ast.IfStatement:
		return g.emitIf(b, st, depth)
	case *ast.WhileStatement:
		return g.emitWhile(b, st, depth)
	case *ast.ForStatement:
		return g.emitFor(b, st, depth)
	case *ast.BlockStatement:
		line(b, depth, "{")
		inc, err := g.emitBody(b, st, depth+1)
		if err != nil {
			return nil, err
		}
		line(b, depth, "}")
		return inc, nil
	}
	return nil, qerrors.CodeGen("unhandled statement type %T", s)
}

// emitBody writes the statements of block in a new scope
func (g *Generator) emitBody(b *strings.Builder, block *ast.BlockStatement, depth int) (includeSet, error) {
	g.pushScope()
	defer g.popScope()

	includes := includeSet{}
	if block == nil {
		return includes, nil
	}
	for _, s := range block.Statements {
		inc, err := g.emitStatement(b, s, depth)
		if err != nil {
			return nil, err
		}
		includes.merge(inc)
	}
	return includes, nil
}

func (g *Generator) emitFunction(b *strings.Builder, fn *ast.FunctionDeclaration, depth int) (includeSet, error) {
	signature, err := g.functionSignature(fn)
	if err != nil {
		return nil, err
	}

	line(b, depth, "%s {", signature)

	g.pushScope()
	for _, p := range fn.Parameters {
		g.declare(p.Name, binding{typ: p.Type})
	}
	inc, err := g.emitBody(b, fn.Body, depth+1)
	g.popScope()
	if err != nil {
		return nil, err
	}

	line(b, depth, "}")
	return inc, nil
}

// functionSignature renders `ret name(T a, U b)`
func (g *Generator) functionSignature(fn *ast.FunctionDeclaration) (string, error) {
	ret, err := CType(fn.ReturnType)
	if err != nil {
		return "", qerrors.Wrapf(err, "function %s", fn.Name)
	}

	params := make([]string, len(fn.Parameters))
	for i, p := range fn.Parameters {
		ctype, err := CType(p.Type)
		if err != nil {
			return "", qerrors.Wrapf(err, "parameter %s of %s", p.Name, fn.Name)
		}
		params[i] = ctype + " " + p.Name
	}
	return fmt.Sprintf("%s %s(%s)", ret, fn.Name, strings.Join(params, ", ")), nil
}

func (g *Generator) emitLet(b *strings.Builder, s *ast.LetStatement, depth int) (includeSet, error) {
	if arr, ok := s.Value.(*ast.ArrayLiteral); ok {
		return g.emitArrayLet(b, s, arr, depth)
	}

	ctype := g.letFallback
	if s.Type != nil {
		var err error
		if ctype, err = CType(s.Type); err != nil {
			return nil, qerrors.Wrapf(err, "let %s", s.Name)
		}
	}

	value, inc, err := g.emitExpression(s.Value)
	if err != nil {
		return nil, err
	}
	line(b, depth, "%s %s = %s;", ctype, s.Name, value)
	g.declare(s.Name, binding{typ: s.Type})
	return inc, nil
}

// emitArrayLet renders `T name[] = {...};` so the array keeps its length
func (g *Generator) emitArrayLet(b *strings.Builder, s *ast.LetStatement, arr *ast.ArrayLiteral, depth int) (includeSet, error) {
	if len(arr.Elements) == 0 {
		return nil, qerrors.CodeGen("let %s: empty array literal", s.Name)
	}
	elemCType := g.letFallback
	elem := elementType(s.Type)
	switch {
	case elem != nil:
		var err error
		if elemCType, err = CType(elem); err != nil {
			return nil, qerrors.Wrapf(err, "let %s", s.Name)
		}
	case s.Type != nil:
		return nil, qerrors.CodeGen("let %s: cannot initialise %s with an array literal", s.Name, s.Type)
	}

	value, inc, err := g.emitExpression(arr)
	if err != nil {
		return nil, err
	}
	line(b, depth, "%s %s[] = %s;", elemCType, s.Name, value)
	g.declare(s.Name, binding{typ: ast.ArrayOf(elem), fixedArray: true})
	return inc, nil
}

func (g *Generator) emitReturn(b *strings.Builder, s *ast.ReturnStatement, depth int) (includeSet, error) {
	if s.Value == nil {
		line(b, depth, "return;")
		return nil, nil
	}
	value, inc, err := g.emitExpression(s.Value)
	if err != nil {
		return nil, err
	}
	line(b, depth, "return %s;", value)
	return inc, nil
}

func (g *Generator) emitIf(b *strings.Builder, s *ast.IfStatement, depth int) (includeSet, error) {
	cond, includes, err := g.emitExpression(s.Condition)
	if err != nil {
		return nil, err
	}

	line(b, depth, "if (%s) {", cond)
	inc, err := g.emitBody(b, s.Then, depth+1)
	if err != nil {
		return nil, err
	}
	includes.merge(inc)

	if s.Else != nil {
		line(b, depth, "} else {")
		inc, err := g.emitBody(b, s.Else, depth+1)
		if err != nil {
			return nil, err
		}
		includes.merge(inc)
	}
	line(b, depth, "}")
	return includes, nil
}

func (g *Generator) emitWhile(b *strings.Builder, s *ast.WhileStatement, depth int) (includeSet, error) {
	cond, includes, err := g.emitExpression(s.Condition)
	if err != nil {
		return nil, err
	}

	line(b, depth, "while (%s) {", cond)
	inc, err := g.emitBody(b, s.Body, depth+1)
	if err != nil {
		return nil, err
	}
	includes.merge(inc)
	line(b, depth, "}")
	return includes, nil
}

// emitFor lowers a for loop to a C index loop. The length must be known
// at the loop: a literal array, a local array declared from a literal, or
// range(n).
func (g *Generator) emitFor(b *strings.Builder, s *ast.ForStatement, depth int) (includeSet, error) {
	// the C loop variable is in scope before the iterable is read again
	if mentions(s.Iterable, s.Iterator) {
		return nil, qerrors.CodeGen("loop variable %s shadows a name used by its iterable", s.Iterator)
	}

	switch it := s.Iterable.(type) {
	case *ast.CallExpression:
		if it.Name == "range" {
			return g.emitRangeFor(b, s, it, depth)
		}

	case *ast.ArrayLiteral:
		if len(it.Elements) == 0 {
			return nil, qerrors.CodeGen("cannot iterate over an empty array literal")
		}
		elements, includes, err := g.emitExpression(it)
		if err != nil {
			return nil, err
		}
		elem := elementType(g.typeOf(it))
		elemCType, err := g.loopVarCType(elem)
		if err != nil {
			return nil, err
		}

		arr := g.tempName("arr")
		line(b, depth, "{")
		line(b, depth+1, "%s %s[] = %s;", elemCType, arr, elements)
		inc, err := g.emitIndexLoop(b, s, arr, elem, elemCType, strconv.Itoa(len(it.Elements)), depth+1)
		if err != nil {
			return nil, err
		}
		includes.merge(inc)
		line(b, depth, "}")
		return includes, nil

	case *ast.Identifier:
		bound, ok := g.lookup(it.Name)
		if ok && bound.fixedArray {
			elem := elementType(bound.typ)
			elemCType, err := g.loopVarCType(elem)
			if err != nil {
				return nil, err
			}
			length := fmt.Sprintf("(int)(sizeof(%s) / sizeof((%s)[0]))", it.Name, it.Name)
			return g.emitIndexLoop(b, s, it.Name, elem, elemCType, length, depth)
		}
	}
	return nil, qerrors.CodeGen("cannot iterate over %s: length unknown", s.Iterable)
}

// mentions reports whether name is referenced anywhere in e
func mentions(e ast.Expression, name string) bool {
	found := false
	ast.Inspect(e, func(n ast.Node) bool {
		if id, ok := n.(*ast.Identifier); ok && id.Name == name {
			found = true
		}
		return !found
	})
	return found
}

func (g *Generator) loopVarCType(elem ast.Type) (string, error) {
	if elem == nil {
		return g.letFallback, nil
	}
	return CType(elem)
}

// emitIndexLoop writes
//
//	for (int i = 0; i < length; i++) {
//		T it = arr[i];
//		body
//	}
func (g *Generator) emitIndexLoop(b *strings.Builder, s *ast.ForStatement, arr string, elem ast.Type, elemCType, length string, depth int) (includeSet, error) {
	idx := g.tempName("i")
	line(b, depth, "for (int %s = 0; %s < %s; %s++) {", idx, idx, length, idx)

	g.pushScope()
	defer g.popScope()
	line(b, depth+1, "%s %s = %s[%s];", elemCType, s.Iterator, arr, idx)
	g.declare(s.Iterator, binding{typ: elem})

	inc, err := g.emitBody(b, s.Body, depth+1)
	if err != nil {
		return nil, err
	}
	line(b, depth, "}")
	return inc, nil
}

func (g *Generator) emitRangeFor(b *strings.Builder, s *ast.ForStatement, call *ast.CallExpression, depth int) (includeSet, error) {
	if len(call.Args) != 1 {
		return nil, qerrors.CodeGen("range expects 1 argument, got %d", len(call.Args))
	}
	bound, includes, err := g.emitOperand(call.Args[0])
	if err != nil {
		return nil, err
	}

	line(b, depth, "for (int %s = 0; %s < %s; %s++) {", s.Iterator, s.Iterator, bound, s.Iterator)

	g.pushScope()
	defer g.popScope()
	g.declare(s.Iterator, binding{typ: ast.IntType()})

	inc, err := g.emitBody(b, s.Body, depth+1)
	if err != nil {
		return nil, err
	}
	includes.merge(inc)
	line(b, depth, "}")
	return includes, nil
}
