package typechecker

import (
	"github.com/quark-lang/quark/internal/ast"
)

// builtin describes a function the generator lowers itself
type builtin struct {
	// check validates the argument types and returns the result type
	check func(c *Checker, args []ast.Type) ast.Type
}

var builtins = map[string]builtin{
	"print": {check: checkPrintArgs},
	"range": {check: checkRangeArgs},
}

func checkPrintArgs(c *Checker, args []ast.Type) ast.Type {
	for i, t := range args {
		if t != nil && !isScalar(t) {
			c.errorf("print argument %d: cannot print %s", i+1, t)
		}
	}
	return ast.VoidType()
}

func checkRangeArgs(c *Checker, args []ast.Type) ast.Type {
	if len(args) != 1 {
		c.errorf("range expects 1 argument, got %d", len(args))
	} else if args[0] != nil && !ast.IsKind(args[0], ast.Int) {
		c.errorf("range bound must be Int, got %s", args[0])
	}
	return ast.ArrayOf(ast.IntType())
}

// ====== expressions ======

// infer returns the type of expr. A nil result means an error has already
// been recorded for expr or one of its operands, and callers stay quiet
// to avoid cascading reports.
func (c *Checker) infer(expr ast.Expression) ast.Type {
	switch e := expr.(type) {
	case *ast.NumberLiteral:
		return c.inferNumber(e)
	case *ast.StringLiteral:
		return ast.StringType()
	case *ast.BooleanLiteral:
		return ast.BoolType()
	case *ast.Identifier:
		return c.inferVariable(e)
	case *ast.BinaryExpression:
		if e.Operator == "=" {
			return c.inferAssignment(e)
		}
		return c.inferBinary(e)
	case *ast.UnaryExpression:
		return c.inferUnary(e)
	case *ast.CallExpression:
		return c.inferCall(e)
	case *ast.ArrayLiteral:
		return c.inferArray(e)
	case *ast.IndexExpression:
		return c.inferIndex(e)
	case *ast.TernaryExpression:
		return c.inferTernary(e)
	case nil:
		c.errorf("missing expression")
		return nil
	}
	c.errorf("unsupported expression %T", expr)
	return nil
}

func (c *Checker) inferNumber(n *ast.NumberLiteral) ast.Type {
	if n.IsIntegral() {
		return ast.IntType()
	}
	return ast.FloatType()
}

func (c *Checker) inferVariable(id *ast.Identifier) ast.Type {
	t, ok := c.lookup(id.Name)
	if !ok {
		c.errorf("undefined: %s", id.Name)
		return nil
	}
	if ast.IsKind(t, ast.Unknown) {
		return nil
	}
	return t
}

func (c *Checker) inferAssignment(e *ast.BinaryExpression) ast.Type {
	switch e.Left.(type) {
	case *ast.Identifier, *ast.IndexExpression:
	default:
		c.errorf("cannot assign to %s", e.Left)
		c.infer(e.Right)
		return nil
	}

	target := c.infer(e.Left)
	value := c.infer(e.Right)
	if target == nil || value == nil {
		return target
	}
	if _, isArray := target.(*ast.ArrayType); isArray {
		c.errorf("cannot assign to array %s", e.Left)
		return nil
	}
	if !assignable(value, target) {
		c.errorf("cannot assign %s to %s of type %s", value, e.Left, target)
	}
	return target
}

func (c *Checker) inferBinary(e *ast.BinaryExpression) ast.Type {
	left := c.infer(e.Left)
	right := c.infer(e.Right)
	if left == nil || right == nil {
		return nil
	}
	if !isNumeric(left) || !isNumeric(right) {
		c.errorf("operator %s not defined on %s and %s", e.Operator, left, right)
		return nil
	}
	if ast.IsKind(left, ast.Float) || ast.IsKind(right, ast.Float) {
		return ast.FloatType()
	}
	return ast.IntType()
}

func (c *Checker) inferUnary(e *ast.UnaryExpression) ast.Type {
	t := c.infer(e.Operand)
	if t == nil {
		return nil
	}
	if !isNumeric(t) {
		c.errorf("operator %s not defined on %s", e.Operator, t)
		return nil
	}
	return t
}

func (c *Checker) inferCall(e *ast.CallExpression) ast.Type {
	args := make([]ast.Type, len(e.Args))
	for i, a := range e.Args {
		args[i] = c.infer(a)
	}

	if b, ok := builtins[e.Name]; ok {
		return b.check(c, args)
	}

	fn, ok := c.functions[e.Name]
	if !ok {
		c.errorf("undefined function %s", e.Name)
		return nil
	}
	if len(args) != len(fn.Parameters) {
		c.errorf("function %s expects %d arguments, got %d", e.Name, len(fn.Parameters), len(args))
		return fn.ReturnType
	}
	for i, p := range fn.Parameters {
		if args[i] != nil && !assignable(args[i], p.Type) {
			c.errorf("cannot use %s as %s in argument %s of %s", args[i], p.Type, p.Name, e.Name)
		}
	}
	return fn.ReturnType
}

func (c *Checker) inferArray(e *ast.ArrayLiteral) ast.Type {
	if len(e.Elements) == 0 {
		c.errorf("cannot infer element type of empty array literal")
		return nil
	}

	var elem ast.Type
	failed := false
	for i, el := range e.Elements {
		t := c.infer(el)
		if t == nil {
			failed = true
			continue
		}
		if _, nested := t.(*ast.ArrayType); nested {
			c.errorf("array element %d: nested arrays are not supported", i)
			failed = true
			continue
		}
		switch {
		case elem == nil:
			elem = t
		case ast.TypesEqual(elem, t):
		case isNumeric(elem) && isNumeric(t):
			elem = widen(elem, t)
		default:
			c.errorf("array element %d has type %s, expected %s", i, t, elem)
			failed = true
		}
	}
	if failed || elem == nil {
		return nil
	}
	return ast.ArrayOf(elem)
}

func (c *Checker) inferIndex(e *ast.IndexExpression) ast.Type {
	arr := c.infer(e.Array)
	idx := c.infer(e.Index)
	if idx != nil && !ast.IsKind(idx, ast.Int) {
		c.errorf("array index must be Int, got %s", idx)
	}
	if arr == nil {
		return nil
	}
	at, ok := arr.(*ast.ArrayType)
	if !ok {
		c.errorf("cannot index %s", arr)
		return nil
	}
	return at.Element
}

func (c *Checker) inferTernary(e *ast.TernaryExpression) ast.Type {
	c.checkCondition(e.Condition, "ternary")
	then := c.infer(e.Then)
	other := c.infer(e.Else)
	if then == nil || other == nil {
		return nil
	}
	switch {
	case ast.TypesEqual(then, other):
		return then
	case isNumeric(then) && isNumeric(other):
		return widen(then, other)
	}
	c.errorf("ternary branches have different types %s and %s", then, other)
	return nil
}

// ====== type relations ======

// assignable reports whether a value of type from may be stored in to.
// Int widens to Float and Bool converts to Int, as in C.
func assignable(from, to ast.Type) bool {
	if ast.TypesEqual(from, to) {
		return true
	}
	switch {
	case ast.IsKind(from, ast.Int) && ast.IsKind(to, ast.Float):
		return true
	case ast.IsKind(from, ast.Bool) && ast.IsKind(to, ast.Int):
		return true
	}
	return false
}

func isNumeric(t ast.Type) bool {
	return ast.IsKind(t, ast.Int) || ast.IsKind(t, ast.Float)
}

// isScalar reports whether t is a printable, storable basic type
func isScalar(t ast.Type) bool {
	b, ok := t.(*ast.BasicType)
	return ok && b.Kind != ast.Void && b.Kind != ast.Unknown
}

func widen(a, b ast.Type) ast.Type {
	if ast.IsKind(a, ast.Float) || ast.IsKind(b, ast.Float) {
		return ast.FloatType()
	}
	return ast.IntType()
}
