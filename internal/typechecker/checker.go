// Package typechecker resolves the types of unannotated let bindings and
// reports type failures.
//
// The checker never modifies its input: Check returns a new statement list
// in which every LetStatement carries a concrete type.
package typechecker

import (
	"github.com/quark-lang/quark/internal/ast"
	qerrors "github.com/quark-lang/quark/internal/errors"
)

// Checker checks one program. A Checker may be reused; every call to
// Check starts from a clean state.
type Checker struct {
	functions map[string]*ast.FunctionDeclaration
	scopes    []map[string]ast.Type
	current   *ast.FunctionDeclaration
	errs      qerrors.List
}

// New creates a checker
func New() *Checker {
	return &Checker{}
}

// Check type-checks stmts. On success it returns the annotated program; on
// failure it returns an errors.List holding every Type failure found.
func (c *Checker) Check(stmts []ast.Statement) ([]ast.Statement, error) {
	c.functions = make(map[string]*ast.FunctionDeclaration)
	c.scopes = nil
	c.current = nil
	c.errs = nil

	c.collectFunctions(stmts)

	c.pushScope()
	out := c.checkStatements(stmts)
	c.popScope()

	if err := c.errs.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// collectFunctions registers every function signature up front so calls
// may precede declarations.
func (c *Checker) collectFunctions(stmts []ast.Statement) {
	ast.InspectAll(stmts, func(n ast.Node) bool {
		fn, ok := n.(*ast.FunctionDeclaration)
		if !ok {
			return true
		}
		if _, builtin := builtins[fn.Name]; builtin {
			c.errorf("function %s shadows a builtin", fn.Name)
		} else if _, dup := c.functions[fn.Name]; dup {
			c.errorf("function %s redeclared", fn.Name)
		} else {
			c.functions[fn.Name] = fn
		}
		return true
	})
}

func (c *Checker) errorf(format string, args ...interface{}) {
	c.errs = append(c.errs, qerrors.Type(format, args...))
}

// ====== scopes ======

func (c *Checker) pushScope() { c.scopes = append(c.scopes, make(map[string]ast.Type)) }
func (c *Checker) popScope()  { c.scopes = c.scopes[:len(c.scopes)-1] }

func (c *Checker) define(name string, t ast.Type) {
	c.scopes[len(c.scopes)-1][name] = t
}

func (c *Checker) lookup(name string) (ast.Type, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i][name]; ok {
			return t, true
		}
	}
	return nil, false
}

// ====== statements ======

func (c *Checker) checkStatements(stmts []ast.Statement) []ast.Statement {
	out := make([]ast.Statement, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, c.checkStatement(s))
	}
	return out
}

func (c *Checker) checkBlock(b *ast.BlockStatement) *ast.BlockStatement {
	if b == nil {
		return nil
	}
	c.pushScope()
	defer c.popScope()
	return &ast.BlockStatement{Statements: c.checkStatements(b.Statements)}
}

func (c *Checker) checkStatement(stmt ast.Statement) ast.Statement {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		return c.checkLet(s)

	case *ast.ReturnStatement:
		c.checkReturn(s)
		return s

	case *ast.ExpressionStatement:
		c.infer(s.Expression)
		return s

	case *ast.IfStatement:
		c.checkCondition(s.Condition, "if")
		return &ast.IfStatement{Condition: s.Condition, Then: c.checkBlock(s.Then), Else: c.checkBlock(s.Else)}

	case *ast.WhileStatement:
		c.checkCondition(s.Condition, "while")
		return &ast.WhileStatement{Condition: s.Condition, Body: c.checkBlock(s.Body)}

	case *ast.ForStatement:
		return c.checkFor(s)

	case *ast.FunctionDeclaration:
		return c.checkFunction(s)

	case *ast.BlockStatement:
		return c.checkBlock(s)
	}

	c.errorf("unsupported statement %T", stmt)
	return stmt
}

func (c *Checker) checkLet(s *ast.LetStatement) ast.Statement {
	valueType := c.infer(s.Value)

	declared := s.Type
	if declared != nil && ast.IsKind(declared, ast.Unknown) {
		declared = nil
	}

	resolved := declared
	switch {
	case declared == nil && valueType == nil:
		// the initializer already failed; later uses of s.Name stay quiet
		resolved = ast.UnknownType()
	case declared == nil:
		resolved = valueType
	case valueType != nil && !assignable(valueType, declared):
		c.errorf("cannot assign %s to %s of type %s", valueType, s.Name, declared)
	}

	if ast.IsKind(resolved, ast.Void) {
		c.errorf("%s cannot have type Void", s.Name)
		resolved = ast.UnknownType()
	}

	c.define(s.Name, resolved)
	return &ast.LetStatement{Name: s.Name, Type: resolved, Value: s.Value}
}

func (c *Checker) checkReturn(s *ast.ReturnStatement) {
	if c.current == nil {
		if s.Value != nil {
			c.infer(s.Value)
		}
		return
	}

	want := c.current.ReturnType
	if s.Value == nil {
		if !ast.IsKind(want, ast.Void) {
			c.errorf("missing return value in function %s returning %s", c.current.Name, want)
		}
		return
	}

	got := c.infer(s.Value)
	if ast.IsKind(want, ast.Void) {
		c.errorf("function %s returns Void but a value is returned", c.current.Name)
		return
	}
	if got != nil && !assignable(got, want) {
		c.errorf("cannot return %s from function %s returning %s", got, c.current.Name, want)
	}
}

func (c *Checker) checkCondition(cond ast.Expression, context string) {
	t := c.infer(cond)
	if t == nil {
		return
	}
	if !isScalar(t) || ast.IsKind(t, ast.String) {
		c.errorf("%s condition must be a number or bool, got %s", context, t)
	}
}

func (c *Checker) checkFor(s *ast.ForStatement) ast.Statement {
	iterType := c.infer(s.Iterable)

	var elem ast.Type
	if arr, ok := iterType.(*ast.ArrayType); ok {
		elem = arr.Element
	} else if iterType != nil {
		c.errorf("cannot iterate over %s", iterType)
	}
	if elem == nil {
		elem = ast.UnknownType()
	}

	c.pushScope()
	c.define(s.Iterator, elem)
	body := &ast.BlockStatement{Statements: c.checkStatements(statementsOf(s.Body))}
	c.popScope()

	return &ast.ForStatement{Iterator: s.Iterator, Iterable: s.Iterable, Body: body}
}

func (c *Checker) checkFunction(fn *ast.FunctionDeclaration) ast.Statement {
	if len(c.scopes) > 1 {
		c.errorf("function %s must be declared at top level", fn.Name)
	}

	outer := c.current
	c.current = fn
	defer func() { c.current = outer }()

	c.pushScope()
	defer c.popScope()

	seen := make(map[string]bool, len(fn.Parameters))
	for _, p := range fn.Parameters {
		if seen[p.Name] {
			c.errorf("duplicate parameter %s in function %s", p.Name, fn.Name)
		}
		seen[p.Name] = true
		if ast.IsKind(p.Type, ast.Void) || ast.IsKind(p.Type, ast.Unknown) {
			c.errorf("parameter %s of function %s has invalid type %s", p.Name, fn.Name, p.Type)
		}
		c.define(p.Name, p.Type)
	}

	return &ast.FunctionDeclaration{
		Name:       fn.Name,
		Parameters: fn.Parameters,
		ReturnType: fn.ReturnType,
		Body:       &ast.BlockStatement{Statements: c.checkStatements(statementsOf(fn.Body))},
	}
}

func statementsOf(b *ast.BlockStatement) []ast.Statement {
	if b == nil {
		return nil
	}
	return b.Statements
}
