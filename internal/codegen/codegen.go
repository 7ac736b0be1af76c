// Package codegen renders a quark AST as C99 source text.
//
// Every translation returns its text together with the set of headers it
// needs; callers merge the sets on the way up. Nothing is recorded through
// shared flags, so generating the same program twice yields identical text.
package codegen

import (
	"sort"
	"strconv"
	"strings"

	"github.com/quark-lang/quark/internal/ast"
)

// DefaultLetFallback is the C type used for a let without a resolved type
const DefaultLetFallback = "int"

// Option configures a Generator
type Option func(*Generator)

// WithLetFallback sets the C type emitted for a let binding that has
// neither an annotation nor a checker-resolved type.
func WithLetFallback(ctype string) Option {
	return func(g *Generator) { g.letFallback = ctype }
}

// WithPrintNewline controls whether print appends a newline
func WithPrintNewline(enabled bool) Option {
	return func(g *Generator) { g.printNewline = enabled }
}

// Result is the output of one generation
type Result struct {
	// Code is the translated program without any include directives
	Code string
	// Includes lists the required system headers, sorted
	Includes []string
}

// Source assembles the final C text: one #include line per required
// header, a blank line, then the code. Without includes it is Code alone.
func (r *Result) Source() string {
	if len(r.Includes) == 0 {
		return r.Code
	}
	var b strings.Builder
	for _, h := range r.Includes {
		b.WriteString("#include <" + h + ">\n")
	}
	b.WriteString("\n")
	b.WriteString(r.Code)
	return b.String()
}

// Generator translates statements to C. A Generator may be reused but is
// not safe for concurrent use.
type Generator struct {
	letFallback  string
	printNewline bool

	functions map[string]ast.Type
	scopes    []map[string]binding
	temps     int
}

// binding is what the generator knows about a name in scope
type binding struct {
	typ ast.Type
	// fixedArray is set for locals declared as `T name[] = {...}`, whose
	// length sizeof can recover.
	fixedArray bool
}

// NewGenerator creates a generator
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{letFallback: DefaultLetFallback, printNewline: true}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate translates stmts with a fresh Generator
func Generate(stmts []ast.Statement, opts ...Option) (*Result, error) {
	return NewGenerator(opts...).Generate(stmts)
}

// Generate translates every top-level statement in order
func (g *Generator) Generate(stmts []ast.Statement) (*Result, error) {
	g.functions = make(map[string]ast.Type)
	g.scopes = []map[string]binding{{}}
	g.temps = 0

	for _, s := range stmts {
		if fn, ok := s.(*ast.FunctionDeclaration); ok {
			g.functions[fn.Name] = fn.ReturnType
		}
	}

	var b strings.Builder
	if protos := forwardDeclarations(stmts); len(protos) > 0 {
		for _, fn := range protos {
			signature, err := g.functionSignature(fn)
			if err != nil {
				return nil, err
			}
			line(&b, 0, "%s;", signature)
		}
		b.WriteString("\n")
	}

	includes := includeSet{}
	for _, s := range stmts {
		inc, err := g.emitStatement(&b, s, 0)
		if err != nil {
			return nil, err
		}
		includes.merge(inc)
	}

	return &Result{Code: b.String(), Includes: includes.sorted()}, nil
}

// forwardDeclarations returns the functions that are called before their
// definition, in declaration order. C needs a prototype for those.
func forwardDeclarations(stmts []ast.Statement) []*ast.FunctionDeclaration {
	declared := make(map[string]bool)
	for _, s := range stmts {
		if fn, ok := s.(*ast.FunctionDeclaration); ok {
			declared[fn.Name] = true
		}
	}

	defined := make(map[string]bool)
	needed := make(map[string]bool)
	for _, s := range stmts {
		if fn, ok := s.(*ast.FunctionDeclaration); ok {
			defined[fn.Name] = true
		}
		ast.Inspect(s, func(n ast.Node) bool {
			if call, ok := n.(*ast.CallExpression); ok && declared[call.Name] && !defined[call.Name] {
				needed[call.Name] = true
			}
			return true
		})
	}

	var out []*ast.FunctionDeclaration
	for _, s := range stmts {
		if fn, ok := s.(*ast.FunctionDeclaration); ok && needed[fn.Name] {
			out = append(out, fn)
			delete(needed, fn.Name)
		}
	}
	return out
}

// ====== includes ======

type includeSet map[string]struct{}

func includesOf(headers ...string) includeSet {
	s := make(includeSet, len(headers))
	for _, h := range headers {
		s[h] = struct{}{}
	}
	return s
}

func (s includeSet) merge(other includeSet) {
	for h := range other {
		s[h] = struct{}{}
	}
}

func (s includeSet) sorted() []string {
	out := make([]string, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// ====== scopes ======

func (g *Generator) pushScope() { g.scopes = append(g.scopes, map[string]binding{}) }
func (g *Generator) popScope()  { g.scopes = g.scopes[:len(g.scopes)-1] }

func (g *Generator) declare(name string, b binding) {
	g.scopes[len(g.scopes)-1][name] = b
}

func (g *Generator) lookup(name string) (binding, bool) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if b, ok := g.scopes[i][name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

// tempName returns a fresh generator-owned identifier
func (g *Generator) tempName(prefix string) string {
	name := "_qk_" + prefix + strconv.Itoa(g.temps)
	g.temps++
	return name
}
