package codegen

import (
	"strings"

	"github.com/quark-lang/quark/internal/ast"
	qerrors "github.com/quark-lang/quark/internal/errors"
)

// BuiltinFunctions contains the functions the generator lowers itself
// instead of emitting a plain call
var BuiltinFunctions = map[string]BuiltinFunction{
	"print": {
		Name:       "print",
		ReturnType: ast.VoidType(),
		Header:     "stdio.h",
	},
	"range": {
		Name:       "range",
		ReturnType: ast.ArrayOf(ast.IntType()),
	},
}

// the lowerings recurse into emitExpression, which reads the table, so
// they are attached after package initialization
func init() {
	setLowering("print", lowerPrint)
	setLowering("range", lowerRange)
}

func setLowering(name string, lower func(*Generator, *ast.CallExpression) (string, includeSet, error)) {
	fn := BuiltinFunctions[name]
	fn.lower = lower
	BuiltinFunctions[name] = fn
}

// BuiltinFunction represents a built-in function definition
type BuiltinFunction struct {
	Name       string
	ReturnType ast.Type
	// Header is the system header the lowering needs, if any
	Header string

	lower func(g *Generator, call *ast.CallExpression) (string, includeSet, error)
}

// GetBuiltinFunction returns the built-in function definition
func GetBuiltinFunction(name string) (BuiltinFunction, bool) {
	fn, exists := BuiltinFunctions[name]
	return fn, exists
}

// lowerPrint turns print(a, b) into a single printf whose format has one
// conversion per argument, separated by spaces.
func lowerPrint(g *Generator, call *ast.CallExpression) (string, includeSet, error) {
	verbs := make([]string, len(call.Args))
	args := make([]string, len(call.Args))
	includes := includesOf("stdio.h")
	for i, a := range call.Args {
		code, inc, err := g.emitExpression(a)
		if err != nil {
			return "", nil, err
		}
		verbs[i] = printfVerb(g.typeOf(a))
		args[i] = code
		includes.merge(inc)
	}

	format := strings.Join(verbs, " ")
	if g.printNewline {
		format += `\n`
	}

	var b strings.Builder
	b.WriteString(`printf("` + format + `"`)
	for _, a := range args {
		b.WriteString(", " + a)
	}
	b.WriteString(")")
	return b.String(), includes, nil
}

// lowerRange rejects range outside a for loop header; emitFor handles
// the supported form before expressions are rendered.
func lowerRange(g *Generator, call *ast.CallExpression) (string, includeSet, error) {
	return "", nil, qerrors.CodeGen("range can only be used as a for loop iterable")
}
