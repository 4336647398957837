// Package interpreter implements LoxLang's tree-walking evaluator: the
// second half of the CORE named in spec §1, consuming the AST produced by
// internal/lox/parser together with the scope-distance table produced by
// internal/lox/resolver. Values are represented as plain Go `any` (nil,
// bool, float64, string, or one of the Callable-implementing types in
// types.go) rather than the bytecode VM's tagged value.Value — the two
// pipelines share no runtime representation, only the surface language and
// the RuntimeError shape the CLI prints (spec §6).
package interpreter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mna/loxcraft/internal/lox/parser"
	"github.com/mna/loxcraft/internal/lox/resolver"
	"github.com/mna/loxcraft/internal/lox/token"
)

// Interpreter runs LoxLang source through the tree-walker pipeline. One
// instance persists across successive Run calls in REPL mode, the same way
// a single vm.VM persists across REPL lines in the bytecode pipeline.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  resolver.Locals

	callStack []*frame

	Stdout io.Writer

	startTime time.Time
}

// New returns an Interpreter with its global natives already defined.
func New() *Interpreter {
	in := &Interpreter{
		globals:   NewEnvironment(nil),
		Stdout:    os.Stdout,
		startTime: time.Now(),
		callStack: []*frame{{}}, // the implicit top-level "script" frame
	}
	in.env = in.globals
	in.defineNatives()
	return in
}

func (in *Interpreter) defineNatives() {
	in.globals.Define("clock", &nativeFunction{name: "clock", arity: 0, fn: func(*Interpreter, []any) (any, error) {
		return time.Since(in.startTime).Seconds(), nil
	}})
	in.globals.Define("type", &nativeFunction{name: "type", arity: 1, fn: func(_ *Interpreter, args []any) (any, error) {
		return typeName(args[0]), nil
	}})
	in.globals.Define("str", &nativeFunction{name: "str", arity: 1, fn: func(_ *Interpreter, args []any) (any, error) {
		return stringify(args[0]), nil
	}})
}

// Interpret parses, resolves and evaluates source as a sequence of
// top-level statements. A parse or resolve failure is returned as a plain
// error; an evaluation failure is always a *RuntimeError.
func (in *Interpreter) Interpret(source string) error {
	stmts, err := parser.Parse(source)
	if err != nil {
		return err
	}
	locals, err := resolver.Resolve(stmts)
	if err != nil {
		return err
	}
	in.locals = locals

	for _, s := range stmts {
		if _, err := in.execStmt(s, in.env); err != nil {
			return err
		}
	}
	return nil
}

// returnSignal unwinds execStmt/executeBlock back to the enclosing
// LoxFunction.Call without an exception mechanism (spec §7 "There is no
// user-level exception mechanism" — this is purely an internal control-flow
// signal, not a user-visible error), carrying the evaluated `return` value.
type returnSignal struct{ value any }

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case string:
		return "string"
	default:
		return "object"
	}
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(x)
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func formatNumber(n float64) string { return fmt.Sprintf("%g", n) }

func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

func isEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a == b
}

// opName is a tiny adapter kept so error sites can cite a token.Kind name
// in messages; used by evalUnary and evalBinary in expr.go.
func opName(k token.Kind) string { return k.String() }
