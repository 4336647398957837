// Package compiler implements the single-pass, recursive-descent bytecode
// compiler: a Pratt parser driven by a static precedence table that emits
// directly into a value.Chunk as it recognizes each expression and
// statement, with no intermediate AST (spec §4.1).
//
// Error accumulation follows the same shape the rest of this module uses
// for diagnostics (github.com/mna/nenuphar's lang/scanner and
// lang/resolver packages alias go/scanner's ErrorList for exactly this):
// compile errors are collected as a go/scanner.ErrorList keyed by source
// line, and the first error of each statement wins thanks to panic-mode
// suppression.
package compiler

import (
	goscanner "go/scanner"
	gotoken "go/token"

	"github.com/mna/loxcraft/internal/lox/scanner"
	"github.com/mna/loxcraft/internal/lox/token"
	"github.com/mna/loxcraft/internal/lox/value"
)

// ErrorList accumulates compile-time diagnostics in source order.
type ErrorList = goscanner.ErrorList

// funcType tracks which kind of callable is currently being compiled, so
// RETURN and the reserved slot-0 name can be validated/named correctly
// (spec §4.1 "Function compilation").
type funcType int

const (
	typeScript funcType = iota
	typeFunction
	typeMethod
	typeInitializer
)

// localVar is one entry of a compilation frame's locals array (spec §4.1
// "locals[0..255]: array of {name token, depth, isCaptured}").
type localVar struct {
	name       string
	depth      int
	isCaptured bool
}

// upvalRef is one entry of a compilation frame's upvalues array (spec
// §4.1 "upvalues[0..255]: array of {index:u8, isLocal:bool}").
type upvalRef struct {
	index   byte
	isLocal bool
}

// frame is one compilation frame, one per nested function/method/script
// currently being compiled (spec §4.1 "the compiler maintains a stack of
// per-function compilation frames").
type frame struct {
	enclosing  *frame
	fn         *value.Function
	typ        funcType
	locals     []localVar
	upvalues   []upvalRef
	scopeDepth int
}

// classState tracks the class currently being compiled, so `this`/`super`
// usage can be validated and superclass method calls compiled correctly
// (spec §4.1 "Classes").
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// compiler holds all state for one call to Compile: the token stream, the
// stack of compilation frames (tracked via frame.enclosing), the
// currently-compiling class (if any), and the heap used to allocate
// strings and Function objects.
type compiler struct {
	heap value.Heap
	sc   *scanner.Scanner

	prev, cur token.Token
	hadError  bool
	panicMode bool
	errs      ErrorList

	fr    *frame
	class *classState
}

// Compile compiles source into a top-level script Function ready to be
// wrapped in a Closure and run. On failure it returns a non-nil error
// (always an ErrorList) and a nil Function; the VM must never be invoked
// in that case (spec §7 "Compilation result is a boolean success flag; on
// failure the VM is never invoked").
func Compile(source string, heap value.Heap) (*value.Function, error) {
	c := &compiler{
		heap: heap,
		sc:   scanner.New(source),
		fr:   &frame{typ: typeScript, fn: heap.NewFunction()},
	}
	c.fr.locals = append(c.fr.locals, localVar{name: "", depth: 0})
	heap.PushCompilingFunction(c.fr.fn)
	defer heap.PopCompilingFunction()

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}

	fn := c.endCompiler()
	if c.hadError {
		return nil, c.errs.Err()
	}
	return fn, nil
}

func (c *compiler) advance() {
	c.prev = c.cur
	for {
		c.cur = c.sc.Scan()
		if c.cur.Kind != token.ILLEGAL {
			break
		}
		c.errorAtCurrent(c.cur.Lexeme)
	}
}

func (c *compiler) check(k token.Kind) bool { return c.cur.Kind == k }

func (c *compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *compiler) consume(k token.Kind, message string) {
	if c.cur.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

func (c *compiler) error(message string)        { c.errorAt(c.prev, message) }
func (c *compiler) errorAtCurrent(message string) { c.errorAt(c.cur, message) }

func (c *compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true

	detail := message
	switch tok.Kind {
	case token.EOF:
		detail = message + " at end"
	case token.ILLEGAL:
		// the scanner already produced a descriptive message as the lexeme
	default:
		detail = message + " at '" + tok.Lexeme + "'"
	}
	c.errs.Add(gotoken.Position{Line: tok.Line}, detail)
}

// endCompiler finishes the current frame: it emits the implicit trailing
// return, pops the frame stack, and returns the finished Function.
func (c *compiler) endCompiler() *value.Function {
	c.emitReturn()
	fn := c.fr.fn
	c.fr = c.fr.enclosing
	return fn
}
