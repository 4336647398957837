package compiler

import (
	"github.com/mna/loxcraft/internal/lox/token"
	"github.com/mna/loxcraft/internal/lox/value"
)

func (c *compiler) declaration() {
	switch {
	case c.match(token.CLASS):
		c.classDeclaration()
	case c.match(token.FUN):
		c.funDeclaration()
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}

	if c.panicMode {
		c.synchronize()
	}
}

// synchronize implements spec §4.1 "Error recovery": skip tokens until a
// statement boundary, so one mistake reports exactly once instead of
// cascading into its neighbors.
func (c *compiler) synchronize() {
	c.panicMode = false

	for c.cur.Kind != token.EOF {
		if c.prev.Kind == token.SEMICOLON {
			return
		}
		switch c.cur.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}

func (c *compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.IF):
		c.ifStatement()
	case c.match(token.RETURN):
		c.returnStatement()
	case c.match(token.WHILE):
		c.whileStatement()
	case c.match(token.FOR):
		c.forStatement()
	case c.match(token.LBRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *compiler) block() {
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RBRACE, "Expect '}' after block.")
}

func (c *compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")
	if c.match(token.EQUAL) {
		c.expression()
	} else {
		c.emitOp(value.OpNil)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	c.defineVariable(global)
}

func (c *compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOp(value.OpPop)
}

func (c *compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOp(value.OpPrint)
}

// ifStatement implements spec §4.1's exact "if (C) T else E" lowering: the
// JUMP_IF_FALSE peeks rather than pops, so an explicit POP on each branch
// keeps the stack balanced regardless of which one runs.
func (c *compiler) ifStatement() {
	c.consume(token.LPAREN, "Expect '(' after 'if'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	thenJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.statement()

	elseJump := c.emitJump(value.OpJump)
	c.patchJump(thenJump)
	c.emitOp(value.OpPop)

	if c.match(token.ELSE) {
		c.statement()
	}
	c.patchJump(elseJump)
}

func (c *compiler) whileStatement() {
	loopStart := len(c.currentChunk().Code)
	c.consume(token.LPAREN, "Expect '(' after 'while'.")
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after condition.")

	exitJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.statement()
	c.emitLoop(loopStart)

	c.patchJump(exitJump)
	c.emitOp(value.OpPop)
}

// forStatement desugars the three-clause loop into the same while-with-an-
// increment-jump shape spec §4.1 describes, so the increment clause is
// compiled once but runs after the body on every iteration.
func (c *compiler) forStatement() {
	c.beginScope()
	c.consume(token.LPAREN, "Expect '(' after 'for'.")

	switch {
	case c.match(token.SEMICOLON):
		// no initializer
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.expressionStatement()
	}

	loopStart := len(c.currentChunk().Code)
	exitJump := -1
	if !c.match(token.SEMICOLON) {
		c.expression()
		c.consume(token.SEMICOLON, "Expect ';' after loop condition.")
		exitJump = c.emitJump(value.OpJumpIfFalse)
		c.emitOp(value.OpPop)
	}

	if !c.match(token.RPAREN) {
		bodyJump := c.emitJump(value.OpJump)
		incrementStart := len(c.currentChunk().Code)
		c.expression()
		c.emitOp(value.OpPop)
		c.consume(token.RPAREN, "Expect ')' after for clauses.")

		c.emitLoop(loopStart)
		loopStart = incrementStart
		c.patchJump(bodyJump)
	}

	c.statement()
	c.emitLoop(loopStart)

	if exitJump != -1 {
		c.patchJump(exitJump)
		c.emitOp(value.OpPop)
	}
	c.endScope()
}

func (c *compiler) returnStatement() {
	if c.fr.typ == typeScript {
		c.error("Can't return from top-level code.")
	}

	if c.match(token.SEMICOLON) {
		c.emitReturn()
		return
	}

	if c.fr.typ == typeInitializer {
		c.error("Can't return a value from an initializer.")
	}
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after return value.")
	c.emitOp(value.OpReturn)
}

func (c *compiler) funDeclaration() {
	global := c.parseVariable("Expect function name.")
	c.markInitialized()
	c.function(typeFunction)
	c.defineVariable(global)
}

// function compiles a nested function/method body in its own frame, then
// emits CLOSURE with the upvalue descriptors the resolver recorded while
// compiling it (spec §4.1 "Function compilation").
func (c *compiler) function(typ funcType) {
	name := c.prev
	newFr := &frame{enclosing: c.fr, typ: typ, fn: c.heap.NewFunction()}
	// root the new Function before interning its name, which may collect
	c.heap.PushCompilingFunction(newFr.fn)
	newFr.fn.Name = c.heap.InternString(name.Lexeme)

	slot0 := ""
	if typ == typeMethod || typ == typeInitializer {
		slot0 = "this"
	}
	newFr.locals = append(newFr.locals, localVar{name: slot0, depth: 0})

	c.fr = newFr
	c.beginScope()

	c.consume(token.LPAREN, "Expect '(' after function name.")
	if !c.check(token.RPAREN) {
		for {
			c.fr.fn.Arity++
			if c.fr.fn.Arity > 255 {
				c.errorAtCurrent("Can't have more than 255 parameters.")
			}
			paramConstant := c.parseVariable("Expect parameter name.")
			c.defineVariable(paramConstant)
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after parameters.")
	c.consume(token.LBRACE, "Expect '{' before function body.")
	c.block()

	fn := c.endCompiler()
	c.heap.PopCompilingFunction()

	idx := c.makeConstant(value.FromObject(fn))
	c.emitOpByte(value.OpClosure, idx)
	for _, uv := range newFr.upvalues {
		var isLocal byte
		if uv.isLocal {
			isLocal = 1
		}
		c.emitByte(isLocal)
		c.emitByte(uv.index)
	}
}

func (c *compiler) method() {
	c.consume(token.IDENT, "Expect method name.")
	name := c.prev
	constant := c.identifierConstant(name)

	typ := typeMethod
	if name.Lexeme == "init" {
		typ = typeInitializer
	}
	c.function(typ)
	c.emitOpByte(value.OpMethod, constant)
}

// classDeclaration compiles spec §4.1's "Classes" lowering: declare the
// name, emit CLASS, optionally INHERIT from a superclass under a synthetic
// "super" scope, then compile each method with copy-down handled entirely
// at runtime by INHERIT.
func (c *compiler) classDeclaration() {
	c.consume(token.IDENT, "Expect class name.")
	className := c.prev
	nameConstant := c.identifierConstant(className)
	c.declareVariable()

	c.emitOpByte(value.OpClass, nameConstant)
	c.defineVariable(nameConstant)

	cs := &classState{enclosing: c.class}
	c.class = cs

	if c.match(token.LESS) {
		c.consume(token.IDENT, "Expect superclass name.")
		c.namedVariable(c.prev, false)
		if c.prev.Lexeme == className.Lexeme {
			c.error("A class can't inherit from itself.")
		}

		c.beginScope()
		c.addLocal(superToken)
		c.defineVariable(0)

		c.namedVariable(className, false)
		c.emitOp(value.OpInherit)
		cs.hasSuperclass = true
	}

	c.namedVariable(className, false)
	c.consume(token.LBRACE, "Expect '{' before class body.")
	for !c.check(token.RBRACE) && !c.check(token.EOF) {
		c.method()
	}
	c.consume(token.RBRACE, "Expect '}' after class body.")
	c.emitOp(value.OpPop)

	if cs.hasSuperclass {
		c.endScope()
	}
	c.class = cs.enclosing
}
