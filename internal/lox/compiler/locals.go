package compiler

import (
	"github.com/mna/loxcraft/internal/lox/token"
	"github.com/mna/loxcraft/internal/lox/value"
)

func (c *compiler) beginScope() { c.fr.scopeDepth++ }

// endScope closes the innermost scope, popping its locals off the runtime
// stack — or, for locals that were captured by a closure, emitting
// CLOSE_UPVALUE instead so the heap-allocated upvalue survives (spec §4.1
// "At endScope... emit CLOSE_UPVALUE if captured, else POP").
func (c *compiler) endScope() {
	c.fr.scopeDepth--
	for len(c.fr.locals) > 0 && c.fr.locals[len(c.fr.locals)-1].depth > c.fr.scopeDepth {
		if c.fr.locals[len(c.fr.locals)-1].isCaptured {
			c.emitOp(value.OpCloseUpvalue)
		} else {
			c.emitOp(value.OpPop)
		}
		c.fr.locals = c.fr.locals[:len(c.fr.locals)-1]
	}
}

func (c *compiler) addLocal(name token.Token) {
	if len(c.fr.locals) >= 256 {
		c.error("Too many local variables in function.")
		return
	}
	c.fr.locals = append(c.fr.locals, localVar{name: name.Lexeme, depth: -1})
}

// declareVariable adds the previously-consumed identifier as a local in
// the current scope, in the uninitialized (depth -1) state, rejecting a
// duplicate name already declared at this same depth (spec §4.1). It is a
// no-op at the top level, where variables are globals resolved by name.
func (c *compiler) declareVariable() {
	if c.fr.scopeDepth == 0 {
		return
	}
	name := c.prev
	for i := len(c.fr.locals) - 1; i >= 0; i-- {
		l := &c.fr.locals[i]
		if l.depth != -1 && l.depth < c.fr.scopeDepth {
			break
		}
		if l.name == name.Lexeme {
			c.error("Already a variable with this name in this scope.")
		}
	}
	c.addLocal(name)
}

// parseVariable consumes an identifier and declares it, returning the
// constant-pool index of its name (used for DEFINE_GLOBAL) — 0 for a
// local, whose "constant" is never read.
func (c *compiler) parseVariable(errMessage string) byte {
	c.consume(token.IDENT, errMessage)
	c.declareVariable()
	if c.fr.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.prev)
}

func (c *compiler) identifierConstant(tok token.Token) byte {
	return c.makeConstant(value.FromObject(c.heap.InternString(tok.Lexeme)))
}

// markInitialized flips the most recent local's depth marker from -1 to
// the current scope depth, taking effect after its initializer has been
// compiled (spec §4.1 "prevents var a = a; self-reference").
func (c *compiler) markInitialized() {
	if c.fr.scopeDepth == 0 {
		return
	}
	c.fr.locals[len(c.fr.locals)-1].depth = c.fr.scopeDepth
}

func (c *compiler) defineVariable(global byte) {
	if c.fr.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitOpByte(value.OpDefineGlobal, global)
}

// resolveLocal implements step 1 of spec §4.1 "Variable resolution":
// scan fr's locals from the top, erroring if a hit is still uninitialized.
func (c *compiler) resolveLocal(fr *frame, name string) int {
	for i := len(fr.locals) - 1; i >= 0; i-- {
		if fr.locals[i].name == name {
			if fr.locals[i].depth == -1 {
				c.error("Can't read local variable in its own initializer.")
			}
			return i
		}
	}
	return -1
}

// addUpvalue registers (or deduplicates) an upvalue descriptor on fr.
func (c *compiler) addUpvalue(fr *frame, index byte, isLocal bool) int {
	for i, uv := range fr.upvalues {
		if uv.index == index && uv.isLocal == isLocal {
			return i
		}
	}
	if len(fr.upvalues) >= 256 {
		c.error("Too many closure variables in function.")
		return 0
	}
	fr.upvalues = append(fr.upvalues, upvalRef{index: index, isLocal: isLocal})
	fr.fn.UpvalueCount = len(fr.upvalues)
	return len(fr.upvalues) - 1
}

// resolveUpvalue implements step 2 of spec §4.1 "Variable resolution":
// walk enclosing frames; on the first local hit, mark it captured and
// thread an upvalue descriptor through every frame between the hit and
// the current one.
func (c *compiler) resolveUpvalue(fr *frame, name string) int {
	if fr.enclosing == nil {
		return -1
	}
	if local := c.resolveLocal(fr.enclosing, name); local != -1 {
		fr.enclosing.locals[local].isCaptured = true
		return c.addUpvalue(fr, byte(local), true)
	}
	if up := c.resolveUpvalue(fr.enclosing, name); up != -1 {
		return c.addUpvalue(fr, byte(up), false)
	}
	return -1
}

// namedVariable compiles a read of, or (when canAssign and followed by
// '=') an assignment to, the variable named by tok, resolving it as a
// local, an upvalue, or else a global (spec §4.1 "Variable resolution").
func (c *compiler) namedVariable(tok token.Token, canAssign bool) {
	var getOp, setOp value.OpCode
	arg := c.resolveLocal(c.fr, tok.Lexeme)
	switch {
	case arg != -1:
		getOp, setOp = value.OpGetLocal, value.OpSetLocal
	default:
		if up := c.resolveUpvalue(c.fr, tok.Lexeme); up != -1 {
			arg = up
			getOp, setOp = value.OpGetUpvalue, value.OpSetUpvalue
		} else {
			arg = int(c.identifierConstant(tok))
			getOp, setOp = value.OpGetGlobal, value.OpSetGlobal
		}
	}

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitOpByte(setOp, byte(arg))
	} else {
		c.emitOpByte(getOp, byte(arg))
	}
}
