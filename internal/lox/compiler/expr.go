package compiler

import (
	"strconv"

	"github.com/mna/loxcraft/internal/lox/token"
	"github.com/mna/loxcraft/internal/lox/value"
)

// Precedence orders operators low-to-high for the Pratt driver (spec
// §4.1 "Precedence ladder").
type Precedence int

const (
	PrecNone Precedence = iota
	PrecAssignment
	PrecOr
	PrecAnd
	PrecEquality
	PrecComparison
	PrecTerm
	PrecFactor
	PrecUnary
	PrecCall
	PrecPrimary
)

type parseFn func(c *compiler, canAssign bool)

type parseRule struct {
	prefix, infix parseFn
	precedence    Precedence
}

// rules is the static table keyed by token kind driving the compiler's
// Pratt parser (spec §4.1 "each row = {prefix rule, infix rule,
// precedence}"). Kinds with no entry have no prefix/infix rule and bind
// at PrecNone, the Go zero value. The table is filled in init because the
// parse functions it holds reach back to it through getRule, which a
// package-level initializer cannot express.
var rules map[token.Kind]parseRule

func init() {
	rules = map[token.Kind]parseRule{
		token.LPAREN:        {prefix: grouping, infix: call, precedence: PrecCall},
		token.DOT:           {infix: dot, precedence: PrecCall},
		token.MINUS:         {prefix: unary, infix: binary, precedence: PrecTerm},
		token.PLUS:          {infix: binary, precedence: PrecTerm},
		token.SLASH:         {infix: binary, precedence: PrecFactor},
		token.STAR:          {infix: binary, precedence: PrecFactor},
		token.BANG:          {prefix: unary},
		token.BANG_EQUAL:    {infix: binary, precedence: PrecEquality},
		token.EQUAL_EQUAL:   {infix: binary, precedence: PrecEquality},
		token.GREATER:       {infix: binary, precedence: PrecComparison},
		token.GREATER_EQUAL: {infix: binary, precedence: PrecComparison},
		token.LESS:          {infix: binary, precedence: PrecComparison},
		token.LESS_EQUAL:    {infix: binary, precedence: PrecComparison},
		token.IDENT:         {prefix: variable},
		token.STRING:        {prefix: stringLiteral},
		token.NUMBER:        {prefix: number},
		token.AND:           {infix: and_, precedence: PrecAnd},
		token.OR:            {infix: or_, precedence: PrecOr},
		token.FALSE:         {prefix: literal},
		token.NIL:           {prefix: literal},
		token.TRUE:          {prefix: literal},
		token.THIS:          {prefix: this_},
		token.SUPER:         {prefix: super_},
	}
}

func getRule(k token.Kind) parseRule { return rules[k] }

func (c *compiler) expression() { c.parsePrecedence(PrecAssignment) }

// parsePrecedence is the Pratt driver: consume a prefix rule for the
// current token, then repeatedly consume infix rules as long as their
// precedence is at least prec (spec §4.1).
func (c *compiler) parsePrecedence(prec Precedence) {
	c.advance()
	prefix := getRule(c.prev.Kind).prefix
	if prefix == nil {
		c.error("Expect expression.")
		return
	}

	canAssign := prec <= PrecAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.cur.Kind).precedence {
		c.advance()
		infix := getRule(c.prev.Kind).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQUAL) {
		c.error("Invalid assignment target.")
	}
}

func number(c *compiler, _ bool) {
	n, _ := strconv.ParseFloat(c.prev.Lexeme, 64)
	c.emitConstant(value.Number(n))
}

// stringLiteral strips the surrounding quotes the scanner leaves in the
// lexeme (spec says the language has "no escapes beyond the literal bytes
// between quotes").
func stringLiteral(c *compiler, _ bool) {
	raw := c.prev.Lexeme
	chars := raw[1 : len(raw)-1]
	c.emitConstant(value.FromObject(c.heap.InternString(chars)))
}

func literal(c *compiler, _ bool) {
	switch c.prev.Kind {
	case token.FALSE:
		c.emitOp(value.OpFalse)
	case token.NIL:
		c.emitOp(value.OpNil)
	case token.TRUE:
		c.emitOp(value.OpTrue)
	}
}

func grouping(c *compiler, _ bool) {
	c.expression()
	c.consume(token.RPAREN, "Expect ')' after expression.")
}

func unary(c *compiler, _ bool) {
	opKind := c.prev.Kind
	c.parsePrecedence(PrecUnary)
	switch opKind {
	case token.MINUS:
		c.emitOp(value.OpNegate)
	case token.BANG:
		c.emitOp(value.OpNot)
	}
}

func binary(c *compiler, _ bool) {
	opKind := c.prev.Kind
	rule := getRule(opKind)
	c.parsePrecedence(rule.precedence + 1)

	switch opKind {
	case token.PLUS:
		c.emitOp(value.OpAdd)
	case token.MINUS:
		c.emitOp(value.OpSubtract)
	case token.STAR:
		c.emitOp(value.OpMultiply)
	case token.SLASH:
		c.emitOp(value.OpDivide)
	case token.EQUAL_EQUAL:
		c.emitOp(value.OpEqual)
	case token.BANG_EQUAL:
		c.emitOp(value.OpEqual)
		c.emitOp(value.OpNot)
	case token.GREATER:
		c.emitOp(value.OpGreater)
	case token.GREATER_EQUAL:
		c.emitOp(value.OpLess)
		c.emitOp(value.OpNot)
	case token.LESS:
		c.emitOp(value.OpLess)
	case token.LESS_EQUAL:
		c.emitOp(value.OpGreater)
		c.emitOp(value.OpNot)
	}
}

// and_ short-circuits by jumping over the right operand when the left is
// already falsey, leaving it on the stack as the result (spec §4.1).
func and_(c *compiler, _ bool) {
	endJump := c.emitJump(value.OpJumpIfFalse)
	c.emitOp(value.OpPop)
	c.parsePrecedence(PrecAnd)
	c.patchJump(endJump)
}

// or_ is the symmetric case: jump over the right operand when the left is
// truthy (spec §4.1).
func or_(c *compiler, _ bool) {
	elseJump := c.emitJump(value.OpJumpIfFalse)
	endJump := c.emitJump(value.OpJump)
	c.patchJump(elseJump)
	c.emitOp(value.OpPop)
	c.parsePrecedence(PrecOr)
	c.patchJump(endJump)
}

func variable(c *compiler, canAssign bool) {
	c.namedVariable(c.prev, canAssign)
}

func this_(c *compiler, _ bool) {
	if c.class == nil {
		c.error("Can't use 'this' outside of a class.")
		return
	}
	c.namedVariable(c.prev, false)
}

func super_(c *compiler, _ bool) {
	switch {
	case c.class == nil:
		c.error("Can't use 'super' outside of a class.")
	case !c.class.hasSuperclass:
		c.error("Can't use 'super' in a class with no superclass.")
	}

	c.consume(token.DOT, "Expect '.' after 'super'.")
	c.consume(token.IDENT, "Expect superclass method name.")
	name := c.identifierConstant(c.prev)

	c.namedVariable(thisToken, false)
	if c.match(token.LPAREN) {
		argc := c.argumentList()
		c.namedVariable(superToken, false)
		c.emitOpByte(value.OpSuperInvoke, name)
		c.emitByte(byte(argc))
	} else {
		c.namedVariable(superToken, false)
		c.emitOpByte(value.OpGetSuper, name)
	}
}

func call(c *compiler, _ bool) {
	argc := c.argumentList()
	c.emitOpByte(value.OpCall, byte(argc))
}

func dot(c *compiler, canAssign bool) {
	c.consume(token.IDENT, "Expect property name after '.'.")
	name := c.identifierConstant(c.prev)

	switch {
	case canAssign && c.match(token.EQUAL):
		c.expression()
		c.emitOpByte(value.OpSetProperty, name)
	case c.match(token.LPAREN):
		argc := c.argumentList()
		c.emitOpByte(value.OpInvoke, name)
		c.emitByte(byte(argc))
	default:
		c.emitOpByte(value.OpGetProperty, name)
	}
}

func (c *compiler) argumentList() int {
	argc := 0
	if !c.check(token.RPAREN) {
		for {
			c.expression()
			if argc == 255 {
				c.error("Can't have more than 255 arguments.")
			}
			argc++
			if !c.match(token.COMMA) {
				break
			}
		}
	}
	c.consume(token.RPAREN, "Expect ')' after arguments.")
	return argc
}

// thisToken and superToken are synthetic identifiers referencing the
// compiler-reserved locals "this" and "super" (spec §4.1 "Classes"), used
// the same way clox's syntheticToken helper is: to drive namedVariable
// without a real token.Token coming from the scanner.
var (
	thisToken  = token.Token{Kind: token.IDENT, Lexeme: "this"}
	superToken = token.Token{Kind: token.IDENT, Lexeme: "super"}
)
