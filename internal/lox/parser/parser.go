// Package parser implements LoxLang's recursive-descent parser for the
// tree-walker pipeline, producing an internal/lox/ast tree instead of the
// bytecode internal/lox/compiler emits directly. Error accumulation follows
// the teacher's own convention (`lang/parser/parser.go`'s `scanner.ErrorList`
// field), aliased here as goscanner/gotoken to avoid colliding with this
// module's own token package.
package parser

import (
	goscanner "go/scanner"
	gotoken "go/token"

	"github.com/mna/loxcraft/internal/lox/ast"
	"github.com/mna/loxcraft/internal/lox/scanner"
	"github.com/mna/loxcraft/internal/lox/token"
)

// ErrorList accumulates parse errors in source-position order.
type ErrorList = goscanner.ErrorList

// Parse parses source as a sequence of top-level statements. On failure the
// returned error is an ErrorList.
func Parse(source string) ([]ast.Stmt, error) {
	p := &parser{sc: scanner.New(source)}
	p.advance()

	var stmts []ast.Stmt
	for p.cur.Kind != token.EOF {
		stmts = append(stmts, p.declaration())
	}
	return stmts, p.errs.Err()
}

type parser struct {
	sc   *scanner.Scanner
	prev token.Token
	cur  token.Token

	hadError  bool
	panicMode bool
	errs      ErrorList
}

func (p *parser) advance() {
	p.prev = p.cur
	for {
		p.cur = p.sc.Scan()
		if p.cur.Kind != token.ILLEGAL {
			break
		}
		p.errorAtCurrent(p.cur.Lexeme)
	}
}

func (p *parser) check(k token.Kind) bool { return p.cur.Kind == k }

func (p *parser) match(k token.Kind) bool {
	if !p.check(k) {
		return false
	}
	p.advance()
	return true
}

func (p *parser) consume(k token.Kind, msg string) token.Token {
	if p.cur.Kind == k {
		tok := p.cur
		p.advance()
		return tok
	}
	p.errorAtCurrent(msg)
	return p.cur
}

func (p *parser) errorAtCurrent(msg string) { p.errorAt(p.cur, msg) }

func (p *parser) error(msg string) { p.errorAt(p.prev, msg) }

func (p *parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	detail := msg
	switch {
	case tok.Kind == token.EOF:
		detail += " at end"
	case tok.Kind != token.ILLEGAL:
		detail += " at '" + tok.Lexeme + "'"
	}
	p.errs.Add(gotoken.Position{Line: tok.Line}, detail)
}

// synchronize recovers from panic mode at the next statement boundary
// (spec §4.1 "a semicolon or one of: class, fun, var, for, if, while,
// print, return"), shared verbatim with the bytecode compiler's recovery
// policy since both sit atop the same grammar.
func (p *parser) synchronize() {
	p.panicMode = false
	for p.cur.Kind != token.EOF {
		if p.prev.Kind == token.SEMICOLON {
			return
		}
		switch p.cur.Kind {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		p.advance()
	}
}
