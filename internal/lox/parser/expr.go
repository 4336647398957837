package parser

import (
	"strconv"

	"github.com/mna/loxcraft/internal/lox/ast"
	"github.com/mna/loxcraft/internal/lox/token"
)

// expression ::= assignment
func (p *parser) expression() ast.Expr { return p.assignment() }

// assignment ::= ( call "." )? IDENT "=" assignment | logicOr
func (p *parser) assignment() ast.Expr {
	expr := p.or()

	if p.match(token.EQUAL) {
		line := p.prev.Line
		value := p.assignment()

		switch e := expr.(type) {
		case *ast.VariableExpr:
			return &ast.AssignExpr{Line: line, Name: e.Name, Value: value}
		case *ast.GetExpr:
			return &ast.SetExpr{Line: line, Object: e.Object, Name: e.Name, Value: value}
		default:
			p.error("Invalid assignment target.")
		}
	}
	return expr
}

func (p *parser) or() ast.Expr {
	expr := p.and()
	for p.match(token.OR) {
		line := p.prev.Line
		right := p.and()
		expr = &ast.LogicalExpr{Line: line, Left: expr, Op: token.OR, Right: right}
	}
	return expr
}

func (p *parser) and() ast.Expr {
	expr := p.equality()
	for p.match(token.AND) {
		line := p.prev.Line
		right := p.equality()
		expr = &ast.LogicalExpr{Line: line, Left: expr, Op: token.AND, Right: right}
	}
	return expr
}

func (p *parser) equality() ast.Expr {
	expr := p.comparison()
	for p.match(token.BANG_EQUAL) || p.match(token.EQUAL_EQUAL) {
		op, line := p.prev.Kind, p.prev.Line
		right := p.comparison()
		expr = &ast.BinaryExpr{Line: line, Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) comparison() ast.Expr {
	expr := p.term()
	for p.match(token.GREATER) || p.match(token.GREATER_EQUAL) || p.match(token.LESS) || p.match(token.LESS_EQUAL) {
		op, line := p.prev.Kind, p.prev.Line
		right := p.term()
		expr = &ast.BinaryExpr{Line: line, Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) term() ast.Expr {
	expr := p.factor()
	for p.match(token.PLUS) || p.match(token.MINUS) {
		op, line := p.prev.Kind, p.prev.Line
		right := p.factor()
		expr = &ast.BinaryExpr{Line: line, Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) factor() ast.Expr {
	expr := p.unary()
	for p.match(token.STAR) || p.match(token.SLASH) {
		op, line := p.prev.Kind, p.prev.Line
		right := p.unary()
		expr = &ast.BinaryExpr{Line: line, Left: expr, Op: op, Right: right}
	}
	return expr
}

func (p *parser) unary() ast.Expr {
	if p.match(token.BANG) || p.match(token.MINUS) {
		op, line := p.prev.Kind, p.prev.Line
		return &ast.UnaryExpr{Line: line, Op: op, Expr: p.unary()}
	}
	return p.call()
}

func (p *parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.match(token.LPAREN):
			expr = p.finishCall(expr)
		case p.match(token.DOT):
			line := p.prev.Line
			name := p.consume(token.IDENT, "Expect property name after '.'.")
			expr = &ast.GetExpr{Line: line, Object: expr, Name: name.Lexeme}
		default:
			return expr
		}
	}
}

func (p *parser) finishCall(callee ast.Expr) ast.Expr {
	line := p.prev.Line
	var args []ast.Expr
	if !p.check(token.RPAREN) {
		for {
			if len(args) >= 255 {
				p.error("Can't have more than 255 arguments.")
			}
			args = append(args, p.expression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after arguments.")
	return &ast.CallExpr{Line: line, Callee: callee, Args: args}
}

func (p *parser) primary() ast.Expr {
	switch {
	case p.match(token.FALSE):
		return &ast.LiteralExpr{Line: p.prev.Line, Value: false}
	case p.match(token.TRUE):
		return &ast.LiteralExpr{Line: p.prev.Line, Value: true}
	case p.match(token.NIL):
		return &ast.LiteralExpr{Line: p.prev.Line, Value: nil}
	case p.match(token.NUMBER):
		n, _ := strconv.ParseFloat(p.prev.Lexeme, 64)
		return &ast.LiteralExpr{Line: p.prev.Line, Value: n}
	case p.match(token.STRING):
		raw := p.prev.Lexeme
		return &ast.LiteralExpr{Line: p.prev.Line, Value: raw[1 : len(raw)-1]}
	case p.match(token.THIS):
		return &ast.ThisExpr{Line: p.prev.Line}
	case p.match(token.SUPER):
		line := p.prev.Line
		p.consume(token.DOT, "Expect '.' after 'super'.")
		method := p.consume(token.IDENT, "Expect superclass method name.")
		return &ast.SuperExpr{Line: line, Method: method.Lexeme}
	case p.match(token.IDENT):
		return &ast.VariableExpr{Line: p.prev.Line, Name: p.prev.Lexeme}
	case p.match(token.LPAREN):
		line := p.prev.Line
		expr := p.expression()
		p.consume(token.RPAREN, "Expect ')' after expression.")
		return &ast.GroupingExpr{Line: line, Expr: expr}
	default:
		p.errorAtCurrent("Expect expression.")
		return &ast.LiteralExpr{Line: p.cur.Line, Value: nil}
	}
}
