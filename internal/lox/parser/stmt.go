package parser

import (
	"github.com/mna/loxcraft/internal/lox/ast"
	"github.com/mna/loxcraft/internal/lox/token"
)

func (p *parser) declaration() ast.Stmt {
	var stmt ast.Stmt
	switch {
	case p.match(token.CLASS):
		stmt = p.classDeclaration()
	case p.match(token.FUN):
		stmt = p.function("function")
	case p.match(token.VAR):
		stmt = p.varDeclaration()
	default:
		stmt = p.statement()
	}
	if p.panicMode {
		p.synchronize()
	}
	return stmt
}

func (p *parser) classDeclaration() ast.Stmt {
	line := p.prev.Line
	name := p.consume(token.IDENT, "Expect class name.")

	var super *ast.VariableExpr
	if p.match(token.LESS) {
		p.consume(token.IDENT, "Expect superclass name.")
		super = &ast.VariableExpr{Line: p.prev.Line, Name: p.prev.Lexeme}
		if super.Name == name.Lexeme {
			p.error("A class can't inherit from itself.")
		}
	}

	p.consume(token.LBRACE, "Expect '{' before class body.")
	var methods []*ast.FunctionStmt
	for !p.check(token.RBRACE) && p.cur.Kind != token.EOF {
		fn := p.function("method").(*ast.FunctionStmt)
		fn.IsMethod = true
		fn.IsInitializer = fn.Name == "init"
		methods = append(methods, fn)
	}
	p.consume(token.RBRACE, "Expect '}' after class body.")

	return &ast.ClassStmt{Line: line, Name: name.Lexeme, Super: super, Methods: methods}
}

func (p *parser) function(kind string) ast.Stmt {
	name := p.consume(token.IDENT, "Expect "+kind+" name.")
	line := p.prev.Line

	p.consume(token.LPAREN, "Expect '(' after "+kind+" name.")
	var params []string
	if !p.check(token.RPAREN) {
		for {
			if len(params) >= 255 {
				p.error("Can't have more than 255 parameters.")
			}
			params = append(params, p.consume(token.IDENT, "Expect parameter name.").Lexeme)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "Expect ')' after parameters.")

	p.consume(token.LBRACE, "Expect '{' before "+kind+" body.")
	body := p.block()
	return &ast.FunctionStmt{Line: line, Name: name.Lexeme, Params: params, Body: body}
}

func (p *parser) varDeclaration() ast.Stmt {
	line := p.prev.Line
	name := p.consume(token.IDENT, "Expect variable name.")

	var init ast.Expr
	if p.match(token.EQUAL) {
		init = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after variable declaration.")
	return &ast.VarStmt{Line: line, Name: name.Lexeme, Init: init}
}

func (p *parser) statement() ast.Stmt {
	switch {
	case p.match(token.PRINT):
		return p.printStatement()
	case p.match(token.RETURN):
		return p.returnStatement()
	case p.match(token.WHILE):
		return p.whileStatement()
	case p.match(token.FOR):
		return p.forStatement()
	case p.match(token.LBRACE):
		line := p.prev.Line
		return &ast.BlockStmt{Line: line, Stmts: p.block()}
	case p.match(token.IF):
		return p.ifStatement()
	default:
		return p.expressionStatement()
	}
}

func (p *parser) block() []ast.Stmt {
	var stmts []ast.Stmt
	for !p.check(token.RBRACE) && p.cur.Kind != token.EOF {
		stmts = append(stmts, p.declaration())
	}
	p.consume(token.RBRACE, "Expect '}' after block.")
	return stmts
}

func (p *parser) printStatement() ast.Stmt {
	line := p.prev.Line
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after value.")
	return &ast.PrintStmt{Line: line, Expr: expr}
}

func (p *parser) returnStatement() ast.Stmt {
	line := p.prev.Line
	var value ast.Expr
	if !p.check(token.SEMICOLON) {
		value = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after return value.")
	return &ast.ReturnStmt{Line: line, Value: value}
}

func (p *parser) ifStatement() ast.Stmt {
	line := p.prev.Line
	p.consume(token.LPAREN, "Expect '(' after 'if'.")
	cond := p.expression()
	p.consume(token.RPAREN, "Expect ')' after if condition.")

	then := p.statement()
	var els ast.Stmt
	if p.match(token.ELSE) {
		els = p.statement()
	}
	return &ast.IfStmt{Line: line, Cond: cond, Then: then, Else: els}
}

func (p *parser) whileStatement() ast.Stmt {
	line := p.prev.Line
	p.consume(token.LPAREN, "Expect '(' after 'while'.")
	cond := p.expression()
	p.consume(token.RPAREN, "Expect ')' after condition.")
	body := p.statement()
	return &ast.WhileStmt{Line: line, Cond: cond, Body: body}
}

// forStatement desugars the three-clause for loop into an equivalent while
// loop built from existing statement nodes (spec §4.1's desugaring, applied
// here at the AST level instead of at bytecode-emission time).
func (p *parser) forStatement() ast.Stmt {
	line := p.prev.Line
	p.consume(token.LPAREN, "Expect '(' after 'for'.")

	var init ast.Stmt
	switch {
	case p.match(token.SEMICOLON):
		init = nil
	case p.match(token.VAR):
		init = p.varDeclaration()
	default:
		init = p.expressionStatement()
	}

	var cond ast.Expr
	if !p.check(token.SEMICOLON) {
		cond = p.expression()
	}
	p.consume(token.SEMICOLON, "Expect ';' after loop condition.")

	var post ast.Expr
	if !p.check(token.RPAREN) {
		post = p.expression()
	}
	p.consume(token.RPAREN, "Expect ')' after for clauses.")

	body := p.statement()

	if post != nil {
		body = &ast.BlockStmt{Line: line, Stmts: []ast.Stmt{body, &ast.ExprStmt{Line: line, Expr: post}}}
	}
	if cond == nil {
		cond = &ast.LiteralExpr{Line: line, Value: true}
	}
	body = &ast.WhileStmt{Line: line, Cond: cond, Body: body}
	if init != nil {
		body = &ast.BlockStmt{Line: line, Stmts: []ast.Stmt{init, body}}
	}
	return body
}

func (p *parser) expressionStatement() ast.Stmt {
	line := p.cur.Line
	expr := p.expression()
	p.consume(token.SEMICOLON, "Expect ';' after expression.")
	return &ast.ExprStmt{Line: line, Expr: expr}
}
