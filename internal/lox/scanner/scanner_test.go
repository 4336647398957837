package scanner_test

import (
	"testing"

	"github.com/mna/loxcraft/internal/lox/scanner"
	"github.com/mna/loxcraft/internal/lox/token"
	"github.com/stretchr/testify/require"
)

func scanAll(src string) []token.Token {
	s := scanner.New(src)
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll("(){},.-+;*/ ! != = == < <= > >=")
	want := []token.Kind{
		token.LPAREN, token.RPAREN, token.LBRACE, token.RBRACE, token.COMMA,
		token.DOT, token.MINUS, token.PLUS, token.SEMICOLON, token.STAR,
		token.SLASH, token.BANG, token.BANG_EQUAL, token.EQUAL, token.EQUAL_EQUAL,
		token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL, token.EOF,
	}
	require.Len(t, toks, len(want))
	for i, k := range want {
		require.Equal(t, k, toks[i].Kind, "token %d", i)
	}
}

func TestScanKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll("var x = fun class this super nil true false and or if else for while print return")
	var kinds []token.Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	require.Equal(t, []token.Kind{
		token.VAR, token.IDENT, token.EQUAL, token.FUN, token.CLASS, token.THIS,
		token.SUPER, token.NIL, token.TRUE, token.FALSE, token.AND, token.OR,
		token.IF, token.ELSE, token.FOR, token.WHILE, token.PRINT, token.RETURN,
		token.EOF,
	}, kinds)
}

func TestScanNumbers(t *testing.T) {
	toks := scanAll("123 3.14 0")
	require.Equal(t, "123", toks[0].Lexeme)
	require.Equal(t, token.NUMBER, toks[0].Kind)
	require.Equal(t, "3.14", toks[1].Lexeme)
	require.Equal(t, "0", toks[2].Lexeme)
}

func TestScanString(t *testing.T) {
	toks := scanAll(`"hello world"`)
	require.Equal(t, token.STRING, toks[0].Kind)
	require.Equal(t, `"hello world"`, toks[0].Lexeme)
}

func TestScanUnterminatedString(t *testing.T) {
	toks := scanAll(`"hello`)
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
	require.Contains(t, toks[0].Lexeme, "unterminated string")
}

func TestScanUnexpectedCharacter(t *testing.T) {
	toks := scanAll("@")
	require.Equal(t, token.ILLEGAL, toks[0].Kind)
	require.Contains(t, toks[0].Lexeme, "unexpected character")
}

func TestScanLineTracking(t *testing.T) {
	toks := scanAll("var a\n= 1;\n// comment\nprint a;")
	lines := map[string]int{}
	for _, tok := range toks {
		if tok.Kind == token.IDENT || tok.Kind == token.PRINT {
			if _, seen := lines[tok.Lexeme]; !seen { // keep each lexeme's first line
				lines[tok.Lexeme] = tok.Line
			}
		}
	}
	require.Equal(t, 1, lines["a"])
	require.Equal(t, 4, lines["print"])
}

func TestScanComment(t *testing.T) {
	toks := scanAll("1 // a comment\n2")
	require.Equal(t, "1", toks[0].Lexeme)
	require.Equal(t, "2", toks[1].Lexeme)
	require.Equal(t, 2, toks[1].Line)
}
