// Package sql provides the SQL front end: a lexer, a recursive-descent
// parser, and the statement/expression AST the planner consumes.
//
// The dialect is deliberately small: single-table SELECT with WHERE,
// GROUP BY, HAVING, ORDER BY and LIMIT, plus EXPLAIN and COPY ... TO.
// Column names in the AST stay unresolved; the logical planner binds them
// against the relation schema.
package sql

import (
	"strings"
	"unicode"
)

// TokenType represents the type of a token.
type TokenType int

const (
	// Keywords
	TokenSelect TokenType = iota
	TokenFrom
	TokenWhere
	TokenAnd
	TokenOr
	TokenNot
	TokenAs
	TokenGroup
	TokenBy
	TokenHaving
	TokenOrder
	TokenAsc
	TokenDesc
	TokenLimit
	TokenNull
	TokenDistinct
	TokenExplain
	TokenCopy
	TokenTo

	// Operators
	TokenEqual        // =
	TokenNotEqual     // != or <>
	TokenLess         // <
	TokenGreater      // >
	TokenLessEqual    // <=
	TokenGreaterEqual // >=
	TokenPlus         // +
	TokenMinus        // -
	TokenStar         // * (multiplication or wildcard, by context)
	TokenSlash        // /
	TokenPercent      // %

	// Literals
	TokenString
	TokenNumber
	TokenIdent
	TokenBool

	// Delimiters
	TokenComma      // ,
	TokenLeftParen  // (
	TokenRightParen // )

	// Special
	TokenEOF
	TokenError
)

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Value string
}

// Lexer tokenizes SQL statement strings.
type Lexer struct {
	input string
	pos   int
	ch    rune
}

// NewLexer creates a new lexer over the input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = rune(l.input[l.pos])
	}
	l.pos++
}

func (l *Lexer) peekChar() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return rune(l.input[l.pos])
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readString reads a quoted string literal.
func (l *Lexer) readString(quote rune) string {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				result.WriteRune('\n')
			case 't':
				result.WriteRune('\t')
			case '\\':
				result.WriteRune('\\')
			case quote:
				result.WriteRune(quote)
			default:
				result.WriteRune(l.ch)
			}
		} else {
			result.WriteRune(l.ch)
		}
		l.readChar()
	}

	if l.ch == quote {
		l.readChar() // skip closing quote
	}

	return result.String()
}

// readNumber reads an unsigned number; the parser owns unary minus.
func (l *Lexer) readNumber() string {
	var result strings.Builder
	for unicode.IsDigit(l.ch) || l.ch == '.' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

// readIdentifier reads an identifier or keyword, accepting file path
// characters so a FROM clause can name a relation like data/sales.csv.
// Hyphens stay out: a-b must lex as subtraction, so a hyphenated file
// name is quoted in FROM.
func (l *Lexer) readIdentifier() string {
	var result strings.Builder
	for unicode.IsLetter(l.ch) || unicode.IsDigit(l.ch) || l.ch == '_' || l.ch == '.' || l.ch == '/' {
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String()
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	var tok Token

	switch l.ch {
	case 0:
		tok = Token{Type: TokenEOF, Value: ""}
	case '=':
		tok = Token{Type: TokenEqual, Value: "="}
		l.readChar()
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TokenNotEqual, Value: "!="}
			l.readChar()
		} else {
			tok = Token{Type: TokenError, Value: "!"}
			l.readChar()
		}
	case '<':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok = Token{Type: TokenLessEqual, Value: "<="}
			l.readChar()
		case '>':
			l.readChar()
			tok = Token{Type: TokenNotEqual, Value: "<>"}
			l.readChar()
		default:
			tok = Token{Type: TokenLess, Value: "<"}
			l.readChar()
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = Token{Type: TokenGreaterEqual, Value: ">="}
			l.readChar()
		} else {
			tok = Token{Type: TokenGreater, Value: ">"}
			l.readChar()
		}
	case '\'', '"':
		quote := l.ch
		tok = Token{Type: TokenString, Value: l.readString(quote)}
	case '+':
		tok = Token{Type: TokenPlus, Value: "+"}
		l.readChar()
	case '-':
		tok = Token{Type: TokenMinus, Value: "-"}
		l.readChar()
	case '*':
		tok = Token{Type: TokenStar, Value: "*"}
		l.readChar()
	case '/':
		tok = Token{Type: TokenSlash, Value: "/"}
		l.readChar()
	case '%':
		tok = Token{Type: TokenPercent, Value: "%"}
		l.readChar()
	case ',':
		tok = Token{Type: TokenComma, Value: ","}
		l.readChar()
	case '(':
		tok = Token{Type: TokenLeftParen, Value: "("}
		l.readChar()
	case ')':
		tok = Token{Type: TokenRightParen, Value: ")"}
		l.readChar()
	default:
		if unicode.IsDigit(l.ch) {
			tok = Token{Type: TokenNumber, Value: l.readNumber()}
		} else if unicode.IsLetter(l.ch) || l.ch == '_' {
			value := l.readIdentifier()
			tok = Token{Type: identifierType(value), Value: value}
		} else {
			tok = Token{Type: TokenError, Value: string(l.ch)}
			l.readChar()
		}
	}

	return tok
}

var keywords = map[string]TokenType{
	"select":   TokenSelect,
	"from":     TokenFrom,
	"where":    TokenWhere,
	"and":      TokenAnd,
	"or":       TokenOr,
	"not":      TokenNot,
	"as":       TokenAs,
	"group":    TokenGroup,
	"by":       TokenBy,
	"having":   TokenHaving,
	"order":    TokenOrder,
	"asc":      TokenAsc,
	"desc":     TokenDesc,
	"limit":    TokenLimit,
	"null":     TokenNull,
	"distinct": TokenDistinct,
	"explain":  TokenExplain,
	"copy":     TokenCopy,
	"to":       TokenTo,
	"true":     TokenBool,
	"false":    TokenBool,
}

// identifierType determines whether an identifier is a keyword.
func identifierType(ident string) TokenType {
	if tokType, ok := keywords[strings.ToLower(ident)]; ok {
		return tokType
	}
	return TokenIdent
}

// Tokenize returns all tokens from the input, ending with EOF or the first
// error token.
func Tokenize(input string) []Token {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok := lexer.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}

	return tokens
}
