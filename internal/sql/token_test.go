package sql

import (
	"testing"
)

func TestLexer_KeywordsAndIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "case insensitive keywords",
			input: "select FROM Where",
			expected: []Token{
				{Type: TokenSelect, Value: "select"},
				{Type: TokenFrom, Value: "FROM"},
				{Type: TokenWhere, Value: "Where"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "clause keywords",
			input: "GROUP BY HAVING ORDER LIMIT DISTINCT",
			expected: []Token{
				{Type: TokenGroup, Value: "GROUP"},
				{Type: TokenBy, Value: "BY"},
				{Type: TokenHaving, Value: "HAVING"},
				{Type: TokenOrder, Value: "ORDER"},
				{Type: TokenLimit, Value: "LIMIT"},
				{Type: TokenDistinct, Value: "DISTINCT"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "statement keywords",
			input: "EXPLAIN COPY TO",
			expected: []Token{
				{Type: TokenExplain, Value: "EXPLAIN"},
				{Type: TokenCopy, Value: "COPY"},
				{Type: TokenTo, Value: "TO"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "identifier with path characters",
			input: "data/sales.csv",
			expected: []Token{
				{Type: TokenIdent, Value: "data/sales.csv"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "bool literals",
			input: "true FALSE",
			expected: []Token{
				{Type: TokenBool, Value: "true"},
				{Type: TokenBool, Value: "FALSE"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "null literal",
			input: "NULL",
			expected: []Token{
				{Type: TokenNull, Value: "NULL"},
				{Type: TokenEOF, Value: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, Tokenize(tt.input), tt.expected)
		})
	}
}

func TestLexer_Operators(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "comparison operators",
			input: "= != <> < > <= >=",
			expected: []Token{
				{Type: TokenEqual, Value: "="},
				{Type: TokenNotEqual, Value: "!="},
				{Type: TokenNotEqual, Value: "<>"},
				{Type: TokenLess, Value: "<"},
				{Type: TokenGreater, Value: ">"},
				{Type: TokenLessEqual, Value: "<="},
				{Type: TokenGreaterEqual, Value: ">="},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "arithmetic operators",
			input: "+ - * / %",
			expected: []Token{
				{Type: TokenPlus, Value: "+"},
				{Type: TokenMinus, Value: "-"},
				{Type: TokenStar, Value: "*"},
				{Type: TokenSlash, Value: "/"},
				{Type: TokenPercent, Value: "%"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "minus binds to nothing in the lexer",
			input: "price-1",
			expected: []Token{
				{Type: TokenIdent, Value: "price"},
				{Type: TokenMinus, Value: "-"},
				{Type: TokenNumber, Value: "1"},
				{Type: TokenEOF, Value: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, Tokenize(tt.input), tt.expected)
		})
	}
}

func TestLexer_Literals(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Token
	}{
		{
			name:  "integer and float",
			input: "42 3.5",
			expected: []Token{
				{Type: TokenNumber, Value: "42"},
				{Type: TokenNumber, Value: "3.5"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "single quoted string",
			input: "'hello world'",
			expected: []Token{
				{Type: TokenString, Value: "hello world"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "double quoted string",
			input: `"out.csv"`,
			expected: []Token{
				{Type: TokenString, Value: "out.csv"},
				{Type: TokenEOF, Value: ""},
			},
		},
		{
			name:  "escaped quote",
			input: `'it\'s'`,
			expected: []Token{
				{Type: TokenString, Value: "it's"},
				{Type: TokenEOF, Value: ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertTokens(t, Tokenize(tt.input), tt.expected)
		})
	}
}

func TestLexer_ErrorToken(t *testing.T) {
	tokens := Tokenize("a ; b")
	last := tokens[len(tokens)-1]
	if last.Type != TokenError {
		t.Fatalf("expected trailing error token, got %v", last)
	}
	if last.Value != ";" {
		t.Errorf("error token value = %q, want %q", last.Value, ";")
	}
}

func assertTokens(t *testing.T, got, want []Token) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d: %v", len(want), len(got), got)
	}
	for i, tok := range got {
		if tok.Type != want[i].Type {
			t.Errorf("token %d: expected type %v, got %v", i, want[i].Type, tok.Type)
		}
		if tok.Value != want[i].Value {
			t.Errorf("token %d: expected value %q, got %q", i, want[i].Value, tok.Value)
		}
	}
}
