package sql

import (
	"strconv"
	"strings"

	"csvql/internal/types"
)

// Parser builds statement ASTs from a token stream.
type Parser struct {
	tokens []Token
	pos    int
}

// Parse parses a single SQL statement.
func Parse(input string) (Statement, error) {
	tokens := Tokenize(input)
	last := tokens[len(tokens)-1]
	if last.Type == TokenError {
		return nil, parseErrf("unexpected character %q", last.Value)
	}
	p := &Parser{tokens: tokens}

	var stmt Statement
	var err error
	switch p.current().Type {
	case TokenExplain:
		p.advance()
		body, berr := p.parseSelect()
		if berr != nil {
			return nil, berr
		}
		stmt = &ExplainStatement{Body: body}
	case TokenCopy:
		stmt, err = p.parseCopy()
	case TokenSelect:
		stmt, err = p.parseSelect()
	default:
		return nil, parseErrf("expected SELECT, EXPLAIN or COPY, got %s", describeToken(p.current()))
	}
	if err != nil {
		return nil, err
	}

	if p.current().Type != TokenEOF {
		return nil, parseErrf("unexpected %s after statement", describeToken(p.current()))
	}
	return stmt, nil
}

// ParseSelect parses input that must be a plain SELECT statement.
func ParseSelect(input string) (*SelectStatement, error) {
	stmt, err := Parse(input)
	if err != nil {
		return nil, err
	}
	sel, ok := stmt.(*SelectStatement)
	if !ok {
		return nil, parseErrf("expected a SELECT statement")
	}
	return sel, nil
}

func (p *Parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peek() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos+1]
}

func (p *Parser) advance() Token {
	tok := p.current()
	p.pos++
	return tok
}

func (p *Parser) expect(t TokenType, what string) (Token, error) {
	if p.current().Type != t {
		return Token{}, parseErrf("expected %s, got %s", what, describeToken(p.current()))
	}
	return p.advance(), nil
}

// parseCopy parses COPY (<select>) TO '<path>'.
func (p *Parser) parseCopy() (Statement, error) {
	p.advance() // COPY
	if _, err := p.expect(TokenLeftParen, "( after COPY"); err != nil {
		return nil, err
	}
	body, err := p.parseSelect()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenRightParen, ") after COPY query"); err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenTo, "TO"); err != nil {
		return nil, err
	}
	path, err := p.expect(TokenString, "quoted file path")
	if err != nil {
		return nil, err
	}
	return &CopyStatement{Body: body, Path: path.Value}, nil
}

func (p *Parser) parseSelect() (*SelectStatement, error) {
	if _, err := p.expect(TokenSelect, "SELECT"); err != nil {
		return nil, err
	}

	stmt := &SelectStatement{}

	items, err := p.parseSelectList()
	if err != nil {
		return nil, err
	}
	stmt.Items = items

	if p.current().Type == TokenFrom {
		p.advance()
		switch p.current().Type {
		case TokenIdent, TokenString:
			stmt.From = p.advance().Value
		default:
			return nil, parseErrf("expected relation name after FROM, got %s", describeToken(p.current()))
		}
	}

	if p.current().Type == TokenWhere {
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Where = expr
	}

	if p.current().Type == TokenGroup {
		p.advance()
		if _, err := p.expect(TokenBy, "BY after GROUP"); err != nil {
			return nil, err
		}
		for {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt.GroupBy = append(stmt.GroupBy, expr)
			if p.current().Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if p.current().Type == TokenHaving {
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Having = expr
	}

	if p.current().Type == TokenOrder {
		p.advance()
		if _, err := p.expect(TokenBy, "BY after ORDER"); err != nil {
			return nil, err
		}
		for {
			expr, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			item := OrderItem{Expr: expr}
			switch p.current().Type {
			case TokenAsc:
				p.advance()
			case TokenDesc:
				item.Desc = true
				p.advance()
			}
			stmt.OrderBy = append(stmt.OrderBy, item)
			if p.current().Type != TokenComma {
				break
			}
			p.advance()
		}
	}

	if p.current().Type == TokenLimit {
		p.advance()
		negative := false
		if p.current().Type == TokenMinus {
			negative = true
			p.advance()
		}
		tok, err := p.expect(TokenNumber, "row count after LIMIT")
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, parseErrf("invalid LIMIT count %q", tok.Value)
		}
		if negative {
			n = -n
		}
		stmt.Limit = &n
	}

	return stmt, nil
}

func (p *Parser) parseSelectList() ([]SelectItem, error) {
	var items []SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.current().Type != TokenComma {
			break
		}
		p.advance()
	}
	return items, nil
}

func (p *Parser) parseSelectItem() (SelectItem, error) {
	if p.current().Type == TokenStar {
		p.advance()
		return SelectItem{Star: true}, nil
	}

	expr, err := p.parseExpr()
	if err != nil {
		return SelectItem{}, err
	}
	item := SelectItem{Expr: expr}

	if p.current().Type == TokenAs {
		p.advance()
		alias, err := p.expect(TokenIdent, "alias after AS")
		if err != nil {
			return SelectItem{}, err
		}
		item.Alias = alias.Value
	}
	return item, nil
}

// Expression grammar, loosest to tightest binding:
//
//	expr    = and ( OR and )*
//	and     = not ( AND not )*
//	not     = NOT not | cmp
//	cmp     = add ( (= != <> < <= > >=) add )?
//	add     = mul ( (+ -) mul )*
//	mul     = unary ( (* / %) unary )*
//	unary   = - unary | primary
//	primary = literal | column | aggregate | ( expr )
func (p *Parser) parseExpr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.current().Type == TokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.current().Type == TokenNot {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: OpNot, Operand: operand}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[TokenType]BinaryOp{
	TokenEqual:        OpEq,
	TokenNotEqual:     OpNeq,
	TokenLess:         OpLt,
	TokenLessEqual:    OpLte,
	TokenGreater:      OpGt,
	TokenGreaterEqual: OpGte,
}

func (p *Parser) parseComparison() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if op, ok := comparisonOps[p.current().Type]; ok {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) parseAdditive() (Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.current().Type {
		case TokenPlus:
			op = OpAdd
		case TokenMinus:
			op = OpSub
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseMultiplicative() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch p.current().Type {
		case TokenStar:
			op = OpMul
		case TokenSlash:
			op = OpDiv
		case TokenPercent:
			op = OpMod
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (Expr, error) {
	if p.current().Type == TokenMinus {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		// Fold a negated literal so -3 stays a plain Integer literal.
		if lit, ok := operand.(*LiteralExpr); ok {
			switch lit.Value.Kind() {
			case types.KindInt:
				return &LiteralExpr{Value: types.NewInt(-lit.Value.Int())}, nil
			case types.KindFloat:
				return &LiteralExpr{Value: types.NewFloat(-lit.Value.Float())}, nil
			}
		}
		return &UnaryExpr{Op: OpNeg, Operand: operand}, nil
	}
	return p.parsePrimary()
}

var aggregateFuncs = map[string]AggregateFunc{
	"count": AggCount,
	"sum":   AggSum,
	"avg":   AggAvg,
	"min":   AggMin,
	"max":   AggMax,
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.current()
	switch tok.Type {
	case TokenNumber:
		p.advance()
		if strings.Contains(tok.Value, ".") {
			f, err := strconv.ParseFloat(tok.Value, 64)
			if err != nil {
				return nil, parseErrf("invalid number %q", tok.Value)
			}
			return &LiteralExpr{Value: types.NewFloat(f)}, nil
		}
		i, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return nil, parseErrf("invalid number %q", tok.Value)
		}
		return &LiteralExpr{Value: types.NewInt(i)}, nil
	case TokenString:
		p.advance()
		return &LiteralExpr{Value: types.NewText(tok.Value)}, nil
	case TokenBool:
		p.advance()
		return &LiteralExpr{Value: types.NewBool(strings.EqualFold(tok.Value, "true"))}, nil
	case TokenNull:
		p.advance()
		return &LiteralExpr{Value: types.Null}, nil
	case TokenLeftParen:
		p.advance()
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen, ")"); err != nil {
			return nil, err
		}
		return expr, nil
	case TokenIdent:
		if fn, ok := aggregateFuncs[strings.ToLower(tok.Value)]; ok && p.peek().Type == TokenLeftParen {
			return p.parseAggregate(fn)
		}
		p.advance()
		return &ColumnExpr{Name: tok.Value}, nil
	default:
		return nil, parseErrf("unexpected %s in expression", describeToken(tok))
	}
}

func (p *Parser) parseAggregate(fn AggregateFunc) (Expr, error) {
	p.advance() // function name
	p.advance() // (

	agg := &AggregateExpr{Func: fn}

	if p.current().Type == TokenDistinct {
		agg.Distinct = true
		p.advance()
	}

	if p.current().Type == TokenStar {
		if fn != AggCount {
			return nil, parseErrf("%s(*) is not supported, only COUNT(*)", fn)
		}
		if agg.Distinct {
			return nil, parseErrf("COUNT(DISTINCT *) is not supported")
		}
		p.advance()
	} else {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		agg.Arg = arg
	}

	if _, err := p.expect(TokenRightParen, ") after aggregate argument"); err != nil {
		return nil, err
	}
	return agg, nil
}
