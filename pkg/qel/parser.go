package qel

import "strconv"

// ----------------------------------------------------------------------------
// Parser: recursive descent, one-token lookahead.
//
// A single []Token slice plus a cursor, since each Token already carries its
// kind and text together; one parse function per grammar production
// (parseVarDecl, parseFor, parseFunctionDef, parseGateCall, parseStructDef,
// parseReturn...), dispatched by token kind from parseStatement. Ranges are
// parsed inside parseExpr and assignments inside parsePostfix.

// Parser holds the token slice and a cursor; it never backtracks except by peek.
type Parser struct {
	tokens []Token
	pos    int
}

// NewParser returns a Parser positioned at the start of tokens.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse lexes source and parses it into a Program in one call.
func Parse(source string) (*Program, error) {
	p := NewParser(Lex(source))
	return p.ParseProgram()
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Kind: KindEOF}
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekKind() Kind { return p.peek().Kind }

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(kind Kind) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return Token{}, parseErrorf("expected token kind %d, got %q", kind, tok.Text)
	}
	return p.advance(), nil
}

// expectDeclName consumes a declaration identifier: only a fresh (not yet
// declared) name is accepted here; reusing a declared name where a new name
// is required is a parse error.
func (p *Parser) expectDeclName() (string, error) {
	tok := p.peek()
	if tok.Kind != KindNew {
		return "", parseErrorf("expected new name, got %q", tok.Text)
	}
	p.advance()
	return tok.Text, nil
}

// ParseProgram parses the whole token stream into a Program root.
func (p *Parser) ParseProgram() (*Program, error) {
	var statements []Node
	for {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt == nil && p.peekKind() == KindEOF {
			break
		}
		if stmt != nil {
			statements = append(statements, stmt)
		}
	}
	return &Program{Statements: statements}, nil
}

// parseBlock parses statements up to (not including) a closing '}'.
func (p *Parser) parseBlock() (*Block, error) {
	var statements []Node
	for p.peekKind() != KindRBrace && p.peekKind() != KindEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			statements = append(statements, stmt)
		}
	}
	return &Block{Statements: statements}, nil
}

// parseStatement parses exactly one top-level or block statement, or returns
// (nil, nil) at a block/program terminator ('}' or EOF).
func (p *Parser) parseStatement() (Node, error) {
	switch kind := p.peekKind(); {
	case kind == KindRBrace || kind == KindEOF:
		return nil, nil
	case kind == KindSemicolon:
		p.advance()
		return nil, nil
	case kind == KindLet || kind == KindConst:
		return p.parseVarDecl()
	case kind == KindFor:
		return p.parseFor()
	case kind == KindStruct:
		return p.parseStructDef()
	case kind == KindReturn:
		return p.parseReturn()
	case kind == KindBreak:
		return p.parseBreak()
	case gateKinds[kind]:
		return p.parseGateCall()
	case kind == KindVoid || kind == KindQbit || kind == KindQudit:
		return p.parseFunctionDef()
	case kind == KindNew && p.tokens[p.pos+1].Kind == KindNew:
		// A declaration name immediately followed by another declaration name
		// can only be a custom-typed function def ("type name(...)"); a bare
		// expression statement never starts with two consecutive new names.
		return p.parseFunctionDef()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseFunctionDef() (*FunctionDef, error) {
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.expectDeclName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindLParen); err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindRParen); err != nil {
		return nil, err
	}

	if p.peekKind() == KindSemicolon {
		p.advance()
		return &FunctionDef{Name: name, ReturnType: typ, Params: params, Body: nil}, nil
	}
	if _, err := p.expect(KindLBrace); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindRBrace); err != nil {
		return nil, err
	}
	return &FunctionDef{Name: name, ReturnType: typ, Params: params, Body: body}, nil
}

func (p *Parser) parseParams() ([]*VariableDecl, error) {
	var params []*VariableDecl
	for p.peekKind() != KindRParen {
		name, err := p.expectDeclName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(KindColon); err != nil {
			return nil, err
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, &VariableDecl{Name: name, Type: typ, Kind: DeclParam})
		if p.peekKind() == KindComma {
			p.advance()
			continue
		}
		break
	}
	return params, nil
}

func (p *Parser) parseVarDecl() (*VariableDecl, error) {
	kindTok := p.advance()
	declKind := DeclLet
	if kindTok.Kind == KindConst {
		declKind = DeclConst
	}

	name, err := p.expectDeclName()
	if err != nil {
		return nil, err
	}

	var typ Node
	if p.peekKind() == KindColon {
		p.advance()
		typ, err = p.parseType()
		if err != nil {
			return nil, err
		}
	}

	var value Node
	if p.peekKind() == KindEquals {
		p.advance()
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(KindSemicolon); err != nil {
		return nil, err
	}
	return &VariableDecl{Name: name, Value: value, Type: typ, Kind: declKind}, nil
}

func (p *Parser) parseStructDef() (*Struct, error) {
	p.advance() // 'struct'
	name, err := p.expectDeclName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindLBrace); err != nil {
		return nil, err
	}
	var members []*VariableDecl
	for p.peekKind() != KindRBrace {
		member, err := p.parseVarDecl()
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	if _, err := p.expect(KindRBrace); err != nil {
		return nil, err
	}
	return &Struct{Name: name, Members: members}, nil
}

func (p *Parser) parseFor() (*For, error) {
	p.advance() // 'for'
	if _, err := p.expect(KindLParen); err != nil {
		return nil, err
	}
	alias, err := p.expectDeclName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindIn); err != nil {
		return nil, err
	}
	container, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindRParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(KindLBrace); err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindRBrace); err != nil {
		return nil, err
	}
	return &For{Alias: alias, Container: container, Body: body}, nil
}

func (p *Parser) parseReturn() (*Return, error) {
	p.advance() // 'return'
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindSemicolon); err != nil {
		return nil, err
	}
	return &Return{Value: value}, nil
}

func (p *Parser) parseBreak() (*BreakStmt, error) {
	p.advance() // 'break'
	if _, err := p.expect(KindSemicolon); err != nil {
		return nil, err
	}
	return &BreakStmt{}, nil
}

// parseGateCall handles the bare, unparenthesized argument-list form used by
// gate mnemonics (S3-S5): GATE arg {',' arg} ';'.
func (p *Parser) parseGateCall() (*GateCall, error) {
	name := p.advance().Text
	args, err := p.parseArgList(KindSemicolon)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindSemicolon); err != nil {
		return nil, err
	}
	return &GateCall{Name: name, Args: args}, nil
}

func (p *Parser) parseExprStatement() (Node, error) {
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindSemicolon); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseArgList reads a comma-separated argument list up to (not including)
// closing, which the caller consumes. Parenthesized function-call args
// (closing ')') and bare gate args (closing ';') share this one implementation.
func (p *Parser) parseArgList(closing Kind) ([]Node, error) {
	var args []Node
	for p.peekKind() != closing {
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.peekKind() == KindComma {
			p.advance()
			continue
		}
		break
	}
	return args, nil
}

// parseExpr implements the left-extending postfix loop: a primary is parsed
// once, then postfix operators are applied repeatedly until a terminator is
// peeked.
func (p *Parser) parseExpr() (Node, error) {
	switch p.peekKind() {
	case KindLiteral:
		tok := p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, parseErrorf("malformed integer literal %q", tok.Text)
		}
		if p.peekKind() == KindRange {
			p.advance()
			endTok, err := p.expect(KindLiteral)
			if err != nil {
				return nil, err
			}
			end, err := strconv.ParseInt(endTok.Text, 10, 64)
			if err != nil {
				return nil, parseErrorf("malformed integer literal %q", endTok.Text)
			}
			return &Range{Start: &Num{Value: n}, End: &Num{Value: end}}, nil
		}
		return &Num{Value: n}, nil

	case KindStar:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Dereference{Value: inner}, nil

	case KindAmpersand:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &Reference{Value: inner}, nil

	case KindDollar:
		p.advance()
		idx, err := p.parseIndexExpr()
		if err != nil {
			return nil, err
		}
		return &ExternArg{Index: idx}, nil

	case KindNew, KindOld:
		tok := p.advance()
		var node Node = &VariableCall{Name: tok.Text}
		return p.parsePostfix(node)

	default:
		return nil, parseErrorf("unexpected token %q in expression", p.peek().Text)
	}
}

// parsePostfix accumulates postfix applications onto node until a terminator
// is peeked (';', ')', ',', ']', or anything else not recognised as postfix).
func (p *Parser) parsePostfix(node Node) (Node, error) {
	for {
		switch p.peekKind() {
		case KindLParen:
			call, ok := node.(*VariableCall)
			if !ok {
				return nil, parseErrorf("call postfix applied to a non-callable expression")
			}
			p.advance()
			args, err := p.parseArgList(KindRParen)
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(KindRParen); err != nil {
				return nil, err
			}
			node = &FunctionCall{Callee: call.Name, Args: args}

		case KindLBracket:
			p.advance()
			idx, err := p.parseIndexExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(KindRBracket); err != nil {
				return nil, err
			}
			node = &ArrayAccess{Base: node, Index: idx}

		case KindDollar:
			p.advance()
			idx, err := p.parseIndexExpr()
			if err != nil {
				return nil, err
			}
			node = &ArrayAccess{Base: node, Index: &ExternArg{Index: idx}}

		case KindDot:
			p.advance()
			memberTok := p.advance()
			node = &StructAccess{Base: node, Member: memberTok.Text}

		case KindEquals:
			p.advance()
			rvalue, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &Assignment{LValue: node, RValue: rvalue}, nil

		default:
			return node, nil
		}
	}
}

// parseIndexExpr parses a subscript/array-size index: a literal, an iterator
// reference, or a nested extern placeholder.
func (p *Parser) parseIndexExpr() (Node, error) {
	switch p.peekKind() {
	case KindLiteral:
		tok := p.advance()
		n, err := strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return nil, parseErrorf("malformed integer literal %q", tok.Text)
		}
		return &Num{Value: n}, nil
	case KindNew, KindOld:
		tok := p.advance()
		return &IntCall{Name: tok.Text}, nil
	case KindDollar:
		p.advance()
		inner, err := p.parseIndexExpr()
		if err != nil {
			return nil, err
		}
		return &ExternArg{Index: inner}, nil
	default:
		return nil, parseErrorf("expected index expression, got %q", p.peek().Text)
	}
}

// parseType parses a type reference: a built-in leaf (qbit/qudit/void), a
// pointer, or a custom name. qbit, qudit and custom names may carry an
// array-size suffix; void and a pointer itself do not.
func (p *Parser) parseType() (Node, error) {
	switch p.peekKind() {
	case KindVoid:
		p.advance()
		return &Type{Specifier: SpecVoid}, nil

	case KindStar:
		p.advance()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &PointerType{Pointee: inner}, nil

	case KindQbit:
		p.advance()
		return p.maybeArraySuffix(&Type{Specifier: SpecQbit})

	case KindQudit:
		p.advance()
		return p.maybeArraySuffix(&Type{Specifier: SpecQdit})

	case KindNew, KindOld:
		tok := p.advance()
		return p.maybeArraySuffix(&Type{Name: tok.Text, Specifier: SpecCustom})

	default:
		return nil, parseErrorf("expected type, got %q", p.peek().Text)
	}
}

// maybeArraySuffix wraps elem in an ArrayType if a '[' size ']' suffix follows.
func (p *Parser) maybeArraySuffix(elem Node) (Node, error) {
	if p.peekKind() != KindLBracket {
		return elem, nil
	}
	p.advance()
	size, err := p.parseIndexExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(KindRBracket); err != nil {
		return nil, err
	}
	return &ArrayType{Elem: elem, Size: size}, nil
}
