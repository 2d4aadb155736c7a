package parser

import (
	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/token"
)

// parsePrimary parses the innermost, non-recursive-on-the-left forms:
// literals, identifiers, parenthesized/tuple expressions, and the
// keyword-introduced expression forms (if, match, closures, ...).
func (p *Parser) parsePrimary() ast.Expr {
	start := p.cur().Span
	switch p.kind() {
	case token.Int:
		t := p.advance()
		return &ast.LiteralExpr{Base: p.base(start), Kind: ast.LitInt, Text: t.Text}
	case token.Float:
		t := p.advance()
		return &ast.LiteralExpr{Base: p.base(start), Kind: ast.LitFloat, Text: t.Text}
	case token.String:
		t := p.advance()
		return &ast.LiteralExpr{Base: p.base(start), Kind: ast.LitString, Text: t.Text}
	case token.RawString:
		t := p.advance()
		return &ast.LiteralExpr{Base: p.base(start), Kind: ast.LitRawString, Text: t.Text}
	case token.Char:
		t := p.advance()
		return &ast.LiteralExpr{Base: p.base(start), Kind: ast.LitChar, Text: t.Text}
	case token.KwTrue:
		p.advance()
		return &ast.LiteralExpr{Base: p.base(start), Kind: ast.LitBool, Text: "true"}
	case token.KwFalse:
		p.advance()
		return &ast.LiteralExpr{Base: p.base(start), Kind: ast.LitBool, Text: "false"}
	case token.KwNull:
		p.advance()
		return &ast.LiteralExpr{Base: p.base(start), Kind: ast.LitNull}
	case token.KwNone:
		p.advance()
		return &ast.LiteralExpr{Base: p.base(start), Kind: ast.LitNone}
	case token.KwSelf:
		p.advance()
		return &ast.IdentExpr{Base: p.base(start), Name: "self"}
	case token.Ident:
		return p.parseIdentOrStructLit()
	case token.LParen:
		return p.parseParenOrTuple(start)
	case token.LBracket:
		return p.parseArrayLit(start)
	case token.LBrace:
		return p.parseBlockExpr()
	case token.KwIf:
		return p.parseIfExpr()
	case token.KwMatch:
		return p.parseMatchExpr()
	case token.KwClosure:
		return p.parseClosureExpr(start)
	case token.KwSpawn:
		p.advance()
		body := p.parseExprOrBlock()
		return &ast.SpawnExpr{Base: p.base(start), Body: body}
	case token.KwUnsafe:
		p.advance()
		body := p.parseBlockExpr()
		return &ast.UnsafeExpr{Base: p.base(start), Body: body}
	case token.KwComptime:
		p.advance()
		body := p.parseBlockExpr()
		return &ast.ComptimeExpr{Base: p.base(start), Body: body}
	case token.KwAssert:
		return p.parseAssertOrCheck(start, true)
	case token.KwCheck:
		return p.parseAssertOrCheck(start, false)
	case token.KwUsing:
		return p.parseUsingExpr(start)
	case token.KwWith:
		return p.parseWithAsExpr(start)
	case token.KwSelect:
		return p.parseSelectExpr(start)
	case token.KwIs:
		// handled as infix in parseIsOrBinary path below; bare `is` as
		// primary is always an error.
	}
	p.errorf(p.cur().Span, diag.EParseUnexpected, "expected an expression, found %s", p.kind())
	tok := p.advance()
	return &ast.LiteralExpr{Base: ast.NewBase(p.newId(), tok.Span), Kind: ast.LitNull}
}

// parseExprOrBlock parses `{ ... }` as a BlockExpr, or falls back to a
// plain expression (`spawn expr`).
func (p *Parser) parseExprOrBlock() ast.Expr {
	if p.check(token.LBrace) {
		return p.parseBlockExpr()
	}
	return p.parseExpr()
}

func (p *Parser) parseIdentOrStructLit() ast.Expr {
	start := p.cur().Span
	name := p.advance().Text
	if p.check(token.LBrace) && p.looksLikeStructLit() {
		return p.parseStructLitTail(start, &ast.NamedTypeExpr{Base: p.base(start), Name: name})
	}
	return &ast.IdentExpr{Base: p.base(start), Name: name}
}

// looksLikeStructLit disambiguates `Name { field: val }` from a block
// that merely starts with an identifier in contexts where a
// BlockExpr is also valid (e.g. the condition of an `if`): a struct
// literal's brace is immediately followed by `}` (empty), or by
// `ident :`/`ident ,`.
func (p *Parser) looksLikeStructLit() bool {
	if p.noStructLit {
		return false
	}
	i := p.pos + 1
	for i < len(p.toks) && p.toks[i].Kind == token.Newline {
		i++
	}
	if i >= len(p.toks) {
		return false
	}
	if p.toks[i].Kind == token.RBrace {
		return true
	}
	if p.toks[i].Kind != token.Ident {
		return false
	}
	j := i + 1
	for j < len(p.toks) && p.toks[j].Kind == token.Newline {
		j++
	}
	return j < len(p.toks) && (p.toks[j].Kind == token.Colon || p.toks[j].Kind == token.Comma)
}

func (p *Parser) parseStructLitTail(start source.Span, typ ast.TypeExpr) ast.Expr {
	p.expect(token.LBrace)
	p.skipNewlines()
	var fields []ast.StructLitField
	for !p.check(token.RBrace) && !p.atEnd() {
		fstart := p.cur().Span
		fname := p.expect(token.Ident).Text
		p.expect(token.Colon)
		fval := p.parseExpr()
		fields = append(fields, ast.StructLitField{Name: fname, Value: fval, Span: spanFromTo(fstart.Start, p.prevEnd())})
		p.skipFieldSep()
	}
	p.expect(token.RBrace)
	return &ast.StructLitExpr{Base: p.base(start), Type: typ, Fields: fields}
}

func (p *Parser) parseParenOrTuple(start source.Span) ast.Expr {
	p.advance() // '('
	if p.match(token.RParen) {
		return &ast.TupleExpr{Base: p.base(start)}
	}
	first := p.parseExpr()
	if !p.check(token.Comma) {
		p.expect(token.RParen)
		return first
	}
	elems := []ast.Expr{first}
	for p.match(token.Comma) {
		if p.check(token.RParen) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RParen)
	return &ast.TupleExpr{Base: p.base(start), Elems: elems}
}

func (p *Parser) parseArrayLit(start source.Span) ast.Expr {
	p.advance() // '['
	if p.match(token.RBracket) {
		return &ast.ArrayExpr{Base: p.base(start)}
	}
	first := p.parseExpr()
	if p.match(token.Semicolon) {
		count := p.parseExpr()
		p.expect(token.RBracket)
		return &ast.ArrayRepeatExpr{Base: p.base(start), Value: first, Count: count}
	}
	elems := []ast.Expr{first}
	for p.match(token.Comma) {
		if p.check(token.RBracket) {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	p.expect(token.RBracket)
	return &ast.ArrayExpr{Base: p.base(start), Elems: elems}
}

func (p *Parser) parseClosureExpr(start source.Span) ast.Expr {
	p.advance() // 'fn'
	params := p.parseParamList()
	var ret ast.TypeExpr
	if p.check(token.Arrow) {
		ret = p.parseReturnType()
	}
	var body ast.Expr
	if p.match(token.FatArrow) {
		body = p.parseExpr()
	} else {
		body = p.parseBlockExpr()
	}
	return &ast.ClosureExpr{Base: p.base(start), Params: params, Ret: ret, Body: body}
}

func (p *Parser) parseAssertOrCheck(start source.Span, isAssert bool) ast.Expr {
	p.advance()
	p.expect(token.LParen)
	cond := p.parseExpr()
	var msg ast.Expr
	if p.match(token.Comma) {
		msg = p.parseExpr()
	}
	p.expect(token.RParen)
	if isAssert {
		return &ast.AssertExpr{Base: p.base(start), Cond: cond, Msg: msg}
	}
	return &ast.CheckExpr{Base: p.base(start), Cond: cond, Msg: msg}
}

func (p *Parser) parseUsingExpr(start source.Span) ast.Expr {
	p.advance() // 'using'
	cap := p.expect(token.Ident).Text
	body := p.parseBlockExpr()
	return &ast.UsingExpr{Base: p.base(start), Capability: cap, Body: body}
}

func (p *Parser) parseWithAsExpr(start source.Span) ast.Expr {
	p.advance() // 'with'
	resource := p.parseExprNoStructLit()
	p.expect(token.KwAs)
	name := p.expect(token.Ident).Text
	body := p.parseBlockExpr()
	return &ast.WithAsExpr{Base: p.base(start), Resource: resource, Name: name, Body: body}
}

func (p *Parser) parseSelectExpr(start source.Span) ast.Expr {
	p.advance() // 'select'
	p.expect(token.LBrace)
	p.skipNewlines()
	var arms []ast.SelectArm
	for !p.check(token.RBrace) && !p.atEnd() {
		astart := p.cur().Span
		pat := p.parsePattern()
		p.expect(token.Assign)
		ch := p.parseExprNoStructLit()
		p.expect(token.FatArrow)
		body := p.parseArmBody()
		arms = append(arms, ast.SelectArm{Pattern: pat, Chan: ch, Body: body, Span: spanFromTo(astart.Start, p.prevEnd())})
		p.skipFieldSep()
	}
	p.expect(token.RBrace)
	return &ast.SelectExpr{Base: p.base(start), Arms: arms}
}
