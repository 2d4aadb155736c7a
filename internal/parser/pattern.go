package parser

import (
	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/token"
)

// parsePattern parses a match/binding pattern: a wildcard, a literal,
// a bare-name binding, a tuple, or an enum/struct constructor pattern.
func (p *Parser) parsePattern() ast.Pattern {
	start := p.cur().Span
	switch p.kind() {
	case token.Ident:
		if p.kind() == token.Ident && p.cur().Text == "_" {
			p.advance()
			return &ast.WildcardPattern{Base: p.base(start)}
		}
		return p.parseConstructorOrBindPattern(start)
	case token.Int, token.Float, token.String, token.RawString, token.Char, token.KwTrue, token.KwFalse:
		lit := p.parsePrimary()
		return &ast.LiteralPattern{Base: p.base(start), Value: lit}
	case token.LParen:
		p.advance()
		var elems []ast.Pattern
		for !p.check(token.RParen) && !p.atEnd() {
			elems = append(elems, p.parsePattern())
			if !p.match(token.Comma) {
				break
			}
		}
		p.expect(token.RParen)
		return &ast.TuplePattern{Base: p.base(start), Elems: elems}
	default:
		tok := p.advance()
		_ = tok
		return &ast.WildcardPattern{Base: p.base(start)}
	}
}

// parseConstructorOrBindPattern handles `name`, `name(pat, ...)`,
// `Type.Variant`, `Type.Variant(pat, ...)` and `Type { field: pat }`.
func (p *Parser) parseConstructorOrBindPattern(start source.Span) ast.Pattern {
	name := p.advance().Text
	for p.check(token.Dot) && p.peekAt(1).Kind == token.Ident {
		p.advance()
		name += "." + p.advance().Text
	}
	switch p.kind() {
	case token.LParen:
		p.advance()
		var fields []ast.Pattern
		for !p.check(token.RParen) && !p.atEnd() {
			fields = append(fields, p.parsePattern())
			if !p.match(token.Comma) {
				break
			}
		}
		p.expect(token.RParen)
		return &ast.ConstructorPattern{Base: p.base(start), Name: name, Fields: fields}
	case token.LBrace:
		if p.noStructLit {
			break
		}
		p.advance()
		p.skipNewlines()
		var fields []ast.Pattern
		var fieldNames []string
		for !p.check(token.RBrace) && !p.atEnd() {
			fname := p.expect(token.Ident).Text
			p.expect(token.Colon)
			fpat := p.parsePattern()
			fieldNames = append(fieldNames, fname)
			fields = append(fields, fpat)
			p.skipFieldSep()
		}
		p.expect(token.RBrace)
		return &ast.ConstructorPattern{Base: p.base(start), Name: name, Fields: fields, FieldNames: fieldNames}
	}
	return &ast.BindPattern{Base: p.base(start), Name: name}
}
