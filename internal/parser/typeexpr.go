package parser

import (
	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/token"
)

// parseTypeExpr parses a type as written in source: a named type
// (optionally generic), a tuple, an array/slice, or a raw-pointer/fn
// type.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	start := p.cur().Span
	switch p.kind() {
	case token.Star:
		p.advance()
		pointee := p.parseTypeExpr()
		return &ast.RefTypeExpr{Base: p.base(start), Pointee: pointee}
	case token.KwClosure: // `fn(Args) -> Ret`
		p.advance()
		p.expect(token.LParen)
		var params []ast.TypeExpr
		for !p.check(token.RParen) && !p.atEnd() {
			params = append(params, p.parseTypeExpr())
			if !p.match(token.Comma) {
				break
			}
		}
		p.expect(token.RParen)
		ret := p.parseReturnType()
		return &ast.RefTypeExpr{Base: p.base(start), IsFn: true, Params: params, Ret: ret}
	case token.LParen:
		p.advance()
		var elems []ast.TypeExpr
		for !p.check(token.RParen) && !p.atEnd() {
			elems = append(elems, p.parseTypeExpr())
			if !p.match(token.Comma) {
				break
			}
		}
		p.expect(token.RParen)
		return &ast.TupleTypeExpr{Base: p.base(start), Elems: elems}
	case token.LBracket:
		p.advance()
		elem := p.parseTypeExpr()
		if p.match(token.Semicolon) {
			lenTok := p.expect(token.Int)
			p.expect(token.RBracket)
			return &ast.ArrayTypeExpr{Base: p.base(start), Elem: elem, Len: parseIntLiteral(lenTok.Text)}
		}
		p.expect(token.RBracket)
		return &ast.SliceTypeExpr{Base: p.base(start), Elem: elem}
	case token.Ident:
		name := p.advance().Text
		var args []ast.TypeExpr
		if p.check(token.Lt) && p.looksLikeTypeArgs() {
			p.advance()
			for !p.check(token.Gt) && !p.atEnd() {
				args = append(args, p.parseTypeExpr())
				if !p.match(token.Comma) {
					break
				}
			}
			p.expect(token.Gt)
		}
		return &ast.NamedTypeExpr{Base: p.base(start), Name: name, Args: args}
	default:
		p.errorf(p.cur().Span, diag.EParseUnexpected, "expected a type, found %s", p.kind())
		p.advance()
		return &ast.NamedTypeExpr{Base: p.base(start), Name: "<error>"}
	}
}

// parseIntLiteral parses a simple (non-suffixed) decimal int literal
// text into an int, defaulting to 0 on malformed input — layout/type
// checking validates array lengths properly; the parser only needs a
// best-effort value for the AST.
func parseIntLiteral(text string) int {
	n := 0
	for _, c := range text {
		if c < '0' || c > '9' {
			continue
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// looksLikeTypeArgs disambiguates `Name<...>` generic arguments from a
// less-than comparison by lookahead: a genuine type-argument list is
// followed eventually by a matching `>` before a token that could not
// appear inside a type (`;`, a newline, `{`, EOF, or any token outside
// the list below; parentheses count as inside), per §4.2's "generic arguments ... disambiguated by lookahead".
func (p *Parser) looksLikeTypeArgs() bool {
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case token.Lt:
			depth++
		case token.Gt:
			depth--
			if depth == 0 {
				return true
			}
		case token.Shr:
			depth -= 2
			if depth <= 0 {
				return true
			}
		case token.Semicolon, token.Newline, token.LBrace, token.Eof:
			return false
		case token.Ident, token.Comma, token.LBracket, token.RBracket,
			token.Star, token.Dot, token.ColonColon, token.LParen, token.RParen,
			token.KwClosure, token.Arrow:
			// plausibly still inside a type argument list
		default:
			return false
		}
	}
	return false
}
