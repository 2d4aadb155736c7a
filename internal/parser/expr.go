package parser

import (
	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/token"
)

// spanFromTo builds a Span covering [start, end).
func spanFromTo(start, end int) source.Span {
	return source.Span{Start: start, End: end}
}

// precedence levels, low to high. Matches §4.2's Pratt-style
// expression grammar: assignment is handled at the statement level
// (AssignStmt), so the tightest binder here is the unary/postfix tier.
const (
	precNone = iota
	precOr
	precAnd
	precNullCoalesce
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precAdd
	precMul
	precCast
	precUnary
	precCall
)

var binPrec = map[token.Kind]int{
	token.PipePipe:         precOr,
	token.AmpAmp:           precAnd,
	token.QuestionQuestion: precNullCoalesce,
	token.EqEq:             precCompare,
	token.BangEq:           precCompare,
	token.Lt:               precCompare,
	token.LtEq:             precCompare,
	token.Gt:               precCompare,
	token.GtEq:             precCompare,
	token.Pipe:             precBitOr,
	token.Caret:            precBitXor,
	token.Amp:              precBitAnd,
	token.Shl:              precShift,
	token.Shr:              precShift,
	token.Plus:             precAdd,
	token.Minus:            precAdd,
	token.Star:             precMul,
	token.Slash:            precMul,
	token.Percent:          precMul,
}

var binOpOf = map[token.Kind]ast.BinaryOp{
	token.Plus: ast.OpAdd, token.Minus: ast.OpSub, token.Star: ast.OpMul,
	token.Slash: ast.OpDiv, token.Percent: ast.OpRem,
	token.Amp: ast.OpBitAnd, token.Pipe: ast.OpBitOr, token.Caret: ast.OpBitXor,
	token.Shl: ast.OpShl, token.Shr: ast.OpShr,
	token.EqEq: ast.OpEq, token.BangEq: ast.OpNe,
	token.Lt: ast.OpLt, token.LtEq: ast.OpLe, token.Gt: ast.OpGt, token.GtEq: ast.OpGe,
	token.AmpAmp: ast.OpLogAnd, token.PipePipe: ast.OpLogOr,
}

// parseExpr parses a full expression at the lowest precedence.
func (p *Parser) parseExpr() ast.Expr {
	return p.parseBinary(precOr)
}

// parseExprNoStructLit parses an expression with bare `Name { ... }`
// struct literals disabled, for positions where the brace must belong
// to a following block (if/while/for/match conditions, etc).
func (p *Parser) parseExprNoStructLit() ast.Expr {
	saved := p.noStructLit
	p.noStructLit = true
	x := p.parseExpr()
	p.noStructLit = saved
	return x
}

func (p *Parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		prec, ok := binPrec[p.kind()]
		if !ok || prec < minPrec {
			return left
		}
		op := p.kind()
		p.advance()
		right := p.parseBinary(prec + 1)
		start := left.Span()
		base := ast.NewBase(p.newId(), spanFromTo(start.Start, right.Span().End))
		if op == token.QuestionQuestion {
			left = &ast.NullCoalesceExpr{Base: base, Left: left, Right: right}
			continue
		}
		left = &ast.BinaryExpr{Base: base, Op: binOpOf[op], Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() ast.Expr {
	start := p.cur().Span
	switch p.kind() {
	case token.Minus:
		p.advance()
		x := p.parseUnary()
		return &ast.UnaryExpr{Base: p.base(start), Op: ast.OpNeg, Operand: x}
	case token.Tilde:
		p.advance()
		x := p.parseUnary()
		return &ast.UnaryExpr{Base: p.base(start), Op: ast.OpBitNot, Operand: x}
	case token.Bang:
		p.advance()
		x := p.parseUnary()
		return &ast.UnaryExpr{Base: p.base(start), Op: ast.OpNot, Operand: x}
	case token.KwAs:
		// `as Type` with no operand cannot start an expression; fall
		// through to postfix/primary which will error appropriately.
	}
	return p.parseCast()
}

func (p *Parser) parseCast() ast.Expr {
	x := p.parsePostfix()
	for {
		start := x.Span()
		switch {
		case p.check(token.KwAs):
			p.advance()
			t := p.parseTypeExpr()
			x = &ast.CastExpr{Base: ast.NewBase(p.newId(), spanFromTo(start.Start, p.prevEnd())), X: x, Type: t}
		case p.check(token.KwIs):
			p.advance()
			pat := p.parsePattern()
			x = &ast.IsExpr{Base: ast.NewBase(p.newId(), spanFromTo(start.Start, p.prevEnd())), Value: x, Pattern: pat}
		default:
			return x
		}
	}
}

func (p *Parser) parsePostfix() ast.Expr {
	x := p.parsePrimary()
	for {
		start := x.Span()
		switch p.kind() {
		case token.Dot:
			p.advance()
			name := p.expect(token.Ident).Text
			if p.check(token.LParen) || (p.check(token.ColonColon) && p.peekAt(1).Kind == token.Lt) {
				var targs []ast.TypeExpr
				if p.match(token.ColonColon) {
					p.expect(token.Lt)
					for !p.check(token.Gt) && !p.atEnd() {
						targs = append(targs, p.parseTypeExpr())
						if !p.match(token.Comma) {
							break
						}
					}
					p.expect(token.Gt)
				}
				args := p.parseCallArgs()
				x = &ast.MethodCallExpr{Base: p.baseFrom(start.Start), Receiver: x, Name: name, TypeArgs: targs, Args: args}
				x = p.maybeAttachTrailingBlock(start.Start, x)
			} else {
				x = &ast.FieldExpr{Base: p.baseFrom(start.Start), Receiver: x, Name: name}
			}
		case token.QuestionDot:
			p.advance()
			name := p.expect(token.Ident).Text
			x = &ast.FieldExpr{Base: p.baseFrom(start.Start), Receiver: x, Name: name, Optional: true}
		case token.LParen:
			args := p.parseCallArgs()
			x = &ast.CallExpr{Base: p.baseFrom(start.Start), Callee: x, Args: args}
			x = p.maybeAttachTrailingBlock(start.Start, x)
		case token.LBracket:
			p.advance()
			idx := p.parseExpr()
			p.expect(token.RBracket)
			x = &ast.IndexExpr{Base: p.baseFrom(start.Start), Receiver: x, Index: idx}
		case token.Question:
			p.advance()
			x = &ast.TryExpr{Base: p.baseFrom(start.Start), X: x}
		case token.DotDot, token.DotDotEq:
			inclusive := p.kind() == token.DotDotEq
			p.advance()
			var end ast.Expr
			if p.startsExpr() {
				end = p.parseUnary()
			}
			x = &ast.RangeExpr{Base: p.baseFrom(start.Start), Start: x, End: end, Inclusive: inclusive}
		default:
			return x
		}
	}
}

// exprAllowsTrailingBlock reports whether a trailing `{ ... }` after a
// call should be parsed as a BlockCallExpr's closure trailer rather
// than, say, the start of an unrelated block in statement position.
// Only calls (bare or method) take a trailer.
func (p *Parser) exprAllowsTrailingBlock(x ast.Expr) bool {
	switch x.(type) {
	case *ast.CallExpr, *ast.MethodCallExpr:
		return true
	default:
		return false
	}
}

// maybeAttachTrailingBlock wraps call in a BlockCallExpr if it is
// immediately followed by `{ ... }` (trailing-closure call syntax).
// Suppressed by noStructLit for the same reason struct literals are:
// a condition/scrutinee/iterable's trailing brace belongs to the
// keyword's own block, not to the last call inside it.
func (p *Parser) maybeAttachTrailingBlock(startPos int, call ast.Expr) ast.Expr {
	if p.noStructLit || !p.check(token.LBrace) || !p.exprAllowsTrailingBlock(call) {
		return call
	}
	trailer := p.parseClosureBody(startPos)
	return &ast.BlockCallExpr{Base: p.baseFrom(startPos), Call: call, Trailer: trailer}
}

func (p *Parser) parseClosureBody(startPos int) *ast.ClosureExpr {
	body := p.parseBlockExpr()
	return &ast.ClosureExpr{Base: p.baseFrom(startPos), Body: body}
}

func (p *Parser) baseFrom(startPos int) ast.Base {
	return ast.NewBase(p.newId(), spanFromTo(startPos, p.prevEnd()))
}

func (p *Parser) parseCallArgs() []ast.Expr {
	p.expect(token.LParen)
	var args []ast.Expr
	for !p.check(token.RParen) && !p.atEnd() {
		args = append(args, p.parseExpr())
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RParen)
	return args
}

// startsExpr reports whether the current token could begin an
// expression, used to distinguish open-ended ranges (`a..`) from a
// range with an explicit end.
func (p *Parser) startsExpr() bool {
	switch p.kind() {
	case token.RParen, token.RBracket, token.RBrace, token.Comma, token.Semicolon,
		token.Newline, token.Eof, token.FatArrow:
		return false
	default:
		return true
	}
}
