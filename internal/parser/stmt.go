package parser

import (
	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/token"
)

// parseBlockExpr parses `{ stmt; stmt; tail? }`. A block's value is
// its trailing expression (one with no terminating newline/semicolon
// before `}`), or unit if the last thing is a statement.
func (p *Parser) parseBlockExpr() *ast.BlockExpr {
	start := p.cur().Span
	p.expect(token.LBrace)
	p.skipNewlines()
	var stmts []ast.Stmt
	var tail ast.Expr
	for !p.check(token.RBrace) && !p.atEnd() {
		if p.full() {
			break
		}
		s, trailing := p.parseStmtOrTailExpr()
		if trailing != nil {
			tail = trailing
			p.skipNewlines()
			break
		}
		if s != nil {
			stmts = append(stmts, s)
		}
		p.terminateStmt()
	}
	p.expect(token.RBrace)
	return &ast.BlockExpr{Base: p.base(start), Stmts: stmts, Tail: tail}
}

// terminateStmt consumes the newline/semicolon that ends a statement,
// tolerating a block being the last thing before `}`.
func (p *Parser) terminateStmt() {
	for p.check(token.Newline) || p.check(token.Semicolon) {
		p.advance()
	}
}

// parseStmtOrTailExpr parses one block element. If it turns out to be
// a bare expression with no statement terminator before the closing
// brace, it is returned as the block's tail expression instead of a
// Stmt.
func (p *Parser) parseStmtOrTailExpr() (ast.Stmt, ast.Expr) {
	start := p.cur().Span
	switch p.kind() {
	case token.KwLet:
		return p.parseLetStmt(start), nil
	case token.KwConst:
		return p.parseConstStmt(start), nil
	case token.KwReturn:
		return p.parseReturnStmt(start), nil
	case token.KwBreak:
		return p.parseLoopControl(start, ast.CtrlBreak), nil
	case token.KwContinue:
		return p.parseLoopControl(start, ast.CtrlContinue), nil
	case token.KwDeliver:
		return p.parseLoopControl(start, ast.CtrlDeliver), nil
	case token.KwWhile:
		return p.wrapExprStmtOrTail(p.parseWhileOrWhileLet(start))
	case token.KwFor:
		return p.wrapExprStmtOrTail(p.parseForStmt(start))
	case token.KwLoop:
		return p.wrapExprStmtOrTail(p.parseLoopStmt(start))
	case token.KwEnsure:
		return p.parseEnsureStmt(start), nil
	case token.KwComptime:
		return p.wrapExprStmtOrTail(p.parseComptimeStmtOrExpr(start))
	default:
		x := p.parseExpr()
		if p.match(token.Assign) {
			rhs := p.parseExpr()
			return &ast.AssignStmt{Base: p.base(start), Target: x, Value: rhs}, nil
		}
		if compound, ok := compoundAssignOps[p.kind()]; ok {
			p.advance()
			rhs := p.parseExpr()
			desugared := &ast.BinaryExpr{Base: p.base(start), Op: compound, Left: x, Right: rhs}
			return &ast.AssignStmt{Base: p.base(start), Target: x, Value: desugared}, nil
		}
		return p.wrapExprStmtOrTail(x)
	}
}

var compoundAssignOps = map[token.Kind]ast.BinaryOp{
	token.PlusEq:  ast.OpAdd,
	token.MinusEq: ast.OpSub,
	token.StarEq:  ast.OpMul,
	token.SlashEq: ast.OpDiv,
}

// wrapExprStmtOrTail decides whether x is the block's tail expression
// (immediately followed by `}`) or an ExprStmt (followed by a
// terminator).
func (p *Parser) wrapExprStmtOrTail(x ast.Expr) (ast.Stmt, ast.Expr) {
	if p.check(token.RBrace) {
		return nil, x
	}
	return &ast.ExprStmt{Base: ast.NewBase(p.newId(), x.Span()), X: x}, nil
}

func (p *Parser) parseLetStmt(start source.Span) ast.Stmt {
	p.advance() // 'let'
	mut := p.match(token.KwMut)
	bind := p.parseBinding()
	var typ ast.TypeExpr
	if p.match(token.Colon) {
		typ = p.parseTypeExpr()
	}
	var init ast.Expr
	if p.match(token.Assign) {
		init = p.parseExpr()
	}
	return &ast.LetStmt{Base: p.base(start), Bind: bind, Mut: mut, Type: typ, Init: init}
}

func (p *Parser) parseBinding() ast.Binding {
	start := p.cur().Span
	if p.match(token.LParen) {
		var names []string
		for !p.check(token.RParen) && !p.atEnd() {
			names = append(names, p.expect(token.Ident).Text)
			if !p.match(token.Comma) {
				break
			}
		}
		p.expect(token.RParen)
		return ast.Binding{Names: names, Span: spanFromTo(start.Start, p.prevEnd())}
	}
	name := p.expect(token.Ident).Text
	return ast.Binding{Names: []string{name}, Span: spanFromTo(start.Start, p.prevEnd())}
}

func (p *Parser) parseConstStmt(start source.Span) ast.Stmt {
	p.advance() // 'const'
	name := p.expect(token.Ident).Text
	var typ ast.TypeExpr
	if p.match(token.Colon) {
		typ = p.parseTypeExpr()
	}
	p.expect(token.Assign)
	init := p.parseExpr()
	return &ast.ConstStmt{Base: p.base(start), Name: name, Type: typ, Init: init}
}

func (p *Parser) parseReturnStmt(start source.Span) ast.Stmt {
	p.advance() // 'return'
	var val ast.Expr
	if !p.atStmtEnd() {
		val = p.parseExpr()
	}
	return &ast.ReturnStmt{Base: p.base(start), Value: val}
}

func (p *Parser) atStmtEnd() bool {
	switch p.kind() {
	case token.Newline, token.Semicolon, token.RBrace, token.Eof:
		return true
	default:
		return false
	}
}

func (p *Parser) parseLoopControl(start source.Span, kind ast.LoopControlKind) ast.Stmt {
	p.advance()
	var val ast.Expr
	if !p.atStmtEnd() {
		val = p.parseExpr()
	}
	return &ast.LoopControlStmt{Base: p.base(start), Kind: kind, Value: val}
}

func (p *Parser) parseWhileOrWhileLet(start source.Span) ast.Expr {
	p.advance() // 'while'
	if p.match(token.KwLet) {
		pat := p.parsePattern()
		p.expect(token.Assign)
		scrut := p.parseExprNoStructLit()
		body := p.parseBlockExpr()
		return &ast.WhileLetStmt{Base: p.base(start), Pattern: pat, Scrut: scrut, Body: body}
	}
	cond := p.parseExprNoStructLit()
	body := p.parseBlockExpr()
	return &ast.WhileStmt{Base: p.base(start), Cond: cond, Body: body}
}

func (p *Parser) parseForStmt(start source.Span) ast.Expr {
	p.advance() // 'for'
	pat := p.parsePattern()
	p.expect(token.KwIn)
	iter := p.parseExprNoStructLit()
	body := p.parseBlockExpr()
	return &ast.ForStmt{Base: p.base(start), Pattern: pat, Iter: iter, Body: body}
}

func (p *Parser) parseLoopStmt(start source.Span) ast.Expr {
	p.advance() // 'loop'
	body := p.parseBlockExpr()
	return &ast.LoopStmt{Base: p.base(start), Body: body}
}

func (p *Parser) parseEnsureStmt(start source.Span) ast.Stmt {
	p.advance() // 'ensure'
	body := p.parseBlockExpr()
	var catch *ast.BlockExpr
	if p.match(token.KwCatch) {
		catch = p.parseBlockExpr()
	}
	return &ast.EnsureStmt{Base: p.base(start), Body: body, Catch: catch}
}

func (p *Parser) parseComptimeStmtOrExpr(start source.Span) ast.Expr {
	p.advance() // 'comptime'
	body := p.parseBlockExpr()
	return &ast.ComptimeExpr{Base: p.base(start), Body: body}
}

// ---- if / match, shared by statement and expression position ----

func (p *Parser) parseIfExpr() ast.Expr {
	start := p.cur().Span
	p.advance() // 'if'
	if p.match(token.KwLet) {
		pat := p.parsePattern()
		p.expect(token.Assign)
		scrut := p.parseExprNoStructLit()
		then := p.parseBlockExpr()
		var els ast.Expr
		if p.match(token.KwElse) {
			els = p.parseElseTail()
		}
		return &ast.IfLetExpr{Base: p.base(start), Pattern: pat, Scrut: scrut, Then: then, Else: els}
	}
	cond := p.parseExprNoStructLit()
	then := p.parseBlockExpr()
	var els ast.Expr
	if p.match(token.KwElse) {
		els = p.parseElseTail()
	}
	return &ast.IfExpr{Base: p.base(start), Cond: cond, Then: then, Else: els}
}

func (p *Parser) parseElseTail() ast.Expr {
	if p.check(token.KwIf) {
		return p.parseIfExpr()
	}
	return p.parseBlockExpr()
}

func (p *Parser) parseMatchExpr() ast.Expr {
	start := p.cur().Span
	p.advance() // 'match'
	scrutinee := p.parseExprNoStructLit()
	p.expect(token.LBrace)
	p.skipNewlines()
	var arms []ast.MatchArm
	for !p.check(token.RBrace) && !p.atEnd() {
		astart := p.cur().Span
		pat := p.parsePattern()
		var guard ast.Expr
		if p.match(token.KwIf) {
			guard = p.parseExprNoStructLit()
		}
		p.expect(token.FatArrow)
		body := p.parseArmBody()
		arms = append(arms, ast.MatchArm{Pattern: pat, Guard: guard, Body: body, Span: spanFromTo(astart.Start, p.prevEnd())})
		p.skipFieldSep()
	}
	p.expect(token.RBrace)
	return &ast.MatchExpr{Base: p.base(start), Scrutinee: scrutinee, Arms: arms}
}

// parseArmBody parses a match/select arm body: either a `{ ... }`
// block or a single expression.
func (p *Parser) parseArmBody() ast.Expr {
	if p.check(token.LBrace) {
		return p.parseBlockExpr()
	}
	return p.parseExpr()
}
