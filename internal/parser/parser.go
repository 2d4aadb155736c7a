// Package parser implements §4.2: a recursive-descent parser with
// panic-mode recovery that turns a lexed token stream into an
// internal/ast.File.
//
// The shape follows the lexer's own left-to-right scan-and-recover
// discipline: on an unexpected token, push a diagnostic and
// synchronize to the next likely recovery point rather than aborting
// the whole parse.
package parser

import (
	"fmt"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/lexer"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/token"
)

// MaxErrors caps the number of diagnostics a single parse will collect,
// matching the lexer's recovery cap (§4.1, §4.2, §7).
const MaxErrors = 20

// Result is the output of a parse: the file's declarations (best
// effort, even in the presence of errors) and any diagnostics.
type Result struct {
	File   *ast.File
	Errors []diag.Diagnostic
}

// ParseFile lexes and parses a single source.File in one step, sharing
// ids across both phases so lexer/parser diagnostics and the
// resulting tree reference consistent offsets. Lexer errors and
// parser errors are both returned, lexer errors first.
func ParseFile(file *source.File, ids *source.IDAllocator) Result {
	lx := lexer.New(file).Scan()
	ps := New(file.Path, lx.Tokens, ids)
	res := ps.Parse()
	if len(lx.Errors) > 0 {
		res.Errors = append(append([]diag.Diagnostic{}, lx.Errors...), res.Errors...)
	}
	return res
}

// Parser consumes a token stream produced by internal/lexer and builds
// an ast.File.
type Parser struct {
	path string
	toks []token.Token
	pos  int
	errs []diag.Diagnostic
	ids  *source.IDAllocator

	// noStructLit suppresses struct-literal parsing of `Name { ... }`
	// and trailing-closure attachment to a call's `{ ... }` while
	// parsing a condition/scrutinee/iterable that is itself followed by
	// a block (`if`, `while`, `for`, `match`, `with ... as`), so the
	// opening brace is unambiguously the body's.
	noStructLit bool
}

// New creates a Parser over toks, the token stream for the file at
// path. ids mints NodeIds for every node the parser builds; callers
// typically share one allocator across a whole package.
func New(path string, toks []token.Token, ids *source.IDAllocator) *Parser {
	return &Parser{path: path, toks: toks, ids: ids}
}

// Parse runs the parser to completion and returns the resulting file
// plus any diagnostics collected along the way.
func (p *Parser) Parse() Result {
	f := &ast.File{Path: p.path}
	for !p.atEnd() {
		p.skipNewlines()
		if p.atEnd() {
			break
		}
		if p.full() {
			break
		}
		d := p.parseDecl()
		if d != nil {
			f.Decls = append(f.Decls, d)
		}
	}
	return Result{File: f, Errors: p.errs}
}

func (p *Parser) full() bool { return len(p.errs) >= MaxErrors }

// ---- token cursor helpers ----

func (p *Parser) cur() token.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return p.toks[len(p.toks)-1] // Eof
}

func (p *Parser) kind() token.Kind { return p.cur().Kind }

func (p *Parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i < 0 || i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if t.Kind != token.Eof {
		p.pos++
	}
	return t
}

func (p *Parser) atEnd() bool { return p.kind() == token.Eof }

// skipNewlines consumes any run of Newline tokens; newlines only
// matter as statement terminators inside blocks.
func (p *Parser) skipNewlines() {
	for p.kind() == token.Newline {
		p.advance()
	}
}

func (p *Parser) check(k token.Kind) bool { return p.kind() == k }

func (p *Parser) match(k token.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of kind k or records an EParseUnexpected
// diagnostic and returns the zero Token without advancing.
func (p *Parser) expect(k token.Kind) token.Token {
	if p.check(k) {
		return p.advance()
	}
	p.errorf(p.cur().Span, diag.EParseUnexpected, "expected %s, found %s", k, p.kind())
	return token.Token{Kind: token.Invalid, Span: p.cur().Span}
}

func (p *Parser) errorf(span source.Span, code, format string, args ...any) {
	if p.full() {
		return
	}
	p.errs = append(p.errs, diag.Diagnostic{
		Severity: diag.Error,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Labels:   []diag.Label{{Span: span, Style: diag.Primary}},
	})
}

func (p *Parser) newId() source.NodeId { return p.ids.Next() }

func (p *Parser) base(start source.Span) ast.Base {
	return ast.NewBase(p.newId(), source.Span{Start: start.Start, End: p.prevEnd()})
}

func (p *Parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].Span.End
}

// synchronize discards tokens until a likely recovery point:
// a newline, semicolon, matching closing delimiter, or the start of
// the next top-level declaration keyword (§4.2).
func (p *Parser) synchronize() {
	for !p.atEnd() {
		switch p.kind() {
		case token.Newline, token.Semicolon:
			p.advance()
			return
		case token.RBrace:
			return
		case token.KwFunc, token.KwStruct, token.KwEnum, token.KwUnion,
			token.KwTrait, token.KwImpl, token.KwConst, token.KwImport,
			token.KwExport, token.KwTest, token.KwBenchmark:
			return
		}
		p.advance()
	}
}
