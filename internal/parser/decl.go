package parser

import (
	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/token"
)

// collectDocAttrs gathers the doc-comment block and attributes
// immediately preceding a declaration: every `///` line before it is
// joined, in order and newline-separated, into the doc string (blank
// lines and attributes between them do not start a new run);
// interleaved `@name(args)` attributes are collected in order (§4.2).
func (p *Parser) collectDocAttrs() (string, []ast.Attribute) {
	var docLines []string
	var attrs []ast.Attribute
	for {
		p.skipNewlines()
		switch {
		case p.check(token.DocComment):
			docLines = append(docLines, p.advance().Text)
		case p.check(token.At):
			attrs = append(attrs, p.parseAttribute())
		default:
			doc := ""
			for i, l := range docLines {
				if i > 0 {
					doc += "\n"
				}
				doc += l
			}
			return doc, attrs
		}
	}
}

func (p *Parser) parseAttribute() ast.Attribute {
	start := p.cur().Span
	p.advance() // '@'
	name := p.expect(token.Ident).Text
	var args []string
	if p.match(token.LParen) {
		for !p.check(token.RParen) && !p.atEnd() {
			args = append(args, p.parseAttrArg())
			if !p.match(token.Comma) {
				break
			}
		}
		p.expect(token.RParen)
	}
	return ast.Attribute{Name: name, Args: args, Span: spanFromTo(start.Start, p.prevEnd())}
}

func (p *Parser) parseAttrArg() string {
	t := p.advance()
	return t.Text
}

// modifierKeywords maps the leading keywords that may prefix a
// declaration (in the order written) to their Modifier spelling.
var modifierKeywords = map[token.Kind]ast.Modifier{
	token.KwExport: "export",
	token.KwUnsafe: "unsafe",
}

func (p *Parser) collectModifiers() []ast.Modifier {
	var mods []ast.Modifier
	for {
		m, ok := modifierKeywords[p.kind()]
		if !ok {
			return mods
		}
		// `export name` with no following declaration keyword is a
		// bare re-export, not a modified declaration; leave it alone.
		if p.kind() == token.KwExport && p.peekAt(1).Kind == token.Ident {
			return mods
		}
		mods = append(mods, m)
		p.advance()
	}
}

// parseDecl parses one top-level (or trait/impl-nested) declaration.
// On a malformed declaration it records a diagnostic, synchronizes,
// and returns nil so the caller keeps going.
func (p *Parser) parseDecl() ast.Decl {
	doc, attrs := p.collectDocAttrs()
	if p.atEnd() {
		return nil
	}
	mods := p.collectModifiers()
	start := p.cur().Span

	switch p.kind() {
	case token.KwFunc:
		return p.parseFuncDecl(start, doc, attrs, mods)
	case token.KwStruct:
		return p.parseStructDecl(start, doc, attrs, mods)
	case token.KwEnum:
		return p.parseEnumDecl(start, doc, attrs)
	case token.KwUnion:
		return p.parseUnionDecl(start, doc)
	case token.KwTrait:
		return p.parseTraitDecl(start, doc)
	case token.KwImpl:
		return p.parseImplDecl(start)
	case token.KwConst:
		return p.parseConstDecl(start, doc)
	case token.KwImport:
		return p.parseImportDecl(start)
	case token.KwExport:
		return p.parseExportDecl(start)
	case token.KwTest:
		return p.parseTestDecl(start)
	case token.KwBenchmark:
		return p.parseBenchmarkDecl(start)
	default:
		p.errorf(p.cur().Span, diag.EParseUnexpected, "expected a declaration, found %s", p.kind())
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseTypeParams() []string {
	if !p.match(token.Lt) {
		return nil
	}
	var names []string
	for !p.check(token.Gt) && !p.atEnd() {
		names = append(names, p.expect(token.Ident).Text)
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.Gt)
	return names
}

func (p *Parser) parseParamList() []ast.Param {
	p.expect(token.LParen)
	var params []ast.Param
	for !p.check(token.RParen) && !p.atEnd() {
		pstart := p.cur().Span
		mode := ast.ModeOwn
		switch p.kind() {
		case token.KwSelf:
			p.advance()
			params = append(params, ast.Param{Mode: ast.ModeSelf, Name: "self", Span: spanFromTo(pstart.Start, p.prevEnd())})
			if !p.match(token.Comma) {
				continue
			}
			continue
		case token.KwTake:
			mode = ast.ModeTake
			p.advance()
		case token.KwRead:
			mode = ast.ModeRead
			p.advance()
		case token.KwMut:
			mode = ast.ModeMut
			p.advance()
		case token.KwOwn:
			mode = ast.ModeOwn
			p.advance()
		}
		name := p.expect(token.Ident).Text
		p.expect(token.Colon)
		typ := p.parseTypeExpr()
		params = append(params, ast.Param{Mode: mode, Name: name, Type: typ, Span: spanFromTo(pstart.Start, p.prevEnd())})
		if !p.match(token.Comma) {
			break
		}
	}
	p.expect(token.RParen)
	return params
}

func (p *Parser) parseReturnType() ast.TypeExpr {
	if p.match(token.Arrow) {
		return p.parseTypeExpr()
	}
	return nil
}

func (p *Parser) parseFuncDecl(start source.Span, doc string, attrs []ast.Attribute, mods []ast.Modifier) ast.Decl {
	p.advance() // 'func'
	name := p.expect(token.Ident).Text
	tparams := p.parseTypeParams()
	params := p.parseParamList()
	ret := p.parseReturnType()
	body := p.parseBlockExpr()
	return &ast.FuncDecl{
		Base: p.base(start), Name: name, TypeParams: tparams, Params: params,
		Ret: ret, Body: body, Modifiers: mods, Attrs: attrs, Doc: doc,
	}
}

func (p *Parser) parseFieldDecl() ast.FieldDecl {
	doc, _ := p.collectDocAttrs()
	start := p.cur().Span
	name := p.expect(token.Ident).Text
	p.expect(token.Colon)
	typ := p.parseTypeExpr()
	return ast.FieldDecl{Name: name, Type: typ, Span: spanFromTo(start.Start, p.prevEnd()), Doc: doc}
}

func (p *Parser) parseStructDecl(start source.Span, doc string, attrs []ast.Attribute, mods []ast.Modifier) ast.Decl {
	p.advance() // 'struct'
	name := p.expect(token.Ident).Text
	tparams := p.parseTypeParams()
	p.expect(token.LBrace)
	p.skipNewlines()
	var fields []ast.FieldDecl
	for !p.check(token.RBrace) && !p.atEnd() {
		fields = append(fields, p.parseFieldDecl())
		p.skipFieldSep()
	}
	p.expect(token.RBrace)
	return &ast.StructDecl{
		Base: p.base(start), Name: name, TypeParams: tparams, Fields: fields,
		Modifiers: mods, Attrs: attrs, Doc: doc,
	}
}

func (p *Parser) skipFieldSep() {
	for p.check(token.Comma) || p.check(token.Newline) {
		p.advance()
	}
}

func (p *Parser) parseEnumDecl(start source.Span, doc string, attrs []ast.Attribute) ast.Decl {
	p.advance() // 'enum'
	name := p.expect(token.Ident).Text
	tparams := p.parseTypeParams()
	p.expect(token.LBrace)
	p.skipNewlines()
	var variants []ast.EnumVariant
	for !p.check(token.RBrace) && !p.atEnd() {
		vstart := p.cur().Span
		vname := p.expect(token.Ident).Text
		var fields []ast.FieldDecl
		if p.match(token.LBrace) {
			p.skipNewlines()
			for !p.check(token.RBrace) && !p.atEnd() {
				fields = append(fields, p.parseFieldDecl())
				p.skipFieldSep()
			}
			p.expect(token.RBrace)
		} else if p.match(token.LParen) {
			idx := 0
			for !p.check(token.RParen) && !p.atEnd() {
				ft := p.parseTypeExpr()
				fields = append(fields, ast.FieldDecl{Name: positionalFieldName(idx), Type: ft})
				idx++
				if !p.match(token.Comma) {
					break
				}
			}
			p.expect(token.RParen)
		}
		variants = append(variants, ast.EnumVariant{Name: vname, Fields: fields, Span: spanFromTo(vstart.Start, p.prevEnd())})
		p.skipFieldSep()
	}
	p.expect(token.RBrace)
	return &ast.EnumDecl{Base: p.base(start), Name: name, TypeParams: tparams, Variants: variants, Attrs: attrs, Doc: doc}
}

func positionalFieldName(i int) string {
	digits := "0123456789"
	if i < 10 {
		return string(digits[i])
	}
	return "_" + string(digits[i%10])
}

func (p *Parser) parseUnionDecl(start source.Span, doc string) ast.Decl {
	p.advance() // 'union'
	name := p.expect(token.Ident).Text
	p.expect(token.LBrace)
	p.skipNewlines()
	var fields []ast.FieldDecl
	for !p.check(token.RBrace) && !p.atEnd() {
		fields = append(fields, p.parseFieldDecl())
		p.skipFieldSep()
	}
	p.expect(token.RBrace)
	return &ast.UnionDecl{Base: p.base(start), Name: name, Fields: fields, Doc: doc}
}

func (p *Parser) parseTraitDecl(start source.Span, doc string) ast.Decl {
	p.advance() // 'trait'
	name := p.expect(token.Ident).Text
	tparams := p.parseTypeParams()
	p.expect(token.LBrace)
	p.skipNewlines()
	var methods []*ast.FuncDecl
	for !p.check(token.RBrace) && !p.atEnd() {
		mdoc, mattrs := p.collectDocAttrs()
		if p.check(token.RBrace) {
			break
		}
		mstart := p.cur().Span
		if !p.check(token.KwFunc) {
			p.errorf(p.cur().Span, diag.EParseUnexpected, "expected a method signature, found %s", p.kind())
			p.synchronize()
			continue
		}
		fn := p.parseTraitMethod(mstart, mdoc, mattrs)
		methods = append(methods, fn)
		p.skipFieldSep()
	}
	p.expect(token.RBrace)
	return &ast.TraitDecl{Base: p.base(start), Name: name, TypeParams: tparams, Methods: methods, Doc: doc}
}

// parseTraitMethod parses a method signature inside a trait, which may
// or may not carry a body (an unimplemented signature ends at a
// newline/semicolon instead of a block).
func (p *Parser) parseTraitMethod(start source.Span, doc string, attrs []ast.Attribute) *ast.FuncDecl {
	p.advance() // 'func'
	name := p.expect(token.Ident).Text
	tparams := p.parseTypeParams()
	params := p.parseParamList()
	ret := p.parseReturnType()
	var body *ast.BlockExpr
	if p.check(token.LBrace) {
		body = p.parseBlockExpr()
	}
	return &ast.FuncDecl{Base: p.base(start), Name: name, TypeParams: tparams, Params: params, Ret: ret, Body: body, Attrs: attrs, Doc: doc}
}

func (p *Parser) parseImplDecl(start source.Span) ast.Decl {
	p.advance() // 'impl'
	tparams := p.parseTypeParams()
	first := p.parseTypeExpr()
	trait := ""
	var target ast.TypeExpr
	if p.match(token.KwFor) {
		if named, ok := first.(*ast.NamedTypeExpr); ok {
			trait = named.Name
		}
		target = p.parseTypeExpr()
	} else {
		target = first
	}
	p.expect(token.LBrace)
	p.skipNewlines()
	var methods []*ast.FuncDecl
	for !p.check(token.RBrace) && !p.atEnd() {
		mdoc, mattrs := p.collectDocAttrs()
		if p.check(token.RBrace) {
			break
		}
		mstart := p.cur().Span
		if !p.check(token.KwFunc) {
			p.errorf(p.cur().Span, diag.EParseUnexpected, "expected a method, found %s", p.kind())
			p.synchronize()
			continue
		}
		methods = append(methods, p.parseTraitMethod(mstart, mdoc, mattrs))
		p.skipFieldSep()
	}
	p.expect(token.RBrace)
	return &ast.ImplDecl{Base: p.base(start), Trait: trait, TargetType: target, TypeParams: tparams, Methods: methods}
}

func (p *Parser) parseConstDecl(start source.Span, doc string) ast.Decl {
	p.advance() // 'const'
	name := p.expect(token.Ident).Text
	var typ ast.TypeExpr
	if p.match(token.Colon) {
		typ = p.parseTypeExpr()
	}
	p.expect(token.Assign)
	init := p.parseExpr()
	return &ast.ConstDecl{Base: p.base(start), Name: name, Type: typ, Init: init, Doc: doc}
}

func (p *Parser) parseImportDecl(start source.Span) ast.Decl {
	p.advance() // 'import'
	pkg := p.parseDottedPath()
	var names []string
	wildcard := false
	if p.match(token.Dot) {
		if p.match(token.Star) {
			wildcard = true
		} else if p.match(token.LBrace) {
			for !p.check(token.RBrace) && !p.atEnd() {
				names = append(names, p.expect(token.Ident).Text)
				if !p.match(token.Comma) {
					break
				}
			}
			p.expect(token.RBrace)
		} else {
			names = append(names, p.expect(token.Ident).Text)
		}
	}
	return &ast.ImportDecl{Base: p.base(start), Package: pkg, Names: names, Wildcard: wildcard}
}

// parseDottedPath reads `a.b.c` as a single package path string.
func (p *Parser) parseDottedPath() string {
	path := p.expect(token.Ident).Text
	for p.check(token.Dot) && p.peekAt(1).Kind == token.Ident {
		p.advance()
		path += "." + p.advance().Text
	}
	return path
}

func (p *Parser) parseExportDecl(start source.Span) ast.Decl {
	p.advance() // 'export'
	name := p.expect(token.Ident).Text
	return &ast.ExportDecl{Base: p.base(start), Name: name}
}

func (p *Parser) parseTestDecl(start source.Span) ast.Decl {
	p.advance() // 'test'
	name := p.parseStringLiteralText()
	body := p.parseBlockExpr()
	return &ast.TestDecl{Base: p.base(start), Name: name, Body: body}
}

func (p *Parser) parseBenchmarkDecl(start source.Span) ast.Decl {
	p.advance() // 'benchmark'
	name := p.parseStringLiteralText()
	body := p.parseBlockExpr()
	return &ast.BenchmarkDecl{Base: p.base(start), Name: name, Body: body}
}

func (p *Parser) parseStringLiteralText() string {
	if p.check(token.String) || p.check(token.RawString) {
		return p.advance().Text
	}
	p.errorf(p.cur().Span, diag.EParseUnexpected, "expected a string literal, found %s", p.kind())
	return ""
}

