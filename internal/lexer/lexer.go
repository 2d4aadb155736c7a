// Package lexer implements §4.1: source text to a token stream, with
// multi-error recovery capped at 20 errors.
//
// The scan loop is a straight left-to-right pass over the byte buffer,
// the same shape as the teacher's internal/scanner walked a directory
// tree: keep a cursor, classify what's under it, advance, and on
// anything unrecognized record a diagnostic and keep going rather than
// aborting the whole pass.
package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/token"
)

// MaxErrors caps the number of diagnostics a single lex pass will
// collect before giving up, per §4.1/§7.
const MaxErrors = 20

// Result is the output of a lex pass: the full token stream (always
// terminated by an Eof token) and any diagnostics collected along the
// way.
type Result struct {
	Tokens []token.Token
	Errors []diag.Diagnostic
}

// Lexer scans one source file into a token stream.
type Lexer struct {
	file   *source.File
	src    string
	pos    int
	tokens []token.Token
	errs   []diag.Diagnostic
}

// New creates a Lexer over the given file.
func New(file *source.File) *Lexer {
	return &Lexer{file: file, src: file.Text}
}

// Scan runs the lexer to completion and returns the token stream plus
// any diagnostics. It never panics on malformed input — it records a
// diagnostic and resumes scanning at the next character.
func (l *Lexer) Scan() Result {
	for l.pos < len(l.src) {
		if len(l.errs) >= MaxErrors {
			break
		}
		l.scanOne()
	}
	l.emit(token.Eof, "", source.Span{Start: len(l.src), End: len(l.src)})
	return Result{Tokens: l.tokens, Errors: l.errs}
}

func (l *Lexer) emit(k token.Kind, text string, span source.Span) {
	l.tokens = append(l.tokens, token.Token{Kind: k, Text: text, Span: span})
}

func (l *Lexer) errorf(start int, format string, args ...any) {
	if len(l.errs) >= MaxErrors {
		return
	}
	l.errs = append(l.errs, diag.Diagnostic{
		Severity: diag.Error,
		Message:  sprintf(format, args...),
		Labels: []diag.Label{{
			Span:  source.Span{Start: start, End: l.pos},
			Style: diag.Primary,
		}},
	})
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	p := l.pos + off
	if p >= len(l.src) {
		return 0
	}
	return l.src[p]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	return c
}

func (l *Lexer) scanOne() {
	start := l.pos
	c := l.peek()

	switch {
	case c == '\n':
		l.pos++
		l.emit(token.Newline, "\n", source.Span{Start: start, End: l.pos})
		return
	case c == ' ' || c == '\t' || c == '\r':
		l.pos++
		return
	case c == '/' && l.peekAt(1) == '/':
		l.skipLineComment(start)
		return
	case c == '/' && l.peekAt(1) == '*':
		l.skipBlockComment(start)
		return
	case isIdentStart(c):
		l.scanIdentOrKeyword(start)
		return
	case isDigit(c):
		l.scanNumber(start)
		return
	case c == '"':
		l.scanStringOrRaw(start)
		return
	case c == '\'':
		l.scanChar(start)
		return
	}

	if l.scanOperator(start) {
		return
	}

	// Unrecognized byte: record an error and resume at the next byte
	// (possibly the continuation of a multi-byte rune).
	_, size := utf8.DecodeRuneInString(l.src[l.pos:])
	if size == 0 {
		size = 1
	}
	l.pos += size
	l.errorf(start, "unexpected character %q", l.src[start:l.pos])
}

// skipLineComment consumes a `//` comment. A `///` comment is a doc
// comment: it is emitted as a DocComment token (the text after the
// slashes, with one leading space removed) instead of being
// discarded, so the parser can attach it to the declaration that
// follows (§4.2).
func (l *Lexer) skipLineComment(start int) {
	isDoc := l.peekAt(2) == '/' && l.peekAt(3) != '/'
	l.pos += 2
	textStart := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
	if isDoc {
		text := strings.TrimPrefix(l.src[textStart:l.pos], "/")
		text = strings.TrimPrefix(text, " ")
		l.emit(token.DocComment, text, source.Span{Start: start, End: l.pos})
	}
}

func (l *Lexer) skipBlockComment(start int) {
	l.pos += 2 // consume "/*"
	depth := 1
	for l.pos < len(l.src) && depth > 0 {
		if l.peek() == '/' && l.peekAt(1) == '*' {
			depth++
			l.pos += 2
			continue
		}
		if l.peek() == '*' && l.peekAt(1) == '/' {
			depth--
			l.pos += 2
			continue
		}
		l.pos++
	}
	if depth > 0 {
		l.errorf(start, "unterminated block comment")
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (l *Lexer) scanIdentOrKeyword(start int) {
	for l.pos < len(l.src) && isIdentCont(l.peek()) {
		l.pos++
	}
	text := l.src[start:l.pos]
	// NFC-normalize so identifiers typed with distinct combining-
	// sequence forms intern to the same symbol downstream.
	if !norm.NFC.IsNormalString(text) {
		text = norm.NFC.String(text)
	}
	if kw, ok := token.LookupKeyword(text); ok {
		l.emit(kw, text, source.Span{Start: start, End: l.pos})
		return
	}
	l.emit(token.Ident, text, source.Span{Start: start, End: l.pos})
}

// scanNumber handles integer and float literals: underscores, base
// prefixes (0x/0b/0o), scientific notation, and typed suffixes.
func (l *Lexer) scanNumber(start int) {
	if l.peek() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.pos += 2
		l.consumeDigits(isHexDigit)
		l.consumeIntSuffix(start)
		return
	}
	if l.peek() == '0' && (l.peekAt(1) == 'b' || l.peekAt(1) == 'B') {
		l.pos += 2
		l.consumeDigits(func(c byte) bool { return c == '0' || c == '1' || c == '_' })
		l.consumeIntSuffix(start)
		return
	}
	if l.peek() == '0' && (l.peekAt(1) == 'o' || l.peekAt(1) == 'O') {
		l.pos += 2
		l.consumeDigits(func(c byte) bool { return (c >= '0' && c <= '7') || c == '_' })
		l.consumeIntSuffix(start)
		return
	}

	l.consumeDigits(func(c byte) bool { return isDigit(c) || c == '_' })

	isFloat := false
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		isFloat = true
		l.pos++
		l.consumeDigits(func(c byte) bool { return isDigit(c) || c == '_' })
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		save := l.pos
		l.pos++
		if l.peek() == '+' || l.peek() == '-' {
			l.pos++
		}
		if isDigit(l.peek()) {
			isFloat = true
			l.consumeDigits(func(c byte) bool { return isDigit(c) || c == '_' })
		} else {
			l.pos = save
		}
	}

	if isFloat {
		l.consumeFloatSuffix(start)
		return
	}
	l.consumeIntSuffix(start)
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') || c == '_'
}

func (l *Lexer) consumeDigits(pred func(byte) bool) {
	for l.pos < len(l.src) && pred(l.peek()) {
		l.pos++
	}
}

var intSuffixes = []string{
	"i128", "u128", "isize", "usize",
	"i8", "i16", "i32", "i64", "u8", "u16", "u32", "u64",
}

func (l *Lexer) consumeIntSuffix(start int) {
	for _, suf := range intSuffixes {
		if strings.HasPrefix(l.src[l.pos:], suf) {
			l.pos += len(suf)
			break
		}
	}
	l.emit(token.Int, l.src[start:l.pos], source.Span{Start: start, End: l.pos})
}

func (l *Lexer) consumeFloatSuffix(start int) {
	if strings.HasPrefix(l.src[l.pos:], "f32") {
		l.pos += 3
	} else if strings.HasPrefix(l.src[l.pos:], "f64") {
		l.pos += 3
	}
	l.emit(token.Float, l.src[start:l.pos], source.Span{Start: start, End: l.pos})
}

// scanStringOrRaw handles both ordinary escaped strings and
// triple-quoted raw strings (`"""..."""`, escapes ignored inside).
func (l *Lexer) scanStringOrRaw(start int) {
	if strings.HasPrefix(l.src[l.pos:], `"""`) {
		l.pos += 3
		for l.pos < len(l.src) && !strings.HasPrefix(l.src[l.pos:], `"""`) {
			l.pos++
		}
		if l.pos >= len(l.src) {
			l.errorf(start, "unterminated raw string")
			return
		}
		l.pos += 3
		l.emit(token.RawString, l.src[start:l.pos], source.Span{Start: start, End: l.pos})
		return
	}

	l.pos++ // opening quote
	for l.pos < len(l.src) && l.peek() != '"' {
		if l.peek() == '\n' {
			l.errorf(start, "unterminated string literal")
			return
		}
		if l.peek() == '\\' {
			l.scanEscape(start)
			continue
		}
		l.pos++
	}
	if l.pos >= len(l.src) {
		l.errorf(start, "unterminated string literal")
		return
	}
	l.pos++ // closing quote
	l.emit(token.String, l.src[start:l.pos], source.Span{Start: start, End: l.pos})
}

func (l *Lexer) scanChar(start int) {
	l.pos++ // opening quote
	if l.peek() == '\\' {
		l.scanEscape(start)
	} else if l.pos < len(l.src) {
		_, size := utf8.DecodeRuneInString(l.src[l.pos:])
		l.pos += size
	}
	if l.peek() != '\'' {
		l.errorf(start, "unterminated char literal")
		return
	}
	l.pos++
	l.emit(token.Char, l.src[start:l.pos], source.Span{Start: start, End: l.pos})
}

// scanEscape consumes a backslash escape sequence, validating \u{...}
// per §8's boundary rules: 1-6 hex digits, non-empty, <= 0x10FFFF.
func (l *Lexer) scanEscape(literalStart int) {
	escStart := l.pos
	l.pos++ // consume backslash
	if l.pos >= len(l.src) {
		l.errorf(escStart, "unterminated escape sequence")
		return
	}
	c := l.advance()
	switch c {
	case 'n', 't', 'r', '\\', '\'', '"', '0':
		return
	case 'u':
		l.scanUnicodeEscape(escStart)
		return
	default:
		l.errorf(escStart, "invalid escape sequence '\\%c'", c)
	}
}

func (l *Lexer) scanUnicodeEscape(escStart int) {
	if l.peek() != '{' {
		l.errorf(escStart, "expected '{' after \\u")
		return
	}
	l.pos++
	digitsStart := l.pos
	for l.pos < len(l.src) && isHexDigit(l.peek()) && l.peek() != '_' {
		l.pos++
	}
	digits := l.src[digitsStart:l.pos]
	if l.peek() != '}' {
		l.errorf(escStart, "unterminated unicode escape")
		return
	}
	l.pos++
	if len(digits) == 0 {
		l.errorf(escStart, "empty unicode escape \\u{}")
		return
	}
	if len(digits) > 6 {
		l.errorf(escStart, "unicode escape accepts at most 6 hex digits")
		return
	}
	val := int64(0)
	for _, r := range digits {
		val = val*16 + int64(hexVal(byte(r)))
	}
	if val > 0x10FFFF || (val >= 0xD800 && val <= 0xDFFF) {
		l.errorf(escStart, "unicode escape \\u{%s} is out of range", digits)
	}
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return 0
}

// scanOperator attempts to match the longest operator/punctuation token
// starting at l.pos. Returns false if nothing matched (caller treats it
// as an unrecognized character).
func (l *Lexer) scanOperator(start int) bool {
	three := []struct {
		s string
		k token.Kind
	}{
		{"..=", token.DotDotEq},
	}
	for _, op := range three {
		if strings.HasPrefix(l.src[l.pos:], op.s) {
			l.pos += len(op.s)
			l.emit(op.k, op.s, source.Span{Start: start, End: l.pos})
			return true
		}
	}

	two := []struct {
		s string
		k token.Kind
	}{
		{"::", token.ColonColon}, {"->", token.Arrow}, {"=>", token.FatArrow},
		{"??", token.QuestionQuestion}, {"?.", token.QuestionDot}, {"==", token.EqEq},
		{"!=", token.BangEq}, {"<=", token.LtEq}, {">=", token.GtEq},
		{"&&", token.AmpAmp}, {"||", token.PipePipe}, {"<<", token.Shl}, {">>", token.Shr},
		{"+=", token.PlusEq}, {"-=", token.MinusEq}, {"*=", token.StarEq}, {"/=", token.SlashEq},
		{"..", token.DotDot},
	}
	for _, op := range two {
		if strings.HasPrefix(l.src[l.pos:], op.s) {
			l.pos += len(op.s)
			l.emit(op.k, op.s, source.Span{Start: start, End: l.pos})
			return true
		}
	}

	one := map[byte]token.Kind{
		'(': token.LParen, ')': token.RParen, '{': token.LBrace, '}': token.RBrace,
		'[': token.LBracket, ']': token.RBracket, ',': token.Comma, '.': token.Dot,
		':': token.Colon, ';': token.Semicolon, '?': token.Question, '!': token.Bang,
		'+': token.Plus, '-': token.Minus, '*': token.Star, '/': token.Slash,
		'%': token.Percent, '&': token.Amp, '|': token.Pipe, '^': token.Caret,
		'~': token.Tilde, '<': token.Lt, '>': token.Gt, '=': token.Assign, '@': token.At,
	}
	if k, ok := one[l.peek()]; ok {
		l.pos++
		l.emit(k, l.src[start:l.pos], source.Span{Start: start, End: l.pos})
		return true
	}
	return false
}
