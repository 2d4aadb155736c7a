package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/lexer"
	"github.com/rask-lang/rask-sub001/internal/source"
	"github.com/rask-lang/rask-sub001/internal/token"
)

func scan(t *testing.T, text string) lexer.Result {
	t.Helper()
	return lexer.New(&source.File{Path: "<test>", Text: text}).Scan()
}

func kinds(res lexer.Result) []token.Kind {
	ks := make([]token.Kind, 0, len(res.Tokens))
	for _, tok := range res.Tokens {
		if tok.Kind == token.Newline {
			continue
		}
		ks = append(ks, tok.Kind)
	}
	return ks
}

func TestScanIdentifiersAndKeywords(t *testing.T) {
	res := scan(t, "let x = foo")
	require.Empty(t, res.Errors)
	assert.Equal(t, []token.Kind{token.KwLet, token.Ident, token.Assign, token.Ident, token.Eof}, kinds(res))
}

func TestScanIntegerLiteralBases(t *testing.T) {
	for _, src := range []string{"0x1F", "0b1010", "0o17", "1_000_000", "42i8", "7u64"} {
		res := scan(t, src)
		require.Empty(t, res.Errors, src)
		require.Equal(t, token.Int, res.Tokens[0].Kind, src)
		assert.Equal(t, src, res.Tokens[0].Text, src)
	}
}

func TestScanFloatLiteral(t *testing.T) {
	res := scan(t, "3.14e-2f64")
	require.Empty(t, res.Errors)
	require.Equal(t, token.Float, res.Tokens[0].Kind)
}

func TestScanStringEscapes(t *testing.T) {
	res := scan(t, `"hi\n\u{48}"`)
	require.Empty(t, res.Errors)
	require.Equal(t, token.String, res.Tokens[0].Kind)
}

func TestUnicodeEscapeEmptyIsError(t *testing.T) {
	res := scan(t, `"\u{}"`)
	require.NotEmpty(t, res.Errors)
}

func TestUnicodeEscapeOutOfRangeIsError(t *testing.T) {
	res := scan(t, `"\u{110000}"`)
	require.NotEmpty(t, res.Errors)
}

func TestUnicodeEscapeAcceptsOneToSixHexDigits(t *testing.T) {
	for _, esc := range []string{`\u{4}`, `\u{48}`, `\u{048}`, `\u{0048}`, `\u{00048}`, `\u{000048}`} {
		res := scan(t, `"`+esc+`"`)
		assert.Empty(t, res.Errors, esc)
	}
}

func TestRawStringIgnoresEscapes(t *testing.T) {
	res := scan(t, `"""no \n escape here"""`)
	require.Empty(t, res.Errors)
	require.Equal(t, token.RawString, res.Tokens[0].Kind)
}

func TestTripleQuoteRawStringUsesDoubleQuotePairs(t *testing.T) {
	res := scan(t, `""""""`)
	require.Empty(t, res.Errors)
	require.Equal(t, token.RawString, res.Tokens[0].Kind)
}

func TestNestedBlockComment(t *testing.T) {
	res := scan(t, "/* outer /* inner */ still outer */ x")
	require.Empty(t, res.Errors)
	assert.Equal(t, []token.Kind{token.Ident, token.Eof}, kinds(res))
}

func TestUnterminatedBlockCommentIsError(t *testing.T) {
	res := scan(t, "/* never closed")
	require.NotEmpty(t, res.Errors)
}

func TestLexErrorCapAt20(t *testing.T) {
	var src string
	for i := 0; i < 30; i++ {
		src += "$"
	}
	res := scan(t, src)
	assert.LessOrEqual(t, len(res.Errors), lexer.MaxErrors)
	assert.Equal(t, lexer.MaxErrors, len(res.Errors))
}

func TestEofAlwaysEmittedWithZeroLenSpanAtEnd(t *testing.T) {
	res := scan(t, "abc")
	last := res.Tokens[len(res.Tokens)-1]
	assert.Equal(t, token.Eof, last.Kind)
	assert.Equal(t, last.Span.Start, last.Span.End)
	assert.Equal(t, 3, last.Span.Start)
}

func TestOperatorsLongestMatchFirst(t *testing.T) {
	res := scan(t, "a ..= b .. c")
	require.Empty(t, res.Errors)
	assert.Equal(t, []token.Kind{token.Ident, token.DotDotEq, token.Ident, token.DotDot, token.Ident, token.Eof}, kinds(res))
}

func TestNewlineTerminatesStatementIsTokenized(t *testing.T) {
	res := scan(t, "let a = 1\nlet b = 2")
	found := false
	for _, tk := range res.Tokens {
		if tk.Kind == token.Newline {
			found = true
		}
	}
	assert.True(t, found)
}
