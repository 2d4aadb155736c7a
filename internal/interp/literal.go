package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rask-lang/rask-sub001/internal/ast"
)

// evalLiteral turns a LiteralExpr's verbatim source lexeme into a
// runtime Value. The lexer keeps literal text exactly as written
// (underscores, base prefixes, width/float suffixes, escape
// sequences uninterpreted); no later phase before this one parses it
// into an actual number/string, so this is interp's job.
func evalLiteral(lit *ast.LiteralExpr) (Value, error) {
	switch lit.Kind {
	case ast.LitInt:
		text := stripIntSuffix(strings.ReplaceAll(lit.Text, "_", ""))
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			if u, uerr := strconv.ParseUint(text, 0, 64); uerr == nil {
				return Int(int64(u)), nil
			}
			return Value{}, fmt.Errorf("interp: malformed integer literal %q: %w", lit.Text, err)
		}
		return Int(n), nil
	case ast.LitFloat:
		text := stripFloatSuffix(strings.ReplaceAll(lit.Text, "_", ""))
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("interp: malformed float literal %q: %w", lit.Text, err)
		}
		return Float(f), nil
	case ast.LitString:
		return Str(unescapeString(trimQuotes(lit.Text, '"'))), nil
	case ast.LitRawString:
		return Str(trimRawQuotes(lit.Text)), nil
	case ast.LitChar:
		s := unescapeString(trimQuotes(lit.Text, '\''))
		r := []rune(s)
		if len(r) == 0 {
			return Value{}, fmt.Errorf("interp: empty char literal %q", lit.Text)
		}
		return Char(r[0]), nil
	case ast.LitBool:
		return Bool(lit.Text == "true"), nil
	case ast.LitNull, ast.LitNone:
		return NoneValue(), nil
	default:
		return Value{}, fmt.Errorf("interp: unknown literal kind %d", lit.Kind)
	}
}

var intSuffixes = []string{"i8", "i16", "i32", "i64", "i128", "u8", "u16", "u32", "u64", "u128"}

func stripIntSuffix(s string) string {
	for _, suf := range intSuffixes {
		if strings.HasSuffix(s, suf) {
			return s[:len(s)-len(suf)]
		}
	}
	return s
}

func stripFloatSuffix(s string) string {
	if strings.HasSuffix(s, "f32") {
		return s[:len(s)-3]
	}
	if strings.HasSuffix(s, "f64") {
		return s[:len(s)-3]
	}
	return s
}

func trimQuotes(s string, q byte) string {
	if len(s) >= 2 && s[0] == q && s[len(s)-1] == q {
		return s[1 : len(s)-1]
	}
	return s
}

// trimRawQuotes strips a raw string's surrounding quote runs: `"`,
// `"""..."""`, or an `r"..."`-family prefix, matching whatever quote
// style the lexer accepted (§3: "triple-quote raw strings use
// double-quote pairs").
func trimRawQuotes(s string) string {
	s = strings.TrimPrefix(s, "r")
	if strings.HasPrefix(s, `"""`) && strings.HasSuffix(s, `"""`) && len(s) >= 6 {
		return s[3 : len(s)-3]
	}
	return trimQuotes(s, '"')
}

func unescapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '0':
			b.WriteByte(0)
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case '\'':
			b.WriteByte('\'')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
