// Package token defines the lexical token kinds produced by
// internal/lexer and consumed by internal/parser.
package token

import "github.com/rask-lang/rask-sub001/internal/source"

// Kind enumerates every lexical token category. Keep in sync with the
// lexer's switch and the parser's lookahead tables.
type Kind int

const (
	Invalid Kind = iota
	Eof
	Newline

	// Literals
	Ident
	Int
	Float
	String
	RawString
	Char
	DocComment // `///` line comment, text excludes the leading slashes

	// Keywords
	KwFunc
	KwStruct
	KwEnum
	KwUnion
	KwTrait
	KwImpl
	KwConst
	KwImport
	KwExport
	KwTest
	KwBenchmark
	KwLet
	KwReturn
	KwBreak
	KwContinue
	KwDeliver
	KwWhile
	KwFor
	KwLoop
	KwEnsure
	KwCatch
	KwComptime
	KwIf
	KwElse
	KwMatch
	KwTry
	KwClosure // "fn" closure literal keyword
	KwSpawn
	KwUnsafe
	KwAssert
	KwCheck
	KwUsing
	KwWith
	KwAs
	KwSelect
	KwIs
	KwIn
	KwMut
	KwOwn
	KwTake
	KwRead
	KwSelf
	KwTrue
	KwFalse
	KwNull
	KwNone

	// Punctuation & operators
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Dot
	DotDot
	DotDotEq
	QuestionDot
	Colon
	ColonColon
	Semicolon
	Arrow     // ->
	FatArrow  // =>
	Question  // ?
	QuestionQuestion
	Bang
	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	AmpAmp
	Pipe
	PipePipe
	Caret
	Tilde
	Shl
	Shr
	EqEq
	BangEq
	Lt
	LtEq
	Gt
	GtEq
	Assign
	PlusEq
	MinusEq
	StarEq
	SlashEq
	At // @attribute
)

// Token is a single lexical token: its kind, the literal text it spans,
// and its span in the source buffer.
type Token struct {
	Kind Kind
	Text string
	Span source.Span
}

var keywords = map[string]Kind{
	"func": KwFunc, "struct": KwStruct, "enum": KwEnum, "union": KwUnion,
	"trait": KwTrait, "impl": KwImpl, "const": KwConst, "import": KwImport,
	"export": KwExport, "test": KwTest, "benchmark": KwBenchmark, "let": KwLet,
	"return": KwReturn, "break": KwBreak, "continue": KwContinue, "deliver": KwDeliver,
	"while": KwWhile, "for": KwFor, "loop": KwLoop, "ensure": KwEnsure,
	"catch": KwCatch, "comptime": KwComptime, "if": KwIf, "else": KwElse,
	"match": KwMatch, "try": KwTry, "spawn": KwSpawn, "unsafe": KwUnsafe,
	"assert": KwAssert, "check": KwCheck, "using": KwUsing, "with": KwWith,
	"as": KwAs, "select": KwSelect, "is": KwIs, "in": KwIn, "mut": KwMut,
	"own": KwOwn, "take": KwTake, "read": KwRead, "self": KwSelf,
	"true": KwTrue, "false": KwFalse, "null": KwNull, "None": KwNone,
	"fn": KwClosure,
}

// LookupKeyword returns the keyword Kind for ident, or (Ident, false) if
// ident is not a reserved word.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}

// String renders a Kind for diagnostics/debugging (e.g. "expected Ident,
// found Plus").
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Unknown"
}

var kindNames = map[Kind]string{
	Invalid: "Invalid", Eof: "Eof", Newline: "Newline", Ident: "Ident",
	Int: "Int", Float: "Float", String: "String", RawString: "RawString", Char: "Char",
	DocComment: "DocComment",
	LParen: "(", RParen: ")", LBrace: "{", RBrace: "}", LBracket: "[", RBracket: "]",
	Comma: ",", Dot: ".", DotDot: "..", DotDotEq: "..=", QuestionDot: "?.",
	Colon: ":", ColonColon: "::", Semicolon: ";", Arrow: "->", FatArrow: "=>",
	Question: "?", QuestionQuestion: "??", Bang: "!", Plus: "+", Minus: "-",
	Star: "*", Slash: "/", Percent: "%", Amp: "&", AmpAmp: "&&", Pipe: "|",
	PipePipe: "||", Caret: "^", Tilde: "~", Shl: "<<", Shr: ">>",
	EqEq: "==", BangEq: "!=", Lt: "<", LtEq: "<=", Gt: ">", GtEq: ">=",
	Assign: "=", PlusEq: "+=", MinusEq: "-=", StarEq: "*=", SlashEq: "/=", At: "@",
}
