// Package fmtprint implements §6's `rask fmt <file> [--check]`: a
// canonical re-rendering of a parsed file's declarations, grounded in
// the same "each pass owns its own flat type switch" convention
// internal/lint and internal/interp already follow (per
// internal/ast.go's own doc comment) rather than a visitor interface.
//
// It prints from the AST rather than re-tokenizing source text, so the
// output is always syntactically canonical — consistent spacing,
// one-true-brace placement, tab indentation — at the cost of discarding
// any idiosyncratic source layout the AST itself doesn't preserve
// (blank-line grouping between statements, trailing line comments).
// Doc comments and attributes, which the AST does preserve, round-trip.
package fmtprint

import (
	"fmt"
	"strings"

	"github.com/rask-lang/rask-sub001/internal/ast"
)

// File renders every declaration in f in source order, each separated
// by a single blank line, with a trailing newline.
func File(f *ast.File) string {
	var sb strings.Builder
	for i, d := range f.Decls {
		if i > 0 {
			sb.WriteString("\n")
		}
		printDecl(&sb, 0, d)
	}
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteByte('\t')
	}
}

func printDecl(sb *strings.Builder, depth int, d ast.Decl) {
	switch n := d.(type) {
	case *ast.ImportDecl:
		printImportDecl(sb, depth, n)
	case *ast.ExportDecl:
		indent(sb, depth)
		fmt.Fprintf(sb, "export %s\n", n.Name)
	case *ast.ConstDecl:
		printDoc(sb, depth, n.Doc)
		indent(sb, depth)
		fmt.Fprintf(sb, "const %s: %s = %s\n", n.Name, printType(n.Type), printExpr(n.Init))
	case *ast.FuncDecl:
		printFuncDecl(sb, depth, n)
	case *ast.StructDecl:
		printStructDecl(sb, depth, n)
	case *ast.EnumDecl:
		printEnumDecl(sb, depth, n)
	case *ast.UnionDecl:
		printUnionDecl(sb, depth, n)
	case *ast.TraitDecl:
		printTraitDecl(sb, depth, n)
	case *ast.ImplDecl:
		printImplDecl(sb, depth, n)
	case *ast.TestDecl:
		indent(sb, depth)
		fmt.Fprintf(sb, "test %q ", n.Name)
		printBlock(sb, depth, n.Body)
	case *ast.BenchmarkDecl:
		indent(sb, depth)
		fmt.Fprintf(sb, "benchmark %q ", n.Name)
		printBlock(sb, depth, n.Body)
	default:
		indent(sb, depth)
		fmt.Fprintf(sb, "/* unrenderable decl %T */\n", d)
	}
}

func printDoc(sb *strings.Builder, depth int, doc string) {
	if doc == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(doc, "\n"), "\n") {
		indent(sb, depth)
		fmt.Fprintf(sb, "/// %s\n", line)
	}
}

func printImportDecl(sb *strings.Builder, depth int, n *ast.ImportDecl) {
	indent(sb, depth)
	switch {
	case n.Wildcard:
		fmt.Fprintf(sb, "import %s.*\n", n.Package)
	case len(n.Names) == 1:
		fmt.Fprintf(sb, "import %s.{%s}\n", n.Package, n.Names[0])
	default:
		fmt.Fprintf(sb, "import %s.{%s}\n", n.Package, strings.Join(n.Names, ", "))
	}
}

func printModifiersAttrs(sb *strings.Builder, depth int, mods []ast.Modifier, attrs []ast.Attribute) {
	for _, a := range attrs {
		indent(sb, depth)
		if len(a.Args) == 0 {
			fmt.Fprintf(sb, "@%s\n", a.Name)
		} else {
			fmt.Fprintf(sb, "@%s(%s)\n", a.Name, strings.Join(a.Args, ", "))
		}
	}
	if len(mods) > 0 {
		indent(sb, depth)
		ss := make([]string, len(mods))
		for i, m := range mods {
			ss[i] = string(m)
		}
		fmt.Fprintf(sb, "%s ", strings.Join(ss, " "))
	}
}

func printFuncDecl(sb *strings.Builder, depth int, n *ast.FuncDecl) {
	printDoc(sb, depth, n.Doc)
	for _, a := range n.Attrs {
		indent(sb, depth)
		if len(a.Args) == 0 {
			fmt.Fprintf(sb, "@%s\n", a.Name)
		} else {
			fmt.Fprintf(sb, "@%s(%s)\n", a.Name, strings.Join(a.Args, ", "))
		}
	}
	indent(sb, depth)
	if len(n.Modifiers) > 0 {
		ss := make([]string, len(n.Modifiers))
		for i, m := range n.Modifiers {
			ss[i] = string(m)
		}
		fmt.Fprintf(sb, "%s ", strings.Join(ss, " "))
	}
	sb.WriteString("func ")
	sb.WriteString(n.Name)
	if len(n.TypeParams) > 0 {
		fmt.Fprintf(sb, "<%s>", strings.Join(n.TypeParams, ", "))
	}
	sb.WriteByte('(')
	for i, p := range n.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(printParam(p))
	}
	sb.WriteByte(')')
	if n.Ret != nil {
		fmt.Fprintf(sb, " -> %s", printType(n.Ret))
	}
	sb.WriteString(" ")
	printBlock(sb, depth, n.Body)
}

func printParam(p ast.Param) string {
	mode := ""
	switch p.Mode {
	case ast.ModeTake:
		mode = "take "
	case ast.ModeRead:
		mode = "read "
	case ast.ModeMut:
		mode = "mut "
	case ast.ModeSelf:
		return "self"
	}
	return fmt.Sprintf("%s%s: %s", mode, p.Name, printType(p.Type))
}

func printStructDecl(sb *strings.Builder, depth int, n *ast.StructDecl) {
	printDoc(sb, depth, n.Doc)
	printModifiersAttrs(sb, depth, n.Modifiers, n.Attrs)
	indent(sb, depth)
	sb.WriteString("struct ")
	sb.WriteString(n.Name)
	if len(n.TypeParams) > 0 {
		fmt.Fprintf(sb, "<%s>", strings.Join(n.TypeParams, ", "))
	}
	sb.WriteString(" {\n")
	for _, f := range n.Fields {
		printDoc(sb, depth+1, f.Doc)
		indent(sb, depth+1)
		fmt.Fprintf(sb, "%s: %s,\n", f.Name, printType(f.Type))
	}
	indent(sb, depth)
	sb.WriteString("}\n")
}

func printEnumDecl(sb *strings.Builder, depth int, n *ast.EnumDecl) {
	printDoc(sb, depth, n.Doc)
	indent(sb, depth)
	sb.WriteString("enum ")
	sb.WriteString(n.Name)
	if len(n.TypeParams) > 0 {
		fmt.Fprintf(sb, "<%s>", strings.Join(n.TypeParams, ", "))
	}
	sb.WriteString(" {\n")
	for _, v := range n.Variants {
		indent(sb, depth+1)
		sb.WriteString(v.Name)
		if len(v.Fields) > 0 {
			sb.WriteString("(")
			for i, f := range v.Fields {
				if i > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(printType(f.Type))
			}
			sb.WriteString(")")
		}
		sb.WriteString(",\n")
	}
	indent(sb, depth)
	sb.WriteString("}\n")
}

func printUnionDecl(sb *strings.Builder, depth int, n *ast.UnionDecl) {
	printDoc(sb, depth, n.Doc)
	indent(sb, depth)
	sb.WriteString("union ")
	sb.WriteString(n.Name)
	sb.WriteString(" {\n")
	for _, f := range n.Fields {
		indent(sb, depth+1)
		fmt.Fprintf(sb, "%s: %s,\n", f.Name, printType(f.Type))
	}
	indent(sb, depth)
	sb.WriteString("}\n")
}

func printTraitDecl(sb *strings.Builder, depth int, n *ast.TraitDecl) {
	printDoc(sb, depth, n.Doc)
	indent(sb, depth)
	sb.WriteString("trait ")
	sb.WriteString(n.Name)
	if len(n.TypeParams) > 0 {
		fmt.Fprintf(sb, "<%s>", strings.Join(n.TypeParams, ", "))
	}
	sb.WriteString(" {\n")
	for _, m := range n.Methods {
		printFuncDecl(sb, depth+1, m)
	}
	indent(sb, depth)
	sb.WriteString("}\n")
}

func printImplDecl(sb *strings.Builder, depth int, n *ast.ImplDecl) {
	indent(sb, depth)
	if n.Trait != "" {
		fmt.Fprintf(sb, "impl %s for %s {\n", n.Trait, printType(n.TargetType))
	} else {
		fmt.Fprintf(sb, "impl %s {\n", printType(n.TargetType))
	}
	for _, m := range n.Methods {
		printFuncDecl(sb, depth+1, m)
	}
	indent(sb, depth)
	sb.WriteString("}\n")
}

func printBlock(sb *strings.Builder, depth int, b *ast.BlockExpr) {
	if b == nil || (len(b.Stmts) == 0 && b.Tail == nil) {
		sb.WriteString("{}\n")
		return
	}
	sb.WriteString("{\n")
	for _, s := range b.Stmts {
		printStmt(sb, depth+1, s)
	}
	if b.Tail != nil {
		indent(sb, depth+1)
		sb.WriteString(printExpr(b.Tail))
		sb.WriteString("\n")
	}
	indent(sb, depth)
	sb.WriteString("}\n")
}

func printStmt(sb *strings.Builder, depth int, s ast.Stmt) {
	indent(sb, depth)
	switch n := s.(type) {
	case *ast.LetStmt:
		kw := "let"
		if n.Mut {
			kw = "let mut"
		}
		name := strings.Join(n.Bind.Names, ", ")
		if len(n.Bind.Names) > 1 {
			name = "(" + name + ")"
		}
		ty := ""
		if n.Type != nil {
			ty = ": " + printType(n.Type)
		}
		init := ""
		if n.Init != nil {
			init = " = " + printExpr(n.Init)
		}
		fmt.Fprintf(sb, "%s %s%s%s\n", kw, name, ty, init)
	case *ast.ConstStmt:
		fmt.Fprintf(sb, "const %s: %s = %s\n", n.Name, printType(n.Type), printExpr(n.Init))
	case *ast.AssignStmt:
		fmt.Fprintf(sb, "%s = %s\n", printExpr(n.Target), printExpr(n.Value))
	case *ast.ReturnStmt:
		if n.Value != nil {
			fmt.Fprintf(sb, "return %s\n", printExpr(n.Value))
		} else {
			sb.WriteString("return\n")
		}
	case *ast.LoopControlStmt:
		kw := [...]string{"break", "continue", "deliver"}[n.Kind]
		if n.Value != nil {
			fmt.Fprintf(sb, "%s %s\n", kw, printExpr(n.Value))
		} else {
			fmt.Fprintf(sb, "%s\n", kw)
		}
	case *ast.WhileStmt:
		fmt.Fprintf(sb, "while %s ", printExpr(n.Cond))
		printBlock(sb, depth, n.Body)
	case *ast.ForStmt:
		fmt.Fprintf(sb, "for %s in %s ", printPattern(n.Pattern), printExpr(n.Iter))
		printBlock(sb, depth, n.Body)
	case *ast.LoopStmt:
		sb.WriteString("loop ")
		printBlock(sb, depth, n.Body)
	case *ast.EnsureStmt:
		sb.WriteString("ensure ")
		printBlock(sb, depth, n.Body)
		if n.Catch != nil {
			indent(sb, depth)
			sb.WriteString("catch ")
			printBlock(sb, depth, n.Catch)
		}
	case *ast.ExprStmt:
		fmt.Fprintf(sb, "%s\n", printExpr(n.X))
	default:
		fmt.Fprintf(sb, "/* unrenderable stmt %T */\n", s)
	}
}

func printExpr(e ast.Expr) string {
	if e == nil {
		return ""
	}
	switch n := e.(type) {
	case *ast.LiteralExpr:
		return n.Text
	case *ast.IdentExpr:
		return n.Name
	case *ast.BinaryExpr:
		return fmt.Sprintf("%s %s %s", printExpr(n.Left), binaryOpText(n.Op), printExpr(n.Right))
	case *ast.UnaryExpr:
		return unaryOpText(n.Op) + printExpr(n.Operand)
	case *ast.CallExpr:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = printExpr(a)
		}
		return fmt.Sprintf("%s(%s)", printExpr(n.Callee), strings.Join(args, ", "))
	case *ast.MethodCallExpr:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = printExpr(a)
		}
		return fmt.Sprintf("%s.%s(%s)", printExpr(n.Receiver), n.Name, strings.Join(args, ", "))
	case *ast.FieldExpr:
		op := "."
		if n.Optional {
			op = "?."
		}
		return printExpr(n.Receiver) + op + n.Name
	case *ast.IndexExpr:
		return fmt.Sprintf("%s[%s]", printExpr(n.Receiver), printExpr(n.Index))
	case *ast.StructLitExpr:
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = fmt.Sprintf("%s: %s", f.Name, printExpr(f.Value))
		}
		return fmt.Sprintf("%s { %s }", printType(n.Type), strings.Join(fields, ", "))
	case *ast.ArrayExpr:
		elems := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = printExpr(el)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case *ast.ArrayRepeatExpr:
		return fmt.Sprintf("[%s; %s]", printExpr(n.Value), printExpr(n.Count))
	case *ast.TupleExpr:
		elems := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = printExpr(el)
		}
		return "(" + strings.Join(elems, ", ") + ")"
	case *ast.RangeExpr:
		op := ".."
		if n.Inclusive {
			op = "..="
		}
		return printExpr(n.Start) + op + printExpr(n.End)
	case *ast.TryExpr:
		return printExpr(n.X) + "?"
	case *ast.UnwrapExpr:
		return printExpr(n.X) + "!!"
	case *ast.NullCoalesceExpr:
		return fmt.Sprintf("%s ?? %s", printExpr(n.Left), printExpr(n.Right))
	case *ast.CastExpr:
		return fmt.Sprintf("%s as %s", printExpr(n.X), printType(n.Type))
	case *ast.SpawnExpr:
		return "spawn " + printExpr(n.Body)
	case *ast.AssertExpr:
		if n.Msg != nil {
			return fmt.Sprintf("assert(%s, %s)", printExpr(n.Cond), printExpr(n.Msg))
		}
		return fmt.Sprintf("assert(%s)", printExpr(n.Cond))
	case *ast.CheckExpr:
		if n.Msg != nil {
			return fmt.Sprintf("check(%s, %s)", printExpr(n.Cond), printExpr(n.Msg))
		}
		return fmt.Sprintf("check(%s)", printExpr(n.Cond))
	case *ast.IsExpr:
		return fmt.Sprintf("%s is %s", printExpr(n.Value), printPattern(n.Pattern))
	case *ast.BlockExpr:
		var sb strings.Builder
		printBlock(&sb, 0, n)
		return strings.TrimRight(sb.String(), "\n")
	case *ast.IfExpr:
		var sb strings.Builder
		fmt.Fprintf(&sb, "if %s ", printExpr(n.Cond))
		printBlock(&sb, 0, n.Then)
		out := strings.TrimRight(sb.String(), "\n")
		if n.Else != nil {
			out += " else " + printExpr(n.Else)
		}
		return out
	case *ast.MatchExpr:
		var sb strings.Builder
		fmt.Fprintf(&sb, "match %s {\n", printExpr(n.Scrutinee))
		for _, arm := range n.Arms {
			sb.WriteByte('\t')
			sb.WriteString(printPattern(arm.Pattern))
			if arm.Guard != nil {
				fmt.Fprintf(&sb, " if %s", printExpr(arm.Guard))
			}
			fmt.Fprintf(&sb, " => %s\n", printExpr(arm.Body))
		}
		sb.WriteString("}")
		return sb.String()
	case *ast.ClosureExpr:
		params := make([]string, len(n.Params))
		for i, p := range n.Params {
			params[i] = printParam(p)
		}
		return fmt.Sprintf("(%s) => %s", strings.Join(params, ", "), printExpr(n.Body))
	default:
		return fmt.Sprintf("/* unrenderable expr %T */", e)
	}
}

func printPattern(p ast.Pattern) string {
	switch n := p.(type) {
	case *ast.BindPattern:
		return n.Name
	case *ast.WildcardPattern:
		return "_"
	case *ast.LiteralPattern:
		return printExpr(n.Value)
	case *ast.ConstructorPattern:
		if len(n.Fields) == 0 {
			return n.Name
		}
		fields := make([]string, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = printPattern(f)
		}
		return fmt.Sprintf("%s(%s)", n.Name, strings.Join(fields, ", "))
	case *ast.TuplePattern:
		elems := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = printPattern(el)
		}
		return "(" + strings.Join(elems, ", ") + ")"
	default:
		return fmt.Sprintf("/* unrenderable pattern %T */", p)
	}
}

func printType(t ast.TypeExpr) string {
	if t == nil {
		return "()"
	}
	switch n := t.(type) {
	case *ast.NamedTypeExpr:
		if len(n.Args) == 0 {
			return n.Name
		}
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			args[i] = printType(a)
		}
		return fmt.Sprintf("%s<%s>", n.Name, strings.Join(args, ", "))
	case *ast.TupleTypeExpr:
		elems := make([]string, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = printType(e)
		}
		return "(" + strings.Join(elems, ", ") + ")"
	case *ast.ArrayTypeExpr:
		return fmt.Sprintf("[%s; %d]", printType(n.Elem), n.Len)
	case *ast.SliceTypeExpr:
		return fmt.Sprintf("[%s]", printType(n.Elem))
	case *ast.RefTypeExpr:
		if n.IsFn {
			params := make([]string, len(n.Params))
			for i, p := range n.Params {
				params[i] = printType(p)
			}
			return fmt.Sprintf("fn(%s) -> %s", strings.Join(params, ", "), printType(n.Ret))
		}
		return "*" + printType(n.Pointee)
	default:
		return fmt.Sprintf("/* unrenderable type %T */", t)
	}
}

func binaryOpText(op ast.BinaryOp) string {
	names := [...]string{
		ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/", ast.OpRem: "%",
		ast.OpBitAnd: "&", ast.OpBitOr: "|", ast.OpBitXor: "^", ast.OpShl: "<<", ast.OpShr: ">>",
		ast.OpEq: "==", ast.OpNe: "!=", ast.OpLt: "<", ast.OpLe: "<=", ast.OpGt: ">", ast.OpGe: ">=",
		ast.OpLogAnd: "&&", ast.OpLogOr: "||",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return "?"
}

func unaryOpText(op ast.UnaryOp) string {
	switch op {
	case ast.OpNeg:
		return "-"
	case ast.OpBitNot:
		return "~"
	case ast.OpNot:
		return "!"
	default:
		return "?"
	}
}
