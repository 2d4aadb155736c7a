package diag

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/rask-lang/rask-sub001/internal/source"
)

// Renderer turns a slice of diagnostics into text written to w. The
// terminal diagnostic renderer itself (colors, code frames, gutter
// layout) is explicitly out of scope (§1) — these two implementations
// cover only what §6 requires: a stable JSON encoding, and a minimal
// human-readable fallback a real renderer could be swapped in for.
type Renderer interface {
	Render(w io.Writer, diags []Diagnostic) error
}

// JSONRenderer marshals diagnostics to the exact field set from §6.
type JSONRenderer struct{ Indent bool }

func (r JSONRenderer) Render(w io.Writer, diags []Diagnostic) error {
	enc := json.NewEncoder(w)
	if r.Indent {
		enc.SetIndent("", "  ")
	}
	if diags == nil {
		diags = []Diagnostic{}
	}
	return enc.Encode(diags)
}

// TextRenderer is a minimal, renderer-agnostic plain-text fallback: one
// line per diagnostic plus its primary label's position, and a unified
// diff for any suggested fix. A full terminal renderer (gutters, color,
// source-line excerpts) is the out-of-scope external collaborator named
// in §1; this exists only so `--json` has something to default away
// from.
type TextRenderer struct {
	File *source.File
	LM   *source.LineMap
}

func (r TextRenderer) Render(w io.Writer, diags []Diagnostic) error {
	for _, d := range diags {
		loc := ""
		if len(d.Labels) > 0 && r.LM != nil {
			pos := r.LM.Position(d.Labels[0].Span.Start)
			loc = fmt.Sprintf("%d:%d: ", pos.Line, pos.Column)
		}
		code := ""
		if d.Code != "" {
			code = "[" + d.Code + "] "
		}
		fmt.Fprintf(w, "%s: %s%s%s\n", d.Severity, code, loc, d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  note: %s\n", n)
		}
		if d.Help != nil {
			fmt.Fprintf(w, "  help: %s\n", d.Help.Message)
			if d.Help.Suggestion != nil && r.File != nil {
				diffText, err := renderSuggestionDiff(r.File.Text, *d.Help.Suggestion)
				if err == nil {
					fmt.Fprint(w, indent(diffText, "    "))
				}
			}
		}
	}
	return nil
}

// renderSuggestionDiff produces a unified diff between the original
// file text and the text with the suggestion's span replaced, using
// go-difflib the same way the teacher's `fmt --check` path diffed
// staged changes against disk.
func renderSuggestionDiff(original string, s Suggestion) (string, error) {
	if s.Span.Start < 0 || s.Span.End > len(original) || s.Span.Start > s.Span.End {
		return "", fmt.Errorf("suggestion span out of range")
	}
	patched := original[:s.Span.Start] + s.Replacement + original[s.Span.End:]
	diffed := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(patched),
		FromFile: "original",
		ToFile:   "suggested",
		Context:  2,
	}
	return difflib.GetUnifiedDiffString(diffed)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}
