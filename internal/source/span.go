// Package source holds the data structures every later phase anchors its
// diagnostics and provenance to: byte spans, a source buffer, and a
// precomputed line map.
package source

import "sort"

// Span is a half-open byte range [Start, End) within a single File.
// Every AST node, token, MIR instruction, and diagnostic label carries
// one. Spans are comparable with ==, which is used by several of the
// round-trip tests in §8.
type Span struct {
	Start int
	End   int
}

// Len reports the number of bytes the span covers.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether offset falls within the half-open range.
func (s Span) Contains(offset int) bool { return offset >= s.Start && offset < s.End }

// Join returns the smallest span covering both s and other. Used when a
// parser production combines several child spans into a parent node's
// span (e.g. a binary expression spans its left operand through its
// right operand).
func (s Span) Join(other Span) Span {
	start, end := s.Start, s.End
	if other.Start < start {
		start = other.Start
	}
	if other.End > end {
		end = other.End
	}
	return Span{Start: start, End: end}
}

// Zero is the sentinel span [0,0) used for built-in symbols that have no
// location in user source (§3 Symbol).
var Zero = Span{Start: 0, End: 0}

// File is a single source file: its path (for diagnostics) and its raw
// text.
type File struct {
	Path string
	Text string
}

// LineMap precomputes line-start byte offsets for a File so that
// byte-offset-to-(line,column) lookup is O(log n) rather than a linear
// rescan, as required by §3.
type LineMap struct {
	starts []int // starts[i] = byte offset of the first byte of line i (0-indexed)
	length int
}

// NewLineMap scans text once, recording the offset immediately after
// every '\n'.
func NewLineMap(text string) *LineMap {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineMap{starts: starts, length: len(text)}
}

// Position is a 1-indexed (line, column) pair. Column counts bytes, not
// runes or grapheme clusters — sufficient for diagnostics rendering,
// which is explicitly out of scope (§1).
type Position struct {
	Line   int
	Column int
}

// Position converts a byte offset into a Position via binary search over
// the precomputed line starts.
func (lm *LineMap) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > lm.length {
		offset = lm.length
	}
	// Find the last line start <= offset.
	i := sort.Search(len(lm.starts), func(i int) bool { return lm.starts[i] > offset })
	line := i - 1
	if line < 0 {
		line = 0
	}
	return Position{Line: line + 1, Column: offset - lm.starts[line] + 1}
}

// LineCount reports the total number of lines recorded.
func (lm *LineMap) LineCount() int { return len(lm.starts) }
