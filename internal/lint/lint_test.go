package lint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/ast"
	"github.com/rask-lang/rask-sub001/internal/lint"
	"github.com/rask-lang/rask-sub001/internal/parser"
	"github.com/rask-lang/rask-sub001/internal/source"
)

func parseFile(t *testing.T, text string) *ast.File {
	t.Helper()
	res := parser.ParseFile(&source.File{Path: "<test>", Text: text}, &source.IDAllocator{})
	require.Empty(t, res.Errors, "%v", res.Errors)
	return res.File
}

func TestUnusedImportRuleFlagsUnreferencedName(t *testing.T) {
	f := parseFile(t, `
import math.{Sqrt}

func square(x: i32) -> i32 {
	x * x
}
`)
	diags := lint.DefaultRegistry.Run(f, []string{"unused-import"}, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "lint.unused-import", diags[0].Code)
}

func TestUnusedImportRuleAllowsReferencedName(t *testing.T) {
	f := parseFile(t, `
import math.{Sqrt}

func root(x: f64) -> f64 {
	Sqrt(x)
}
`)
	diags := lint.DefaultRegistry.Run(f, []string{"unused-import"}, nil)
	assert.Empty(t, diags)
}

func TestEmptyBlockRuleFlagsEmptyFunctionBody(t *testing.T) {
	f := parseFile(t, `
func todo() {
}
`)
	diags := lint.DefaultRegistry.Run(f, []string{"empty-block"}, nil)
	require.Len(t, diags, 1)
	assert.Equal(t, "lint.empty-block", diags[0].Code)
}

func TestRunIncludePatternFiltersRules(t *testing.T) {
	f := parseFile(t, `
import math.{Sqrt}

func todo() {
}
`)
	diags := lint.DefaultRegistry.Run(f, []string{"empty-block"}, nil)
	for _, d := range diags {
		assert.Equal(t, "lint.empty-block", d.Code)
	}
}

func TestRunExcludePatternSkipsRule(t *testing.T) {
	f := parseFile(t, `
import math.{Sqrt}

func todo() {
}
`)
	diags := lint.DefaultRegistry.Run(f, nil, []string{"unused-import"})
	for _, d := range diags {
		assert.NotEqual(t, "lint.unused-import", d.Code)
	}
}

func TestNamesListsBuiltinRules(t *testing.T) {
	names := lint.DefaultRegistry.Names()
	assert.Contains(t, names, "unused-import")
	assert.Contains(t, names, "empty-block")
}
