package cli_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rask-lang/rask-sub001/internal/cli"
	"github.com/rask-lang/rask-sub001/internal/diag"
)

func TestLexTokenizesSimpleFile(t *testing.T) {
	diags, out, err := cli.Lex("<test>", `let x = 1`)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Contains(t, out, "let")
}

func TestParseDescribesTopLevelDecls(t *testing.T) {
	diags, out, err := cli.Parse("<test>", `func add(x: i32, y: i32) -> i32 { x + y }`)
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Contains(t, out, "func add")
}

func TestTypecheckCatchesMismatch(t *testing.T) {
	diags, _, err := cli.Typecheck("<test>", `
func bad() -> i32 {
	"not an int"
}
`)
	require.NoError(t, err)
	require.NotEmpty(t, diags)
}

func TestRunExecutesMain(t *testing.T) {
	diags, out, err := cli.Run("<test>", `
func main() -> i32 {
	41 + 1
}
`, nil)
	require.NoError(t, err)
	for _, d := range diags {
		assert.NotEqual(t, diag.Error, d.Severity)
	}
	assert.Equal(t, "42", out)
}

func TestTestRunsTestBlocks(t *testing.T) {
	diags, out, err := cli.Test("<test>", `
test "arithmetic holds" {
	assert(1 + 1 == 2)
}
`, "")
	require.NoError(t, err)
	assert.Empty(t, diags)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "1 passed, 0 failed")
}

func TestFmtReportsDiffWhenCheckedAndUnformatted(t *testing.T) {
	diags, out, err := cli.Fmt("<test>", "func  add(x: i32)->i32{x}", true)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "fmt.not-formatted", diags[0].Code)
	assert.Contains(t, out, "@@")
}

func TestFmtIsCleanOnAlreadyFormattedInput(t *testing.T) {
	_, canonical, err := cli.Fmt("<test>", `func add(x: i32) -> i32 {
	x
}
`, false)
	require.NoError(t, err)

	diags, out, ferr := cli.Fmt("<test>", canonical, true)
	require.NoError(t, ferr)
	assert.Empty(t, diags)
	assert.Empty(t, out)
}

func TestExplainRejectsUnknownCode(t *testing.T) {
	_, ok := cli.Explain("does-not-exist")
	assert.False(t, ok)
}

func TestDispatchMapsInternalErrorToExitCodeTwo(t *testing.T) {
	out := cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
		return nil, "", assert.AnError
	})
	assert.Equal(t, 2, out.ExitCode)
}

func TestDispatchMapsDiagnosticErrorToExitCodeOne(t *testing.T) {
	out := cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
		return []diag.Diagnostic{{Severity: diag.Error, Message: "boom"}}, "", nil
	})
	assert.Equal(t, 1, out.ExitCode)
}

func TestDispatchMapsCleanResultToExitCodeZero(t *testing.T) {
	out := cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
		return nil, "ok", nil
	})
	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, "ok", out.Text)
}
