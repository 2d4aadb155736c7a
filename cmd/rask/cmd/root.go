// Package cmd builds the cobra command tree §6a commits to: one
// cobra.Command per §6 subcommand, each a thin wrapper calling into the
// relevant internal/cli function and rendering the result through
// internal/diag. The root command owns the process-wide --json flag
// and --debug flag, and loads rconfig.Config once before any subcommand
// runs.
package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/rask-lang/rask-sub001/internal/cli"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/rconfig"
)

var (
	jsonOutput bool
	debug      bool
	envFile    string

	cfg    rconfig.Config
	logger = rconfig.NewLogger(false)
)

var rootCmd = &cobra.Command{
	Use:           "rask",
	Short:         "The rask compiler and runtime",
	Long:          "rask drives source files through lexing, parsing, resolution, type checking, ownership checking, monomorphization, MIR construction, codegen, and interpretation.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(c *cobra.Command, args []string) {
		loaded, err := rconfig.Load(envFile, rconfig.FlagOverrides{
			JSONOutput: &jsonOutput,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "rask: failed to load configuration: %v\n", err)
			os.Exit(2)
		}
		cfg = loaded
		logger = rconfig.NewLogger(debug)
		logger.Debug("configuration loaded", "registry_source", cfg.RegistrySource, "resolution_cache", cfg.ResolutionCache, "lint_default_set", cfg.LintDefaultSet)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit diagnostics as JSON instead of plain text")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug-level logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file to load RASK_* overrides from")

	rootCmd.AddCommand(
		lexCmd, parseCmd, resolveCmd, typecheckCmd, ownershipCmd,
		monoCmd, mirCmd, comptimeCmd, runCmd, buildCmd, fmtCmd,
		testCmd, benchmarkCmd, testSpecsCmd, lintCmd, describeCmd, explainCmd,
		versionCmd,
	)
}

// Execute runs the root command and terminates the process with the
// exit code the §6 policy computed, mirroring the teacher's
// handleOutputAndExit (0 success, 1 user error, 2 internal error).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// renderAndExit writes out's diagnostics (and any success text) to
// stdout/stderr in the requested format, then exits with out.ExitCode.
func renderAndExit(out cli.Output) {
	logger.Info("invocation complete", "diagnostics", len(out.Diagnostics), "exit_code", out.ExitCode)

	if out.Error != nil {
		fmt.Fprintf(os.Stderr, "rask: %v\n", out.Error)
	}
	if len(out.Diagnostics) > 0 {
		renderer := chooseRenderer()
		if err := renderer.Render(os.Stderr, out.Diagnostics); err != nil {
			fmt.Fprintf(os.Stderr, "rask: failed to render diagnostics: %v\n", err)
		}
	}
	if out.Text != "" {
		fmt.Fprint(os.Stdout, out.Text)
	}
	os.Exit(out.ExitCode)
}

func chooseRenderer() diag.Renderer {
	if jsonOutput || !isatty.IsTerminal(os.Stdout.Fd()) {
		return diag.JSONRenderer{Indent: true}
	}
	return diag.TextRenderer{}
}

func readSource(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rask: %v\n", err)
		os.Exit(2)
	}
	return string(data)
}
