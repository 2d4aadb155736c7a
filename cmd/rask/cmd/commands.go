package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rask-lang/rask-sub001/internal/cli"
	"github.com/rask-lang/rask-sub001/internal/diag"
	"github.com/rask-lang/rask-sub001/internal/registry"
)

var lexCmd = &cobra.Command{
	Use:   "lex <file>",
	Short: "Tokenize a file and print its token stream",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		text := readSource(args[0])
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Lex(args[0], text)
		}))
	},
}

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a file and print its top-level declarations",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		text := readSource(args[0])
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Parse(args[0], text)
		}))
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <file>",
	Short: "Run name resolution over a file",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		text := readSource(args[0])
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Resolve(args[0], text)
		}))
	},
}

var typecheckCmd = &cobra.Command{
	Use:   "typecheck <file>",
	Short: "Type-check a file",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		text := readSource(args[0])
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Typecheck(args[0], text)
		}))
	},
}

var ownershipCmd = &cobra.Command{
	Use:   "ownership <file>",
	Short: "Run ownership checking over a file",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		text := readSource(args[0])
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Ownership(args[0], text)
		}))
	},
}

var monoCmd = &cobra.Command{
	Use:   "mono <file>",
	Short: "Monomorphize a file and report specialization counts",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		text := readSource(args[0])
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Mono(args[0], text)
		}))
	},
}

var mirCmd = &cobra.Command{
	Use:   "mir <file>",
	Short: "Lower a file to MIR and report per-function block counts",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		text := readSource(args[0])
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Mir(args[0], text)
		}))
	},
}

var comptimeCmd = &cobra.Command{
	Use:   "comptime <file>",
	Short: "Evaluate a file's comptime blocks",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		text := readSource(args[0])
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Comptime(args[0], text)
		}))
	},
}

var runCmd = &cobra.Command{
	Use:                "run <file> [-- args...]",
	Short:              "Run a file's main function",
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	Run: func(c *cobra.Command, args []string) {
		path, rest := args[0], args[1:]
		if len(rest) > 0 && rest[0] == "--" {
			rest = rest[1:]
		}
		text := readSource(path)
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Run(path, text, rest)
		}))
	},
}

var buildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Run a build.rk manifest's build function",
	Args:  cobra.MaximumNArgs(1),
	Run: func(c *cobra.Command, args []string) {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		manifestText := readSource(dir + "/build.rk")
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Build(dir, manifestText)
		}))
	},
}

var fmtCheck bool

var fmtCmd = &cobra.Command{
	Use:   "fmt <file>",
	Short: "Canonically reformat a file",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		path := args[0]
		text := readSource(path)
		out := cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Fmt(path, text, fmtCheck)
		})
		if !fmtCheck && out.ExitCode == 0 && out.Text != "" {
			if err := os.WriteFile(path, []byte(out.Text), 0o644); err != nil {
				out.Error = err
				out.ExitCode = 2
			} else {
				out.Text = ""
			}
		}
		renderAndExit(out)
	},
}

var testNamePattern string

var testCmd = &cobra.Command{
	Use:   "test <file>",
	Short: "Run a file's test blocks",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		text := readSource(args[0])
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Test(args[0], text, testNamePattern)
		}))
	},
}

var benchNamePattern string

var benchmarkCmd = &cobra.Command{
	Use:   "benchmark <file>",
	Short: "Run a file's benchmark blocks",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		text := readSource(args[0])
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Benchmark(args[0], text, benchNamePattern)
		}))
	},
}

var testSpecsCmd = &cobra.Command{
	Use:   "test-specs [dir]",
	Short: "Run test blocks across every .rk file discovered under dir",
	Args:  cobra.MaximumNArgs(1),
	Run: func(c *cobra.Command, args []string) {
		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}
		paths, err := registry.DiscoverSources(dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rask: %v\n", err)
			os.Exit(2)
		}
		files := make(map[string]string, len(paths))
		for _, path := range paths {
			files[path] = readSource(path)
		}
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.TestSpecs(files)
		}))
	},
}

var (
	lintRulePatterns    []string
	lintExcludePatterns []string
)

var lintCmd = &cobra.Command{
	Use:   "lint <file>",
	Short: "Run the lint rule registry over a file",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		text := readSource(args[0])
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Lint(args[0], text, lintRulePatterns, lintExcludePatterns)
		}))
	},
}

var describeAll bool

var describeCmd = &cobra.Command{
	Use:   "describe <file>",
	Short: "Summarize a file's declarations",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		text := readSource(args[0])
		renderAndExit(cli.Dispatch(func() ([]diag.Diagnostic, string, error) {
			return cli.Describe(args[0], text, describeAll)
		}))
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain <code>",
	Short: "Look up a stable diagnostic code's explanation",
	Args:  cobra.ExactArgs(1),
	Run: func(c *cobra.Command, args []string) {
		msg, ok := cli.Explain(args[0])
		if !ok {
			renderAndExit(cli.Output{ExitCode: 1, Text: "unknown code: " + args[0] + "\n"})
			return
		}
		renderAndExit(cli.Output{ExitCode: 0, Text: msg + "\n"})
	},
}

// rcVersion is the compiler/runtime's own version string, reported by
// `rask version` (§6).
const rcVersion = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the rask version",
	Args:  cobra.NoArgs,
	Run: func(c *cobra.Command, args []string) {
		renderAndExit(cli.Output{ExitCode: 0, Text: "rask " + rcVersion + "\n"})
	},
}

func init() {
	testCmd.Flags().StringVarP(&testNamePattern, "filter", "f", "", "only run tests whose name contains this substring")
	benchmarkCmd.Flags().StringVarP(&benchNamePattern, "filter", "f", "", "only run benchmarks whose name contains this substring")
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "report a diff instead of rewriting the file")
	lintCmd.Flags().StringSliceVar(&lintRulePatterns, "rule", nil, "glob pattern(s) selecting which rules to run (default: all)")
	lintCmd.Flags().StringSliceVar(&lintExcludePatterns, "exclude", nil, "glob pattern(s) selecting which rules to skip")
	describeCmd.Flags().BoolVar(&describeAll, "all", false, "include every phase's diagnostics and a byte-size summary")
}
