package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"lintconf/internal/version"
)

// errDiagnostics signals a run whose diagnostics were already printed and
// should only affect the exit status.
var errDiagnostics = errors.New("diagnostics reported")

type cli struct {
	root    *cobra.Command
	cleanup func()
}

func newCLI() *cli {
	c := &cli{cleanup: func() {}}
	c.root = &cobra.Command{
		Use:   "lintconf",
		Short: "Layered lint configuration resolver",
		Long: `lintconf resolves lint configuration declarations: it expands presets,
validates every layer and merges them into one effective configuration.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			stopProfiling, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			c.cleanup = stopProfiling
			stopTracing, err := setupTracing(cmd)
			if err != nil {
				return err
			}
			c.cleanup = func() {
				stopTracing()
				stopProfiling()
			}
			return applyColor(cmd)
		},
	}

	c.root.AddCommand(newResolveCmd())
	c.root.AddCommand(newCheckCmd())
	c.root.AddCommand(newPresetsCmd())
	c.root.AddCommand(newCacheCmd())
	c.root.AddCommand(newVersionCmd())

	// Global flags
	flags := c.root.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "report per-file timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics kept per file (0 = unlimited)")
	flags.String("format", "pretty", "diagnostics format (pretty|json|sarif|short)")
	flags.Bool("with-notes", false, "include diagnostic notes in output")
	flags.Bool("fullpath", false, "emit absolute file paths in output")
	flags.Bool("warnings-as-errors", false, "exit with status 1 when any warning is reported")
	flags.Int("jobs", 0, "max parallel workers for directory runs (0=auto)")
	flags.StringSlice("preset-dir", nil, "additional preset directory (repeatable)")
	flags.Bool("no-builtins", false, "do not register the builtin lintconf:* presets")
	flags.Bool("cache", false, "enable the on-disk result cache")
	flags.String("cache-dir", "", "result cache directory (default: user cache dir)")
	flags.String("ui", "auto", "progress UI for directory runs (auto|on|off)")
	flags.String("trace", "", "trace output file (\"-\" for stderr)")
	flags.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	flags.String("trace-mode", "ring", "trace storage mode (stream|ring|both)")
	flags.String("trace-format", "auto", "trace event format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "trace ring buffer capacity")
	flags.Duration("trace-heartbeat", 0, "emit trace heartbeats at this interval (0 = off)")
	flags.String("cpu-profile", "", "write a CPU profile to this file")
	flags.String("mem-profile", "", "write a heap profile to this file on exit")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")

	return c
}

// execute runs the CLI with args and returns the process exit status.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	c := newCLI()
	c.root.SetArgs(args)
	c.root.SetOut(stdout)
	c.root.SetErr(stderr)

	err := c.root.ExecuteContext(ctx)
	c.cleanup()
	if err == nil {
		return 0
	}
	if !errors.Is(err, errDiagnostics) {
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return 1
}

func main() {
	os.Exit(execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
