package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lintconf/internal/driver"
	"lintconf/internal/project"
	"lintconf/internal/resolve"
	"lintconf/internal/trace"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [flags] [file|directory]",
		Short: "Print the effective configuration for a declaration",
		Long: `Resolve expands the presets of a declaration, validates every layer and
prints the merged configuration as canonical JSON. Given a directory, the
nearest declaration file in it or its parents is used. Diagnostics go to
stderr.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runResolve,
	}
	cmd.Flags().Bool("explain", false, "print where each rule came from instead of JSON")
	cmd.Flags().Bool("layers", false, "print the expanded layer order instead of JSON")
	cmd.Flags().String("override", "", "declaration file layered on top with highest priority")
	return cmd
}

// locateDeclaration maps a CLI argument onto a declaration file.
func locateDeclaration(target string) (string, error) {
	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("failed to stat path: %w", err)
	}
	if !info.IsDir() {
		return target, nil
	}
	path, ok, err := project.FindDeclaration(target)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("no declaration file (%s) found in %s or its parents", project.DeclarationNames[0], target)
	}
	return path, nil
}

func runResolve(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd.Context(), cmd.ErrOrStderr())

	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	explain, err := cmd.Flags().GetBool("explain")
	if err != nil {
		return fmt.Errorf("failed to get explain flag: %w", err)
	}
	showLayers, err := cmd.Flags().GetBool("layers")
	if err != nil {
		return fmt.Errorf("failed to get layers flag: %w", err)
	}
	override, err := cmd.Flags().GetString("override")
	if err != nil {
		return fmt.Errorf("failed to get override flag: %w", err)
	}

	s, err := loadSettings(cmd, target)
	if err != nil {
		return err
	}
	path, err := locateDeclaration(target)
	if err != nil {
		return err
	}

	ctx, span := trace.BeginCtx(cmd.Context(), trace.ScopeDriver, "resolve")
	defer span.End("")

	d, err := s.newDriver(nil)
	if err != nil {
		return err
	}
	var res *driver.FileResult
	if override != "" {
		res, err = d.Override(ctx, path, override)
	} else {
		res, err = d.ResolveFile(ctx, path)
	}
	if err != nil {
		return err
	}

	items := res.Bag.Items()
	if err := s.writeDiagnostics(cmd.ErrOrStderr(), items, os.Args[1:]); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case res.Failed():
	case showLayers:
		for _, layer := range res.Result.Layers {
			fmt.Fprintln(out, layer)
		}
	case explain:
		for _, line := range resolve.Explain(res.Result) {
			fmt.Fprintln(out, line)
		}
	default:
		data, err := res.Result.Config.Canonical()
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		fmt.Fprintln(out, string(data))
	}

	if res.Failed() || s.failed(items) {
		return errDiagnostics
	}
	return nil
}
