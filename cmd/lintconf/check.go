package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lintconf/internal/diagfmt"
	"lintconf/internal/driver"
	"lintconf/internal/loader"
	"lintconf/internal/preset"
	"lintconf/internal/trace"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [flags] [file|directory]",
		Short: "Validate declarations and report diagnostics",
		Long: `Check resolves a declaration file, or every declaration file below a
directory, and reports diagnostics without printing configurations.

With --watch, check keeps running and re-checks whenever a declaration or
preset file changes, reloading the preset registry first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}
	cmd.Flags().Bool("watch", false, "re-check when declaration or preset files change")
	cmd.Flags().Duration("watch-interval", loader.DefaultWatchInterval, "polling interval for --watch")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic(cmd.Context(), cmd.ErrOrStderr())

	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	s, err := loadSettings(cmd, target)
	if err != nil {
		return err
	}
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}
	watch, err := cmd.Flags().GetBool("watch")
	if err != nil {
		return fmt.Errorf("failed to get watch flag: %w", err)
	}
	interval, err := cmd.Flags().GetDuration("watch-interval")
	if err != nil {
		return fmt.Errorf("failed to get watch-interval flag: %w", err)
	}
	st, err := s.store()
	if err != nil {
		return err
	}

	ctx, span := trace.BeginCtx(cmd.Context(), trace.ScopeDriver, "check")
	defer span.End("")

	failed, err := s.checkOnce(ctx, cmd, st, target, info.IsDir())
	if err != nil {
		return err
	}
	if watch {
		paths := append([]string{target}, s.presetDirs...)
		err = loader.Watch(ctx, paths, interval, func() error {
			if _, err := loader.Reload(st, s.presetDirs, s.withBuiltins); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: presets not reloaded: %v\n", err)
			}
			passFailed, err := s.checkOnce(ctx, cmd, st, target, info.IsDir())
			if err != nil {
				return err
			}
			failed = passFailed
			return nil
		})
		if err != nil && !driver.IsCanceled(err) {
			return err
		}
	}
	if failed {
		return errDiagnostics
	}
	return nil
}

// checkOnce runs one check pass against the registry currently published in
// st and reports whether it failed.
func (s *settings) checkOnce(ctx context.Context, cmd *cobra.Command, st *preset.Store, target string, isDir bool) (bool, error) {
	var results []driver.FileResult
	if !isDir {
		d, err := s.newDriverFor(st, nil)
		if err != nil {
			return false, err
		}
		res, err := d.ResolveFile(ctx, target)
		if err != nil {
			return false, err
		}
		results = []driver.FileResult{*res}
	} else {
		files, err := driver.ListDeclarations(target)
		if err != nil {
			return false, err
		}
		newDriver := func(sink driver.ProgressSink) (*driver.Driver, error) {
			return s.newDriverFor(st, sink)
		}
		if len(files) > 1 && !s.quiet && s.format == "pretty" && shouldUseTUI(s.ui, cmd.OutOrStdout()) {
			results, err = resolveDirWithUI(ctx, cmd.OutOrStdout(), "resolving", target, files, newDriver)
		} else {
			var d *driver.Driver
			if d, err = newDriver(nil); err == nil {
				results, err = d.ResolveDir(ctx, target)
			}
		}
		if err != nil {
			return false, fmt.Errorf("check failed: %w", err)
		}
	}

	if err := s.writeFileResults(cmd.OutOrStdout(), results, os.Args[1:]); err != nil {
		return false, err
	}
	items := allItems(results)
	if !s.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "checked %d %s: %s\n", len(results), pluralFiles(len(results)), diagfmt.Summary(items))
	}
	failed := s.failed(items)
	for i := range results {
		failed = failed || results[i].Failed()
	}
	return failed, nil
}

func pluralFiles(n int) string {
	if n == 1 {
		return "file"
	}
	return "files"
}
