package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"lintconf/internal/trace"
)

// setupTracing inspects trace-related flags and initializes the tracer.
// It returns a cleanup function and an error if initialization fails.
func setupTracing(cmd *cobra.Command) (func(), error) {
	root := cmd.Root()

	traceOutput, err := root.PersistentFlags().GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := root.PersistentFlags().GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := root.PersistentFlags().GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	ringSize, err := root.PersistentFlags().GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}
	formatStr, err := root.PersistentFlags().GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	heartbeatInterval, err := root.PersistentFlags().GetDuration("trace-heartbeat")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-heartbeat flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace level: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(ctx, trace.Nop))
		return func() {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, fmt.Errorf("invalid trace mode: %w", err)
	}

	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	cfg := trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	}
	if traceOutput == "-" {
		cfg.Output = cmd.ErrOrStderr()
	}
	tracer, err := trace.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	// The heartbeat sits in front of the tracer so it sees every span and
	// can name the files still being resolved.
	heartbeat := trace.StartHeartbeat(tracer, heartbeatInterval)
	if heartbeat != nil {
		tracer = heartbeat
	}
	ctx = trace.WithTracer(ctx, tracer)
	cmd.SetContext(ctx)
	root.SetContext(ctx)

	cleanup := func() {
		heartbeat.Stop()
		if err := tracer.Flush(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
		}
		if err := tracer.Close(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
		}
	}
	return cleanup, nil
}

// dumpTraceOnPanic writes the ring buffer contents to w before letting a
// panic continue. It must be deferred directly.
func dumpTraceOnPanic(ctx context.Context, w io.Writer) {
	r := recover()
	if r == nil {
		return
	}
	if ring, ok := trace.Ring(trace.FromContext(ctx)); ok {
		if last, ok := ring.Last(); ok {
			fmt.Fprintf(w, "trace: panic while resolving %s; its events:\n", last.File)
			_ = ring.DumpFile(w, trace.FormatText, last.File)
		} else {
			fmt.Fprintln(w, "trace: last events before panic:")
			_ = ring.Dump(w, trace.FormatText)
		}
	}
	panic(r)
}
